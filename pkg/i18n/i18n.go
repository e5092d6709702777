// Package i18n looks up localized message strings.
//
// Locales are YAML files embedded from the locales directory and named after their BCP 47 tag. Nested keys are
// addressed with dots, e.g. "ticket.closed.title". A key missing from a locale falls back to the default locale,
// and then to the key itself.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Localizer returns the string for key with args interpolated positionally.
type Localizer func(key string, args ...any) string

// Provider holds every loaded locale.
type Provider struct {
	// tags are the loaded locale tags, default first.
	tags []language.Tag

	// strings maps a locale tag to its flattened key/value pairs.
	strings map[language.Tag]map[string]string

	matcher language.Matcher
}

// New loads the embedded locales. defaultTag must be one of them.
func New(defaultTag string) (*Provider, error) {
	def, err := language.Parse(defaultTag)
	if err != nil {
		return nil, fmt.Errorf("error parsing default locale %q: %w", defaultTag, err)
	}

	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	p := &Provider{
		strings: make(map[language.Tag]map[string]string, len(entries)),
	}

	var others []language.Tag
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("error parsing locale tag %q: %w", name, err)
		}

		raw, err := localeFiles.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading locale %s: %w", name, err)
		}

		values, err := parse(raw)
		if err != nil {
			return nil, fmt.Errorf("error parsing locale %s: %w", name, err)
		}
		p.strings[tag] = values

		if tag != def {
			others = append(others, tag)
		}
	}

	if _, ok := p.strings[def]; !ok {
		return nil, fmt.Errorf("default locale %q is not available", defaultTag)
	}

	p.tags = append([]language.Tag{def}, others...)
	p.matcher = language.NewMatcher(p.tags)
	return p, nil
}

// GetLocale returns a Localizer for the closest available match to tag.
func (p *Provider) GetLocale(tag string) Localizer {
	matched := p.tags[0]
	if t, err := language.Parse(tag); err == nil {
		_, idx, conf := p.matcher.Match(t)
		if conf != language.No {
			matched = p.tags[idx]
		}
	}

	primary := p.strings[matched]
	fallback := p.strings[p.tags[0]]

	return func(key string, args ...any) string {
		format, ok := primary[key]
		if !ok {
			format, ok = fallback[key]
		}
		if !ok {
			return key
		}
		if len(args) == 0 {
			return format
		}
		return fmt.Sprintf(format, args...)
	}
}

// parse flattens a YAML document into dotted keys.
func parse(raw []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
