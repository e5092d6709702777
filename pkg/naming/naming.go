// Package naming renders channel names and message bodies from category templates.
package naming

import (
	"regexp"
	"strconv"
)

var (
	// namePattern matches {name} and {username}, ignoring case, extra braces and padding.
	namePattern = regexp.MustCompile(`(?i)\{+\s*(?:user)?name\s*\}+`)

	// numberPattern matches {num} and {number}.
	numberPattern = regexp.MustCompile(`(?i)\{+\s*num(?:ber)?\s*\}+`)

	// mentionPattern matches {mention}, {tag} and {ping}.
	mentionPattern = regexp.MustCompile(`(?i)\{+\s*(?:tag|ping|mention)\s*\}+`)
)

// Values are the substitutions available to a template.
type Values struct {
	// DisplayName is the display name of the ticket creator.
	DisplayName string

	// Number is the ticket number. Zero leaves number placeholders untouched.
	Number int

	// Mention is the mention string of the ticket creator (e.g. <@123>).
	Mention string
}

// Render substitutes every placeholder in template that has a value set. Everything else is returned as written.
func Render(template string, v Values) string {
	out := template
	if v.DisplayName != "" {
		out = namePattern.ReplaceAllLiteralString(out, v.DisplayName)
	}
	if v.Number > 0 {
		out = numberPattern.ReplaceAllLiteralString(out, strconv.Itoa(v.Number))
	}
	if v.Mention != "" {
		out = mentionPattern.ReplaceAllLiteralString(out, v.Mention)
	}
	return out
}
