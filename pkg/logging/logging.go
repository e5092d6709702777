package logging

import (
	"errors"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key used for errors.
	KeyError = "err"

	// KeyDal is the key used for the data access layer name.
	KeyDal = "dal"

	// KeyTicket is the key used for ticket IDs.
	KeyTicket = "ticket"

	// KeyGuild is the key used for guild IDs.
	KeyGuild = "guild"

	// KeyUser is the key used for user IDs.
	KeyUser = "user"

	// KeyStep is the key used for the ticket setup step.
	KeyStep = "step"
)

// EnvLogLevel is the environment variable for the log level.
const EnvLogLevel = `LOG_LEVEL`

// Name is the name of the application the logger is for.
type Name string

// Config is the configuration for the logger.
type Config struct {
	// appName is the name of the application.
	appName string

	// level is the minimum level that is logged.
	level slog.Level
}

// NewConfig creates a new logging configuration. The level is read from the environment, defaulting to debug.
func NewConfig(appName Name) *Config {
	level := slog.LevelDebug
	if env := os.Getenv(EnvLogLevel); env != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(env))); err != nil {
			level = slog.LevelDebug
		}
	}

	return &Config{
		appName: string(appName),
		level:   level,
	}
}

// CommonLogger creates the JSON logger that every part of the application logs through.
func CommonLogger(conf *Config) (*slog.Logger, error) {
	if conf == nil {
		return nil, errors.New("no logging configuration provided")
	} else if conf.appName == "" {
		return nil, errors.New("no app name provided")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     conf.level,
	})

	l := slog.New(h).With(slog.String("app", conf.appName))
	slog.SetDefault(l)

	return l, nil
}
