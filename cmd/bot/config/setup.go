package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrIncompleteConfig is returned when a required environment variable has not been provided.
var ErrIncompleteConfig = errors.New("not all required environment variables have been provided")

// Parse loads a .env file if there is one and reads the configuration from the environment.
func Parse(l *slog.Logger) error {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading .env file: %w", err)
		}
		l.Debug("No .env file found, using the environment only")
	}

	BotToken = lookup(l, EnvBotToken)
	ApplicationId = lookup(l, EnvApplicationId)
	MongoUri = lookup(l, EnvMongoUri)
	EncryptionKey = lookup(l, EnvEncryptionKey)
	RedisAddr = lookup(l, EnvRedisAddr)
	RedisPassword = lookup(l, EnvRedisPassword)

	MonitoringPort = lookup(l, EnvMonitoringPort)
	if MonitoringPort == "" {
		// Default to 8080 if not provided.
		MonitoringPort = defaultMonitoringPort
		l.Info("No monitoring port provided in environment, defaulting to "+defaultMonitoringPort,
			slog.String("key", EnvMonitoringPort))
	}

	MaxListeners = defaultMaxListeners
	if v := lookup(l, EnvMaxListeners); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: must be a positive number", EnvMaxListeners, v)
		}
		MaxListeners = n
	}

	DefaultLocale = lookup(l, EnvDefaultLocale)
	if DefaultLocale == "" {
		DefaultLocale = defaultLocale
	}

	required := []struct {
		key   string
		value string
	}{
		{EnvBotToken, BotToken},
		{EnvApplicationId, ApplicationId},
		{EnvMongoUri, MongoUri},
		{EnvEncryptionKey, EncryptionKey},
	}

	missing := make([]string, 0, len(required))
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}

	// All required environment variables have been provided.
	l.Debug("All required environment variables have been provided")
	return nil
}

func lookup(l *slog.Logger, key string) string {
	v := os.Getenv(key)
	if v != "" {
		l.Debug("Found value in environment", slog.String("key", key))
	}
	return v
}
