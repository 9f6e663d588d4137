// Package config loads settings from the environment, an optional .env file and an optional
// config.yaml, and sets up the process-wide zerolog logger.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DbHost     = "DB_HOST"
	DbPort     = "DB_PORT"
	DbUser     = "DB_USER"
	DbPassword = "DB_PASSWORD"
	DbName     = "DB_NAME"
	DbSslMode  = "DB_SSLMODE"
	DbMigrate  = "DB_MIGRATE"

	HttpHost  = "HTTP_HOST"
	HttpPort  = "HTTP_PORT"
	DebugHost = "DEBUG_HOST"
	DebugPort = "DEBUG_PORT"

	LogLevel  = "LOG_LEVEL"
	LogFormat = "LOG_FORMAT"

	AppLocale   = "APP_LOCALE"
	AppTimezone = "APP_TIMEZONE"

	OtelEnabled  = "OTEL_ENABLED"
	OtelEndpoint = "OTEL_ENDPOINT"
)

var ErrInvalidTimezone = errors.New("invalid APP_TIMEZONE")

var defaults = map[string]any{
	DbHost:       "localhost",
	DbPort:       "5432",
	DbUser:       "postgres",
	DbPassword:   "postgres",
	DbName:       "taskboard",
	DbSslMode:    "disable",
	DbMigrate:    true,
	HttpHost:     "localhost",
	HttpPort:     "8080",
	DebugHost:    "localhost",
	DebugPort:    "6060",
	LogLevel:     "info",
	LogFormat:    "json",
	AppLocale:    "en",
	AppTimezone:  "UTC",
	OtelEnabled:  true,
	OtelEndpoint: "localhost:4317",
}

// Default reads the configuration into the global viper instance and returns ctx carrying the
// configured logger. Problems with optional sources are logged, never fatal.
func Default(ctx context.Context, name string, version string, env string) context.Context {
	var warnings []string

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, "unable to load .env: "+err.Error())
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			warnings = append(warnings, "unable to read config.yaml: "+err.Error())
		}
	}

	log.Logger = NewLogger(os.Stdout, viper.GetString(LogLevel), viper.GetString(LogFormat)).With().
		Str("name", name).Str("version", version).Str("env", env).Logger()
	zerolog.DefaultContextLogger = &log.Logger

	for _, warning := range warnings {
		log.Warn().Str("stage", "startup").Str("component", "config").Msg(warning)
	}

	return log.Logger.WithContext(ctx)
}

// NewLogger builds a timestamped logger. Unknown levels fall back to info; format "console" is
// human-readable, anything else is JSON.
func NewLogger(w io.Writer, level string, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(strings.TrimSpace(format), "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Location resolves APP_TIMEZONE for form parsing and display.
func Location() (*time.Location, error) {
	name := strings.TrimSpace(viper.GetString(AppTimezone))
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTimezone, name, err)
	}

	return loc, nil
}
