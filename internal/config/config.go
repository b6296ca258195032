// Package config reads process settings from CARVALUE_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "CARVALUE_"

// Config holds every setting the binary reads from the environment. Command
// line flags override individual fields after Load returns.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":5000"`
	ModelPath       string        `env:"MODEL_PATH" envDefault:"model.json"`
	SchemaPath      string        `env:"SCHEMA_PATH"`
	TemplatesDir    string        `env:"TEMPLATES_DIR"`
	HistoryDB       string        `env:"HISTORY_DB"`
	BaseYear        int           `env:"BASE_YEAR" envDefault:"2025"`
	DeriveFields    bool          `env:"DERIVE_FIELDS" envDefault:"true"`
	ThemeVariant    string        `env:"THEME_VARIANT" envDefault:"light"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint    string        `env:"OTEL_ENDPOINT"`
	OTelEnabled     bool          `env:"OTEL_ENABLED" envDefault:"true"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"65536"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BaseYear <= 0 {
		return Config{}, fmt.Errorf("parse env: %sBASE_YEAR must be positive, got %d", Prefix, cfg.BaseYear)
	}
	return cfg, nil
}

// Level maps LogLevel onto a slog level. Unknown names fall back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
