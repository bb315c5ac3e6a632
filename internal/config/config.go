// Package config loads and validates the immutable process configuration.
//
// Configuration is resolved once at startup (file, environment, flags via
// viper) into a plain Config value that is passed into each component
// constructor. Nothing in the core reads ambient global state.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Search   SearchConfig   `mapstructure:"search"`
	Repost   RepostConfig   `mapstructure:"repost"`
	Health   HealthConfig   `mapstructure:"health"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ClassifyConfig holds the classifier thresholds.
type ClassifyConfig struct {
	MinPrice  int `mapstructure:"min_price" validate:"gt=0"`
	YearFloor int `mapstructure:"year_floor" validate:"gte=1900"`
}

// SearchConfig bounds search results. MaxLimit is a hard cap; searches are
// never unbounded.
type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gt=0"`
	MaxLimit     int `mapstructure:"max_limit" validate:"gt=0,gtefield=DefaultLimit"`
}

// RepostConfig controls the optional best-effort mirror of new listings.
type RepostConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" validate:"required_if=Enabled true,omitempty,url"`
}

// HealthConfig configures the health/metrics HTTP listener.
type HealthConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/autocatalog/catalog.db")
	v.SetDefault("classify.min_price", 50_000)
	v.SetDefault("classify.year_floor", 1970)
	v.SetDefault("search.default_limit", 5)
	v.SetDefault("search.max_limit", 10)
	v.SetDefault("repost.enabled", false)
	v.SetDefault("health.addr", ":10000")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load materializes the configuration from the already-initialized viper
// instance and validates it.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
