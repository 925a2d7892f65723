// Package config provides configuration loading and validation for the job board.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Store backends accepted by the "store" key.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "JOBBOARD"

// ServerConfig represents the server configuration.
// Values come from flags, the environment and an optional YAML file, in that order of precedence.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Store       string `mapstructure:"store"`        // memory or postgres
	Seed        bool   `mapstructure:"seed"`         // Load the sample listings on startup
	DatabaseURL string `mapstructure:"database_url"` // PostgreSQL connection URL
	RedisURL    string `mapstructure:"redis_url"`    // Optional; events are not fanned out when empty

	JSON  bool `mapstructure:"json"`  // JSON log encoding
	Debug bool `mapstructure:"debug"` // Debug log level

	EventRetention    time.Duration `mapstructure:"event_retention"`
	RetentionSchedule string        `mapstructure:"retention_schedule"` // cron spec

	CookieSecure bool   `mapstructure:"cookie_secure"`
	CORSOrigin   string `mapstructure:"cors_origin"`
}

// envNames lists the unprefixed variable names accepted next to the JOBBOARD_ ones.
var envNames = map[string]string{
	"port":                 "PORT",
	"store":                "STORE",
	"seed":                 "SEED",
	"database_url":         "DATABASE_URL",
	"redis_url":            "REDIS_URL",
	"json":                 "LOG_JSON",
	"debug":                "LOG_DEBUG",
	"event_retention":      "EVENT_RETENTION",
	"retention_schedule":   "RETENTION_SCHEDULE",
	"cookie_secure":        "COOKIE_SECURE",
	"cors_origin":          "CORS_ORIGIN",
	"jwt_secret":           "JWT_SECRET",
	"jwt_expiration_hours": "JWT_EXPIRATION_HOURS",
	"bcrypt_cost":          "BCRYPT_COST",
	"password_pepper":      "PASSWORD_PEPPER",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("port", 8080)
	v.SetDefault("store", StoreMemory)
	v.SetDefault("seed", true)
	v.SetDefault("event_retention", "720h")
	v.SetDefault("retention_schedule", "@every 1h")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("jwt_expiration_hours", "2")
	v.SetDefault("bcrypt_cost", "12")

	for key, name := range envNames {
		if err := v.BindEnv(key, EnvPrefix+"_"+name, name); err != nil {
			return fmt.Errorf("binding %s environment variable: %w", name, err)
		}
	}
	return nil
}

// LoadServerConfig reads the server configuration from v.
func LoadServerConfig(v *viper.Viper) (*ServerConfig, error) {
	if err := SetDefaults(v); err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	default:
		return fmt.Errorf("config error: unknown store %q (want %s or %s)", c.Store, StoreMemory, StorePostgres)
	}

	if c.EventRetention <= 0 {
		return fmt.Errorf("config error: 'event_retention' must be positive, got %s", c.EventRetention)
	}
	if _, err := cron.ParseStandard(c.RetentionSchedule); err != nil {
		return fmt.Errorf("config error: invalid 'retention_schedule' %q: %w", c.RetentionSchedule, err)
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
