package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// JWTConfig holds configuration for the auth_token issued at login.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 2) from v.
func NewJWTConfig(v *viper.Viper) (*JWTConfig, error) {
	if err := SetDefaults(v); err != nil {
		return nil, err
	}

	expirationHours, err := strconv.Atoi(v.GetString("jwt_expiration_hours"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          v.GetString("jwt_secret"),
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}

// Expiration returns the token lifetime, which is also the cookie max age.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
