package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a group of endpoints.
// Endpoints that share a Tier name share one bucket per client.
type EndpointConfig struct {
	Tier   string        // Bucket name; defaults to Method+Path
	Path   string        // Endpoint path pattern (a trailing "/" enables prefix matching)
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

func (c *EndpointConfig) bucketName() string {
	if c.Tier != "" {
		return c.Tier
	}
	return c.Method + " " + c.Path
}

// Tier names used by DefaultEndpointConfigs.
const (
	TierListingWrites = "listing-writes"
	TierAuth          = "auth"
	TierUploads       = "uploads"
	TierWrites        = "writes"
)

// SetDefaults registers the rate limit keys on v. Each key is bound to its
// RATE_LIMIT_* environment variable.
func SetDefaults(v *viper.Viper) error {
	defaults := map[string]any{
		"rate_limit_enabled":          true,
		"rate_limit_default_limit":    1000,
		"rate_limit_default_window":   "1m",
		"rate_limit_cleanup_interval": "5m",
		"rate_limit_whitelist":        "",
		"rate_limit_blacklist":        "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads rate limiting configuration from v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := SetDefaults(v); err != nil {
		return nil, err
	}
	if !v.GetBool("rate_limit_enabled") {
		return &Config{Enabled: false}, nil
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("rate_limit_default_limit"),
		DefaultWindow:   durationOr(v.GetDuration("rate_limit_default_window"), time.Minute),
		CleanupInterval: durationOr(v.GetDuration("rate_limit_cleanup_interval"), 5*time.Minute),
		Whitelist:       parseIPList(v.GetString("rate_limit_whitelist")),
		Blacklist:       parseIPList(v.GetString("rate_limit_blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}, nil
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Listing writes: a handful per minute per client, shared between create and delete.
		{Tier: TierListingWrites, Path: "/api/internships", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 3},
		{Tier: TierListingWrites, Path: "/api/internships/", Method: http.MethodDelete, Limit: 20, Window: time.Minute, Burst: 3},
		{Tier: TierListingWrites, Path: "/api/jobs/freelance", Method: http.MethodPost, Limit: 20, Window: time.Minute, Burst: 3},

		// Credentials
		{Tier: TierAuth, Path: "/api/auth/signup", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 5},
		{Tier: TierAuth, Path: "/api/auth/login", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 5},

		// Document parsing
		{Tier: TierUploads, Path: "/api/resume-analyze/upload", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 5},

		// Other writes
		{Tier: TierWrites, Path: "/api/applications", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Tier: TierWrites, Path: "/api/bookmarks", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Tier: TierWrites, Path: "/api/progress", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Tier: TierWrites, Path: "/api/recruiter", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Tier: TierWrites, Path: "/api/voice-notes", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},

		// Reads and /api/track use the default limit; /health is unlimited (see MatchEndpoint).
	}
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
