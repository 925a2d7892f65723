package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	clock := &fakeClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	tb := newTokenBucket(2, 1, start)

	ok, remaining, _ := tb.take(start)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _, _ = tb.take(start)
	assert.True(t, ok)
	ok, _, reset := tb.take(start)
	assert.False(t, ok)
	assert.Equal(t, start.Add(2*time.Second), reset)
	assert.Equal(t, time.Second, tb.retryAfter(start))

	ok, _, _ = tb.take(start.Add(time.Second))
	assert.True(t, ok, "one token refilled after a second")
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/api/internships", http.MethodGet)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Equal(t, "default", info.Tier)
	}

	allowed, info := l.Allow("127.0.0.1", "/api/internships", http.MethodGet)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 20; i++ {
		allowed, info := l.Allow("10.0.0.1", "/api/track", http.MethodGet)
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, _ := l.Allow("10.0.0.2", "/api/track", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1})
	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/api/internships", http.MethodPost)
		assert.True(t, allowed)
	}
}

func TestLimiter_ListingWritesShareTier(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("127.0.0.1", "/api/internships", http.MethodPost)
		require.True(t, allowed)
		assert.Equal(t, TierListingWrites, info.Tier)
	}
	allowed, _ := l.Allow("127.0.0.1", "/api/internships/i1", http.MethodDelete)
	require.True(t, allowed)

	allowed, info := l.Allow("127.0.0.1", "/api/internships/i2", http.MethodDelete)
	assert.False(t, allowed, "create and delete draw from one bucket")
	assert.Equal(t, 3*time.Second, info.RetryAfter)

	allowed, _ = l.Allow("127.0.0.2", "/api/internships", http.MethodPost)
	assert.True(t, allowed, "buckets are per client")

	allowed, info = l.Allow("127.0.0.1", "/api/internships", http.MethodGet)
	assert.True(t, allowed, "reads use the default tier")
	assert.Equal(t, 1000, info.Limit)

	clock.Advance(3 * time.Second)
	allowed, _ = l.Allow("127.0.0.1", "/api/internships", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiter_HealthAndPreflightUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
		allowed, _ = l.Allow("127.0.0.1", "/api/internships", http.MethodOptions)
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var allowedCount atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("127.0.0.1", "/api/track", http.MethodGet); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 100, allowedCount.Load())
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 4; i++ {
		l.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/api/track", http.MethodGet)
	}
	clock.Advance(2 * time.Hour)
	l.Allow("127.0.0.1", "/api/track", http.MethodGet)

	removed := l.cleanupBuckets(clock.Now().Add(-time.Hour))
	assert.Equal(t, 3, removed)
	assert.Len(t, l.buckets, 1)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	l.Stop()

	allowed, info := l.Allow("127.0.0.1", "/api/internships", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/", Method: http.MethodPost, Limit: 1},
		{Path: "/api/internships/", Method: http.MethodPost, Limit: 2},
		{Path: "/api/auth/login", Method: http.MethodPost, Limit: 3},
	}

	tests := []struct {
		name   string
		path   string
		method string
		limit  int
		found  bool
	}{
		{name: "exact", path: "/api/auth/login", method: http.MethodPost, limit: 3, found: true},
		{name: "longest prefix", path: "/api/internships/i1", method: http.MethodPost, limit: 2, found: true},
		{name: "short prefix", path: "/api/bookmarks", method: http.MethodPost, limit: 1, found: true},
		{name: "method mismatch", path: "/api/auth/login", method: http.MethodGet},
		{name: "health", path: "/health", method: http.MethodGet, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.limit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2 ,")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}
