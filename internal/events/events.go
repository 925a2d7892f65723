// Package events fans out tracker activity to other services over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channels published by the job board.
const (
	ChannelTracked         = "EVENT_TRACKED"
	ChannelProgressChanged = "EVENT_PROGRESS_CHANGED"
)

// Publisher sends a JSON payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	Close() error
}

// RedisPublisher publishes on Redis pub/sub channels.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates and verifies a Redis client connection.
func NewRedisPublisher(ctx context.Context, redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisPublisher{rdb: rdb}, nil
}

// Publish marshals payload to JSON and publishes it.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Close closes the underlying client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// NoopPublisher drops every message. It is used when no Redis URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Notify publishes payload and logs a failure instead of returning it.
func Notify(ctx context.Context, pub Publisher, logger *zap.Logger, channel string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, channel, payload); err != nil && logger != nil {
		logger.Warn("publish failed", zap.String("channel", channel), zap.Error(err))
	}
}
