package events

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, any) error {
	f.calls++
	return errors.New("connection refused")
}

func (f *failingPublisher) Close() error { return nil }

func TestNotify_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := &failingPublisher{}

	Notify(context.Background(), pub, zap.New(core), ChannelTracked, map[string]string{"type": "view"})

	assert.Equal(t, 1, pub.calls)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "publish failed", entry.Message)
	assert.Equal(t, ChannelTracked, entry.ContextMap()["channel"])
}

func TestNotify_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Notify(context.Background(), nil, zap.NewNop(), ChannelTracked, nil)
	})
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), ChannelProgressChanged, struct{}{}))
	assert.NoError(t, pub.Close())
}

func TestNewRedisPublisher_InvalidURL(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestRedisPublisher_Publish(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pub, err := NewRedisPublisher(ctx, url)
	require.NoError(t, err)
	defer pub.Close()

	sub := pub.rdb.Subscribe(ctx, ChannelTracked)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, ChannelTracked, map[string]string{"type": "view"}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"view"}`, msg.Payload)
}
