package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)

type recordingPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *recordingPruner) PruneEvents(_ context.Context, before time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, before)
	return 0, p.err
}

func (p *recordingPruner) PruneVoiceNotes(_ context.Context, before time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, before)
	return 0, p.err
}

func (p *recordingPruner) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cutoffs)
}

func TestNew_InvalidRetention(t *testing.T) {
	_, err := New(&recordingPruner{}, 0, "@every 1h", nil)
	assert.Error(t, err)
}

func TestRunOnce_PrunesMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory(false)

	_, err := store.AddEvent(ctx, types.Event{Type: "stale", TS: now.Add(-31 * 24 * time.Hour)})
	require.NoError(t, err)
	_, err = store.AddEvent(ctx, types.Event{Type: "recent", TS: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = store.AddVoiceNote(ctx, types.VoiceNote{Transcript: "stale", At: now.Add(-40 * 24 * time.Hour)})
	require.NoError(t, err)

	s, err := New(store, 720*time.Hour, "@every 1h", zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	s.RunOnce(ctx)

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "recent", events[0].Type)

	notes, err := store.ListVoiceNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRunOnce_Cutoff(t *testing.T) {
	p := &recordingPruner{}
	s, err := New(p, 24*time.Hour, "@every 1h", nil)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	s.RunOnce(context.Background())

	assert.Equal(t, []time.Time{now.Add(-24 * time.Hour), now.Add(-24 * time.Hour)}, p.cutoffs)
}

func TestRunOnce_LogsErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	p := &recordingPruner{err: errors.New("db down")}
	s, err := New(p, time.Hour, "@every 1h", zap.New(core))
	require.NoError(t, err)

	s.RunOnce(context.Background())

	assert.Equal(t, 2, p.calls(), "a failing prune does not skip the next one")
	assert.Equal(t, 2, logs.Len())
}

func TestStart_InvalidSpec(t *testing.T) {
	s, err := New(&recordingPruner{}, time.Hour, "not a spec", nil)
	require.NoError(t, err)

	assert.Error(t, s.Start(context.Background()))
}

func TestStart_RunsOnSchedule(t *testing.T) {
	p := &recordingPruner{}
	s, err := New(p, time.Hour, "@every 1s", nil)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.calls() >= 2 }, 3*time.Second, 50*time.Millisecond)
}
