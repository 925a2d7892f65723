// Package retention wires up the cron job that prunes old tracker activity.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes records older than a cutoff.
type Pruner interface {
	PruneEvents(ctx context.Context, before time.Time) (int, error)
	PruneVoiceNotes(ctx context.Context, before time.Time) (int, error)
}

// Scheduler wraps robfig/cron and runs the prune job.
type Scheduler struct {
	cron      *cron.Cron
	store     Pruner
	retention time.Duration
	spec      string // cron spec, e.g. "@every 1h"
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Scheduler that prunes records older than retention on every tick of spec.
func New(store Pruner, retention time.Duration, spec string, logger *zap.Logger) (*Scheduler, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		store:     store,
		retention: retention,
		spec:      spec,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("retention scheduler started",
		zap.String("spec", s.spec),
		zap.Duration("retention", s.retention),
	)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("retention scheduler stopped")
}

// RunOnce prunes everything older than the retention window.
// Errors are logged; one failing table does not stop the other.
func (s *Scheduler) RunOnce(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	events, err := s.store.PruneEvents(ctx, cutoff)
	if err != nil {
		s.logger.Error("pruning events", zap.Error(err))
	}
	notes, err := s.store.PruneVoiceNotes(ctx, cutoff)
	if err != nil {
		s.logger.Error("pruning voice notes", zap.Error(err))
	}

	s.logger.Debug("retention cycle complete",
		zap.Time("cutoff", cutoff),
		zap.Int("events_removed", events),
		zap.Int("voice_notes_removed", notes),
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
