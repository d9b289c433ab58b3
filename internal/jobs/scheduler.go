// Package jobs runs the background maintenance tasks on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/reelfaucet/internal/kvstore"
	"github.com/osse101/reelfaucet/internal/ledger"
	"github.com/osse101/reelfaucet/internal/logger"
	"github.com/osse101/reelfaucet/internal/metrics"
)

// Checkpointer saves live sessions
type Checkpointer interface {
	Checkpoint(ctx context.Context) (saved, failed int)
}

// Config holds job schedules in standard cron syntax or @every descriptors
type Config struct {
	CheckpointSpec string
	PruneSpec      string
	Retention      time.Duration
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	sessions Checkpointer
	pruner   kvstore.Pruner // nil when the store cannot prune
	now      func() time.Time
}

// NewScheduler creates a stopped scheduler. Runs of the same job never overlap.
func NewScheduler(cfg Config, sessions Checkpointer, pruner kvstore.Pruner) *Scheduler {
	if cfg.CheckpointSpec == "" {
		cfg.CheckpointSpec = DefaultCheckpointSpec
	}
	if cfg.PruneSpec == "" {
		cfg.PruneSpec = DefaultPruneSpec
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}

	cl := cronLogger{}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		cfg:      cfg,
		sessions: sessions,
		pruner:   pruner,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the runner
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.CheckpointSpec, func() { s.RunCheckpoint(ctx) }); err != nil {
		return fmt.Errorf("checkpoint schedule %q: %w", s.cfg.CheckpointSpec, err)
	}
	if s.pruner != nil {
		if _, err := s.cron.AddFunc(s.cfg.PruneSpec, func() { _, _ = s.RunPrune(ctx) }); err != nil {
			return fmt.Errorf("prune schedule %q: %w", s.cfg.PruneSpec, err)
		}
	}

	s.cron.Start()
	logger.FromContext(ctx).Info(LogMsgSchedulerStarted,
		"checkpoint", s.cfg.CheckpointSpec, "prune", s.cfg.PruneSpec, "prune_enabled", s.pruner != nil)
	return nil
}

// Stop waits for running jobs to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info(LogMsgSchedulerStopped)
}

// RunCheckpoint saves every idle session
func (s *Scheduler) RunCheckpoint(ctx context.Context) {
	saved, failed := s.sessions.Checkpoint(ctx)
	log := logger.FromContext(ctx)
	if failed > 0 {
		log.Warn(LogMsgCheckpointDone, "saved", saved, "failed", failed)
		return
	}
	log.Debug(LogMsgCheckpointDone, "saved", saved)
}

// RunPrune deletes demo records untouched for longer than the retention
func (s *Scheduler) RunPrune(ctx context.Context) (int64, error) {
	if s.pruner == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.pruner.Prune(ctx, ledger.KeyPrefixDemo, cutoff)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgPruneFailed, "error", err)
		return 0, err
	}
	metrics.RecordsPruned.Add(float64(n))
	logger.FromContext(ctx).Info(LogMsgPruneDone, "deleted", n, "cutoff", cutoff)
	return n, nil
}

// cronLogger routes cron's own logging through slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
