package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Pruner deletes point searches older than a retention window.
type Pruner interface {
	PruneSearches(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler periodically prunes old point searches.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pruner    Pruner
	retention time.Duration
	interval  time.Duration
}

// New creates a new Scheduler.
func New(pruner Pruner, retention, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		pruner:    pruner,
		retention: retention,
		interval:  interval,
	}
}

// Start schedules the prune job and starts the underlying scheduler. A zero
// retention schedules nothing.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		slog.Info("scheduler: search retention disabled; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single prune pass.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.pruner.PruneSearches(ctx, s.retention)
	if err != nil {
		slog.Error("scheduler: prune failed", slog.String("error", err.Error()))
		return
	}
	slog.Info("scheduler: pruned searches", slog.Int64("deleted", n), slog.Duration("retention", s.retention))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
