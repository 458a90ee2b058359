// Package review provides a background runner that expires stale entries in
// the manual review queue. An event that was flagged for review but whose
// window has already ended is no longer actionable, so it is archived instead
// of lingering in the queue forever.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/nasunstar/Agent-App-sub000/store"
)

const (
	defaultInterval  = 30 * time.Minute
	defaultBatchSize = 50
)

// Runner sweeps the review queue on a fixed interval.
type Runner struct {
	store     *store.Store
	interval  time.Duration
	batchSize int
}

// NewRunner creates a review-queue runner with default cadence.
func NewRunner(st *store.Store) *Runner {
	return &Runner{
		store:     st,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Run sweeps once at startup, then on every tick until ctx is canceled.
func (r *Runner) Run(ctx context.Context) {
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-ctx.Done():
			slog.Info("review runner stopped")
			return
		}
	}
}

// RunOnce performs a single sweep, for tests and CLI use.
func (r *Runner) RunOnce(ctx context.Context) {
	r.sweep(ctx)
}

func (r *Runner) sweep(ctx context.Context) {
	needsReview := true
	normal := store.Normal
	cutoff := time.Now().UnixMilli()
	find := &store.FindEvent{
		NeedsReview: &needsReview,
		RowStatus:   &normal,
		// Candidates started before now; the loop below keeps only those
		// whose window has also ended.
		EndMs: &cutoff,
		Limit: &r.batchSize,
	}

	stale, err := r.store.ListEvents(ctx, find)
	if err != nil {
		slog.Error("review sweep failed to list events", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	archived := 0
	for _, e := range stale {
		if e.EndMs == nil || *e.EndMs > cutoff {
			continue
		}
		status := store.Archived
		if err := r.store.UpdateEvent(ctx, &store.UpdateEvent{ID: e.ID, RowStatus: &status}); err != nil {
			slog.Error("review sweep failed to archive event", "id", e.ID, "error", err)
			continue
		}
		archived++
	}
	if archived > 0 {
		slog.Info("review sweep archived expired events", "count", archived)
	}
}
