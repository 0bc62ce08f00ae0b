package store

import (
	"context"
	"log/slog"

	"github.com/baldhumanity/neatevo/neat"
)

// StatsReporter is a neat.Reporter that appends every generation's statistics to a store.
// Write failures are logged, they never stop evolution.
type StatsReporter struct {
	ctx    context.Context
	store  Store
	runID  string
	logger *slog.Logger
}

// NewStatsReporter records into store under runID. A nil logger uses slog.Default.
func NewStatsReporter(ctx context.Context, store Store, runID string, logger *slog.Logger) *StatsReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsReporter{ctx: ctx, store: store, runID: runID, logger: logger.With("component", "store")}
}

func (r *StatsReporter) GenerationCompleted(stats neat.GenerationStats) {
	if err := r.store.AppendStats(r.ctx, r.runID, stats); err != nil {
		r.logger.Error("failed to record generation stats", "run", r.runID, "generation", stats.Generation, "err", err)
	}
}

func (r *StatsReporter) Extinction(generation int) {
	r.logger.Debug("extinction observed", "run", r.runID, "generation", generation)
}
