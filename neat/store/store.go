// Package store persists generation snapshots and per-generation statistics of
// evolutionary runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/baldhumanity/neatevo/neat"
)

// ErrNotInitialized is returned by every operation of a store whose Init was not called.
var ErrNotInitialized = errors.New("store is not initialized")

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID         string
	RunID      string
	Generation int
	CreatedAt  time.Time
}

// Store defines persistence operations for evolutionary runs. A run is identified by a
// caller chosen ID and owns any number of snapshots.
type Store interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, runID string, snap *neat.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*neat.Snapshot, bool, error)
	// LatestSnapshot returns the snapshot of the run with the highest generation.
	LatestSnapshot(ctx context.Context, runID string) (*neat.Snapshot, bool, error)
	// ListSnapshots returns the run's snapshots ordered by generation.
	ListSnapshots(ctx context.Context, runID string) ([]SnapshotInfo, error)
	AppendStats(ctx context.Context, runID string, stats neat.GenerationStats) error
	// GetStats returns the run's statistics ordered by generation.
	GetStats(ctx context.Context, runID string) ([]neat.GenerationStats, bool, error)
}
