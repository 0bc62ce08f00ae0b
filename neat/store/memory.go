package store

import (
	"context"
	"sort"
	"sync"

	"github.com/baldhumanity/neatevo/neat"
)

// MemoryStore keeps encoded records in maps, so loaded snapshots never alias saved ones.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	snapshots   map[string]memorySnapshot
	stats       map[string]map[int][]byte // run -> generation -> payload
}

type memorySnapshot struct {
	info    SnapshotInfo
	payload []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.snapshots = make(map[string]memorySnapshot)
	s.stats = make(map[string]map[int][]byte)
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, runID string, snap *neat.Snapshot) error {
	payload, err := EncodeSnapshot(runID, snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.snapshots[snap.ID] = memorySnapshot{
		info:    SnapshotInfo{ID: snap.ID, RunID: runID, Generation: snap.Generation, CreatedAt: snap.CreatedAt},
		payload: payload,
	}
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (*neat.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	entry, ok := s.snapshots[id]
	if !ok {
		return nil, false, nil
	}
	_, snap, err := DecodeSnapshot(entry.payload)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (s *MemoryStore) LatestSnapshot(ctx context.Context, runID string) (*neat.Snapshot, bool, error) {
	infos, err := s.ListSnapshots(ctx, runID)
	if err != nil || len(infos) == 0 {
		return nil, false, err
	}
	return s.GetSnapshot(ctx, infos[len(infos)-1].ID)
}

func (s *MemoryStore) ListSnapshots(_ context.Context, runID string) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	var out []SnapshotInfo
	for _, entry := range s.snapshots {
		if entry.info.RunID == runID {
			out = append(out, entry.info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Generation != out[j].Generation {
			return out[i].Generation < out[j].Generation
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) AppendStats(_ context.Context, runID string, stats neat.GenerationStats) error {
	payload, err := EncodeStats(runID, stats)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run, ok := s.stats[runID]
	if !ok {
		run = make(map[int][]byte)
		s.stats[runID] = run
	}
	run[stats.Generation] = payload
	return nil
}

func (s *MemoryStore) GetStats(_ context.Context, runID string) ([]neat.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	run, ok := s.stats[runID]
	if !ok {
		return nil, false, nil
	}
	generations := make([]int, 0, len(run))
	for g := range run {
		generations = append(generations, g)
	}
	sort.Ints(generations)

	out := make([]neat.GenerationStats, 0, len(generations))
	for _, g := range generations {
		stats, err := DecodeStats(run[g])
		if err != nil {
			return nil, false, err
		}
		out = append(out, stats)
	}
	return out, true, nil
}
