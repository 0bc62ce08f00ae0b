package neat

import (
	"sort"
	"sync"
)

// InnovationTracker hands out historical markers for structural mutations.
//
// Within one generation the same (from, to) edge always receives the same marker, no
// matter which individual creates it. Reset starts a new generation: the mapping is
// cleared but the counter keeps growing, so a rediscovered edge gets a larger marker.
//
// The tracker is shared by every individual of a population and is safe for concurrent use.
type InnovationTracker struct {
	mu      sync.Mutex
	next    uint64
	markers map[ConnectionKey]uint64
}

// NewInnovationTracker creates a tracker whose first marker is 0.
func NewInnovationTracker() *InnovationTracker {
	return &InnovationTracker{markers: make(map[ConnectionKey]uint64)}
}

// GetMarker returns the marker for the edge from -> to, assigning a fresh one
// if the edge has not been requested since the last Reset.
func (t *InnovationTracker) GetMarker(from, to int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := ConnectionKey{From: from, To: to}
	if marker, ok := t.markers[key]; ok {
		return marker
	}
	marker := t.next
	t.next++
	t.markers[key] = marker
	return marker
}

// Reset clears the per-generation mapping. Call it once after all mutation for a
// generation has completed.
func (t *InnovationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers = make(map[ConnectionKey]uint64)
}

// Next returns the marker that the next new innovation will receive.
func (t *InnovationTracker) Next() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next
}

// TrackerState is the persisted form of an InnovationTracker.
type TrackerState struct {
	Next    uint64         `json:"next"`
	Markers []MarkerRecord `json:"markers"`
}

// MarkerRecord is one entry of the per-generation mapping.
type MarkerRecord struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Marker uint64 `json:"marker"`
}

// State captures the tracker's counter and current mapping. Records are sorted by
// marker so that identical trackers produce identical state.
func (t *InnovationTracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := TrackerState{Next: t.next, Markers: make([]MarkerRecord, 0, len(t.markers))}
	for key, marker := range t.markers {
		state.Markers = append(state.Markers, MarkerRecord{From: key.From, To: key.To, Marker: marker})
	}
	sort.Slice(state.Markers, func(i, j int) bool {
		return state.Markers[i].Marker < state.Markers[j].Marker
	})
	return state
}

// Restore replaces the tracker's counter and mapping with the given state.
func (t *InnovationTracker) Restore(state TrackerState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next = state.Next
	t.markers = make(map[ConnectionKey]uint64, len(state.Markers))
	for _, rec := range state.Markers {
		t.markers[ConnectionKey{From: rec.From, To: rec.To}] = rec.Marker
		if rec.Marker >= t.next {
			t.next = rec.Marker + 1
		}
	}
}
