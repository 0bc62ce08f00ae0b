package neat

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evolvedPopulation(t *testing.T, generations int) (*Population, *PopulationBuilder) {
	t.Helper()
	b, _ := testPopulationBuilder(t, 30)
	pop, err := b.Build()
	require.NoError(t, err)
	for i := 0; i < generations; i++ {
		_, err := pop.RunGeneration(context.Background(), genesFitness)
		require.NoError(t, err)
	}
	return pop, b
}

// restoreBuilder wires a fresh tracker, the only shared state a snapshot replaces.
func restoreBuilder(t *testing.T) (*PopulationBuilder, *InnovationTracker) {
	t.Helper()
	b, tracker := testPopulationBuilder(t, 1)
	return b, tracker
}

func assertSamePopulation(t *testing.T, want, got *Population) {
	t.Helper()
	assert.Equal(t, want.Generation(), got.Generation())
	assert.Equal(t, want.Size(), got.Size())
	assert.Equal(t, want.Params(), got.Params())
	assert.Equal(t, want.tracker.State(), got.tracker.State())
	assert.Equal(t, want.nextSpeciesID, got.nextSpeciesID)

	require.Len(t, got.Species(), len(want.Species()))
	for i, ws := range want.Species() {
		gs := got.Species()[i]
		assert.Equal(t, ws.ID, gs.ID)
		assert.Equal(t, ws.Staleness, gs.Staleness)
		assert.Equal(t, ws.MaxFitness, gs.MaxFitness)
		require.Equal(t, ws.Size(), gs.Size())
		for j, m := range ws.Members() {
			wn, _ := AsNeural(m)
			gn, err := AsNeural(gs.Members()[j])
			require.NoError(t, err)
			assert.Equal(t, wn.Record(), gn.Record())
		}
		wr, _ := AsNeural(ws.Representative())
		gr, _ := AsNeural(gs.Representative())
		assert.Equal(t, wr.Record(), gr.Record())
	}
	assert.Equal(t, want.Best().Fitness, got.Best().Fitness)
}

func TestSnapshotRestore(t *testing.T) {
	pop, _ := evolvedPopulation(t, 3)
	snap, err := pop.Snapshot()
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 3, snap.Generation)
	require.NotNil(t, snap.Best)

	b, tracker := restoreBuilder(t)
	restored, err := b.Restore(snap)
	require.NoError(t, err)
	assertSamePopulation(t, pop, restored)
	assert.Equal(t, pop.tracker.Next(), tracker.Next())

	_, err = restored.RunGeneration(context.Background(), genesFitness)
	require.NoError(t, err)
	assert.Equal(t, 4, restored.Generation())
}

func TestSnapshotBeforeFirstGeneration(t *testing.T) {
	b, _ := testPopulationBuilder(t, 10)
	pop, err := b.Build()
	require.NoError(t, err)

	snap, err := pop.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, snap.Best)
	for _, s := range snap.Species {
		assert.Nil(t, s.MaxFitness, "unmeasured species have no maximum")
	}
	_, err = json.Marshal(snap)
	require.NoError(t, err, "-Inf must never reach the encoder")

	rb, _ := restoreBuilder(t)
	restored, err := rb.Restore(snap)
	require.NoError(t, err)
	for _, s := range restored.Species() {
		assert.True(t, math.IsInf(s.MaxFitness, -1))
	}
}

func TestSnapshotRejectsForeignIndividuals(t *testing.T) {
	b, _ := testPopulationBuilder(t, 4)
	pop, err := b.WithGenerator(func(*rand.Rand) Individual { return &fakeIndividual{} }).Build()
	require.NoError(t, err)

	_, err = pop.Snapshot()
	assert.ErrorIs(t, err, ErrNotNeural)
}

func TestRestoreRequiresSnapshot(t *testing.T) {
	b, _ := restoreBuilder(t)
	_, err := b.Restore(nil)
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestRestoreLeavesBuilderUnchanged(t *testing.T) {
	pop, _ := evolvedPopulation(t, 1)
	snap, err := pop.Snapshot()
	require.NoError(t, err)
	snap.Speciation.DesiredSpecies = 3

	b, _ := restoreBuilder(t)
	restored, err := b.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, 30, restored.Size())
	assert.Equal(t, 3, restored.Params().DesiredSpecies)

	assert.Equal(t, 1, b.size)
	assert.Equal(t, DefaultSpeciationParams().DesiredSpecies, b.params.DesiredSpecies)
	fresh, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Size())
}

func TestRestoreRejectsInvalidGenes(t *testing.T) {
	pop, _ := evolvedPopulation(t, 1)
	snap, err := pop.Snapshot()
	require.NoError(t, err)
	member := &snap.Species[0].Members[0]
	member.Genome.Genes = append(member.Genome.Genes, GeneRecord{From: -1, To: 3, Weight: 1, Enabled: true, Marker: 99})

	b, tracker := restoreBuilder(t)
	before := tracker.State()
	_, err = b.Restore(snap)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Equal(t, before, tracker.State(), "a failed restore keeps the tracker")
	assert.Equal(t, 1, b.size)
}

func TestCheckpointRoundTrip(t *testing.T) {
	pop, _ := evolvedPopulation(t, 2)
	path := filepath.Join(t.TempDir(), "pop.gz")
	require.NoError(t, pop.SaveCheckpoint(path))

	snap, err := ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Generation)

	b, _ := restoreBuilder(t)
	restored, err := LoadCheckpoint(path, b)
	require.NoError(t, err)
	assertSamePopulation(t, pop, restored)
}

func TestReadCheckpointErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadCheckpoint(filepath.Join(dir, "missing.gz"))
	assert.Error(t, err)

	plain := writeConfig(t, "plain.gz", "not gzip")
	_, err = ReadCheckpoint(plain)
	assert.Error(t, err)
}

func TestGenomeRecordRoundTrip(t *testing.T) {
	g := genomeWith(parityShape(), link(0, 5, 1, 0), link(5, 3, -0.5, 1).WithEnabled(false))
	rec := g.Record()
	assert.Equal(t, 6, rec.Neurons)

	back, err := GenomeFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, g.Genes(), back.Genes())
	assert.Equal(t, g.Neurons(), back.Neurons())
	assert.True(t, back.HasConnection(5, 3))
}

func TestGenomeFromRecordRejectsInvalidEndpoints(t *testing.T) {
	shape := parityShape()
	shape.Recurrent = true
	tests := []struct {
		name string
		gene GeneRecord
		ok   bool
	}{
		{"negative source", GeneRecord{From: -2, To: 3}, false},
		{"negative target", GeneRecord{From: 0, To: -1}, false},
		{"into input", GeneRecord{From: 3, To: 1}, false},
		{"into bias", GeneRecord{From: 0, To: 4}, false},
		{"from output", GeneRecord{From: 3, To: 5}, true},
		{"hidden beyond neuron count", GeneRecord{From: 0, To: 9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := GenomeFromRecord(GenomeRecord{Shape: shape, Genes: []GeneRecord{tt.gene}})
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidRecord)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, max(shape.FixedNodes(), tt.gene.To+1), g.Neurons())
		})
	}
}
