package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairs(g *Genome) map[ConnectionKey]bool {
	out := make(map[ConnectionKey]bool)
	for _, gene := range g.Genes() {
		out[gene.Key()] = true
	}
	return out
}

func TestCrossGenomesFitterParentExclusives(t *testing.T) {
	a := genomeWith(parityShape(), link(0, 3, 1, 0), link(1, 3, 1, 1))
	b := genomeWith(parityShape(), link(0, 3, 2, 0), link(2, 3, 1, 2))

	for seed := int64(0); seed < 20; seed++ {
		child := CrossGenomes(a, b, 2, 1, rand.New(rand.NewSource(seed)))
		assert.Equal(t, pairs(a), pairs(child))
		shared, _ := child.Connection(0, 3)
		assert.Contains(t, []float64{1, 2}, shared.Weight)

		child = CrossGenomes(a, b, 1, 2, rand.New(rand.NewSource(seed)))
		assert.Equal(t, pairs(b), pairs(child))
	}
}

func TestCrossGenomesTieTakesOneParentsExclusives(t *testing.T) {
	a := genomeWith(parityShape(), link(0, 3, 1, 0), link(1, 3, 1, 1))
	b := genomeWith(parityShape(), link(0, 3, 1, 0), link(2, 3, 1, 2))

	sawA, sawB := false, false
	for seed := int64(0); seed < 50; seed++ {
		child := CrossGenomes(a, b, 1, 1, rand.New(rand.NewSource(seed)))
		switch got := pairs(child); {
		case assert.ObjectsAreEqual(pairs(a), got):
			sawA = true
		case assert.ObjectsAreEqual(pairs(b), got):
			sawB = true
		default:
			t.Fatalf("child mixes exclusive genes: %s", child)
		}
	}
	assert.True(t, sawA && sawB)
}

func TestCrossGenomesRecurrentTieMixesExclusives(t *testing.T) {
	shape := parityShape()
	shape.Recurrent = true
	a := genomeWith(shape, link(0, 3, 1, 0), link(1, 3, 1, 1), link(2, 3, 1, 2))
	b := genomeWith(shape, link(0, 3, 1, 0), link(4, 3, 1, 3))
	fromA := []ConnectionKey{{1, 3}, {2, 3}}
	fromB := []ConnectionKey{{4, 3}}

	mixed := false
	sizes := make(map[int]bool)
	for seed := int64(0); seed < 200; seed++ {
		child := CrossGenomes(a, b, 1, 1, rand.New(rand.NewSource(seed)))
		got := pairs(child)
		require.True(t, got[ConnectionKey{0, 3}], "shared gene missing from %s", child)

		hasA, hasB := false, false
		for _, k := range fromA {
			hasA = hasA || got[k]
		}
		for _, k := range fromB {
			hasB = hasB || got[k]
		}
		mixed = mixed || (hasA && hasB)
		sizes[child.NumGenes()] = true
	}
	assert.True(t, mixed, "no child combined exclusive genes of both parents")
	assert.True(t, sizes[1], "some child should drop every exclusive gene")
	assert.True(t, sizes[4], "some child should keep every exclusive gene")
}

func TestCrossGenomesSharedGeneWinsPairConflict(t *testing.T) {
	a := genomeWith(parityShape(), link(1, 3, 1, 1))
	b := genomeWith(parityShape(), link(2, 3, 2, 1), link(1, 3, 9, 4))

	for seed := int64(0); seed < 20; seed++ {
		child := CrossGenomes(a, b, 1, 2, rand.New(rand.NewSource(seed)))
		gene, ok := child.Connection(1, 3)
		require.True(t, ok)
		if child.HasConnection(2, 3) {
			assert.Equal(t, 9.0, gene.Weight)
		} else {
			assert.Equal(t, 1.0, gene.Weight, "the shared gene came first")
			assert.Equal(t, uint64(1), gene.Marker)
		}
	}
}

func TestCrossGenomesPrunesDanglingHidden(t *testing.T) {
	genes := []Gene{
		link(0, 3, 1, 0),
		link(0, 5, 1, 1), // 5 leads nowhere
		link(1, 6, 1, 2),
		link(6, 3, 1, 3), // 6 is on a path
		link(7, 3, 1, 4), // 7 is never fed
	}
	a := genomeWith(parityShape(), genes...)
	b := a.Copy()

	child := CrossGenomes(a, b, 1, 1, testRand())
	assert.Equal(t, map[ConnectionKey]bool{
		{From: 0, To: 3}: true,
		{From: 1, To: 6}: true,
		{From: 6, To: 3}: true,
	}, pairs(child))
	assert.Equal(t, 7, child.Neurons())
}

func TestCrossGenomesBounds(t *testing.T) {
	shape := parityShape()
	shape.FullyConnected = true
	tracker := NewInnovationTracker()
	builder := NewIndividualBuilder().
		WithInnovationTracker(tracker).
		WithNetworkShape(shape).
		WithMutationRates(DefaultMutationRates())
	rng := testRand()

	for n := 0; n < 20; n++ {
		a, err := builder.Build(rng)
		require.NoError(t, err)
		b, err := builder.Build(rng)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			a.MutateComprehensively(rng)
			b.MutateComprehensively(rng)
		}

		child := CrossGenomes(a.Genome(), b.Genome(), rng.Float64(), rng.Float64(), rng)
		assert.LessOrEqual(t, child.NumGenes(), a.Genome().NumGenes()+b.Genome().NumGenes())
		largest := shape.FixedNodes() - 1
		for _, gene := range child.Genes() {
			largest = max(largest, gene.From, gene.To)
		}
		assert.Equal(t, largest+1, child.Neurons())
		assert.True(t, acyclic(child))
	}
}
