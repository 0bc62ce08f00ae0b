package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neatevo/neat"
)

func parityShape() neat.NetworkShape {
	return neat.NetworkShape{Inputs: 3, Outputs: 1, Biases: 1, WeightRange: 2, WeightStep: 0.01}
}

func genome(shape neat.NetworkShape, genes ...neat.Gene) *neat.Genome {
	g := neat.NewGenome(shape)
	for i, gene := range genes {
		gene.Enabled = true
		gene.Marker = uint64(i)
		g.AddGene(gene)
	}
	return g
}

func TestEvaluateDirectLinks(t *testing.T) {
	g := genome(parityShape(),
		neat.Gene{From: 0, To: 3, Weight: 1},
		neat.Gene{From: 1, To: 3, Weight: 1},
		neat.Gene{From: 2, To: 3, Weight: 1},
		neat.Gene{From: 4, To: 3, Weight: 1},
	)
	net, err := Express(g)
	require.NoError(t, err)

	out, err := net.Evaluate([]float64{1, -2, 0.5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.8412, out[0], 1e-3)
	assert.InDelta(t, neat.Squash(0.5), out[0], 1e-12)

	again, err := net.Evaluate([]float64{1, -2, 0.5})
	require.NoError(t, err)
	assert.Equal(t, out, again, "feed-forward networks keep no state")
}

func TestEvaluateHiddenChain(t *testing.T) {
	g := genome(parityShape(),
		neat.Gene{From: 0, To: 5, Weight: 0.5},
		neat.Gene{From: 5, To: 6, Weight: -1},
		neat.Gene{From: 6, To: 3, Weight: 2},
		neat.Gene{From: 4, To: 6, Weight: 0.25},
	)
	net, err := Express(g)
	require.NoError(t, err)
	assert.Equal(t, 7, net.Nodes())

	out, err := net.Evaluate([]float64{1, 0, 0})
	require.NoError(t, err)
	h5 := neat.Squash(0.5)
	h6 := neat.Squash(-h5 + 0.25*BiasValue)
	assert.InDelta(t, neat.Squash(2*h6), out[0], 1e-12)
}

func TestEvaluateIgnoresDisabledGenes(t *testing.T) {
	g := genome(parityShape(), neat.Gene{From: 0, To: 3, Weight: 3})
	g.AddGene(neat.Gene{From: 1, To: 3, Weight: 100, Marker: 9})
	net, err := Express(g, WithActivation(neat.Identity))
	require.NoError(t, err)

	out, err := net.Evaluate([]float64{2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, out)
}

func TestEvaluateInputCount(t *testing.T) {
	net, err := Express(neat.NewGenome(parityShape()))
	require.NoError(t, err)

	_, err = net.Evaluate([]float64{1, 2})
	assert.ErrorIs(t, err, ErrInputCount)
	_, err = net.Evaluate([]float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrInputCount)

	out, err := net.Evaluate([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out, "an unconnected output computes squash(0)")
}

func TestEvaluateDetectsCycle(t *testing.T) {
	g := genome(parityShape(),
		neat.Gene{From: 0, To: 5, Weight: 1},
		neat.Gene{From: 5, To: 6, Weight: 1},
		neat.Gene{From: 6, To: 5, Weight: 1},
		neat.Gene{From: 6, To: 3, Weight: 1},
	)
	net, err := Express(g)
	require.NoError(t, err)

	_, err = net.Evaluate([]float64{1, 1, 1})
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestRecurrentUsesPreviousValues(t *testing.T) {
	shape := neat.NetworkShape{Inputs: 1, Outputs: 1, Recurrent: true, WeightRange: 2}
	g := genome(shape,
		neat.Gene{From: 0, To: 2, Weight: 1},
		neat.Gene{From: 2, To: 3, Weight: 1},
		neat.Gene{From: 3, To: 2, Weight: 1},
		neat.Gene{From: 3, To: 1, Weight: 1},
	)
	net, err := Express(g)
	require.NoError(t, err)
	assert.True(t, net.Recurrent())

	first, err := net.Evaluate([]float64{1})
	require.NoError(t, err)
	h2 := neat.Squash(1)
	h3 := neat.Squash(h2)
	assert.InDelta(t, neat.Squash(h3), first[0], 1e-12)

	second, err := net.Evaluate([]float64{1})
	require.NoError(t, err)
	h2 = neat.Squash(1 + h3)
	h3 = neat.Squash(h2)
	assert.InDelta(t, neat.Squash(h3), second[0], 1e-12)

	net.Reset()
	third, err := net.Evaluate([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, first[0], third[0], 1e-12)
}

func TestExpressRejectsBadGenomes(t *testing.T) {
	_, err := Express(nil)
	assert.Error(t, err)

	g := genome(parityShape(), neat.Gene{From: 3, To: 0, Weight: 1})
	_, err = Express(g)
	assert.Error(t, err)

	g = genome(parityShape(), neat.Gene{From: 0, To: 4, Weight: 1})
	_, err = Express(g)
	assert.Error(t, err)
}

func TestNodeKinds(t *testing.T) {
	g := genome(parityShape(), neat.Gene{From: 0, To: 5, Weight: 1}, neat.Gene{From: 5, To: 3, Weight: 1})
	net, err := Express(g)
	require.NoError(t, err)

	want := []NodeKind{Input, Input, Input, Output, Bias, Hidden}
	for i, kind := range want {
		assert.Equal(t, kind, net.Kind(i), "node %d", i)
	}
	assert.Equal(t, "bias", Bias.String())
	assert.Equal(t, "hidden", Hidden.String())
}
