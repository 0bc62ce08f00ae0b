package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatistics(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.Equal(t, 10.0, Sum(values))
	assert.Equal(t, 2.5, Mean(values))
	assert.InDelta(t, 1.2910, Stdev(values), 1e-4)
	assert.Equal(t, 4.0, MaxFloat(values))
	assert.Equal(t, 1.0, MinFloat(values))
	assert.Equal(t, 2.5, Median(values))
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "median leaves its input alone")
	assert.Equal(t, 3.0, Median([]float64{3, 9, 1}))

	assert.Zero(t, Mean(nil))
	assert.Zero(t, Stdev([]float64{7}))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsInf(MaxFloat(nil), -1))
}

func TestActivations(t *testing.T) {
	assert.Zero(t, Squash(0))
	assert.InDelta(t, 0.8412, Squash(0.5), 1e-3)
	assert.InDelta(t, -Squash(0.7), Squash(-0.7), 1e-12)
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.Equal(t, 1.0, Clamped(3))

	fn, err := GetActivation("abs")
	assert.NoError(t, err)
	assert.Equal(t, 2.0, fn(-2))
	_, err = GetActivation("swish")
	assert.Error(t, err)
}
