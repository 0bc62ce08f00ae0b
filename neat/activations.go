package neat

import (
	"fmt"
	"math"
)

// ActivationFunc maps a node's weighted input sum to its output.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps names to activation functions so configuration can select one.
var ActivationFunctions = map[string]ActivationFunc{
	"squash":   Squash,
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"sine":     Sine,
	"absolute": Absolute,
	"abs":      Absolute, // Alias for absolute
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Squash is the default activation: a logistic curve of slope 4.9 rescaled to (-1, 1).
func Squash(x float64) float64 {
	return 2/(1+math.Exp(-4.9*x)) - 1
}

// Sigmoid is the logistic curve of slope 4.9 in (0, 1).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

func Tanh(x float64) float64 { return math.Tanh(x) }

func ReLU(x float64) float64 { return math.Max(0, x) }

func Identity(x float64) float64 { return x }

// Clamped clamps the input to [-1, 1].
func Clamped(x float64) float64 { return clamp(x, -1.0, 1.0) }

func Gaussian(x float64) float64 { return math.Exp(-x * x / 2.0) }

func Sine(x float64) float64 { return math.Sin(x) }

func Absolute(x float64) float64 { return math.Abs(x) }
