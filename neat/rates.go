package neat

import (
	"fmt"
	"math/rand"
)

// Meta-mutation scales every rate by one of these factors.
const (
	rateShrink = 0.95
	rateGrow   = 1 / 0.95
)

// MutationRates holds one expected application count per mutation operator.
//
// A rate of 2.3 applies the operator twice and then a third time with probability 0.3.
// Rates belong to an individual and may self-adapt through MetaMutation.
type MutationRates struct {
	MetaMutation float64 `ini:"meta_mutation" yaml:"meta_mutation" json:"meta_mutation"` // probability that the rates themselves mutate
	Cloning      float64 `ini:"cloning" yaml:"cloning" json:"cloning"`                   // comprehensive rounds applied to a clone
	Crossover    float64 `ini:"crossover" yaml:"crossover" json:"crossover"`             // comprehensive rounds applied to a crossed child
	Weight       float64 `ini:"weight" yaml:"weight" json:"weight"`
	RandomWeight float64 `ini:"random_weight" yaml:"random_weight" json:"random_weight"`
	Link         float64 `ini:"link" yaml:"link" json:"link"`
	BiasLink     float64 `ini:"bias_link" yaml:"bias_link" json:"bias_link"`
	Sensor       float64 `ini:"sensor" yaml:"sensor" json:"sensor"`
	Neuron       float64 `ini:"neuron" yaml:"neuron" json:"neuron"`
	Enable       float64 `ini:"enable" yaml:"enable" json:"enable"`
	Disable      float64 `ini:"disable" yaml:"disable" json:"disable"`
	Destroy      float64 `ini:"destroy" yaml:"destroy" json:"destroy"`
}

// DefaultMutationRates returns the rates that solve the 3-bit parity problem reliably.
func DefaultMutationRates() MutationRates {
	return MutationRates{
		MetaMutation: 1,
		Cloning:      1,
		Crossover:    0.1,
		Weight:       0.225,
		RandomWeight: 0.025,
		Link:         2,
		BiasLink:     0.4,
		Sensor:       0.4,
		Neuron:       0.5,
		Enable:       0.4,
		Disable:      0.2,
		Destroy:      0.01,
	}
}

// Validate rejects negative rates.
func (r MutationRates) Validate() error {
	for name, v := range r.named() {
		if v < 0 {
			return fmt.Errorf("%w: mutation rate %s cannot be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}

func (r MutationRates) named() map[string]float64 {
	return map[string]float64{
		"meta_mutation": r.MetaMutation,
		"cloning":       r.Cloning,
		"crossover":     r.Crossover,
		"weight":        r.Weight,
		"random_weight": r.RandomWeight,
		"link":          r.Link,
		"bias_link":     r.BiasLink,
		"sensor":        r.Sensor,
		"neuron":        r.Neuron,
		"enable":        r.Enable,
		"disable":       r.Disable,
		"destroy":       r.Destroy,
	}
}

// Mutated returns a copy of the rates where each operator rate was independently
// multiplied by 0.95 or 1/0.95. MetaMutation itself is left unchanged.
func (r MutationRates) Mutated(rng *rand.Rand) MutationRates {
	scale := func(v float64) float64 {
		if rng.Intn(2) == 0 {
			return v * rateGrow
		}
		return v * rateShrink
	}
	r.Cloning = scale(r.Cloning)
	r.Crossover = scale(r.Crossover)
	r.Weight = scale(r.Weight)
	r.RandomWeight = scale(r.RandomWeight)
	r.Link = scale(r.Link)
	r.BiasLink = scale(r.BiasLink)
	r.Sensor = scale(r.Sensor)
	r.Neuron = scale(r.Neuron)
	r.Enable = scale(r.Enable)
	r.Disable = scale(r.Disable)
	r.Destroy = scale(r.Destroy)
	return r
}

// applyRepeatedly invokes op for each whole unit of expected, then once more with
// probability equal to the fractional remainder.
func applyRepeatedly(expected float64, rng *rand.Rand, op func()) {
	for chance := expected; chance > 0; chance-- {
		if chance >= 1 || rng.Float64() < chance {
			op()
		}
	}
}
