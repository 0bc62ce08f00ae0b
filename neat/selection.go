package neat

import (
	"errors"
	"math/rand"
)

// ErrEmptyRoster is returned by selectors asked to pick from no candidates.
var ErrEmptyRoster = errors.New("empty roster")

// Ranked pairs an individual with the fitness it was ranked by.
type Ranked struct {
	Individual Individual
	Fitness    float64
}

// Selector produces finished offspring from a species' fitness-ranked roster.
//
// Select is called once per child. Reset is called after each species, because every
// species is bred as its own sub-population.
type Selector interface {
	Select(roster []Ranked, rng *rand.Rand) (Individual, error)
	Reset()
}

// CrossoverSelector first hands out unchanged copies of the top elites of the roster, then
// picks two parents uniformly and either crosses them (with crossoverProbability, when the
// roster has more than one member) or clones one of them.
// Crossed children get their crossover mutation rounds, clones their cloning rounds.
type CrossoverSelector struct {
	crossoverProbability float64
	elites               int
	served               int
}

// NewCrossoverSelector creates a CrossoverSelector.
func NewCrossoverSelector(crossoverProbability float64, elites int) *CrossoverSelector {
	return &CrossoverSelector{crossoverProbability: crossoverProbability, elites: elites}
}

func (c *CrossoverSelector) Select(roster []Ranked, rng *rand.Rand) (Individual, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	if c.served < c.elites && c.served < len(roster) {
		elite := roster[c.served].Individual.Clone()
		c.served++
		return elite, nil
	}

	first := roster[rng.Intn(len(roster))].Individual
	second := roster[rng.Intn(len(roster))].Individual
	if len(roster) > 1 && rng.Float64() < c.crossoverProbability {
		child, err := first.Crossover(second, rng)
		if err != nil {
			return nil, err
		}
		child.MutateCrossover(rng)
		return child, nil
	}

	parent := first
	if rng.Intn(2) == 0 {
		parent = second
	}
	child := parent.Clone()
	child.MutateCloning(rng)
	return child, nil
}

func (c *CrossoverSelector) Reset() { c.served = 0 }
