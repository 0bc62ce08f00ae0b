package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Species represents a group of genetically similar individuals.
//
// The representative is sampled from the members at the start of a generation's
// classification and stays fixed until the next one.
type Species struct {
	ID             int
	members        []Individual
	representative Individual
	MaxFitness     float64 // best staleness measure seen so far
	Fitness        float64 // species fitness after the fitness measure and any deadbeat shift
	Staleness      int     // generations since MaxFitness last improved
	Capacity       int     // offspring allotted for the next generation
}

// newSpecies creates a species whose sole member and representative is founder.
func newSpecies(id int, founder Individual) *Species {
	return &Species{
		ID:             id,
		members:        []Individual{founder},
		representative: founder,
		MaxFitness:     math.Inf(-1),
	}
}

// Members returns the current members. After ranking they are ordered by descending fitness.
func (s *Species) Members() []Individual {
	out := make([]Individual, len(s.members))
	copy(out, s.members)
	return out
}

// Size returns the number of members.
func (s *Species) Size() int { return len(s.members) }

// Representative returns the individual new arrivals are compared against.
func (s *Species) Representative() Individual { return s.representative }

// Fitnesses returns the fitness values of all members.
func (s *Species) Fitnesses() []float64 {
	fitnesses := make([]float64, len(s.members))
	for i, m := range s.members {
		fitnesses[i] = m.Fitness()
	}
	return fitnesses
}

func (s *Species) add(ind Individual) {
	s.members = append(s.members, ind)
}

func (s *Species) updateRepresentative(rng *rand.Rand) {
	if len(s.members) > 0 {
		s.representative = s.members[rng.Intn(len(s.members))]
	}
}

// rank sorts members by descending fitness. Ties keep their arrival order.
func (s *Species) rank() {
	sort.SliceStable(s.members, func(i, j int) bool {
		return s.members[i].Fitness() > s.members[j].Fitness()
	})
}

// age resets staleness when measure beats the rolling maximum, else increments it.
// A species whose indicator has no value simply grows staler.
func (s *Species) age(measure float64, ok bool) {
	if ok && measure > s.MaxFitness {
		s.MaxFitness = measure
		s.Staleness = 0
		return
	}
	s.Staleness++
}

// adjustFitness computes the species fitness with measure and, when sharing is on,
// divides every member's fitness by the species size.
func (s *Species) adjustFitness(measure FitnessMeasure, sharing bool) {
	s.Fitness = measure(s)
	if !sharing {
		return
	}
	sharers := float64(len(s.members))
	for _, m := range s.members {
		m.DivideFitness(sharers)
	}
}

func (s *Species) revive() { s.Staleness = 0 }

// eliminate drops the worst rate fraction of the members, keeping at least one.
// Members must already be ranked.
func (s *Species) eliminate(rate float64) {
	keep := len(s.members) - int(rate*float64(len(s.members)))
	keep = max(keep, 1)
	if keep < len(s.members) {
		clear(s.members[keep:])
		s.members = s.members[:keep]
	}
}

func (s *Species) perish() {
	s.members = nil
}

func (s *Species) perished() bool { return len(s.members) == 0 }

// roster returns the ranked breeding pool with each member's current fitness.
func (s *Species) roster() []Ranked {
	out := make([]Ranked, len(s.members))
	for i, m := range s.members {
		out[i] = Ranked{Individual: m, Fitness: m.Fitness()}
	}
	return out
}
