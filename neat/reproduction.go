package neat

import (
	"fmt"
	"math/rand"
	"slices"
)

// Repopulate breeds the next generation from the ranked species.
//
// Every species gets a capacity proportional to its fitness. Species left without capacity
// die out, the others lose their worst EliminationRate fraction and then ask the selector
// for exactly Capacity children. When no species is left the whole population is
// regenerated from the generator. The innovation tracker is reset afterwards, which closes
// the generation's mutation phase.
//
// Members must be ranked, which UpdateFitnesses does.
func (p *Population) Repopulate() ([]Individual, error) {
	defer p.tracker.Reset()

	if len(p.species) == 0 {
		return p.regenerate(), nil
	}

	allocateCapacities(p.species, p.size, p.rng)
	for _, s := range p.species {
		if s.Capacity == 0 {
			p.logger.Debug("species died out", "species", s.ID, "fitness", s.Fitness)
			s.perish()
		} else {
			s.eliminate(p.params.EliminationRate)
		}
	}
	p.species = slices.DeleteFunc(p.species, (*Species).perished)
	if len(p.species) == 0 {
		return p.regenerate(), nil
	}

	children := make([]Individual, 0, p.size)
	for _, s := range p.species {
		roster := s.roster()
		for i := 0; i < s.Capacity; i++ {
			child, err := p.selector.Select(roster, p.rng)
			if err != nil {
				return nil, fmt.Errorf("selecting offspring of species %d: %w", s.ID, err)
			}
			children = append(children, child)
		}
		p.selector.Reset()
	}
	return children, nil
}

// regenerate discards every species and draws a fresh population from the generator.
func (p *Population) regenerate() []Individual {
	p.logger.Warn("all species extinct, regenerating population", "generation", p.generation, "size", p.size)
	p.extinct = true
	if p.reporter != nil {
		p.reporter.Extinction(p.generation)
	}
	p.species = nil
	return p.generate()
}

func (p *Population) generate() []Individual {
	out := make([]Individual, p.size)
	for i := range out {
		out[i] = p.generator(p.rng)
	}
	return out
}

// allocateCapacities sets each species' capacity to its floored share of size by fitness.
// The slots lost to flooring go out in a lottery: half of what remains (rounded up) goes to
// a uniformly random species until nothing remains, so capacities always sum to size.
// When the total fitness is not positive every species gets an equal share.
func allocateCapacities(species []*Species, size int, rng *rand.Rand) {
	if len(species) == 0 {
		return
	}
	total := 0.0
	for _, s := range species {
		total += s.Fitness
	}

	remaining := size
	for _, s := range species {
		share := 1 / float64(len(species))
		if total > 0 {
			share = clamp(s.Fitness/total, 0, 1)
		}
		s.Capacity = int(float64(size) * share)
		remaining -= s.Capacity
	}
	for remaining > 0 {
		lottery := remaining - remaining/2
		remaining -= lottery
		species[rng.Intn(len(species))].Capacity += lottery
	}
}
