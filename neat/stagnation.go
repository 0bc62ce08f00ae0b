package neat

import (
	"fmt"
	"sort"
)

// StalenessIndicator measures a species for staleness tracking. It reports false when the
// species offers nothing to measure.
type StalenessIndicator func(s *Species) (float64, bool)

// StalenessIndicators maps names to staleness indicators.
var StalenessIndicators = map[string]StalenessIndicator{
	"best": BestFitness,
	"mean": MeanFitness,
}

// GetStalenessIndicator retrieves a staleness indicator by name.
func GetStalenessIndicator(name string) (StalenessIndicator, error) {
	if fn, ok := StalenessIndicators[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown staleness indicator: %s", name)
}

// BestFitness is the highest member fitness.
func BestFitness(s *Species) (float64, bool) {
	if s.Size() == 0 {
		return 0, false
	}
	return MaxFloat(s.Fitnesses()), true
}

// MeanFitness is the average member fitness.
func MeanFitness(s *Species) (float64, bool) {
	if s.Size() == 0 {
		return 0, false
	}
	return Mean(s.Fitnesses()), true
}

// staleOutcome describes one culling pass.
type staleOutcome struct {
	survivors []*Species
	culled    []*Species
	stagnant  bool // every species was stale and the preserved ones were revived
}

// cullStale sorts species by descending fitness and drops those staler than allowed.
// When that would drop every species, the best preserved species are revived instead
// and only the rest are dropped.
func cullStale(species []*Species, allowed, preserved int) staleOutcome {
	sort.SliceStable(species, func(i, j int) bool { return species[i].Fitness > species[j].Fitness })

	var out staleOutcome
	for _, s := range species {
		if s.Staleness > allowed {
			out.culled = append(out.culled, s)
		} else {
			out.survivors = append(out.survivors, s)
		}
	}
	if len(out.survivors) > 0 || len(species) == 0 {
		return out
	}

	out = staleOutcome{stagnant: true}
	for i, s := range species {
		if i < preserved {
			s.revive()
			out.survivors = append(out.survivors, s)
		} else {
			out.culled = append(out.culled, s)
		}
	}
	return out
}
