package neat

import "fmt"

// AggregationFunc reduces member fitnesses to one value.
type AggregationFunc func(values []float64) float64

// AggregationFunctions maps names to aggregation functions.
var AggregationFunctions = map[string]AggregationFunc{
	"sum":     Sum,
	"min":     MinFloat,
	"max":     MaxFloat,
	"mean":    Mean,
	"median":  Median,
	"average": Mean,
}

// FitnessMeasure computes the fitness of a whole species. Capacity is allocated
// proportionally to it.
type FitnessMeasure func(s *Species) float64

// MeasureBy turns an aggregation over member fitnesses into a FitnessMeasure.
func MeasureBy(agg AggregationFunc) FitnessMeasure {
	return func(s *Species) float64 { return agg(s.Fitnesses()) }
}

// GetFitnessMeasure returns the FitnessMeasure aggregating member fitnesses with the named function.
func GetFitnessMeasure(name string) (FitnessMeasure, error) {
	agg, ok := AggregationFunctions[name]
	if !ok {
		return nil, fmt.Errorf("unknown fitness measure: %s", name)
	}
	return MeasureBy(agg), nil
}
