package neat

import "errors"

var (
	// ErrMissingParameter is returned by builders when a required field was never set.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("config error")
	// ErrIncompatibleIndividuals is returned when distance or crossover is asked for
	// between individuals of different concrete types.
	ErrIncompatibleIndividuals = errors.New("incompatible individuals")
	// ErrNotNeural is returned by AsNeural for individuals that are not *NeuralIndividual.
	ErrNotNeural = errors.New("individual is not a neural individual")
	// ErrInvalidRecord is returned when a persisted genome cannot describe a valid network.
	ErrInvalidRecord = errors.New("invalid genome record")
)
