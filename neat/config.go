package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for a speciated NEAT run.
type Config struct {
	Network    NetworkShape     `yaml:"network" json:"network"`
	Mutation   MutationRates    `yaml:"mutation" json:"mutation"`
	Speciation SpeciationParams `yaml:"speciation" json:"speciation"`
	Population PopulationConfig `yaml:"population" json:"population"`
	Phenotype  PhenotypeConfig  `yaml:"phenotype" json:"phenotype"`
}

// SpeciationParams holds the distance coefficients and the species management knobs.
// DifferenceThreshold is adjusted by the population every generation.
type SpeciationParams struct {
	ExcessCoeff             float64 `ini:"excess_coefficient" yaml:"excess_coefficient" json:"excess_coefficient"`
	DisjointCoeff           float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient" json:"disjoint_coefficient"`
	WeightDiffCoeff         float64 `ini:"weight_difference_coefficient" yaml:"weight_difference_coefficient" json:"weight_difference_coefficient"`
	WeightDiffPower         float64 `ini:"weight_difference_power" yaml:"weight_difference_power" json:"weight_difference_power"`
	DesiredSpecies          int     `ini:"desired_species" yaml:"desired_species" json:"desired_species"`
	DifferenceThreshold     float64 `ini:"difference_threshold" yaml:"difference_threshold" json:"difference_threshold"`
	ThresholdStep           float64 `ini:"difference_threshold_step" yaml:"difference_threshold_step" json:"difference_threshold_step"`
	CrossoverProbability    float64 `ini:"crossover_probability" yaml:"crossover_probability" json:"crossover_probability"`
	EliminationRate         float64 `ini:"elimination_rate" yaml:"elimination_rate" json:"elimination_rate"`
	StaleGenerationsAllowed int     `ini:"stale_generations_allowed" yaml:"stale_generations_allowed" json:"stale_generations_allowed"`
	DeadbeatFitnessFloor    float64 `ini:"deadbeat_fitness_floor" yaml:"deadbeat_fitness_floor" json:"deadbeat_fitness_floor"`
	PreservedSpecies        int     `ini:"preserved_species" yaml:"preserved_species" json:"preserved_species"`
}

// PopulationConfig holds the driver level settings of a run.
type PopulationConfig struct {
	Size               int    `ini:"size" yaml:"size" json:"size"`
	Workers            int    `ini:"workers" yaml:"workers" json:"workers"` // concurrent fitness evaluations, 0 means one per CPU
	Seed               int64  `ini:"seed" yaml:"seed" json:"seed"`
	FitnessMeasure     string `ini:"fitness_measure" yaml:"fitness_measure" json:"fitness_measure"`
	StalenessIndicator string `ini:"staleness_indicator" yaml:"staleness_indicator" json:"staleness_indicator"`
	FitnessSharing     bool   `ini:"fitness_sharing" yaml:"fitness_sharing" json:"fitness_sharing"`
	Elites             int    `ini:"elites" yaml:"elites" json:"elites"` // best members copied unchanged per species
}

// PhenotypeConfig selects how expressed networks compute.
type PhenotypeConfig struct {
	Activation string `ini:"activation" yaml:"activation" json:"activation"`
}

// DefaultSpeciationParams returns the parameters used for the parity benchmark.
func DefaultSpeciationParams() SpeciationParams {
	return SpeciationParams{
		ExcessCoeff:             1.5,
		DisjointCoeff:           2,
		WeightDiffCoeff:         0.4,
		WeightDiffPower:         1,
		DesiredSpecies:          15,
		DifferenceThreshold:     1.4,
		ThresholdStep:           0.05,
		CrossoverProbability:    0.75,
		EliminationRate:         0.8,
		StaleGenerationsAllowed: 15,
		DeadbeatFitnessFloor:    0,
		PreservedSpecies:        2,
	}
}

// DefaultConfig returns a complete configuration which individual files may override.
func DefaultConfig() *Config {
	return &Config{
		Network:    DefaultNetworkShape(),
		Mutation:   DefaultMutationRates(),
		Speciation: DefaultSpeciationParams(),
		Population: PopulationConfig{
			Size:               150,
			FitnessMeasure:     "mean",
			StalenessIndicator: "best",
			FitnessSharing:     true,
		},
		Phenotype: PhenotypeConfig{Activation: "squash"},
	}
}

// Validate reports the first invalid value of the speciation parameters.
func (p SpeciationParams) Validate() error {
	switch {
	case p.ExcessCoeff < 0 || p.DisjointCoeff < 0 || p.WeightDiffCoeff < 0:
		return fmt.Errorf("%w: distance coefficients cannot be negative", ErrInvalidConfig)
	case p.WeightDiffPower <= 0:
		return fmt.Errorf("%w: weight_difference_power must be positive", ErrInvalidConfig)
	case p.DesiredSpecies <= 0:
		return fmt.Errorf("%w: desired_species must be positive", ErrInvalidConfig)
	case p.DifferenceThreshold < 0:
		return fmt.Errorf("%w: difference_threshold cannot be negative", ErrInvalidConfig)
	case p.ThresholdStep < 0:
		return fmt.Errorf("%w: difference_threshold_step cannot be negative", ErrInvalidConfig)
	case p.CrossoverProbability < 0 || p.CrossoverProbability > 1:
		return fmt.Errorf("%w: crossover_probability must be between 0 and 1", ErrInvalidConfig)
	case p.EliminationRate < 0 || p.EliminationRate >= 1:
		return fmt.Errorf("%w: elimination_rate must be in [0, 1)", ErrInvalidConfig)
	case p.StaleGenerationsAllowed < 0:
		return fmt.Errorf("%w: stale_generations_allowed cannot be negative", ErrInvalidConfig)
	case p.DeadbeatFitnessFloor < 0:
		return fmt.Errorf("%w: deadbeat_fitness_floor cannot be negative", ErrInvalidConfig)
	case p.PreservedSpecies < 0:
		return fmt.Errorf("%w: preserved_species cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Validate reports the first invalid value of the population settings.
func (p PopulationConfig) Validate() error {
	switch {
	case p.Size <= 0:
		return fmt.Errorf("%w: size must be positive", ErrInvalidConfig)
	case p.Workers < 0:
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfig)
	case p.Elites < 0:
		return fmt.Errorf("%w: elites cannot be negative", ErrInvalidConfig)
	}
	if _, err := GetFitnessMeasure(p.FitnessMeasure); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := GetStalenessIndicator(p.StalenessIndicator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("[Network]: %w", err)
	}
	if err := c.Mutation.Validate(); err != nil {
		return fmt.Errorf("[Mutation]: %w", err)
	}
	if err := c.Speciation.Validate(); err != nil {
		return fmt.Errorf("[Speciation]: %w", err)
	}
	if err := c.Population.Validate(); err != nil {
		return fmt.Errorf("[Population]: %w", err)
	}
	if _, err := GetActivation(c.Phenotype.Activation); err != nil {
		return fmt.Errorf("[Phenotype]: %w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig loads configuration parameters from an INI file, or from YAML when the
// file ends in .yaml or .yml. Keys absent from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		if err := loadIni(filePath, config); err != nil {
			return nil, err
		}
	}

	config.Population.FitnessMeasure = cleanName(config.Population.FitnessMeasure)
	config.Population.StalenessIndicator = cleanName(config.Population.StalenessIndicator)
	config.Phenotype.Activation = cleanName(config.Phenotype.Activation)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadIni(filePath string, config *Config) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true, // "size = 150 # note" keeps 150
	}, filePath)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	sections := []struct {
		name   string
		target any
	}{
		{"Network", &config.Network},
		{"Mutation", &config.Mutation},
		{"Speciation", &config.Speciation},
		{"Population", &config.Population},
		{"Phenotype", &config.Phenotype},
	}
	for _, s := range sections {
		if !cfg.HasSection(s.name) {
			continue
		}
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return nil
}

// cleanName trims whitespace and case from a registry name read from a file.
func cleanName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
