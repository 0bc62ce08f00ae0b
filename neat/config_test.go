package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigIni(t *testing.T) {
	path := writeConfig(t, "xor.ini", `
[Network]
inputs = 2   # two bits
recurrent = true

[Mutation]
link = 1.5

[Speciation]
desired_species = 8

[Population]
size = 40
workers = 3
fitness_measure = MAX
staleness_indicator = Mean
fitness_sharing = false

[Phenotype]
activation = tanh
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Network.Inputs)
	assert.True(t, cfg.Network.Recurrent)
	assert.Equal(t, DefaultNetworkShape().Outputs, cfg.Network.Outputs, "absent keys keep defaults")
	assert.Equal(t, 1.5, cfg.Mutation.Link)
	assert.Equal(t, DefaultMutationRates().Neuron, cfg.Mutation.Neuron)
	assert.Equal(t, 8, cfg.Speciation.DesiredSpecies)
	assert.Equal(t, DefaultSpeciationParams().ExcessCoeff, cfg.Speciation.ExcessCoeff)
	assert.Equal(t, 40, cfg.Population.Size)
	assert.Equal(t, 3, cfg.Population.Workers)
	assert.Equal(t, "max", cfg.Population.FitnessMeasure)
	assert.Equal(t, "mean", cfg.Population.StalenessIndicator)
	assert.False(t, cfg.Population.FitnessSharing)
	assert.Equal(t, "tanh", cfg.Phenotype.Activation)
}

func TestLoadConfigMissingSections(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "empty.ini", "[Population]\nsize = 10\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Population.Size = 10
	assert.Equal(t, want, cfg)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "xor.yaml", `
network:
  inputs: 3
  fully_connected: true
speciation:
  difference_threshold: 2.5
population:
  size: 64
  seed: 99
  elites: 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Network.Inputs)
	assert.True(t, cfg.Network.FullyConnected)
	assert.Equal(t, DefaultNetworkShape().WeightRange, cfg.Network.WeightRange)
	assert.Equal(t, 2.5, cfg.Speciation.DifferenceThreshold)
	assert.Equal(t, 64, cfg.Population.Size)
	assert.Equal(t, int64(99), cfg.Population.Seed)
	assert.Equal(t, 2, cfg.Population.Elites)
	assert.Equal(t, "squash", cfg.Phenotype.Activation)
}

func TestLoadConfigInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"elimination rate": "[Speciation]\nelimination_rate = 1.5\n",
		"population size":  "[Population]\nsize = 0\n",
		"fitness measure":  "[Population]\nfitness_measure = mode\n",
		"activation":       "[Phenotype]\nactivation = swish\n",
		"negative rate":    "[Mutation]\nneuron = -1\n",
		"no outputs":       "[Network]\noutputs = 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "bad.ini", content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := LoadConfig(writeConfig(t, "bad.ini", "[Speciation]\nelimination_rate = 1.5\n"))
	assert.ErrorContains(t, err, "[Speciation]")
}

func TestLoadConfigUnreadable(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "broken.yml", "network: [oops"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
