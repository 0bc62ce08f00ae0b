package neat

import (
	"fmt"
	"math/rand"
)

// Individual is one member of a speciated population.
//
// Implementations own their genome exclusively and hold no reference to the population.
// Distance and Crossover fail with ErrIncompatibleIndividuals when other has a different
// concrete type.
type Individual interface {
	Fitness() float64
	SetFitness(fitness float64)
	// DivideFitness divides the fitness by the number of sharers in the species.
	DivideFitness(sharers float64)
	Distance(other Individual, params SpeciationParams) (float64, error)
	Crossover(other Individual, rng *rand.Rand) (Individual, error)
	// Clone returns an independent copy, fitness included.
	Clone() Individual
	// MutateCloning applies the mutation rounds reserved for cloned children.
	MutateCloning(rng *rand.Rand)
	// MutateCrossover applies the mutation rounds reserved for crossed children.
	MutateCrossover(rng *rand.Rand)
}

// Generator creates a fresh individual for the initial population or after total extinction.
type Generator func(rng *rand.Rand) Individual

// NeuralIndividual is an Individual backed by a Genome and its own mutation rates.
type NeuralIndividual struct {
	genome  *Genome
	tracker *InnovationTracker
	rates   MutationRates
	fitness float64
}

// AsNeural casts ind to *NeuralIndividual, failing with ErrNotNeural for any other type.
func AsNeural(ind Individual) (*NeuralIndividual, error) {
	n, ok := ind.(*NeuralIndividual)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: got %T", ErrNotNeural, ind)
	}
	return n, nil
}

func newNeuralIndividual(genome *Genome, tracker *InnovationTracker, rates MutationRates) *NeuralIndividual {
	return &NeuralIndividual{genome: genome, tracker: tracker, rates: rates}
}

// Genome returns the individual's genome. Mutating it mutates the individual.
func (n *NeuralIndividual) Genome() *Genome { return n.genome }

// Rates returns the individual's current mutation rates.
func (n *NeuralIndividual) Rates() MutationRates { return n.rates }

func (n *NeuralIndividual) Fitness() float64 { return n.fitness }

func (n *NeuralIndividual) SetFitness(fitness float64) { n.fitness = fitness }

func (n *NeuralIndividual) DivideFitness(sharers float64) { n.fitness /= sharers }

// Clone returns a deep copy sharing only the innovation tracker.
func (n *NeuralIndividual) Clone() Individual {
	return &NeuralIndividual{
		genome:  n.genome.Copy(),
		tracker: n.tracker,
		rates:   n.rates,
		fitness: n.fitness,
	}
}

// Distance returns the genomic distance between n and other.
func (n *NeuralIndividual) Distance(other Individual, params SpeciationParams) (float64, error) {
	o, err := AsNeural(other)
	if err != nil {
		return 0, fmt.Errorf("%w: distance: %v", ErrIncompatibleIndividuals, err)
	}
	return GenomeDistance(n.genome, o.genome, params), nil
}

// Crossover builds a child from n and other. The child inherits the rates of the fitter
// parent, or of a random parent on a tie, and starts with zero fitness.
func (n *NeuralIndividual) Crossover(other Individual, rng *rand.Rand) (Individual, error) {
	o, err := AsNeural(other)
	if err != nil {
		return nil, fmt.Errorf("%w: crossover: %v", ErrIncompatibleIndividuals, err)
	}

	rates := n.rates
	switch {
	case n.fitness < o.fitness:
		rates = o.rates
	case n.fitness == o.fitness && rng.Intn(2) == 0:
		rates = o.rates
	}
	child := CrossGenomes(n.genome, o.genome, n.fitness, o.fitness, rng)
	return newNeuralIndividual(child, n.tracker, rates), nil
}

// MutateCloning applies Cloning comprehensive mutation rounds.
func (n *NeuralIndividual) MutateCloning(rng *rand.Rand) {
	applyRepeatedly(n.rates.Cloning, rng, func() { n.MutateComprehensively(rng) })
}

// MutateCrossover applies Crossover comprehensive mutation rounds.
func (n *NeuralIndividual) MutateCrossover(rng *rand.Rand) {
	applyRepeatedly(n.rates.Crossover, rng, func() { n.MutateComprehensively(rng) })
}

// MutateComprehensively possibly mutates the rates themselves, then applies every operator
// by its expected count in a fixed order.
func (n *NeuralIndividual) MutateComprehensively(rng *rand.Rand) {
	if rng.Float64() < n.rates.MetaMutation {
		n.rates = n.rates.Mutated(rng)
	}
	g, t, r := n.genome, n.tracker, n.rates
	applyRepeatedly(r.Weight, rng, func() { g.MutateWeight(rng) })
	applyRepeatedly(r.RandomWeight, rng, func() { g.MutateRandomWeight(rng) })
	applyRepeatedly(r.Link, rng, func() { g.MutateLink(rng, t) })
	applyRepeatedly(r.BiasLink, rng, func() { g.MutateBiasLink(rng, t) })
	applyRepeatedly(r.Sensor, rng, func() { g.MutateSensor(rng, t) })
	applyRepeatedly(r.Neuron, rng, func() { g.MutateNeuron(rng, t) })
	applyRepeatedly(r.Enable, rng, func() { g.MutateEnable(rng) })
	applyRepeatedly(r.Disable, rng, func() { g.MutateDisable(rng) })
	applyRepeatedly(r.Destroy, rng, func() { g.MutateDestroy(rng) })
}

func (n *NeuralIndividual) String() string {
	return fmt.Sprintf("NeuralIndividual(fitness: %.4f, %s)", n.fitness, n.genome)
}

// IndividualBuilder assembles NeuralIndividuals. The tracker, network shape and mutation
// rates are all required.
type IndividualBuilder struct {
	tracker *InnovationTracker
	shape   *NetworkShape
	rates   *MutationRates
}

// NewIndividualBuilder returns an empty builder.
func NewIndividualBuilder() *IndividualBuilder {
	return &IndividualBuilder{}
}

func (b *IndividualBuilder) WithInnovationTracker(tracker *InnovationTracker) *IndividualBuilder {
	b.tracker = tracker
	return b
}

func (b *IndividualBuilder) WithNetworkShape(shape NetworkShape) *IndividualBuilder {
	b.shape = &shape
	return b
}

func (b *IndividualBuilder) WithMutationRates(rates MutationRates) *IndividualBuilder {
	b.rates = &rates
	return b
}

func (b *IndividualBuilder) validate() error {
	switch {
	case b.tracker == nil:
		return fmt.Errorf("%w: innovation tracker", ErrMissingParameter)
	case b.shape == nil:
		return fmt.Errorf("%w: network shape", ErrMissingParameter)
	case b.rates == nil:
		return fmt.Errorf("%w: mutation rates", ErrMissingParameter)
	}
	if err := b.shape.Validate(); err != nil {
		return err
	}
	return b.rates.Validate()
}

// Build creates one individual. Fully connected shapes start with every input and bias
// linked to every output; arbitrarily connected shapes do so half of the time.
func (b *IndividualBuilder) Build(rng *rand.Rand) (*NeuralIndividual, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b.build(rng), nil
}

// Generator validates the builder once and returns a Generator that cannot fail.
func (b *IndividualBuilder) Generator() (Generator, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	snapshot := *b
	return func(rng *rand.Rand) Individual { return snapshot.build(rng) }, nil
}

func (b *IndividualBuilder) build(rng *rand.Rand) *NeuralIndividual {
	genome := NewGenome(*b.shape)
	if b.shape.FullyConnected || (b.shape.ArbitrarilyConnected && rng.Intn(2) == 0) {
		genome.BecomeFullyConnected(rng, b.tracker)
	}
	return newNeuralIndividual(genome, b.tracker, *b.rates)
}
