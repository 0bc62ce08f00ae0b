package neat

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Evaluator scores one individual. It is called once per individual per generation,
// concurrently and in no particular order.
type Evaluator func(ctx context.Context, ind Individual) (float64, error)

// Reporter observes a running population.
type Reporter interface {
	GenerationCompleted(stats GenerationStats)
	Extinction(generation int)
}

// GenerationStats summarizes one completed generation. Fitness values are raw evaluator
// results, before any sharing.
type GenerationStats struct {
	Generation   int           `json:"generation"`
	BestFitness  float64       `json:"best_fitness"`
	MeanFitness  float64       `json:"mean_fitness"`
	StdevFitness float64       `json:"stdev_fitness"`
	BestEver     float64       `json:"best_ever"`
	Species      int           `json:"species"`
	Threshold    float64       `json:"threshold"`
	Culled       int           `json:"culled"`
	Stagnant     bool          `json:"stagnant"` // every species went stale and only the preserved ones survived
	Extinct      bool          `json:"extinct"`  // the population was regenerated from scratch
	Innovations  uint64        `json:"innovations"`
	MeanGenes    float64       `json:"mean_genes"`
	Duration     time.Duration `json:"duration"`
}

// Reporters fans every event out to each reporter in order.
type Reporters []Reporter

func (rs Reporters) GenerationCompleted(stats GenerationStats) {
	for _, r := range rs {
		r.GenerationCompleted(stats)
	}
}

func (rs Reporters) Extinction(generation int) {
	for _, r := range rs {
		r.Extinction(generation)
	}
}

// Population holds the species and drives the speciated evolutionary loop.
type Population struct {
	size       int
	generation int
	species    []*Species
	params     SpeciationParams

	generator Generator
	selector  Selector
	staleness StalenessIndicator
	measure   FitnessMeasure
	sharing   bool
	tracker   *InnovationTracker
	rng       *rand.Rand
	logger    *slog.Logger
	reporter  Reporter
	workers   int

	nextSpeciesID int
	best          Ranked

	// outcome of the last generation, for reporting
	culled   int
	stagnant bool
	extinct  bool
}

// Generation returns the number of completed generations.
func (p *Population) Generation() int { return p.generation }

// Size returns the target population size.
func (p *Population) Size() int { return p.size }

// Threshold returns the current speciation distance threshold.
func (p *Population) Threshold() float64 { return p.params.DifferenceThreshold }

// Params returns the current speciation parameters, threshold included.
func (p *Population) Params() SpeciationParams { return p.params }

// Best returns the best individual evaluated so far with its raw fitness.
func (p *Population) Best() Ranked { return p.best }

// Species returns the current species in their current order.
func (p *Population) Species() []*Species {
	return slices.Clone(p.species)
}

// Individuals returns every member of every species.
func (p *Population) Individuals() []Individual {
	var out []Individual
	for _, s := range p.species {
		out = append(out, s.members...)
	}
	return out
}

// Evaluate scores every individual with evaluate using up to the configured number of
// workers. The first error cancels the remaining evaluations and is returned.
func (p *Population) Evaluate(ctx context.Context, evaluate Evaluator) ([]Ranked, error) {
	individuals := p.Individuals()
	results := make([]Ranked, len(individuals))

	workers := p.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pl := pool.New().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError()
	for i, ind := range individuals {
		pl.Go(func(ctx context.Context) error {
			fitness, err := evaluate(ctx, ind)
			if err != nil {
				return fmt.Errorf("individual %d: %w", i, err)
			}
			results[i] = Ranked{Individual: ind, Fitness: fitness}
			return nil
		})
	}
	if err := pl.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateFitnesses assigns the evaluated fitnesses, ranks every species, ages it, applies
// the fitness measure and sharing, culls stale species and shifts species fitness up when
// the weakest is not positive. It returns the best result by raw fitness.
func (p *Population) UpdateFitnesses(results []Ranked) Ranked {
	best := Ranked{Fitness: math.Inf(-1)}
	for _, r := range results {
		r.Individual.SetFitness(r.Fitness)
		if r.Fitness > best.Fitness {
			best = r
		}
	}
	if best.Individual != nil && (p.best.Individual == nil || best.Fitness > p.best.Fitness) {
		p.best = Ranked{Individual: best.Individual.Clone(), Fitness: best.Fitness}
	}

	for _, s := range p.species {
		s.rank()
		s.age(p.staleness(s))
		s.adjustFitness(p.measure, p.sharing)
	}

	outcome := cullStale(p.species, p.params.StaleGenerationsAllowed, p.params.PreservedSpecies)
	for _, s := range outcome.culled {
		p.logger.Debug("species culled as stale", "species", s.ID, "staleness", s.Staleness, "fitness", s.Fitness)
		s.perish()
	}
	if outcome.stagnant {
		p.logger.Info("population stagnant, keeping preserved species",
			"generation", p.generation, "preserved", len(outcome.survivors))
	}
	p.species = outcome.survivors
	p.culled = len(outcome.culled)
	p.stagnant = outcome.stagnant

	if len(p.species) > 0 {
		weakest := math.Inf(1)
		for _, s := range p.species {
			weakest = math.Min(weakest, s.Fitness)
		}
		if weakest <= 0 {
			for _, s := range p.species {
				s.Fitness = s.Fitness - weakest + p.params.DeadbeatFitnessFloor
			}
		}
	}
	return best
}

// UpdateSpecies samples a new representative for every species, empties them and
// classifies individuals into them. An individual joins the first species whose
// representative is closer than the threshold, or founds a new species. Species left
// empty are dropped and the threshold moves one step toward DesiredSpecies.
func (p *Population) UpdateSpecies(individuals []Individual) error {
	for _, s := range p.species {
		s.updateRepresentative(p.rng)
		s.perish()
	}
	for _, ind := range individuals {
		if err := p.classify(ind); err != nil {
			return err
		}
	}
	p.species = slices.DeleteFunc(p.species, (*Species).perished)

	switch n := len(p.species); {
	case n > p.params.DesiredSpecies:
		p.params.DifferenceThreshold += p.params.ThresholdStep
	case n < p.params.DesiredSpecies:
		p.params.DifferenceThreshold = math.Max(0, p.params.DifferenceThreshold-p.params.ThresholdStep)
	}
	return nil
}

func (p *Population) classify(ind Individual) error {
	for _, s := range p.species {
		d, err := s.representative.Distance(ind, p.params)
		if err != nil {
			return fmt.Errorf("classifying into species %d: %w", s.ID, err)
		}
		if d < p.params.DifferenceThreshold {
			s.add(ind)
			return nil
		}
	}
	p.nextSpeciesID++
	p.species = append(p.species, newSpecies(p.nextSpeciesID, ind))
	return nil
}

// RunGeneration executes a single generation: evaluate, rank and cull, repopulate, speciate.
// It returns the best individual of the evaluated generation with its raw fitness.
func (p *Population) RunGeneration(ctx context.Context, evaluate Evaluator) (Ranked, error) {
	start := time.Now()
	p.extinct = false

	results, err := p.Evaluate(ctx, evaluate)
	if err != nil {
		return Ranked{}, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.generation, err)
	}
	best := p.UpdateFitnesses(results)

	children, err := p.Repopulate()
	if err != nil {
		return best, fmt.Errorf("reproduction failed in generation %d: %w", p.generation, err)
	}
	if err := p.UpdateSpecies(children); err != nil {
		return best, fmt.Errorf("speciation failed in generation %d: %w", p.generation, err)
	}

	stats := p.stats(results, best, time.Since(start))
	p.generation++
	p.logger.Info("generation complete",
		"generation", stats.Generation,
		"best", stats.BestFitness,
		"mean", stats.MeanFitness,
		"species", stats.Species,
		"threshold", stats.Threshold,
		"duration", stats.Duration)
	if p.reporter != nil {
		p.reporter.GenerationCompleted(stats)
	}
	return best, nil
}

func (p *Population) stats(results []Ranked, best Ranked, elapsed time.Duration) GenerationStats {
	fitnesses := make([]float64, len(results))
	for i, r := range results {
		fitnesses[i] = r.Fitness
	}
	genes, neural := 0, 0
	for _, ind := range p.Individuals() {
		if n, err := AsNeural(ind); err == nil {
			genes += n.genome.NumGenes()
			neural++
		}
	}
	meanGenes := 0.0
	if neural > 0 {
		meanGenes = float64(genes) / float64(neural)
	}
	return GenerationStats{
		Generation:   p.generation,
		BestFitness:  best.Fitness,
		MeanFitness:  Mean(fitnesses),
		StdevFitness: Stdev(fitnesses),
		BestEver:     p.best.Fitness,
		Species:      len(p.species),
		Threshold:    p.params.DifferenceThreshold,
		Culled:       p.culled,
		Stagnant:     p.stagnant,
		Extinct:      p.extinct,
		Innovations:  p.tracker.Next(),
		MeanGenes:    meanGenes,
		Duration:     elapsed,
	}
}

// PopulationBuilder assembles a Population. Size, generator, speciation parameters,
// selector and innovation tracker are required.
type PopulationBuilder struct {
	size      int
	generator Generator
	params    *SpeciationParams
	selector  Selector
	staleness StalenessIndicator
	measure   FitnessMeasure
	sharing   bool
	tracker   *InnovationTracker
	rng       *rand.Rand
	logger    *slog.Logger
	reporter  Reporter
	workers   int
	err       error
}

// NewPopulationBuilder returns a builder with fitness sharing on, the best-fitness staleness
// indicator and the mean fitness measure.
func NewPopulationBuilder() *PopulationBuilder {
	return &PopulationBuilder{
		sharing:   true,
		staleness: BestFitness,
		measure:   MeasureBy(Mean),
	}
}

func (b *PopulationBuilder) WithSize(size int) *PopulationBuilder {
	b.size = size
	return b
}

func (b *PopulationBuilder) WithGenerator(generator Generator) *PopulationBuilder {
	b.generator = generator
	return b
}

func (b *PopulationBuilder) WithSpeciation(params SpeciationParams) *PopulationBuilder {
	b.params = &params
	return b
}

func (b *PopulationBuilder) WithSelector(selector Selector) *PopulationBuilder {
	b.selector = selector
	return b
}

func (b *PopulationBuilder) WithStalenessIndicator(indicator StalenessIndicator) *PopulationBuilder {
	b.staleness = indicator
	return b
}

func (b *PopulationBuilder) WithFitnessMeasure(measure FitnessMeasure) *PopulationBuilder {
	b.measure = measure
	return b
}

// WithFitnessSharing toggles dividing member fitness by species size.
func (b *PopulationBuilder) WithFitnessSharing(sharing bool) *PopulationBuilder {
	b.sharing = sharing
	return b
}

func (b *PopulationBuilder) WithInnovationTracker(tracker *InnovationTracker) *PopulationBuilder {
	b.tracker = tracker
	return b
}

func (b *PopulationBuilder) WithRand(rng *rand.Rand) *PopulationBuilder {
	b.rng = rng
	return b
}

func (b *PopulationBuilder) WithLogger(logger *slog.Logger) *PopulationBuilder {
	b.logger = logger
	return b
}

func (b *PopulationBuilder) WithReporter(reporter Reporter) *PopulationBuilder {
	b.reporter = reporter
	return b
}

// WithWorkers bounds concurrent fitness evaluations. Zero means one per CPU.
func (b *PopulationBuilder) WithWorkers(workers int) *PopulationBuilder {
	b.workers = workers
	return b
}

// WithConfig applies the [Speciation] and [Population] sections of cfg. A non-zero seed
// seeds the random source.
func (b *PopulationBuilder) WithConfig(cfg *Config) *PopulationBuilder {
	b.WithSize(cfg.Population.Size).
		WithSpeciation(cfg.Speciation).
		WithWorkers(cfg.Population.Workers).
		WithFitnessSharing(cfg.Population.FitnessSharing)
	if cfg.Population.Seed != 0 {
		b.WithRand(rand.New(rand.NewSource(cfg.Population.Seed)))
	}
	if cfg.Population.FitnessMeasure != "" {
		measure, err := GetFitnessMeasure(cfg.Population.FitnessMeasure)
		if err != nil {
			b.err = fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		b.measure = measure
	}
	if cfg.Population.StalenessIndicator != "" {
		indicator, err := GetStalenessIndicator(cfg.Population.StalenessIndicator)
		if err != nil {
			b.err = fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		b.staleness = indicator
	}
	return b
}

func (b *PopulationBuilder) validate() error {
	if b.err != nil {
		return b.err
	}
	switch {
	case b.size <= 0:
		return fmt.Errorf("%w: positive population size", ErrMissingParameter)
	case b.generator == nil:
		return fmt.Errorf("%w: generator", ErrMissingParameter)
	case b.params == nil:
		return fmt.Errorf("%w: speciation parameters", ErrMissingParameter)
	case b.selector == nil:
		return fmt.Errorf("%w: selector", ErrMissingParameter)
	case b.tracker == nil:
		return fmt.Errorf("%w: innovation tracker", ErrMissingParameter)
	case b.staleness == nil:
		return fmt.Errorf("%w: staleness indicator", ErrMissingParameter)
	case b.measure == nil:
		return fmt.Errorf("%w: fitness measure", ErrMissingParameter)
	}
	return b.params.Validate()
}

func (b *PopulationBuilder) population() *Population {
	rng := b.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default().With("component", "neat")
	}
	return &Population{
		size:      b.size,
		params:    *b.params,
		generator: b.generator,
		selector:  b.selector,
		staleness: b.staleness,
		measure:   b.measure,
		sharing:   b.sharing,
		tracker:   b.tracker,
		rng:       rng,
		logger:    logger,
		reporter:  b.reporter,
		workers:   b.workers,
	}
}

// Build validates the builder, draws the initial population from the generator and
// classifies it into species.
func (b *PopulationBuilder) Build() (*Population, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	p := b.population()
	initial := p.generate()
	p.tracker.Reset()
	if err := p.UpdateSpecies(initial); err != nil {
		return nil, err
	}
	return p, nil
}
