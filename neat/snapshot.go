package neat

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the persisted form of a population between generations: every species with
// its members gene by gene, the speciation parameters including the adapted threshold and
// the innovation tracker. Restoring it resumes evolution exactly, except for the random
// source which is not captured.
type Snapshot struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	Generation    int              `json:"generation"`
	Size          int              `json:"size"`
	Speciation    SpeciationParams `json:"speciation"`
	Tracker       TrackerState     `json:"tracker"`
	NextSpeciesID int              `json:"next_species_id"`
	Species       []SpeciesRecord  `json:"species"`
	Best          *RankedRecord    `json:"best,omitempty"`
}

// SpeciesRecord is one species of a Snapshot.
type SpeciesRecord struct {
	ID             int                `json:"id"`
	Representative IndividualRecord   `json:"representative"`
	Members        []IndividualRecord `json:"members"`
	MaxFitness     *float64           `json:"max_fitness,omitempty"` // absent until the species is first measured
	Fitness        float64            `json:"fitness"`
	Staleness      int                `json:"staleness"`
	Capacity       int                `json:"capacity"`
}

// RankedRecord is an individual together with the raw fitness it was ranked by.
type RankedRecord struct {
	Fitness    float64          `json:"fitness"`
	Individual IndividualRecord `json:"individual"`
}

// IndividualRecord is one NeuralIndividual.
type IndividualRecord struct {
	Fitness float64       `json:"fitness"`
	Rates   MutationRates `json:"rates"`
	Genome  GenomeRecord  `json:"genome"`
}

// GenomeRecord is one Genome, genes in genome order.
type GenomeRecord struct {
	Shape   NetworkShape `json:"shape"`
	Neurons int          `json:"neurons"`
	Genes   []GeneRecord `json:"genes"`
}

// GeneRecord is one Gene.
type GeneRecord struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
	Marker  uint64  `json:"marker"`
}

// Record converts the genome into its persisted form.
func (g *Genome) Record() GenomeRecord {
	rec := GenomeRecord{Shape: g.Shape, Neurons: g.neurons, Genes: make([]GeneRecord, len(g.genes))}
	for i, gene := range g.genes {
		rec.Genes[i] = GeneRecord(gene)
	}
	return rec
}

// GenomeFromRecord rebuilds a genome. The neuron count is raised if the genes need more.
// Genes with a negative endpoint or leading into an input or bias node are rejected.
func GenomeFromRecord(rec GenomeRecord) (*Genome, error) {
	g := NewGenome(rec.Shape)
	for _, gene := range rec.Genes {
		switch {
		case gene.From < 0 || gene.To < 0:
			return nil, fmt.Errorf("%w: gene %d->%d has a negative endpoint", ErrInvalidRecord, gene.From, gene.To)
		case rec.Shape.IsInput(gene.To) || rec.Shape.IsBias(gene.To):
			return nil, fmt.Errorf("%w: gene %d->%d leads into an input or bias node", ErrInvalidRecord, gene.From, gene.To)
		}
		g.AddGene(Gene(gene))
	}
	g.neurons = max(g.neurons, rec.Neurons)
	return g, nil
}

// Record converts the individual into its persisted form.
func (n *NeuralIndividual) Record() IndividualRecord {
	return IndividualRecord{Fitness: n.fitness, Rates: n.rates, Genome: n.genome.Record()}
}

func individualFromRecord(rec IndividualRecord, tracker *InnovationTracker) (*NeuralIndividual, error) {
	g, err := GenomeFromRecord(rec.Genome)
	if err != nil {
		return nil, err
	}
	ind := newNeuralIndividual(g, tracker, rec.Rates)
	ind.fitness = rec.Fitness
	return ind, nil
}

func recordOf(ind Individual) (IndividualRecord, error) {
	n, err := AsNeural(ind)
	if err != nil {
		return IndividualRecord{}, err
	}
	return n.Record(), nil
}

// Snapshot captures the population. Only NeuralIndividuals can be captured.
func (p *Population) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Generation:    p.generation,
		Size:          p.size,
		Speciation:    p.params,
		Tracker:       p.tracker.State(),
		NextSpeciesID: p.nextSpeciesID,
		Species:       make([]SpeciesRecord, 0, len(p.species)),
	}
	for _, s := range p.species {
		rep, err := recordOf(s.representative)
		if err != nil {
			return nil, fmt.Errorf("species %d representative: %w", s.ID, err)
		}
		rec := SpeciesRecord{
			ID:             s.ID,
			Representative: rep,
			Members:        make([]IndividualRecord, 0, len(s.members)),
			Fitness:        s.Fitness,
			Staleness:      s.Staleness,
			Capacity:       s.Capacity,
		}
		if !math.IsInf(s.MaxFitness, -1) {
			maxFitness := s.MaxFitness
			rec.MaxFitness = &maxFitness
		}
		for _, m := range s.members {
			mr, err := recordOf(m)
			if err != nil {
				return nil, fmt.Errorf("species %d member: %w", s.ID, err)
			}
			rec.Members = append(rec.Members, mr)
		}
		snap.Species = append(snap.Species, rec)
	}
	if p.best.Individual != nil {
		best, err := recordOf(p.best.Individual)
		if err != nil {
			return nil, fmt.Errorf("best individual: %w", err)
		}
		snap.Best = &RankedRecord{Fitness: p.best.Fitness, Individual: best}
	}
	return snap, nil
}

// Restore rebuilds a population from snap instead of drawing a new one from the generator.
// The generator, selector and tracker are still required; size and speciation parameters
// come from the snapshot. The tracker's state is replaced by the snapshot's once every
// record has been rebuilt. b itself is left unchanged.
func (b *PopulationBuilder) Restore(snap *Snapshot) (*Population, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot", ErrMissingParameter)
	}
	c := *b
	c.WithSize(snap.Size).WithSpeciation(snap.Speciation)
	if err := c.validate(); err != nil {
		return nil, err
	}

	p := c.population()
	p.generation = snap.Generation
	p.nextSpeciesID = snap.NextSpeciesID
	for _, rec := range snap.Species {
		rep, err := individualFromRecord(rec.Representative, p.tracker)
		if err != nil {
			return nil, fmt.Errorf("species %d representative: %w", rec.ID, err)
		}
		s := &Species{
			ID:             rec.ID,
			representative: rep,
			MaxFitness:     math.Inf(-1),
			Fitness:        rec.Fitness,
			Staleness:      rec.Staleness,
			Capacity:       rec.Capacity,
		}
		if rec.MaxFitness != nil {
			s.MaxFitness = *rec.MaxFitness
		}
		for _, m := range rec.Members {
			ind, err := individualFromRecord(m, p.tracker)
			if err != nil {
				return nil, fmt.Errorf("species %d member: %w", rec.ID, err)
			}
			s.add(ind)
		}
		p.nextSpeciesID = max(p.nextSpeciesID, s.ID)
		p.species = append(p.species, s)
	}
	if snap.Best != nil {
		best, err := individualFromRecord(snap.Best.Individual, p.tracker)
		if err != nil {
			return nil, fmt.Errorf("best individual: %w", err)
		}
		p.best = Ranked{Individual: best, Fitness: snap.Best.Fitness}
	}
	p.tracker.Restore(snap.Tracker)
	return p, nil
}
