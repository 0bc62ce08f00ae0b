package neat

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// NetworkShape holds the fixed layout and weight parameters shared by every genome of a population.
type NetworkShape struct {
	Inputs               int     `ini:"inputs" yaml:"inputs" json:"inputs"`
	Outputs              int     `ini:"outputs" yaml:"outputs" json:"outputs"`
	Biases               int     `ini:"biases" yaml:"biases" json:"biases"`
	Recurrent            bool    `ini:"recurrent" yaml:"recurrent" json:"recurrent"`
	WeightRange          float64 `ini:"weight_range" yaml:"weight_range" json:"weight_range"` // new weights are uniform in ±WeightRange
	WeightStep           float64 `ini:"weight_step" yaml:"weight_step" json:"weight_step"`    // perturbations are uniform in ±WeightStep
	FullyConnected       bool    `ini:"fully_connected" yaml:"fully_connected" json:"fully_connected"`
	ArbitrarilyConnected bool    `ini:"arbitrarily_connected" yaml:"arbitrarily_connected" json:"arbitrarily_connected"`
}

// DefaultNetworkShape returns a single input, single output, single bias, feed-forward shape.
func DefaultNetworkShape() NetworkShape {
	return NetworkShape{
		Inputs:      1,
		Outputs:     1,
		Biases:      1,
		WeightRange: 2,
		WeightStep:  0.01,
	}
}

// Validate reports the first invalid field of the shape.
func (s NetworkShape) Validate() error {
	switch {
	case s.Inputs <= 0:
		return fmt.Errorf("%w: inputs must be positive", ErrInvalidConfig)
	case s.Outputs <= 0:
		return fmt.Errorf("%w: outputs must be positive", ErrInvalidConfig)
	case s.Biases < 0:
		return fmt.Errorf("%w: biases cannot be negative", ErrInvalidConfig)
	case s.WeightRange <= 0:
		return fmt.Errorf("%w: weight_range must be positive", ErrInvalidConfig)
	case s.WeightStep < 0:
		return fmt.Errorf("%w: weight_step cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// FixedNodes is the number of input, output and bias nodes.
func (s NetworkShape) FixedNodes() int {
	return s.Inputs + s.Outputs + s.Biases
}

// IsInput reports whether node index n is in the input block.
func (s NetworkShape) IsInput(n int) bool { return n >= 0 && n < s.Inputs }

// IsOutput reports whether node index n is in the output block.
func (s NetworkShape) IsOutput(n int) bool { return n >= s.Inputs && n < s.Inputs+s.Outputs }

// IsBias reports whether node index n is in the bias block.
func (s NetworkShape) IsBias(n int) bool {
	return n >= s.Inputs+s.Outputs && n < s.FixedNodes()
}

// IsHidden reports whether node index n lies past the fixed blocks.
func (s NetworkShape) IsHidden(n int) bool { return n >= s.FixedNodes() }

// Genome is the ordered gene list of one candidate network plus its shape metadata.
//
// Invariants: no gene is a self-loop, at most one gene exists per (from, to) pair, and
// the neuron count is never smaller than the fixed node blocks nor than one more than
// the largest node index used by a gene.
type Genome struct {
	Shape   NetworkShape
	genes   []Gene
	index   map[ConnectionKey]int // (from, to) -> position in genes
	neurons int
}

// NewGenome creates an empty genome with only the fixed input, output and bias nodes.
func NewGenome(shape NetworkShape) *Genome {
	return &Genome{
		Shape:   shape,
		index:   make(map[ConnectionKey]int),
		neurons: shape.FixedNodes(),
	}
}

// Copy returns an independent deep copy of the genome.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		Shape:   g.Shape,
		genes:   make([]Gene, len(g.genes)),
		index:   make(map[ConnectionKey]int, len(g.index)),
		neurons: g.neurons,
	}
	copy(c.genes, g.genes)
	for k, v := range g.index {
		c.index[k] = v
	}
	return c
}

// Genes returns a copy of the genes in genome order.
func (g *Genome) Genes() []Gene {
	out := make([]Gene, len(g.genes))
	copy(out, g.genes)
	return out
}

// NumGenes returns the number of genes, enabled or not.
func (g *Genome) NumGenes() int { return len(g.genes) }

// Neurons returns the number of node indices in use, hidden nodes included.
func (g *Genome) Neurons() int { return g.neurons }

// Recurrent reports whether the genome may contain cycles.
func (g *Genome) Recurrent() bool { return g.Shape.Recurrent }

// Connection returns the gene for from -> to, if present.
func (g *Genome) Connection(from, to int) (Gene, bool) {
	i, ok := g.index[ConnectionKey{From: from, To: to}]
	if !ok {
		return Gene{}, false
	}
	return g.genes[i], true
}

// HasConnection reports whether a gene for from -> to exists.
func (g *Genome) HasConnection(from, to int) bool {
	_, ok := g.index[ConnectionKey{From: from, To: to}]
	return ok
}

// AddConnection adds an enabled gene from -> to with the given weight, asking the tracker for
// its marker. An existing gene for the same pair is replaced in place.
func (g *Genome) AddConnection(from, to int, weight float64, tracker *InnovationTracker) {
	g.AddGene(Gene{From: from, To: to, Weight: weight, Enabled: true, Marker: tracker.GetMarker(from, to)})
}

// AddGene inserts gene, replacing any gene with the same (from, to) pair. Self-loops are ignored.
func (g *Genome) AddGene(gene Gene) {
	if gene.From == gene.To {
		return
	}
	if i, ok := g.index[gene.Key()]; ok {
		g.genes[i] = gene
	} else {
		g.index[gene.Key()] = len(g.genes)
		g.genes = append(g.genes, gene)
	}
	if n := max(gene.From, gene.To) + 1; n > g.neurons {
		g.neurons = n
	}
}

// updateGene replaces the gene at position i. The replacement must keep the marker and endpoints.
func (g *Genome) updateGene(i int, gene Gene) {
	old := g.genes[i]
	if old.Marker != gene.Marker || old.Key() != gene.Key() {
		panic(fmt.Sprintf("cannot replace %s with %s", old, gene))
	}
	g.genes[i] = gene
}

// removeGene deletes the gene at position i and rebuilds the index.
func (g *Genome) removeGene(i int) {
	g.genes = append(g.genes[:i], g.genes[i+1:]...)
	g.reindex()
	g.recountNeurons()
}

func (g *Genome) reindex() {
	g.index = make(map[ConnectionKey]int, len(g.genes))
	for i, gene := range g.genes {
		g.index[gene.Key()] = i
	}
}

// recountNeurons sets the neuron count to one more than the largest referenced node index,
// never dropping below the fixed blocks.
func (g *Genome) recountNeurons() {
	n := g.Shape.FixedNodes()
	for _, gene := range g.genes {
		n = max(n, gene.From+1, gene.To+1)
	}
	g.neurons = n
}

// addNeuron allocates a new hidden node index.
func (g *Genome) addNeuron() int {
	n := g.neurons
	g.neurons++
	return n
}

// BecomeFullyConnected links every input and every bias to every output with
// random weights in ±WeightRange.
func (g *Genome) BecomeFullyConnected(rng *rand.Rand, tracker *InnovationTracker) {
	inputEdge := g.Shape.Inputs
	outputEdge := inputEdge + g.Shape.Outputs
	biasEdge := outputEdge + g.Shape.Biases
	for in := 0; in < inputEdge; in++ {
		for out := inputEdge; out < outputEdge; out++ {
			g.AddConnection(in, out, g.randomWeight(rng), tracker)
		}
	}
	for bias := outputEdge; bias < biasEdge; bias++ {
		for out := inputEdge; out < outputEdge; out++ {
			g.AddConnection(bias, out, g.randomWeight(rng), tracker)
		}
	}
}

func (g *Genome) randomWeight(rng *rand.Rand) float64 {
	return rng.Float64()*g.Shape.WeightRange*2 - g.Shape.WeightRange
}

// sortedByMarker returns the genes ordered by marker without touching the genome.
func (g *Genome) sortedByMarker() []Gene {
	genes := g.Genes()
	sort.SliceStable(genes, func(i, j int) bool { return genes[i].Marker < genes[j].Marker })
	return genes
}

// String returns a human readable summary of the genome.
func (g *Genome) String() string {
	parts := make([]string, len(g.genes))
	for i, gene := range g.genes {
		parts[i] = gene.String()
	}
	return fmt.Sprintf("Genome(inputs: %d, outputs: %d, biases: %d, neurons: %d, recurrent: %t, genes: %s)",
		g.Shape.Inputs, g.Shape.Outputs, g.Shape.Biases, g.neurons, g.Shape.Recurrent, strings.Join(parts, " "))
}
