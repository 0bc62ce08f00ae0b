package neat

import (
	"fmt"
	"math/rand"
)

// The operators below treat the genome as [inputs|outputs|biases|hidden] and never fail:
// a genome that offers nothing to mutate is left untouched.

// MutateLink adds a link whose source is an input, bias or hidden node and whose destination
// is an output or hidden node. If the link already exists its weight is redrawn instead.
// Non-recurrent genomes stay acyclic: a link that would close a cycle is added reversed.
func (g *Genome) MutateLink(rng *rand.Rand, tracker *InnovationTracker) {
	s := g.Shape
	sources := g.neurons - s.Outputs
	destinations := g.neurons - s.Inputs - s.Biases
	if sources <= 0 || destinations <= 0 {
		return
	}

	first := rng.Intn(sources)
	if first >= s.Inputs {
		first += s.Outputs
	}
	second := rng.Intn(destinations)
	if second >= s.Outputs {
		// translate non-outputs to be hidden
		second += s.Biases
	}
	second += s.Inputs

	if s.IsOutput(first) {
		panic(fmt.Sprintf("output node selected as link source: %d", first))
	}
	if s.IsBias(second) {
		panic(fmt.Sprintf("bias node selected as link destination: %d", second))
	}
	if s.IsInput(second) {
		panic(fmt.Sprintf("input node selected as link destination: %d", second))
	}
	if first == second {
		return
	}

	// Likely to hit once the network gets dense, which is exactly when the cycle check is slow.
	if g.HasConnection(second, first) {
		first, second = second, first
	}
	if i, ok := g.index[ConnectionKey{From: first, To: second}]; ok {
		g.updateGene(i, g.genes[i].WithWeight(g.randomWeight(rng)))
		return
	}
	if !s.Recurrent && s.IsHidden(first) && s.IsHidden(second) && g.feeds(second, first) {
		first, second = second, first
	}
	g.AddConnection(first, second, g.randomWeight(rng), tracker)
}

// MutateBiasLink adds a link from a bias node to an output or hidden node.
func (g *Genome) MutateBiasLink(rng *rand.Rand, tracker *InnovationTracker) {
	s := g.Shape
	destinations := g.neurons - s.Inputs - s.Biases
	if s.Biases == 0 || destinations <= 0 {
		return
	}

	first := rng.Intn(s.Biases) + s.Inputs + s.Outputs
	second := rng.Intn(destinations)
	if second >= s.Outputs {
		second += s.Biases
	}
	second += s.Inputs

	if !s.IsBias(first) {
		panic(fmt.Sprintf("non-bias node selected as bias link source: %d", first))
	}
	if s.IsBias(second) || s.IsInput(second) {
		panic(fmt.Sprintf("input or bias node selected as link destination: %d", second))
	}
	if g.HasConnection(first, second) {
		return
	}
	g.AddConnection(first, second, g.randomWeight(rng), tracker)
}

// MutateSensor adds a link from an input, bias or hidden node straight to an output node.
func (g *Genome) MutateSensor(rng *rand.Rand, tracker *InnovationTracker) {
	s := g.Shape
	sources := g.neurons - s.Outputs
	if sources <= 0 {
		return
	}

	first := rng.Intn(sources)
	if first >= s.Inputs {
		first += s.Outputs
	}
	second := rng.Intn(s.Outputs) + s.Inputs

	if s.IsOutput(first) {
		panic(fmt.Sprintf("output node selected as sensor link source: %d", first))
	}
	if !s.IsOutput(second) {
		panic(fmt.Sprintf("non-output node selected as sensor link destination: %d", second))
	}
	if g.HasConnection(first, second) {
		return
	}
	g.AddConnection(first, second, g.randomWeight(rng), tracker)
}

// MutateWeight nudges every weight by a uniform delta in ±WeightStep.
func (g *Genome) MutateWeight(rng *rand.Rand) {
	step := g.Shape.WeightStep
	for i, gene := range g.genes {
		g.genes[i] = gene.WithWeight(gene.Weight + rng.Float64()*step*2 - step)
	}
}

// MutateRandomWeight replaces one weight with a uniform value in ±WeightRange.
func (g *Genome) MutateRandomWeight(rng *rand.Rand) {
	if len(g.genes) == 0 {
		return
	}
	i := rng.Intn(len(g.genes))
	g.updateGene(i, g.genes[i].WithWeight(g.randomWeight(rng)))
}

// MutateNeuron splits an enabled link a->b into a->n (weight 1) and n->b (old weight),
// where n is a new hidden node, and disables the original link.
func (g *Genome) MutateNeuron(rng *rand.Rand, tracker *InnovationTracker) {
	enabled := g.positions(true)
	if len(enabled) == 0 {
		return
	}
	i := enabled[rng.Intn(len(enabled))]
	old := g.genes[i]
	g.updateGene(i, old.WithEnabled(false))

	n := g.addNeuron()
	g.AddConnection(old.From, n, 1, tracker)
	g.AddConnection(n, old.To, old.Weight, tracker)
}

// MutateEnable re-enables one disabled link.
func (g *Genome) MutateEnable(rng *rand.Rand) {
	disabled := g.positions(false)
	if len(disabled) == 0 {
		return
	}
	i := disabled[rng.Intn(len(disabled))]
	g.updateGene(i, g.genes[i].WithEnabled(true))
}

// MutateDisable disables one enabled link, unless it is the last enabled link leaving its source.
func (g *Genome) MutateDisable(rng *rand.Rand) {
	enabled := g.positions(true)
	if len(enabled) == 0 {
		return
	}
	i := enabled[rng.Intn(len(enabled))]
	flipping := g.genes[i]
	for _, gene := range g.genes {
		if gene.Enabled && gene.From == flipping.From && gene.Marker != flipping.Marker {
			g.updateGene(i, flipping.WithEnabled(false))
			return
		}
	}
}

// MutateDestroy removes one disabled gene. Enabled genes are never removed.
func (g *Genome) MutateDestroy(rng *rand.Rand) {
	disabled := g.positions(false)
	if len(disabled) == 0 {
		return
	}
	g.removeGene(disabled[rng.Intn(len(disabled))])
}

// positions returns the indices of genes whose enabled flag equals enabled.
func (g *Genome) positions(enabled bool) []int {
	var out []int
	for i, gene := range g.genes {
		if gene.Enabled == enabled {
			out = append(out, i)
		}
	}
	return out
}

// feeds reports whether from already reaches to through existing genes.
// It walks predecessors backward from to, so the cost is O(genes) per call.
// Disabled genes count as well: they may be re-enabled later.
func (g *Genome) feeds(from, to int) bool {
	sources := make(map[int][]int)
	for _, gene := range g.genes {
		sources[gene.To] = append(sources[gene.To], gene.From)
	}
	visited := make(map[int]bool)
	queue := append([]int(nil), sources[to]...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == from {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, src := range sources[current] {
			if !visited[src] {
				queue = append(queue, src)
			}
		}
	}
	return false
}
