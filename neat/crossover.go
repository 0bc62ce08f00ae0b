package neat

import "math/rand"

// CrossGenomes aligns a and b by marker and assembles a child genome.
//
// A shared marker contributes the gene of a random parent, with the enabled flag drawn
// independently from either parent. Genes exclusive to one parent come from the fitter
// parent. On a fitness tie a recurrent genome takes each exclusive gene with probability
// 1/2, otherwise one parent's whole exclusive set is chosen at random. When two genes
// describe the same (from, to) pair the first one assembled wins, shared genes first.
//
// Hidden nodes that no longer sit on an enabled path from an input or bias to an output
// are removed together with every gene touching them.
func CrossGenomes(a, b *Genome, fitnessA, fitnessB float64, rng *rand.Rand) *Genome {
	genesA := a.sortedByMarker()
	genesB := b.sortedByMarker()
	child := NewGenome(a.Shape)

	var exclusiveA, exclusiveB []Gene
	i, j := 0, 0
	for i < len(genesA) && j < len(genesB) {
		switch ga, gb := genesA[i], genesB[j]; {
		case ga.Marker < gb.Marker:
			exclusiveA = append(exclusiveA, ga)
			i++
		case ga.Marker > gb.Marker:
			exclusiveB = append(exclusiveB, gb)
			j++
		default:
			next := ga
			if rng.Intn(2) == 0 {
				next = gb
			}
			enabled := ga.Enabled
			if rng.Intn(2) == 0 {
				enabled = gb.Enabled
			}
			child.addIfAbsent(next.WithEnabled(enabled))
			i++
			j++
		}
	}
	exclusiveA = append(exclusiveA, genesA[i:]...)
	exclusiveB = append(exclusiveB, genesB[j:]...)

	inherit := func(genes []Gene) {
		for _, gene := range genes {
			child.addIfAbsent(gene)
		}
	}
	switch {
	case fitnessA > fitnessB:
		inherit(exclusiveA)
	case fitnessB > fitnessA:
		inherit(exclusiveB)
	case a.Shape.Recurrent:
		for _, gene := range exclusiveA {
			if rng.Intn(2) == 0 {
				child.addIfAbsent(gene)
			}
		}
		for _, gene := range exclusiveB {
			if rng.Intn(2) == 0 {
				child.addIfAbsent(gene)
			}
		}
	case rng.Intn(2) == 0:
		inherit(exclusiveA)
	default:
		inherit(exclusiveB)
	}

	child.pruneDangling()
	return child
}

func (g *Genome) addIfAbsent(gene Gene) {
	if !g.HasConnection(gene.From, gene.To) {
		g.AddGene(gene)
	}
}

// pruneDangling drops every gene touching a hidden node that is not both reachable from
// an input or bias and able to reach an output through enabled genes, then recounts neurons.
func (g *Genome) pruneDangling() {
	s := g.Shape
	forward := make(map[int][]int)
	backward := make(map[int][]int)
	for _, gene := range g.genes {
		if gene.Enabled {
			forward[gene.From] = append(forward[gene.From], gene.To)
			backward[gene.To] = append(backward[gene.To], gene.From)
		}
	}

	var sources, sinks []int
	for n := 0; n < s.FixedNodes(); n++ {
		if s.IsOutput(n) {
			sinks = append(sinks, n)
		} else {
			sources = append(sources, n)
		}
	}
	fed := reachable(sources, forward)
	feeding := reachable(sinks, backward)
	live := func(n int) bool { return !s.IsHidden(n) || (fed[n] && feeding[n]) }

	kept := g.genes[:0]
	for _, gene := range g.genes {
		if live(gene.From) && live(gene.To) {
			kept = append(kept, gene)
		}
	}
	g.genes = kept
	g.reindex()
	g.recountNeurons()
}

// reachable returns every node reachable from start by following edges.
func reachable(start []int, edges map[int][]int) map[int]bool {
	seen := make(map[int]bool, len(start))
	queue := append([]int(nil), start...)
	for _, n := range start {
		seen[n] = true
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range edges[n] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
