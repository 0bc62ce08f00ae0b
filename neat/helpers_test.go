package neat

import (
	"math/rand"
)

func testRand() *rand.Rand { return rand.New(rand.NewSource(42)) }

// parityShape is the 3 input, 1 output, 1 bias feed-forward shape.
func parityShape() NetworkShape {
	return NetworkShape{Inputs: 3, Outputs: 1, Biases: 1, WeightRange: 2, WeightStep: 0.01}
}

func genomeWith(shape NetworkShape, genes ...Gene) *Genome {
	g := NewGenome(shape)
	for _, gene := range genes {
		g.AddGene(gene)
	}
	return g
}

func link(from, to int, weight float64, marker uint64) Gene {
	return Gene{From: from, To: to, Weight: weight, Enabled: true, Marker: marker}
}

// acyclic reports whether the genes of g, enabled or not, form a DAG.
func acyclic(g *Genome) bool {
	indegree := make(map[int]int)
	out := make(map[int][]int)
	nodes := make(map[int]bool)
	for _, gene := range g.Genes() {
		out[gene.From] = append(out[gene.From], gene.To)
		indegree[gene.To]++
		nodes[gene.From], nodes[gene.To] = true, true
	}
	var queue []int
	for n := range nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	seen := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		seen++
		for _, m := range out[n] {
			indegree[m]--
			if indegree[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	return seen == len(nodes)
}

// fakeIndividual is an Individual that is not neural, counting what was asked of it.
type fakeIndividual struct {
	fitness   float64
	cloned    bool
	crossed   bool
	mutations int
	distance  float64 // reported by Distance regardless of the other individual
}

func (f *fakeIndividual) Fitness() float64           { return f.fitness }
func (f *fakeIndividual) SetFitness(v float64)       { f.fitness = v }
func (f *fakeIndividual) DivideFitness(n float64)    { f.fitness /= n }
func (f *fakeIndividual) MutateCloning(*rand.Rand)   { f.mutations++ }
func (f *fakeIndividual) MutateCrossover(*rand.Rand) { f.mutations++ }

func (f *fakeIndividual) Distance(Individual, SpeciationParams) (float64, error) { return f.distance, nil }

func (f *fakeIndividual) Crossover(Individual, *rand.Rand) (Individual, error) {
	return &fakeIndividual{crossed: true}, nil
}

func (f *fakeIndividual) Clone() Individual {
	c := *f
	c.cloned = true
	return &c
}
