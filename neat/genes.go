package neat

import "fmt"

// ConnectionKey identifies an edge by its endpoints.
type ConnectionKey struct {
	From int
	To   int
}

// Gene is one candidate connection of a genome.
//
// Genes are values: changing a weight or the enabled flag produces a new Gene that
// keeps the same marker.
type Gene struct {
	From    int
	To      int
	Weight  float64
	Enabled bool
	Marker  uint64 // historical marker from the InnovationTracker
}

// Key returns the (from, to) pair of the gene.
func (g Gene) Key() ConnectionKey {
	return ConnectionKey{From: g.From, To: g.To}
}

// WithWeight returns a copy of the gene carrying a new weight.
func (g Gene) WithWeight(weight float64) Gene {
	g.Weight = weight
	return g
}

// WithEnabled returns a copy of the gene with the enabled flag set to enabled.
func (g Gene) WithEnabled(enabled bool) Gene {
	g.Enabled = enabled
	return g
}

// String returns a compact representation such as "[0->3(0.500)#7]".
func (g Gene) String() string {
	arrow := "->"
	if !g.Enabled {
		arrow = "X"
	}
	return fmt.Sprintf("[%d%s%d(%.3f)#%d]", g.From, arrow, g.To, g.Weight, g.Marker)
}
