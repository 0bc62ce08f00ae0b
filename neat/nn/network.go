package nn

import (
	"errors"
	"fmt"

	"github.com/baldhumanity/neatevo/neat"
)

var (
	// ErrInputCount is returned when Evaluate gets a different number of values than the network has inputs.
	ErrInputCount = errors.New("wrong number of inputs")
	// ErrCycleDetected is returned when a feed-forward network cannot order its nodes.
	// Mutation keeps non-recurrent genomes acyclic, so this indicates a corrupted genome.
	ErrCycleDetected = errors.New("cycle detected in feed-forward network")
)

// BiasValue is the constant output of every bias node.
const BiasValue = 1.0

// NodeKind tells how a node obtains its value.
type NodeKind int

const (
	Input NodeKind = iota
	Output
	Bias
	Hidden
)

func (k NodeKind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	case Bias:
		return "bias"
	default:
		return "hidden"
	}
}

type edge struct {
	from   int
	weight float64
}

// node stores its incoming edges; inputs and biases have none.
type node struct {
	kind     NodeKind
	incoming []edge
	value    float64
}

// Network is the phenotype of a genome: one node per node index and one weighted edge
// per enabled gene.
//
// Feed-forward networks compute every output from the current inputs only. Recurrent
// networks advance one timestep per Evaluate: an edge that closes a cycle carries the
// value its source had after the previous call. A Network is not safe for concurrent use.
type Network struct {
	inputs     int
	outputs    int
	recurrent  bool
	nodes      []node
	activation neat.ActivationFunc
	order      []int // evaluation order of computed nodes, built on first use
}

// Option configures Express.
type Option func(*Network)

// WithActivation sets the activation applied by hidden and output nodes. The default is neat.Squash.
func WithActivation(fn neat.ActivationFunc) Option {
	return func(n *Network) {
		if fn != nil {
			n.activation = fn
		}
	}
}

// Express builds the network described by g.
func Express(g *neat.Genome, opts ...Option) (*Network, error) {
	if g == nil {
		return nil, errors.New("cannot express a nil genome")
	}
	shape := g.Shape
	n := &Network{
		inputs:     shape.Inputs,
		outputs:    shape.Outputs,
		recurrent:  shape.Recurrent,
		nodes:      make([]node, g.Neurons()),
		activation: neat.Squash,
	}
	for _, opt := range opts {
		opt(n)
	}

	for i := range n.nodes {
		switch {
		case shape.IsInput(i):
			n.nodes[i].kind = Input
		case shape.IsOutput(i):
			n.nodes[i].kind = Output
		case shape.IsBias(i):
			n.nodes[i].kind = Bias
			n.nodes[i].value = BiasValue
		default:
			n.nodes[i].kind = Hidden
		}
	}
	for _, gene := range g.Genes() {
		if !gene.Enabled {
			continue
		}
		to := &n.nodes[gene.To]
		if to.kind == Input || to.kind == Bias {
			return nil, fmt.Errorf("gene %s feeds a %s node", gene, to.kind)
		}
		to.incoming = append(to.incoming, edge{from: gene.From, weight: gene.Weight})
	}
	return n, nil
}

// Recurrent reports whether the network keeps state between evaluations.
func (n *Network) Recurrent() bool { return n.recurrent }

// Nodes returns the number of nodes.
func (n *Network) Nodes() int { return len(n.nodes) }

// Kind returns the kind of node i.
func (n *Network) Kind(i int) NodeKind { return n.nodes[i].kind }

// Evaluate assigns inputs, computes the network and returns the output values.
func (n *Network) Evaluate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.inputs {
		return nil, fmt.Errorf("%w: got %d, network has %d", ErrInputCount, len(inputs), n.inputs)
	}
	if n.order == nil {
		var err error
		if n.recurrent {
			n.order = n.timestepOrder()
		} else if n.order, err = n.dependencyOrder(); err != nil {
			return nil, err
		}
	}

	for i, v := range inputs {
		n.nodes[i].value = v
	}
	for _, i := range n.order {
		nd := &n.nodes[i]
		sum := 0.0
		for _, e := range nd.incoming {
			sum += n.nodes[e.from].value * e.weight
		}
		nd.value = n.activation(sum)
	}

	out := make([]float64, n.outputs)
	for i := range out {
		out[i] = n.nodes[n.inputs+i].value
	}
	return out, nil
}

// Reset clears every computed value, so a recurrent network starts over from rest.
func (n *Network) Reset() {
	for i := range n.nodes {
		if k := n.nodes[i].kind; k == Output || k == Hidden {
			n.nodes[i].value = 0
		}
	}
}

// dependencyOrder pulls unresolved predecessors of the outputs backward until every
// needed node can be ordered after all of its predecessors. A pass that neither resolves
// nor discovers a node means the remaining nodes wait on each other.
func (n *Network) dependencyOrder() ([]int, error) {
	resolved := make([]bool, len(n.nodes))
	discovered := make([]bool, len(n.nodes))
	for i, nd := range n.nodes {
		if nd.kind == Input || nd.kind == Bias {
			resolved[i] = true
		}
	}

	var pending []int
	for i := n.inputs; i < n.inputs+n.outputs; i++ {
		pending = append(pending, i)
		discovered[i] = true
	}

	order := make([]int, 0, len(n.nodes))
	for len(pending) > 0 {
		progress := false
		waiting := pending[:0:0]
		for _, i := range pending {
			ready := true
			for _, e := range n.nodes[i].incoming {
				if resolved[e.from] {
					continue
				}
				ready = false
				if !discovered[e.from] {
					discovered[e.from] = true
					waiting = append(waiting, e.from)
					progress = true
				}
			}
			if ready {
				resolved[i] = true
				order = append(order, i)
				progress = true
			} else {
				waiting = append(waiting, i)
			}
		}
		if !progress {
			return nil, fmt.Errorf("%w: %d nodes cannot be resolved", ErrCycleDetected, len(waiting))
		}
		pending = waiting
	}
	return order, nil
}

// timestepOrder returns every output and hidden node in depth-first post-order over
// incoming edges, starting from the outputs. Edges back into the current path are not
// followed, so their sources are read before being recomputed.
func (n *Network) timestepOrder() []int {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]int, len(n.nodes))
	order := make([]int, 0, len(n.nodes))

	var visit func(i int)
	visit = func(i int) {
		state[i] = onPath
		for _, e := range n.nodes[i].incoming {
			if state[e.from] == unvisited && n.nodes[e.from].kind != Input && n.nodes[e.from].kind != Bias {
				visit(e.from)
			}
		}
		state[i] = done
		order = append(order, i)
	}
	for i := n.inputs; i < n.inputs+n.outputs; i++ {
		if state[i] == unvisited {
			visit(i)
		}
	}
	for i, nd := range n.nodes {
		if nd.kind == Hidden && state[i] == unvisited {
			visit(i)
		}
	}
	return order
}
