// Package jigsaw implements randomized region growing over a triangle
// lattice: adjacent triangles are merged into clusters that become puzzle
// pieces. It has no knowledge of tracing or topology so that it can be
// imported by any later stage without creating an import cycle.
//
// Every strategy draws from the *rand.Rand it is handed and from nothing
// else, in the order documented on the strategy. Identical lattice, seed and
// probability therefore give an identical partition.
package jigsaw

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

// GrowFunc partitions the in-boundary triangles of l.
type GrowFunc func(l *lattice.Lattice, mergeProbability float64, rng *rand.Rand) *Partition

const (
	StrategyFlood    = "flood"
	StrategyPairwise = "pairwise"
)

// Strategies lists the available growers by name.
var Strategies = map[string]GrowFunc{
	StrategyFlood:    FloodFill,
	StrategyPairwise: Pairwise,
}

// StrategyNames returns the registered strategy names in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(Strategies))
	for name := range Strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Grow runs the named strategy.
func Grow(name string, l *lattice.Lattice, mergeProbability float64, rng *rand.Rand) (*Partition, error) {
	grow, ok := Strategies[name]
	if !ok {
		return nil, fmt.Errorf("jigsaw: unknown strategy %q (have %v)", name, StrategyNames())
	}
	return grow(l, mergeProbability, rng), nil
}

// Shuffle permutes ids in place with a Fisher-Yates shuffle, drawing
// rng.Intn(i+1) once for each i from len(ids)-1 down to 1.
func Shuffle(ids []int, rng *rand.Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// FloodFill grows variable-sized organic clusters.
//
// In-boundary triangles are visited in ascending ID order; each one still
// unassigned seeds a new cluster, which then expands depth-first:
//
//	Pop a member. Collect its in-boundary neighbors that are still
//	unassigned, in the order the lattice lists them, and shuffle them
//	(len-1 Intn draws). For each candidate that is still unassigned, draw
//	one Float64; the candidate joins the cluster and is pushed when the
//	draw is below mergeProbability.
//
// Expansion stops when the stack empties. A probability of 0 gives one
// cluster per triangle; 1 gives one cluster per connected component.
func FloodFill(l *lattice.Lattice, mergeProbability float64, rng *rand.Rand) *Partition {
	p := newPartition(StrategyFlood, l)
	mergeProbability = clampProbability(mergeProbability)

	// pending marks triangles already claimed by the growing cluster.
	pending := make([]bool, len(l.Triangles))
	stack := make([]int, 0, 64)
	candidates := make([]int, 0, 3)

	for _, seed := range l.InsideTriangles() {
		if p.Assignment[seed] != Unassigned {
			continue
		}
		members := []int{seed}
		pending[seed] = true
		stack = append(stack[:0], seed)

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			candidates = candidates[:0]
			for _, nb := range l.Triangles[cur].Neighbors {
				if l.Triangles[nb].Inside && p.Assignment[nb] == Unassigned && !pending[nb] {
					candidates = append(candidates, nb)
				}
			}
			Shuffle(candidates, rng)

			for _, nb := range candidates {
				if pending[nb] {
					continue
				}
				if rng.Float64() < mergeProbability {
					pending[nb] = true
					members = append(members, nb)
					stack = append(stack, nb)
				}
			}
		}
		p.addCluster(l, members)
	}
	return p
}
