package jigsaw

import (
	"fmt"
	"math/rand"

	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

// Pairwise merges triangles two at a time into diamonds, a lower-variance
// alternative to FloodFill. mergeProbability is accepted for a uniform
// contract and ignored.
//
// Phase 1, greedy pairing:
//
//	Shuffle the in-boundary triangle IDs (len-1 Intn draws). Walk them in
//	that order; for each triangle not yet paired, collect its in-boundary
//	neighbors that are not yet paired, shuffle them (len-1 Intn draws) and
//	pair with the first. A triangle with no candidate stays single.
//
// Phase 2, rematching (no draws):
//
//	Greedy pairing strands triangles whose neighbors were all taken. For
//	each single triangle, in phase 1 order, search breadth-first for an
//	alternating chain of swaps that ends at another single triangle and
//	apply it. Up- and down-pointing triangles only ever neighbor each
//	other, so the adjacency graph is bipartite and this leaves the fewest
//	singles possible.
//
// Pairs are emitted in phase 1 order.
func Pairwise(l *lattice.Lattice, _ float64, rng *rand.Rand) *Partition {
	p := newPartition(StrategyPairwise, l)

	order := l.InsideTriangles()
	Shuffle(order, rng)

	mate := make([]int, len(l.Triangles))
	for i := range mate {
		mate[i] = Unassigned
	}

	// --- Phase 1: greedy pairing ---
	candidates := make([]int, 0, 3)
	for _, t := range order {
		if mate[t] != Unassigned {
			continue
		}
		candidates = candidates[:0]
		for _, nb := range l.Triangles[t].Neighbors {
			if l.Triangles[nb].Inside && mate[nb] == Unassigned {
				candidates = append(candidates, nb)
			}
		}
		Shuffle(candidates, rng)
		if len(candidates) > 0 {
			mate[t] = candidates[0]
			mate[candidates[0]] = t
		}
	}

	// --- Phase 2: rematch singles along alternating chains ---
	m := &matcher{
		l:     l,
		mate:  mate,
		via:   make([]int, len(l.Triangles)),
		stamp: make([]int, len(l.Triangles)),
	}
	for _, t := range order {
		if mate[t] == Unassigned {
			m.augment(t)
		}
	}

	emitted := make([]bool, len(l.Triangles))
	for _, t := range order {
		if emitted[t] {
			continue
		}
		emitted[t] = true
		pair := Pair{ID: len(p.Pairs), Triangles: []int{t}, RemovedEdge: NoEdge}
		if o := mate[t]; o != Unassigned {
			emitted[o] = true
			eid, ok := l.SharedEdge(t, o)
			if !ok {
				panic(fmt.Sprintf("jigsaw: paired triangles %d and %d share no edge", t, o))
			}
			pair.Triangles = append(pair.Triangles, o)
			pair.RemovedEdge = eid
		}
		p.addCluster(l, pair.Triangles)
		p.Pairs = append(p.Pairs, pair)
	}
	return p
}

// matcher holds the scratch state of the rematch phase. stamp[t] == round
// means t was reached during the current search.
type matcher struct {
	l     *lattice.Lattice
	mate  []int
	via   []int
	stamp []int
	round int
}

// augment looks for an alternating chain from the single triangle u to some
// other single triangle and flips it. It reports whether u got a partner.
func (m *matcher) augment(u int) bool {
	m.round++
	m.stamp[u] = m.round
	queue := []int{u}
	for head := 0; head < len(queue); head++ {
		x := queue[head]
		for _, v := range m.l.Triangles[x].Neighbors {
			if !m.l.Triangles[v].Inside || m.stamp[v] == m.round {
				continue
			}
			m.stamp[v] = m.round
			m.via[v] = x
			w := m.mate[v]
			if w == Unassigned {
				m.flip(u, v)
				return true
			}
			if m.stamp[w] != m.round {
				m.stamp[w] = m.round
				queue = append(queue, w)
			}
		}
	}
	return false
}

// flip re-pairs every triangle along the chain that ends at the single
// triangle v and started at u.
func (m *matcher) flip(u, v int) {
	for {
		x := m.via[v]
		prev := m.mate[x]
		m.mate[x] = v
		m.mate[v] = x
		if x == u {
			return
		}
		v = prev
	}
}
