package jigsaw

import (
	"slices"

	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

// FillHoles returns a partition in which every cluster walled off from the
// outside of the puzzle by a single surrounding cluster has been merged into
// that cluster. A traced outline only keeps a cluster's outer loop, so an
// enclosed cluster would otherwise end up underneath its neighbor.
//
// FillHoles draws no randomness and never modifies p; when nothing is
// enclosed it returns p itself.
func FillHoles(l *lattice.Lattice, p *Partition) *Partition {
	n := len(p.Clusters)
	if n < 2 {
		return p
	}
	adj := clusterGraph(l, p)

	// Node n stands for everything outside the clusters. A cluster A that is
	// an articulation point separating some subtree from node n encloses
	// that whole subtree.
	g := &separator{
		adj:    adj,
		disc:   make([]int, n+1),
		low:    make([]int, n+1),
		kids:   make([][]int, n+1),
		parent: make([]int, n+1),
	}
	for i := range g.parent {
		g.parent[i] = -1
	}
	g.visit(n)

	into := make([]int, n)
	for i := range into {
		into[i] = -1
	}
	absorbed := g.assign(n, -1, into)
	if absorbed == 0 {
		return p
	}

	out := newPartition(p.Strategy, l)
	for _, c := range p.Clusters {
		if into[c.ID] >= 0 {
			continue
		}
		members := slices.Clone(c.Triangles)
		for _, o := range p.Clusters {
			if into[o.ID] == c.ID {
				members = append(members, o.Triangles...)
			}
		}
		out.addCluster(l, members)
	}
	if p.Pairs != nil {
		// Pairs cannot enclose anything, but keep the mirror honest anyway.
		for _, c := range out.Clusters {
			pair := Pair{ID: c.ID, Triangles: c.Triangles, RemovedEdge: NoEdge}
			if len(c.Triangles) == 2 {
				pair.RemovedEdge, _ = l.SharedEdge(c.Triangles[0], c.Triangles[1])
			}
			out.Pairs = append(out.Pairs, pair)
		}
	}
	return out
}

// clusterGraph lists, for each cluster and for the outside node (index
// len(p.Clusters)), the clusters it shares a lattice edge with, ascending.
func clusterGraph(l *lattice.Lattice, p *Partition) [][]int {
	n := len(p.Clusters)
	outside := n
	node := func(t int) int {
		if a := p.Assignment[t]; a != Unassigned {
			return a
		}
		return outside
	}
	adj := make([][]int, n+1)
	link := func(a, b int) {
		if a != b {
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}
	for _, e := range l.Edges {
		switch len(e.Triangles) {
		case 1:
			link(node(e.Triangles[0]), outside)
		case 2:
			link(node(e.Triangles[0]), node(e.Triangles[1]))
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return adj
}

// separator runs a depth-first search computing discovery times and low
// links, remembering the DFS tree.
type separator struct {
	adj    [][]int
	disc   []int
	low    []int
	kids   [][]int
	parent []int
	clock  int
}

func (g *separator) visit(u int) {
	g.clock++
	g.disc[u] = g.clock
	g.low[u] = g.clock
	for _, v := range g.adj[u] {
		switch {
		case g.disc[v] == 0:
			g.parent[v] = u
			g.kids[u] = append(g.kids[u], v)
			g.visit(v)
			g.low[u] = min(g.low[u], g.low[v])
		case v != g.parent[u]:
			g.low[u] = min(g.low[u], g.disc[v])
		}
	}
}

// assign walks the DFS tree from u, recording in into which cluster each
// enclosed cluster merges into. into is -1 while no enclosing cluster has
// been met on the way down. It returns the number of merged clusters.
func (g *separator) assign(u, target int, into []int) int {
	root := u == len(into)
	count := 0
	if !root && target >= 0 {
		into[u] = target
		count++
	}
	for _, v := range g.kids[u] {
		next := target
		if next < 0 && !root && g.low[v] >= g.disc[u] {
			next = u
		}
		count += g.assign(v, next, into)
	}
	return count
}
