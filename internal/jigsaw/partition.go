package jigsaw

import (
	"fmt"
	"math"
	"slices"

	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

const (
	// Unassigned marks a triangle that belongs to no cluster.
	Unassigned = -1

	// NoEdge is the RemovedEdge of a singleton pair.
	NoEdge = -1
)

// Cluster is a group of triangles destined to become one piece.
type Cluster struct {
	ID        int
	Triangles []int

	// Edges lists every lattice edge touched by a member, ascending.
	Edges []int
}

// Pair is a pairwise-strategy group: two triangles joined across
// RemovedEdge, or a lone triangle with RemovedEdge == NoEdge.
type Pair struct {
	ID          int
	Triangles   []int
	RemovedEdge int
}

// Partition assigns every in-boundary triangle to exactly one cluster.
//
// Partition is owned by the run that grew it; later stages only read it.
type Partition struct {
	// Strategy is the name the partition was grown with.
	Strategy string

	// Assignment maps a triangle ID to its cluster ID, or Unassigned.
	Assignment []int

	Clusters []Cluster

	// Pairs mirrors Clusters one to one for the pairwise strategy and is nil
	// otherwise.
	Pairs []Pair
}

func newPartition(strategy string, l *lattice.Lattice) *Partition {
	assigned := make([]int, len(l.Triangles))
	for i := range assigned {
		assigned[i] = Unassigned
	}
	return &Partition{Strategy: strategy, Assignment: assigned}
}

// addCluster records members as a new cluster and returns its ID.
func (p *Partition) addCluster(l *lattice.Lattice, members []int) int {
	id := len(p.Clusters)
	var edges []int
	for _, t := range members {
		p.Assignment[t] = id
		edges = append(edges, l.Triangles[t].Edges[:]...)
	}
	slices.Sort(edges)
	p.Clusters = append(p.Clusters, Cluster{
		ID:        id,
		Triangles: members,
		Edges:     slices.Compact(edges),
	})
	return id
}

// Sizes returns the number of triangles in each cluster.
func (p *Partition) Sizes() []int {
	sizes := make([]int, len(p.Clusters))
	for i, c := range p.Clusters {
		sizes[i] = len(c.Triangles)
	}
	return sizes
}

// Validate checks that p partitions the in-boundary triangles of l and that
// every cluster is connected through shared edges.
func (p *Partition) Validate(l *lattice.Lattice) error {
	if len(p.Assignment) != len(l.Triangles) {
		return fmt.Errorf("partition: %d assignments for %d triangles", len(p.Assignment), len(l.Triangles))
	}
	seen := make([]int, len(l.Triangles))
	for _, c := range p.Clusters {
		if len(c.Triangles) == 0 {
			return fmt.Errorf("partition: cluster %d is empty", c.ID)
		}
		for _, t := range c.Triangles {
			if !l.Triangles[t].Inside {
				return fmt.Errorf("partition: cluster %d holds out-of-boundary triangle %d", c.ID, t)
			}
			if p.Assignment[t] != c.ID {
				return fmt.Errorf("partition: triangle %d listed in cluster %d but assigned to %d", t, c.ID, p.Assignment[t])
			}
			seen[t]++
		}
	}
	for _, tri := range l.Triangles {
		switch {
		case tri.Inside && seen[tri.ID] != 1:
			return fmt.Errorf("partition: inside triangle %d appears in %d clusters", tri.ID, seen[tri.ID])
		case !tri.Inside && p.Assignment[tri.ID] != Unassigned:
			return fmt.Errorf("partition: outside triangle %d is assigned to %d", tri.ID, p.Assignment[tri.ID])
		}
	}
	for _, c := range p.Clusters {
		if err := p.validateContiguous(l, c); err != nil {
			return err
		}
	}
	return nil
}

// validateContiguous performs a BFS from the first member to verify that
// every member of c is reachable through neighbors in the same cluster.
func (p *Partition) validateContiguous(l *lattice.Lattice, c Cluster) error {
	visited := map[int]bool{c.Triangles[0]: true}
	queue := []int{c.Triangles[0]}
	for head := 0; head < len(queue); head++ {
		for _, nb := range l.Triangles[queue[head]].Neighbors {
			if p.Assignment[nb] == c.ID && !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	if len(visited) != len(c.Triangles) {
		return fmt.Errorf("partition: cluster %d is not contiguous (%d of %d triangles reachable from %d)",
			c.ID, len(visited), len(c.Triangles), c.Triangles[0])
	}
	return nil
}

// clampProbability maps p into [0,1]; NaN becomes 0.
func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}
