package jigsaw

import (
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/meesterstump/puzzle-generator/internal/geom"
	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func puzzleLattice() *lattice.Lattice {
	return lattice.Build(900, 600, 120, nil)
}

func TestShuffle_IsSeededPermutation(t *testing.T) {
	ids := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	a := slices.Clone(ids)
	b := slices.Clone(ids)
	Shuffle(a, newRNG(7))
	Shuffle(b, newRNG(7))
	if !slices.Equal(a, b) {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
	sorted := slices.Clone(a)
	slices.Sort(sorted)
	if !slices.Equal(sorted, ids) {
		t.Fatalf("shuffle lost elements: %v", a)
	}
}

func TestShuffle_SingleElementDrawsNothing(t *testing.T) {
	rng := newRNG(3)
	Shuffle([]int{42}, rng)
	Shuffle(nil, rng)
	if got, want := rng.Int63(), newRNG(3).Int63(); got != want {
		t.Fatalf("shuffle of <2 elements consumed randomness")
	}
}

func TestFloodFill_PartitionIsComplete(t *testing.T) {
	l := puzzleLattice()
	for _, prob := range []float64{0, 0.25, 0.5, 0.9, 1} {
		p := FloodFill(l, prob, newRNG(11))
		if err := p.Validate(l); err != nil {
			t.Fatalf("p=%v: %v", prob, err)
		}
		if p.Pairs != nil {
			t.Fatalf("flood fill should not emit pairs")
		}
	}
}

func TestFloodFill_ZeroProbabilityGivesOneClusterPerTriangle(t *testing.T) {
	l := puzzleLattice()
	p := FloodFill(l, 0, newRNG(1))
	if got, want := len(p.Clusters), len(l.InsideTriangles()); got != want {
		t.Fatalf("expected %d clusters, got %d", want, got)
	}
	for _, c := range p.Clusters {
		if len(c.Triangles) != 1 {
			t.Fatalf("cluster %d has %d triangles", c.ID, len(c.Triangles))
		}
	}
}

func TestFloodFill_FullProbabilityGivesOneCluster(t *testing.T) {
	l := puzzleLattice()
	p := FloodFill(l, 1, newRNG(1))
	if len(p.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(p.Clusters))
	}
	if got, want := len(p.Clusters[0].Triangles), len(l.InsideTriangles()); got != want {
		t.Fatalf("cluster holds %d of %d triangles", got, want)
	}
}

func TestFloodFill_ClampsProbability(t *testing.T) {
	l := puzzleLattice()
	if !reflect.DeepEqual(FloodFill(l, -3, newRNG(5)), FloodFill(l, 0, newRNG(5))) {
		t.Errorf("negative probability should behave like 0")
	}
	if !reflect.DeepEqual(FloodFill(l, 7, newRNG(5)), FloodFill(l, 1, newRNG(5))) {
		t.Errorf("probability above 1 should behave like 1")
	}
}

func TestFloodFill_IsDeterministic(t *testing.T) {
	l := puzzleLattice()
	a := FloodFill(l, 0.6, newRNG(99))
	b := FloodFill(puzzleLattice(), 0.6, newRNG(99))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same lattice, seed and probability gave different partitions")
	}
	c := FloodFill(l, 0.6, newRNG(100))
	if reflect.DeepEqual(a.Assignment, c.Assignment) {
		t.Fatalf("different seeds gave identical partitions")
	}
}

func TestFloodFill_ClusterEdgesAreTouchedEdges(t *testing.T) {
	l := puzzleLattice()
	p := FloodFill(l, 0.5, newRNG(2))
	for _, c := range p.Clusters {
		want := map[int]bool{}
		for _, tid := range c.Triangles {
			for _, e := range l.Triangles[tid].Edges {
				want[e] = true
			}
		}
		if len(want) != len(c.Edges) || !slices.IsSorted(c.Edges) {
			t.Fatalf("cluster %d edges %v do not match its triangles", c.ID, c.Edges)
		}
		for _, e := range c.Edges {
			if !want[e] {
				t.Fatalf("cluster %d lists untouched edge %d", c.ID, e)
			}
		}
	}
}

func TestPairwise_PairsAreValid(t *testing.T) {
	l := puzzleLattice()
	p := Pairwise(l, 0.5, newRNG(4))
	if err := p.Validate(l); err != nil {
		t.Fatal(err)
	}
	if len(p.Pairs) != len(p.Clusters) {
		t.Fatalf("%d pairs for %d clusters", len(p.Pairs), len(p.Clusters))
	}
	singles := 0
	for i, pair := range p.Pairs {
		if !slices.Equal(pair.Triangles, p.Clusters[i].Triangles) {
			t.Fatalf("pair %d and cluster %d disagree", pair.ID, i)
		}
		switch len(pair.Triangles) {
		case 1:
			singles++
			if pair.RemovedEdge != NoEdge {
				t.Fatalf("single pair %d removed edge %d", pair.ID, pair.RemovedEdge)
			}
		case 2:
			if pair.RemovedEdge < 0 || pair.RemovedEdge >= len(l.Edges) {
				t.Fatalf("pair %d removed invalid edge %d", pair.ID, pair.RemovedEdge)
			}
			e := l.Edges[pair.RemovedEdge]
			a, b := pair.Triangles[0], pair.Triangles[1]
			if !slices.Contains(e.Triangles, a) || !slices.Contains(e.Triangles, b) {
				t.Fatalf("pair %d edge %d is not shared by %d and %d", pair.ID, e.ID, a, b)
			}
		default:
			t.Fatalf("pair %d has %d triangles", pair.ID, len(pair.Triangles))
		}
	}
	if inside := len(l.InsideTriangles()); singles%2 != inside%2 {
		t.Fatalf("%d singles for %d inside triangles", singles, inside)
	}
}

func TestPairwise_IsDeterministic(t *testing.T) {
	l := puzzleLattice()
	a := Pairwise(l, 0, newRNG(21))
	b := Pairwise(l, 0, newRNG(21))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed gave different pairings")
	}
}

// threeInARow builds a lattice whose only inside triangles are a chain of
// three: one triangle and two of its neighbors.
func threeInARow(t *testing.T) (*lattice.Lattice, []int) {
	t.Helper()
	base := puzzleLattice()
	var chain []int
	for _, tri := range base.Triangles {
		if tri.Inside && len(tri.Neighbors) == 3 {
			chain = []int{tri.Neighbors[0], tri.ID, tri.Neighbors[1]}
			break
		}
	}
	if chain == nil {
		t.Fatalf("no interior triangle found")
	}
	d := base.Spacing / 10
	var rings []geom.Ring
	for _, id := range chain {
		c := base.Triangles[id].Centroid
		rings = append(rings, geom.Ring{{X: c.X - d, Y: c.Y - d}, {X: c.X + d, Y: c.Y - d}, {X: c.X + d, Y: c.Y + d}, {X: c.X - d, Y: c.Y + d}})
	}
	l := lattice.Build(900, 600, 120, geom.NewBoundary(rings...))
	if got := l.InsideTriangles(); len(got) != 3 {
		t.Fatalf("expected 3 inside triangles, got %v", got)
	}
	return l, chain
}

func TestPairwise_OddCountLeavesOneSingle(t *testing.T) {
	l, chain := threeInARow(t)
	for seed := int64(0); seed < 20; seed++ {
		p := Pairwise(l, 0, newRNG(seed))
		if err := p.Validate(l); err != nil {
			t.Fatal(err)
		}
		if len(p.Pairs) != 2 {
			t.Fatalf("seed %d: expected 2 pairs, got %d", seed, len(p.Pairs))
		}
		singles := 0
		for _, pair := range p.Pairs {
			if len(pair.Triangles) == 1 {
				singles++
				continue
			}
			if !slices.Contains(pair.Triangles, chain[1]) {
				t.Fatalf("seed %d: pair %v does not include the middle triangle", seed, pair.Triangles)
			}
		}
		if singles != 1 {
			t.Fatalf("seed %d: expected exactly one single, got %d", seed, singles)
		}
	}
}

func TestPairwise_RematchStrandedSingles(t *testing.T) {
	// A rectangle lattice has a near-perfect matching; greedy pairing alone
	// strands many singles, rematching should leave only a handful.
	l := puzzleLattice()
	p := Pairwise(l, 0, newRNG(8))
	singles := 0
	for _, pair := range p.Pairs {
		if len(pair.Triangles) == 1 {
			singles++
		}
	}
	if singles > len(l.InsideTriangles())/10+1 {
		t.Fatalf("too many singles after rematching: %d", singles)
	}
}

func TestGrow_UnknownStrategy(t *testing.T) {
	if _, err := Grow("voronoi", puzzleLattice(), 0.5, newRNG(1)); err == nil {
		t.Fatalf("expected an error for an unknown strategy")
	}
	for _, name := range StrategyNames() {
		p, err := Grow(name, puzzleLattice(), 0.5, newRNG(1))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if p.Strategy != name {
			t.Fatalf("partition strategy %q, want %q", p.Strategy, name)
		}
	}
}

func TestGrow_NoInsideTriangles(t *testing.T) {
	far := geom.NewBoundary(geom.Ring{{X: 5000, Y: 5000}, {X: 5100, Y: 5000}, {X: 5100, Y: 5100}})
	l := lattice.Build(900, 600, 120, far)
	for _, name := range StrategyNames() {
		p, _ := Grow(name, l, 0.5, newRNG(1))
		if len(p.Clusters) != 0 {
			t.Fatalf("%s: expected no clusters, got %d", name, len(p.Clusters))
		}
		if err := p.Validate(l); err != nil {
			t.Fatal(err)
		}
	}
}
