package lattice

import (
	"math"
	"reflect"
	"testing"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

func TestBuild_StructureIsValid(t *testing.T) {
	l := Build(900, 600, 120, nil)
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if got, want := len(l.Triangles), (l.Rows-1)*(l.Cols-1)*2; got != want {
		t.Fatalf("expected %d triangles, got %d", want, got)
	}
	if got, want := len(l.Vertices), l.Rows*l.Cols; got != want {
		t.Fatalf("expected %d vertices, got %d", want, got)
	}
	// Euler's formula for a triangulated disk: V - E + F = 1.
	if euler := len(l.Vertices) - len(l.Edges) + len(l.Triangles); euler != 1 {
		t.Fatalf("V-E+F = %d, expected 1", euler)
	}
}

func TestBuild_TrianglesAreEquilateral(t *testing.T) {
	l := Build(500, 400, 50, nil)
	for _, tri := range l.Triangles {
		for k := range 3 {
			a := l.Vertices[tri.Vertices[k]].Pos
			b := l.Vertices[tri.Vertices[(k+1)%3]].Pos
			if d := a.Distance(b); math.Abs(d-50) > 1e-9 {
				t.Fatalf("triangle %d side %d has length %v", tri.ID, k, d)
			}
		}
	}
}

func TestBuild_AdjacencyIsSymmetric(t *testing.T) {
	l := Build(900, 600, 120, nil)
	for _, a := range l.Triangles {
		if len(a.Neighbors) > 3 {
			t.Fatalf("triangle %d has %d neighbors", a.ID, len(a.Neighbors))
		}
		for _, b := range a.Neighbors {
			found := 0
			for _, back := range l.Triangles[b].Neighbors {
				if back == a.ID {
					found++
				}
			}
			if found != 1 {
				t.Fatalf("triangle %d lists %d, which lists it back %d times", a.ID, b, found)
			}
		}
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	b := geom.FlattenBoundary(geom.EllipseBorder(900, 600), geom.DefaultFlattenStep)
	first := Build(900, 600, 120, b)
	second := Build(900, 600, 120, b)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two builds with identical inputs differ")
	}
}

func TestBuild_OverscanCoversArea(t *testing.T) {
	l := Build(900, 600, 120, nil)
	bounds := geom.EmptyBounds()
	for _, v := range l.Vertices {
		bounds = bounds.Extend(v.Pos)
	}
	if bounds.Min.X > -120+1e-9 || bounds.Min.Y > -120+1e-9 {
		t.Fatalf("lattice does not start one spacing before the area: %v", bounds.Min)
	}
	if bounds.Max.X < 900+120 || bounds.Max.Y < 600+120-l.RowHeight {
		t.Fatalf("lattice does not cover the area with overscan: %v", bounds.Max)
	}
}

func TestBuild_InsideFlags(t *testing.T) {
	l := Build(900, 600, 120, nil)
	inside := 0
	for _, tri := range l.Triangles {
		c := tri.Centroid
		if math.Abs(c.X-900) < 1e-9 || math.Abs(c.X) < 1e-9 {
			// on the border itself; either answer is acceptable
			continue
		}
		want := c.X > 0 && c.X < 900 && c.Y > 0 && c.Y < 600
		if tri.Inside != want {
			t.Fatalf("triangle %d at %v inside=%v", tri.ID, c, tri.Inside)
		}
		if tri.Inside {
			inside++
		}
	}
	if inside == 0 || inside == len(l.Triangles) {
		t.Fatalf("expected a mix of inside and outside triangles, got %d of %d", inside, len(l.Triangles))
	}
	for _, e := range l.Edges {
		want := len(e.Triangles) == 1
		for _, tid := range e.Triangles {
			if !l.Triangles[tid].Inside {
				want = true
			}
		}
		if e.TouchesBoundary != want {
			t.Fatalf("edge %d touches boundary = %v, want %v", e.ID, e.TouchesBoundary, want)
		}
	}
}

func TestBuild_TinyAreaStillHasTriangles(t *testing.T) {
	cases := []struct {
		name          string
		w, h, spacing float64
	}{
		{"smaller than spacing", 0.5, 0.5, 10},
		{"zero area", 0, 0, 10},
		{"negative spacing", 10, 10, -5},
		{"nan spacing", 10, 10, math.NaN()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := Build(c.w, c.h, c.spacing, nil)
			if l.Rows < 2 || l.Cols < 2 || len(l.Triangles) == 0 {
				t.Fatalf("degenerate lattice: %d×%d, %d triangles", l.Rows, l.Cols, len(l.Triangles))
			}
			if l.Spacing < MinSpacing {
				t.Fatalf("spacing %v below floor", l.Spacing)
			}
			if err := l.Validate(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestBuild_HugeAreaRaisesSpacing(t *testing.T) {
	l := Build(100000, 100000, 1, nil)
	if len(l.Triangles) > MaxTriangles*11/10 {
		t.Fatalf("lattice has %d triangles, limit %d", len(l.Triangles), MaxTriangles)
	}
}

func TestBuild_BoundaryExcludingEverything(t *testing.T) {
	far := geom.NewBoundary(geom.Ring{{X: 5000, Y: 5000}, {X: 5100, Y: 5000}, {X: 5100, Y: 5100}})
	l := Build(900, 600, 120, far)
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(l.Triangles) == 0 {
		t.Fatalf("expected a complete lattice")
	}
	if ids := l.InsideTriangles(); len(ids) != 0 {
		t.Fatalf("expected no inside triangles, got %d", len(ids))
	}
	for _, v := range l.Vertices {
		if v.Inside {
			t.Fatalf("vertex %d flagged inside", v.ID)
		}
	}
	for _, e := range l.Edges {
		if !e.TouchesBoundary {
			t.Fatalf("edge %d should touch the boundary", e.ID)
		}
	}
}

func TestSharedEdge(t *testing.T) {
	l := Build(300, 300, 100, nil)
	a := l.Triangles[0]
	for _, n := range a.Neighbors {
		eid, ok := l.SharedEdge(a.ID, n)
		if !ok {
			t.Fatalf("no shared edge between %d and %d", a.ID, n)
		}
		e := l.Edges[eid]
		if e.Other(a.ID) != n {
			t.Fatalf("edge %d does not join %d and %d", eid, a.ID, n)
		}
	}
	if _, ok := l.SharedEdge(0, len(l.Triangles)-1); ok {
		t.Fatalf("far apart triangles share an edge")
	}
}
