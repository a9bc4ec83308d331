// Package lattice builds the triangular mesh that puzzle pieces are grown
// from. It consumes no randomness: the same inputs always produce the same
// vertices, edges and triangles, in the same order, with the same IDs.
//
// All cross references are integer IDs indexing the Lattice slices; nothing
// in the mesh holds a pointer to anything else in it.
package lattice

import (
	"fmt"
	"math"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

const (
	// MinSpacing is the floor that non-positive or tiny spacings clamp to.
	MinSpacing = 1.0

	// MaxTriangles bounds the mesh size; spacing is raised to stay under it.
	MaxTriangles = 1 << 20
)

// sin60 is the row height of an equilateral lattice with unit spacing.
var sin60 = math.Sqrt(3) / 2

// Vertex is a lattice point.
type Vertex struct {
	ID     int
	Row    int
	Col    int
	Pos    geom.Point
	Inside bool
}

// Edge is an undirected lattice edge. A < B always holds.
type Edge struct {
	ID        int
	A, B      int
	Triangles []int

	// TouchesBoundary is set when the edge has a single incident triangle or
	// any incident triangle lies outside the boundary.
	TouchesBoundary bool
}

// Other returns the incident triangle that is not t, or -1.
func (e *Edge) Other(t int) int {
	for _, o := range e.Triangles {
		if o != t {
			return o
		}
	}
	return -1
}

// Triangle is one lattice cell. Vertices wind clockwise in the y-down frame
// and Edges[i] joins Vertices[i] to Vertices[(i+1)%3].
type Triangle struct {
	ID        int
	Vertices  [3]int
	Edges     [3]int
	Centroid  geom.Point
	Neighbors []int
	Inside    bool
}

// Lattice is the complete mesh. It is read-only once Build returns.
type Lattice struct {
	Vertices  []Vertex
	Edges     []Edge
	Triangles []Triangle

	Spacing   float64
	RowHeight float64
	Rows      int
	Cols      int
	Origin    geom.Point

	Width    float64
	Height   float64
	Boundary *geom.Boundary
}

type edgeKey struct{ a, b int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Build lays a triangular lattice over [0,width]×[0,height] with one spacing
// unit of overscan on every side and flags what lies inside boundary. A nil
// boundary is the rectangle of the area.
func Build(width, height, spacing float64, boundary *geom.Boundary) *Lattice {
	width = sanitizeExtent(width)
	height = sanitizeExtent(height)
	if boundary == nil {
		boundary = geom.RectBoundary(width, height)
	}
	spacing = clampSpacing(width, height, spacing)

	l := &Lattice{
		Spacing:   spacing,
		RowHeight: spacing * sin60,
		Origin:    geom.Point{X: -spacing, Y: -spacing},
		Width:     width,
		Height:    height,
		Boundary:  boundary,
	}
	l.Cols = max(2, int(math.Ceil((width+2*spacing)/spacing))+1)
	l.Rows = max(2, int(math.Ceil((height+2*spacing)/l.RowHeight))+1)

	l.buildVertices()
	l.buildTriangles()
	l.linkNeighbors()
	l.markBoundary()
	return l
}

func sanitizeExtent(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampSpacing floors spacing at MinSpacing and raises it until the lattice
// fits under MaxTriangles.
func clampSpacing(width, height, spacing float64) float64 {
	if math.IsNaN(spacing) || spacing < MinSpacing {
		spacing = MinSpacing
	}
	// Two triangles per cell of area spacing*rowHeight, plus overscan.
	cells := (width + 2*spacing) * (height + 2*spacing) / (spacing * spacing * sin60)
	if 2*cells > MaxTriangles {
		spacing *= math.Sqrt(2 * cells / MaxTriangles)
	}
	return spacing
}

func (l *Lattice) buildVertices() {
	l.Vertices = make([]Vertex, 0, l.Rows*l.Cols)
	for row := range l.Rows {
		offset := 0.0
		if row%2 == 1 {
			offset = l.Spacing / 2
		}
		for col := range l.Cols {
			pos := geom.Point{
				X: l.Origin.X + float64(col)*l.Spacing + offset,
				Y: l.Origin.Y + float64(row)*l.RowHeight,
			}
			l.Vertices = append(l.Vertices, Vertex{
				ID:     len(l.Vertices),
				Row:    row,
				Col:    col,
				Pos:    pos,
				Inside: l.Boundary.Contains(pos),
			})
		}
	}
}

// buildTriangles splits every unit cell into two triangles. Even rows sit
// left of the odd row below them, so the diagonal runs one way on even rows
// and the other way on odd rows; both orders give clockwise winding.
func (l *Lattice) buildTriangles() {
	n := (l.Rows - 1) * (l.Cols - 1) * 2
	l.Triangles = make([]Triangle, 0, n)
	l.Edges = make([]Edge, 0, n*3/2+l.Rows+l.Cols)
	index := make(map[edgeKey]int, cap(l.Edges))

	for row := range l.Rows - 1 {
		for col := range l.Cols - 1 {
			a := l.vertexID(row, col)
			b := l.vertexID(row, col+1)
			d := l.vertexID(row+1, col)
			e := l.vertexID(row+1, col+1)
			if row%2 == 0 {
				l.addTriangle(index, a, b, d)
				l.addTriangle(index, b, e, d)
			} else {
				l.addTriangle(index, a, e, d)
				l.addTriangle(index, a, b, e)
			}
		}
	}
}

func (l *Lattice) vertexID(row, col int) int {
	return row*l.Cols + col
}

func (l *Lattice) addTriangle(index map[edgeKey]int, v0, v1, v2 int) {
	t := Triangle{
		ID:       len(l.Triangles),
		Vertices: [3]int{v0, v1, v2},
	}
	p0, p1, p2 := l.Vertices[v0].Pos, l.Vertices[v1].Pos, l.Vertices[v2].Pos
	t.Centroid = geom.Point{X: (p0.X + p1.X + p2.X) / 3, Y: (p0.Y + p1.Y + p2.Y) / 3}

	for i := range 3 {
		key := makeEdgeKey(t.Vertices[i], t.Vertices[(i+1)%3])
		id, ok := index[key]
		if !ok {
			id = len(l.Edges)
			index[key] = id
			l.Edges = append(l.Edges, Edge{ID: id, A: key.a, B: key.b})
		}
		edge := &l.Edges[id]
		if len(edge.Triangles) == 2 {
			panic(fmt.Sprintf("lattice: edge %d (%d-%d) already has two triangles", id, key.a, key.b))
		}
		edge.Triangles = append(edge.Triangles, t.ID)
		t.Edges[i] = id
	}
	l.Triangles = append(l.Triangles, t)
}

// linkNeighbors derives triangle adjacency from shared edges. Neighbors are
// listed in the order of the triangle's own edges.
func (l *Lattice) linkNeighbors() {
	for i := range l.Triangles {
		t := &l.Triangles[i]
		for _, eid := range t.Edges {
			if o := l.Edges[eid].Other(t.ID); o >= 0 {
				t.Neighbors = append(t.Neighbors, o)
			}
		}
	}
}

func (l *Lattice) markBoundary() {
	for i := range l.Triangles {
		t := &l.Triangles[i]
		t.Inside = l.Boundary.Contains(t.Centroid)
	}
	for i := range l.Edges {
		e := &l.Edges[i]
		e.TouchesBoundary = len(e.Triangles) == 1
		for _, t := range e.Triangles {
			if !l.Triangles[t].Inside {
				e.TouchesBoundary = true
			}
		}
	}
}

// InsideTriangles returns the IDs of in-boundary triangles in ascending order.
func (l *Lattice) InsideTriangles() []int {
	var ids []int
	for _, t := range l.Triangles {
		if t.Inside {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// SharedEdge returns the edge joining triangles a and b.
func (l *Lattice) SharedEdge(a, b int) (int, bool) {
	for _, ea := range l.Triangles[a].Edges {
		for _, eb := range l.Triangles[b].Edges {
			if ea == eb {
				return ea, true
			}
		}
	}
	return -1, false
}

// Validate checks the structural invariants of the mesh. A failure means the
// builder is broken; no input can cause one.
func (l *Lattice) Validate() error {
	for i, e := range l.Edges {
		if e.ID != i {
			return fmt.Errorf("lattice: edge at %d has id %d", i, e.ID)
		}
		if e.A >= e.B {
			return fmt.Errorf("lattice: edge %d is not canonical (%d-%d)", e.ID, e.A, e.B)
		}
		if n := len(e.Triangles); n < 1 || n > 2 {
			return fmt.Errorf("lattice: edge %d has %d triangles", e.ID, n)
		}
		for _, t := range e.Triangles {
			if t < 0 || t >= len(l.Triangles) {
				return fmt.Errorf("lattice: edge %d cites missing triangle %d", e.ID, t)
			}
		}
	}
	for i, t := range l.Triangles {
		if t.ID != i {
			return fmt.Errorf("lattice: triangle at %d has id %d", i, t.ID)
		}
		p0, p1, p2 := l.Vertices[t.Vertices[0]].Pos, l.Vertices[t.Vertices[1]].Pos, l.Vertices[t.Vertices[2]].Pos
		if geom.Orient(p0, p1, p2) <= 0 {
			return fmt.Errorf("lattice: triangle %d is not wound clockwise", t.ID)
		}
		for k, eid := range t.Edges {
			e := l.Edges[eid]
			if makeEdgeKey(t.Vertices[k], t.Vertices[(k+1)%3]) != (edgeKey{e.A, e.B}) {
				return fmt.Errorf("lattice: triangle %d edge %d does not join its vertices", t.ID, eid)
			}
		}
		for _, n := range t.Neighbors {
			back := false
			for _, m := range l.Triangles[n].Neighbors {
				if m == t.ID {
					back = true
				}
			}
			if !back {
				return fmt.Errorf("lattice: triangle %d lists %d but not vice versa", t.ID, n)
			}
		}
	}
	return nil
}
