// Package topology turns traced, clipped piece outlines into the puzzle-wide
// graph of pieces, shared edges, half-edges and deduplicated vertices that
// tab synthesis and rendering work from.
//
// Like the lattice, the graph is an arena: every reference is an index into
// one of the Topology slices, and NoID marks a missing reference.
package topology

import (
	"github.com/meesterstump/puzzle-generator/internal/geom"
)

// NoID marks an absent reference, such as the twin of a border half-edge.
const NoID = -1

// Vertex is a corner shared by every piece that touches it.
type Vertex struct {
	ID  int
	Pos geom.Point

	// Edges lists the edges that start or end here, ascending.
	Edges []int
}

// HalfEdge is one piece's side of an Edge, directed along the piece's
// clockwise outline.
type HalfEdge struct {
	ID    int
	Edge  int
	Piece int

	// Path runs from the half-edge's origin to its target vertex.
	Path []int

	Twin int
	Next int
	Prev int
}

// Origin returns the vertex the half-edge starts at.
func (h *HalfEdge) Origin() int { return h.Path[0] }

// Target returns the vertex the half-edge ends at.
func (h *HalfEdge) Target() int { return h.Path[len(h.Path)-1] }

// Edge is a maximal run of outline shared by the same pieces. Interior edges
// have two half-edges (one per piece); border edges have one.
type Edge struct {
	ID int

	// Path is oriented like HalfEdges[0].
	Path      []int
	HalfEdges []int
	Pieces    []int
	Border    bool
}

// Piece is one puzzle piece.
type Piece struct {
	ID      int
	Cluster int
	Site    geom.Point

	// Polygon is the clockwise open outline the piece was made from.
	Polygon geom.Ring

	// Vertices is the outline as vertex IDs after deduplication and after
	// splitting at vertices of neighboring pieces.
	Vertices []int

	HalfEdges []int
	Neighbors []int
	Clipped   bool
}

// Segment is an undirected pair of vertex IDs, smaller first.
type Segment [2]int

// MakeSegment returns the canonical segment joining a and b.
func MakeSegment(a, b int) Segment {
	if a > b {
		a, b = b, a
	}
	return Segment{a, b}
}

func (s Segment) compare(o Segment) int {
	if s[0] != o[0] {
		return s[0] - o[0]
	}
	return s[1] - o[1]
}

// NewPiece wraps an outline and its site into a piece record. The outline is
// normalized to an open clockwise ring.
func NewPiece(id int, polygon geom.Ring, site geom.Point) Piece {
	return Piece{
		ID:      id,
		Cluster: NoID,
		Site:    site,
		Polygon: polygon.Open().Clockwise(),
	}
}

// Topology is the assembled puzzle graph.
type Topology struct {
	Pieces    []Piece
	Edges     []Edge
	HalfEdges []HalfEdge
	Vertices  []Vertex

	// Dropped counts inputs that degenerated below three distinct vertices.
	Dropped int

	// Mismatched counts shared runs whose two sides did not line up and
	// were kept as separate border edges instead.
	Mismatched int
}

// BorderEdges returns the IDs of edges on the outer border.
func (t *Topology) BorderEdges() []int {
	var ids []int
	for _, e := range t.Edges {
		if e.Border {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Outline returns the positions of a piece's vertices.
func (t *Topology) Outline(piece int) geom.Ring {
	p := t.Pieces[piece]
	r := make(geom.Ring, len(p.Vertices))
	for i, v := range p.Vertices {
		r[i] = t.Vertices[v].Pos
	}
	return r
}
