package topology

import (
	"math"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

// DefaultTolerance is the distance under which two positions are treated as
// the same vertex.
const DefaultTolerance = 1e-6

// Input is one surviving piece outline handed to Assemble.
type Input struct {
	Cluster int
	Polygon geom.Ring
	Site    geom.Point

	// Original is the outline before clipping. It is only consulted when
	// Clipped is set.
	Original geom.Ring
	Clipped  bool
}

type Options struct {
	// Tolerance for vertex deduplication; DefaultTolerance when not positive.
	Tolerance float64
}

func (o Options) tolerance() float64 {
	if !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0) {
		return DefaultTolerance
	}
	return o.Tolerance
}

// Assemble builds the puzzle topology from piece outlines, in input order.
// Outlines that collapse below three distinct vertices, or to zero area,
// are dropped and counted rather than failing the whole assembly.
func Assemble(inputs []Input, opts Options) *Topology {
	tol := opts.tolerance()
	reg := newRegistry(tol)

	var pieces []Piece
	var kept []Input
	dropped := 0
	for _, in := range inputs {
		ring := in.Polygon.Open().Clockwise()
		ids := make([]int, 0, len(ring))
		for _, pt := range ring {
			id := reg.intern(pt)
			if n := len(ids); n > 0 && ids[n-1] == id {
				continue
			}
			ids = append(ids, id)
		}
		for len(ids) > 1 && ids[0] == ids[len(ids)-1] {
			ids = ids[:len(ids)-1]
		}
		if !solid(reg.vertices, ids, tol) {
			dropped++
			continue
		}
		p := NewPiece(len(pieces), ring, in.Site)
		p.Cluster = in.Cluster
		p.Clipped = in.Clipped
		p.Vertices = ids
		pieces = append(pieces, p)
		kept = append(kept, in)
	}
	vertices := compact(reg.vertices, pieces)

	s := newSplitter(vertices, pieces, tol)
	border := make(map[Segment]bool)
	for i := range pieces {
		p := &pieces[i]
		p.Vertices = s.split(p.Vertices)
		if !p.Clipped || len(kept[i].Original) < 3 {
			continue
		}
		original := kept[i].Original.Open()
		n := len(p.Vertices)
		for k, a := range p.Vertices {
			b := p.Vertices[(k+1)%n]
			mid := vertices[a].Pos.Lerp(vertices[b].Pos, 0.5)
			if !onOutline(original, mid, tol) {
				border[MakeSegment(a, b)] = true
			}
		}
	}

	t := LinkEdges(pieces, vertices, border)
	t.Dropped = dropped
	return t
}

// solid reports whether ids names at least three distinct vertices
// enclosing a non-zero area.
func solid(vertices []Vertex, ids []int, tol float64) bool {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	if len(seen) < 3 {
		return false
	}
	r := make(geom.Ring, len(ids))
	for i, id := range ids {
		r[i] = vertices[id].Pos
	}
	return math.Abs(r.SignedArea()) > tol*tol
}

// compact renumbers the vertices referenced by pieces in order of first use
// and drops the rest.
func compact(all []Vertex, pieces []Piece) []Vertex {
	remap := make([]int, len(all))
	for i := range remap {
		remap[i] = NoID
	}
	var out []Vertex
	for i := range pieces {
		for k, v := range pieces[i].Vertices {
			if remap[v] == NoID {
				remap[v] = len(out)
				out = append(out, Vertex{ID: len(out), Pos: all[v].Pos})
			}
			pieces[i].Vertices[k] = remap[v]
		}
	}
	return out
}

func (s *splitter) split(ids []int) []int {
	out := make([]int, 0, len(ids))
	for i, a := range ids {
		b := ids[(i+1)%len(ids)]
		out = append(out, a)
		out = append(out, s.between(a, b)...)
	}
	return out
}

func onOutline(r geom.Ring, p geom.Point, tol float64) bool {
	for i, a := range r {
		b := r[(i+1)%len(r)]
		if d, _ := geom.DistanceToSegment(p, a, b); d <= tol {
			return true
		}
	}
	return false
}
