package topology

import (
	"math"
	"slices"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

type cell struct{ x, y int64 }

// grid is a uniform spatial hash of vertex IDs.
type grid struct {
	size  float64
	cells map[cell][]int
}

func newGrid(size float64) *grid {
	return &grid{size: size, cells: make(map[cell][]int)}
}

func (g *grid) cellOf(p geom.Point) cell {
	return cell{int64(math.Floor(p.X / g.size)), int64(math.Floor(p.Y / g.size))}
}

func (g *grid) insert(p geom.Point, id int) {
	c := g.cellOf(p)
	g.cells[c] = append(g.cells[c], id)
}

// query calls fn for every ID stored in cells overlapping b.
func (g *grid) query(b geom.Bounds, fn func(id int)) {
	lo, hi := g.cellOf(b.Min), g.cellOf(b.Max)
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for _, id := range g.cells[cell{x, y}] {
				fn(id)
			}
		}
	}
}

// registry deduplicates vertex positions: points within tol collapse to the
// first vertex registered near them.
type registry struct {
	tol      float64
	index    *grid
	vertices []Vertex
}

func newRegistry(tol float64) *registry {
	return &registry{tol: tol, index: newGrid(tol * 4)}
}

func (r *registry) intern(p geom.Point) int {
	found := NoID
	pad := geom.Point{X: r.tol, Y: r.tol}
	r.index.query(geom.Bounds{Min: p.Sub(pad), Max: p.Add(pad)}, func(id int) {
		if found == NoID && r.vertices[id].Pos.Near(p, r.tol) {
			found = id
		}
	})
	if found != NoID {
		return found
	}
	id := len(r.vertices)
	r.vertices = append(r.vertices, Vertex{ID: id, Pos: p})
	r.index.insert(p, id)
	return id
}

// splitter inserts vertices lying on the interior of a segment, so that two
// pieces whose outlines were simplified differently still meet segment for
// segment.
type splitter struct {
	tol      float64
	vertices []Vertex
	index    *grid
}

func newSplitter(vertices []Vertex, pieces []Piece, tol float64) *splitter {
	var total float64
	var n int
	for _, p := range pieces {
		for i, v := range p.Vertices {
			w := p.Vertices[(i+1)%len(p.Vertices)]
			total += vertices[v].Pos.Distance(vertices[w].Pos)
			n++
		}
	}
	size := tol * 1000
	if n > 0 {
		size = math.Max(size, total/float64(n))
	}
	s := &splitter{tol: tol, vertices: vertices, index: newGrid(size)}
	for _, v := range vertices {
		s.index.insert(v.Pos, v.ID)
	}
	return s
}

type hit struct {
	id int
	t  float64
}

// between returns the vertices strictly inside segment a-b, ordered from a.
func (s *splitter) between(a, b int) []int {
	pa, pb := s.vertices[a].Pos, s.vertices[b].Pos
	pad := geom.Point{X: s.tol, Y: s.tol}
	bounds := geom.EmptyBounds().Extend(pa).Extend(pb)
	bounds = geom.Bounds{Min: bounds.Min.Sub(pad), Max: bounds.Max.Add(pad)}

	var hits []hit
	s.index.query(bounds, func(id int) {
		if id == a || id == b {
			return
		}
		d, t := geom.DistanceToSegment(s.vertices[id].Pos, pa, pb)
		if d <= s.tol && t > 0 && t < 1 {
			hits = append(hits, hit{id, t})
		}
	})
	slices.SortFunc(hits, func(x, y hit) int {
		switch {
		case x.t < y.t:
			return -1
		case x.t > y.t:
			return 1
		}
		return x.id - y.id
	})
	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}
