package topology

import (
	"fmt"
	"slices"
)

// LinkEdges wires pieces into edges and half-edges. The pieces' Vertices
// must already index vertices, deduplicated and split so that neighboring
// outlines meet segment for segment. Segments in border never link two
// pieces, even when two outlines run along them.
//
// The returned Topology takes ownership of pieces and vertices.
func LinkEdges(pieces []Piece, vertices []Vertex, border map[Segment]bool) *Topology {
	t := &Topology{Pieces: pieces, Vertices: vertices}

	owners := make(map[Segment][]int)
	for _, p := range pieces {
		n := len(p.Vertices)
		for k, a := range p.Vertices {
			s := MakeSegment(a, p.Vertices[(k+1)%n])
			owners[s] = append(owners[s], p.ID)
		}
	}
	degree := make([]int, len(vertices))
	for s := range owners {
		degree[s[0]]++
		degree[s[1]]++
	}
	other := func(piece int, s Segment) int {
		o := owners[s]
		if border[s] || len(o) != 2 || o[0] == o[1] {
			return NoID
		}
		if o[0] == piece {
			return o[1]
		}
		return o[0]
	}

	// sides[h] is the piece across half-edge h, or NoID on the border.
	var sides []int
	for i := range t.Pieces {
		p := &t.Pieces[i]
		n := len(p.Vertices)
		side := make([]int, n)
		for k, a := range p.Vertices {
			side[k] = other(p.ID, MakeSegment(a, p.Vertices[(k+1)%n]))
		}
		starts := func(k int) bool {
			return side[k] != side[(k+n-1)%n] || degree[p.Vertices[k]] != 2
		}

		start := -1
		for k := range n {
			if starts(k) {
				start = k
				break
			}
		}
		if start < 0 {
			// A single run around the whole piece starts at its lowest vertex
			// so that both sides of a closed loop agree on where it begins.
			start = slices.Index(p.Vertices, slices.Min(p.Vertices))
		}

		first := len(t.HalfEdges)
		for j := range n {
			k := (start + j) % n
			if j == 0 || starts(k) {
				t.HalfEdges = append(t.HalfEdges, HalfEdge{
					ID:    len(t.HalfEdges),
					Edge:  NoID,
					Piece: p.ID,
					Path:  []int{p.Vertices[k]},
					Twin:  NoID,
				})
				sides = append(sides, side[k])
			}
			h := &t.HalfEdges[len(t.HalfEdges)-1]
			h.Path = append(h.Path, p.Vertices[(k+1)%n])
		}
		last := len(t.HalfEdges)
		for h := first; h < last; h++ {
			next := h + 1
			if next == last {
				next = first
			}
			t.HalfEdges[h].Next = next
			t.HalfEdges[next].Prev = h
			p.HalfEdges = append(p.HalfEdges, h)
		}
	}

	index := make(map[Segment][]int)
	for _, h := range t.HalfEdges {
		if sides[h.ID] != NoID {
			key := runKey(h.Path)
			index[key] = append(index[key], h.ID)
		}
	}
	for id := range t.HalfEdges {
		h := &t.HalfEdges[id]
		if h.Edge != NoID {
			continue
		}
		twin := NoID
		if sides[id] != NoID {
			for _, c := range index[runKey(h.Path)] {
				o := &t.HalfEdges[c]
				if c != id && o.Edge == NoID && o.Piece == sides[id] && sides[c] == h.Piece && reversed(h.Path, o.Path) {
					twin = c
					break
				}
			}
			if twin == NoID {
				t.Mismatched++
			}
		}

		e := Edge{
			ID:        len(t.Edges),
			Path:      slices.Clone(h.Path),
			HalfEdges: []int{id},
			Pieces:    []int{h.Piece},
			Border:    twin == NoID,
		}
		h.Edge = e.ID
		if twin != NoID {
			o := &t.HalfEdges[twin]
			o.Edge = e.ID
			o.Twin = id
			h.Twin = twin
			e.HalfEdges = append(e.HalfEdges, twin)
			e.Pieces = append(e.Pieces, o.Piece)
		}
		t.Edges = append(t.Edges, e)
	}

	for i := range t.Pieces {
		p := &t.Pieces[i]
		for _, hid := range p.HalfEdges {
			if tw := t.HalfEdges[hid].Twin; tw != NoID {
				p.Neighbors = append(p.Neighbors, t.HalfEdges[tw].Piece)
			}
		}
		slices.Sort(p.Neighbors)
		p.Neighbors = slices.Compact(p.Neighbors)
	}
	for _, e := range t.Edges {
		a, b := e.Path[0], e.Path[len(e.Path)-1]
		t.Vertices[a].Edges = append(t.Vertices[a].Edges, e.ID)
		if b != a {
			t.Vertices[b].Edges = append(t.Vertices[b].Edges, e.ID)
		}
	}
	return t
}

// runKey identifies a run by its smallest segment.
func runKey(path []int) Segment {
	key := MakeSegment(path[0], path[1])
	for i := 2; i < len(path); i++ {
		if s := MakeSegment(path[i-1], path[i]); s.compare(key) < 0 {
			key = s
		}
	}
	return key
}

func reversed(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[len(b)-1-i] {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants of t: every piece is a closed
// chain of half-edges spelling out its vertices, interior edges are twinned
// both ways with reversed paths, and neighbor lists are symmetric.
func (t *Topology) Validate() error {
	for _, p := range t.Pieces {
		distinct := slices.Clone(p.Vertices)
		slices.Sort(distinct)
		if len(slices.Compact(distinct)) < 3 {
			return fmt.Errorf("topology: piece %d has fewer than 3 distinct vertices", p.ID)
		}
		if len(p.HalfEdges) == 0 {
			return fmt.Errorf("topology: piece %d has no half-edges", p.ID)
		}
		var walked []int
		h := p.HalfEdges[0]
		for range p.HalfEdges {
			he := t.HalfEdges[h]
			next := t.HalfEdges[he.Next]
			switch {
			case he.Piece != p.ID:
				return fmt.Errorf("topology: half-edge %d of piece %d belongs to piece %d", h, p.ID, he.Piece)
			case next.Prev != h:
				return fmt.Errorf("topology: half-edge %d: next/prev mismatch", h)
			case next.Origin() != he.Target():
				return fmt.Errorf("topology: half-edge %d does not meet its successor", h)
			}
			walked = append(walked, he.Path[:len(he.Path)-1]...)
			h = he.Next
		}
		if h != p.HalfEdges[0] {
			return fmt.Errorf("topology: half-edges of piece %d do not close", p.ID)
		}
		if !rotation(walked, p.Vertices) {
			return fmt.Errorf("topology: half-edges of piece %d do not follow its outline", p.ID)
		}
		for _, n := range p.Neighbors {
			if !slices.Contains(t.Pieces[n].Neighbors, p.ID) {
				return fmt.Errorf("topology: piece %d lists %d as neighbor but not vice versa", p.ID, n)
			}
		}
	}

	for _, e := range t.Edges {
		for _, h := range e.HalfEdges {
			if t.HalfEdges[h].Edge != e.ID {
				return fmt.Errorf("topology: half-edge %d does not point back to edge %d", h, e.ID)
			}
		}
		switch len(e.HalfEdges) {
		case 1:
			if !e.Border || t.HalfEdges[e.HalfEdges[0]].Twin != NoID {
				return fmt.Errorf("topology: edge %d has one side but is not a border edge", e.ID)
			}
		case 2:
			a, b := t.HalfEdges[e.HalfEdges[0]], t.HalfEdges[e.HalfEdges[1]]
			if e.Border || a.Twin != b.ID || b.Twin != a.ID {
				return fmt.Errorf("topology: edge %d is not twinned", e.ID)
			}
			if !reversed(a.Path, b.Path) {
				return fmt.Errorf("topology: twins of edge %d disagree on their path", e.ID)
			}
		default:
			return fmt.Errorf("topology: edge %d has %d half-edges", e.ID, len(e.HalfEdges))
		}
	}
	return nil
}

// rotation reports whether a is b rotated.
func rotation(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	n := len(a)
	for s := range n {
		if a[s] != b[0] {
			continue
		}
		ok := true
		for i := 0; i < n && ok; i++ {
			ok = a[(s+i)%n] == b[i]
		}
		if ok {
			return true
		}
	}
	return false
}
