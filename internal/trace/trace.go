// Package trace walks the perimeter of each cluster of a partition and emits
// it as a simplified, clockwise polygon loop with a representative site.
package trace

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/meesterstump/puzzle-generator/internal/geom"
	"github.com/meesterstump/puzzle-generator/internal/jigsaw"
	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

// CollinearTolerance is the largest distance, relative to lattice spacing,
// a vertex may sit off the line through its neighbors and still be removed.
const CollinearTolerance = 1e-6

// Block is the traced outline of one cluster.
type Block struct {
	Cluster int

	// Polygon is the outer boundary, clockwise and explicitly closed
	// (the last point repeats the first).
	Polygon geom.Ring

	// Site is a representative interior point for the future piece.
	Site geom.Point

	// Perimeter lists the lattice edges on the cluster's boundary, ascending.
	Perimeter []int

	// Holes counts inner loops that were traced and discarded.
	Holes int
}

// Result is the output of Polygons.
type Result struct {
	Blocks []Block

	// Skipped counts clusters whose outline degenerated below 3 vertices.
	Skipped int
}

// Polygons traces every cluster of p in cluster order.
func Polygons(l *lattice.Lattice, p *jigsaw.Partition) Result {
	var res Result
	for _, c := range p.Clusters {
		b, ok := Cluster(l, p, c)
		if !ok {
			res.Skipped++
			continue
		}
		res.Blocks = append(res.Blocks, b)
	}
	return res
}

// step is a directed perimeter edge from one lattice vertex to another.
type step struct {
	from, to int
}

// Cluster traces a single cluster. It reports false when the outline is
// degenerate.
func Cluster(l *lattice.Lattice, p *jigsaw.Partition, c jigsaw.Cluster) (Block, bool) {
	block := Block{Cluster: c.ID}

	// A lattice edge is on the perimeter when exactly one of its triangles
	// belongs to the cluster. Following each member's clockwise winding
	// orients it with the interior on the walk's right.
	var steps []step
	for _, tid := range c.Triangles {
		tri := l.Triangles[tid]
		for k, eid := range tri.Edges {
			if !isPerimeter(l, p, c.ID, eid) {
				continue
			}
			steps = append(steps, step{tri.Vertices[k], tri.Vertices[(k+1)%3]})
			block.Perimeter = append(block.Perimeter, eid)
		}
	}
	slices.Sort(block.Perimeter)
	if len(steps) < 3 {
		return block, false
	}

	loops := walk(l, steps)
	outer := -1
	best := 0.0
	for i, loop := range loops {
		if a := loopArea(l, loop); a > best {
			outer, best = i, a
		}
	}
	if outer < 0 {
		return block, false
	}
	block.Holes = len(loops) - 1

	ring := make(geom.Ring, len(loops[outer]))
	for i, v := range loops[outer] {
		ring[i] = l.Vertices[v].Pos
	}
	ring = Simplify(ring, CollinearTolerance*l.Spacing)
	if len(ring) < 3 {
		return block, false
	}
	block.Polygon = ring.Closed()
	block.Site = site(l, c)
	return block, true
}

func isPerimeter(l *lattice.Lattice, p *jigsaw.Partition, cluster, eid int) bool {
	n := 0
	for _, t := range l.Edges[eid].Triangles {
		if p.Assignment[t] == cluster {
			n++
		}
	}
	return n == 1
}

// walk chains directed steps into closed loops of vertex IDs. Where a vertex
// has several outgoing steps (clusters pinched to a single vertex) the walk
// takes the leftmost turn relative to the incoming direction, which keeps it
// on the boundary of the same face.
func walk(l *lattice.Lattice, steps []step) [][]int {
	// Start from the lowest step so the walk is independent of member order.
	slices.SortFunc(steps, func(a, b step) int {
		return cmp.Or(cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
	})
	out := make(map[int][]int, len(steps))
	for _, s := range steps {
		out[s.from] = append(out[s.from], s.to)
	}
	used := make(map[step]bool, len(steps))

	var loops [][]int
	for _, first := range steps {
		if used[first] {
			continue
		}
		var loop []int
		cur := first
		for !used[cur] {
			used[cur] = true
			loop = append(loop, cur.from)
			next, ok := leftmost(l, cur, out[cur.to])
			if !ok {
				panic(fmt.Sprintf("trace: perimeter dead-ends at vertex %d", cur.to))
			}
			cur = step{cur.to, next}
		}
		loops = append(loops, loop)
	}
	return loops
}

// leftmost picks, among the candidate targets leaving in.to, the one whose
// direction turns furthest left (counterclockwise on screen) from in.
func leftmost(l *lattice.Lattice, in step, targets []int) (int, bool) {
	if len(targets) == 0 {
		return 0, false
	}
	if len(targets) == 1 {
		return targets[0], true
	}
	pivot := l.Vertices[in.to].Pos
	dir := pivot.Sub(l.Vertices[in.from].Pos)
	best, bestAngle := -1, math.Inf(1)
	for _, t := range targets {
		if t == in.from {
			// Turning straight back is only taken when nothing else is left.
			continue
		}
		d := l.Vertices[t].Pos.Sub(pivot)
		// In the y-down frame a negative angle is a left turn on screen.
		angle := math.Atan2(dir.Cross(d), dir.Dot(d))
		if angle < bestAngle {
			best, bestAngle = t, angle
		}
	}
	if best < 0 {
		return targets[0], true
	}
	return best, true
}

func loopArea(l *lattice.Lattice, loop []int) float64 {
	ring := make(geom.Ring, len(loop))
	for i, v := range loop {
		ring[i] = l.Vertices[v].Pos
	}
	return ring.SignedArea()
}

// Simplify removes vertices that lie within tol of the line through their
// neighbors, repeating until none remain. The input is an open ring.
func Simplify(r geom.Ring, tol float64) geom.Ring {
	out := slices.Clone(r.Open())
	for changed := true; changed && len(out) >= 3; {
		changed = false
		for i := 0; i < len(out) && len(out) >= 3; {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			if collinear(prev, out[i], next, tol) {
				out = slices.Delete(out, i, i+1)
				changed = true
				continue
			}
			i++
		}
	}
	return out
}

// collinear reports whether b lies on the segment from a to c within tol.
// A vertex where the outline doubles back is not collinear.
func collinear(a, b, c geom.Point, tol float64) bool {
	ac := c.Sub(a)
	l := ac.Length()
	if l == 0 {
		return b.Distance(a) <= tol
	}
	if math.Abs(ac.Cross(b.Sub(a)))/l > tol {
		return false
	}
	return b.Sub(a).Dot(ac) > 0 && c.Sub(b).Dot(ac) > 0
}

// site averages the member centroids, falling back to the first member's
// centroid when the mean is outside the boundary.
func site(l *lattice.Lattice, c jigsaw.Cluster) geom.Point {
	var sum geom.Point
	for _, tid := range c.Triangles {
		sum = sum.Add(l.Triangles[tid].Centroid)
	}
	mean := sum.Scale(1 / float64(len(c.Triangles)))
	if l.Boundary.Contains(mean) {
		return mean
	}
	return l.Triangles[c.Triangles[0]].Centroid
}
