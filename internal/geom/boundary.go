package geom

import "math"

// DefaultFlattenStep is the longest chord used when flattening curves.
const DefaultFlattenStep = 4.0

// maxCurveSteps bounds the initial subdivision of a single curve segment.
const maxCurveSteps = 1024

// maxCurveDepth bounds how often one curve interval is halved again.
const maxCurveDepth = 16

// SegmentKind identifies the shape of a border segment.
type SegmentKind int

const (
	Line SegmentKind = iota
	Quad
	Cubic
)

// Segment runs from the end of the previous segment (or the path start) to
// To. Quad uses C1 as its control point; Cubic uses C1 and C2.
type Segment struct {
	Kind   SegmentKind
	C1, C2 Point
	To     Point
}

// Path is one closed outline of a border.
type Path struct {
	Start    Point
	Segments []Segment
}

// LineTo appends a straight segment.
func (p *Path) LineTo(to Point) {
	p.Segments = append(p.Segments, Segment{Kind: Line, To: to})
}

// QuadTo appends a quadratic Bézier segment.
func (p *Path) QuadTo(c, to Point) {
	p.Segments = append(p.Segments, Segment{Kind: Quad, C1: c, To: to})
}

// CubicTo appends a cubic Bézier segment.
func (p *Path) CubicTo(c1, c2, to Point) {
	p.Segments = append(p.Segments, Segment{Kind: Cubic, C1: c1, C2: c2, To: to})
}

// Border describes the true outline of a puzzle. Paths are combined with the
// even-odd rule, so a path nested inside another cuts a hole.
type Border struct {
	Paths []Path
}

// Flatten converts b into straight-line rings, subdividing curves so that no
// chord is longer than step (unless that takes more than maxCurveDepth halvings). Rings come back clockwise-agnostic; containment
// uses the even-odd rule and does not care.
func Flatten(b Border, step float64) []Ring {
	if step <= 0 || math.IsNaN(step) {
		step = DefaultFlattenStep
	}
	var rings []Ring
	for _, path := range b.Paths {
		ring := Ring{path.Start}
		cur := path.Start
		for _, seg := range path.Segments {
			switch seg.Kind {
			case Quad:
				p0 := cur
				at := func(t float64) Point { return quadAt(p0, seg.C1, seg.To, t) }
				ring = flattenCurve(ring, at, step, curveSteps(step, cur, seg.C1, seg.To))
			case Cubic:
				p0 := cur
				at := func(t float64) Point { return cubicAt(p0, seg.C1, seg.C2, seg.To, t) }
				ring = flattenCurve(ring, at, step, curveSteps(step, cur, seg.C1, seg.C2, seg.To))
			default:
				ring = append(ring, seg.To)
			}
			cur = seg.To
		}
		ring = ring.Distinct(Epsilon)
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return rings
}

// curveSteps picks a subdivision count from the length of the control polygon.
func curveSteps(step float64, pts ...Point) int {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += pts[i-1].Distance(pts[i])
	}
	n := int(math.Ceil(l / step))
	return max(1, min(n, maxCurveSteps))
}

// flattenCurve appends the points of at(t) for t in (0,1]. The curve is cut
// into n equal parameter intervals, and any interval whose chord is still
// longer than step is halved until it fits.
func flattenCurve(ring Ring, at func(float64) Point, step float64, n int) Ring {
	prev := at(0)
	for i := 1; i <= n; i++ {
		t0, t1 := float64(i-1)/float64(n), float64(i)/float64(n)
		next := at(t1)
		ring = bisect(ring, at, step, t0, t1, prev, next, 0)
		prev = next
	}
	return ring
}

func bisect(ring Ring, at func(float64) Point, step, t0, t1 float64, p0, p1 Point, depth int) Ring {
	if depth >= maxCurveDepth || p0.Distance(p1) <= step {
		return append(ring, p1)
	}
	tm := (t0 + t1) / 2
	pm := at(tm)
	ring = bisect(ring, at, step, t0, tm, p0, pm, depth+1)
	return bisect(ring, at, step, tm, t1, pm, p1, depth+1)
}

func quadAt(p0, c, p1 Point, t float64) Point {
	u := 1 - t
	return p0.Scale(u * u).Add(c.Scale(2 * u * t)).Add(p1.Scale(t * t))
}

func cubicAt(p0, c1, c2, p1 Point, t float64) Point {
	u := 1 - t
	return p0.Scale(u * u * u).
		Add(c1.Scale(3 * u * u * t)).
		Add(c2.Scale(3 * u * t * t)).
		Add(p1.Scale(t * t * t))
}

// Boundary is a flattened border ready for containment tests and clipping.
// It is immutable after construction and safe to share between runs.
type Boundary struct {
	Rings  []Ring
	Bounds Bounds
}

// NewBoundary wraps already-flat rings.
func NewBoundary(rings ...Ring) *Boundary {
	b := &Boundary{Bounds: EmptyBounds()}
	for _, r := range rings {
		r = r.Open()
		if len(r) < 3 {
			continue
		}
		b.Rings = append(b.Rings, r)
		for _, p := range r {
			b.Bounds = b.Bounds.Extend(p)
		}
	}
	return b
}

// FlattenBoundary flattens border and wraps the result.
func FlattenBoundary(border Border, step float64) *Boundary {
	return NewBoundary(Flatten(border, step)...)
}

// RectBoundary returns the boundary of [0,w]×[0,h].
func RectBoundary(w, h float64) *Boundary {
	return NewBoundary(Ring{{0, 0}, {w, 0}, {w, h}, {0, h}})
}

// Contains is the even-odd ray cast against every ring of the boundary.
func (b *Boundary) Contains(p Point) bool {
	if b == nil || len(b.Rings) == 0 || !b.Bounds.Contains(p) {
		return false
	}
	inside := false
	for _, r := range b.Rings {
		if r.Contains(p) {
			inside = !inside
		}
	}
	return inside
}

// Distance returns the distance from p to the nearest boundary edge.
func (b *Boundary) Distance(p Point) float64 {
	best := math.Inf(1)
	if b == nil {
		return best
	}
	for _, r := range b.Rings {
		for i := range r {
			d, _ := DistanceToSegment(p, r[i], r[(i+1)%len(r)])
			best = math.Min(best, d)
		}
	}
	return best
}
