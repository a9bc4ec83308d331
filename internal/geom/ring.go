package geom

import (
	"math"
	"slices"
)

// Ring is a polygon loop. Rings are open by convention (the edge from the
// last point back to the first is implicit); Closed returns the explicit form.
type Ring []Point

// Closed returns a copy of r whose last point repeats the first.
func (r Ring) Closed() Ring {
	if len(r) == 0 {
		return nil
	}
	out := make(Ring, len(r), len(r)+1)
	copy(out, r)
	if !r.IsClosed() {
		out = append(out, r[0])
	}
	return out
}

// Open returns r without a trailing point equal to its first point.
func (r Ring) Open() Ring {
	if r.IsClosed() {
		return r[:len(r)-1]
	}
	return r
}

// IsClosed reports whether the first and last points coincide.
func (r Ring) IsClosed() bool {
	return len(r) > 1 && r[0].Near(r[len(r)-1], Epsilon)
}

// SignedArea returns the shoelace area of r. It is positive for clockwise
// rings in the y-down frame.
func (r Ring) SignedArea() float64 {
	r = r.Open()
	var sum float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.Cross(q)
	}
	return sum / 2
}

// Clockwise returns r wound clockwise, reversing a copy if needed.
func (r Ring) Clockwise() Ring {
	if r.SignedArea() >= 0 {
		return r
	}
	out := slices.Clone(r)
	slices.Reverse(out)
	return out
}

// Centroid returns the area centroid of r, or the mean of its points when
// the area vanishes.
func (r Ring) Centroid() Point {
	r = r.Open()
	if len(r) == 0 {
		return Point{}
	}
	var c Point
	var a float64
	for i, p := range r {
		q := r[(i+1)%len(r)]
		cross := p.Cross(q)
		a += cross
		c = c.Add(p.Add(q).Scale(cross))
	}
	if math.Abs(a) < Epsilon {
		var sum Point
		for _, p := range r {
			sum = sum.Add(p)
		}
		return sum.Scale(1 / float64(len(r)))
	}
	return c.Scale(1 / (3 * a))
}

func (r Ring) Bounds() Bounds {
	b := EmptyBounds()
	for _, p := range r {
		b = b.Extend(p)
	}
	return b
}

// Contains reports whether p lies inside r using the even-odd rule.
func (r Ring) Contains(p Point) bool {
	r = r.Open()
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Distinct returns r with consecutive duplicate points removed, including a
// duplicate closing point.
func (r Ring) Distinct(tol float64) Ring {
	out := make(Ring, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && out[len(out)-1].Near(p, tol) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Near(out[len(out)-1], tol) {
		out = out[:len(out)-1]
	}
	return out
}

// segmentsCross reports whether segments ab and cd properly intersect.
// Touching at endpoints or overlapping collinearly does not count.
func segmentsCross(a, b, c, d Point) bool {
	d1 := Orient(c, d, a)
	d2 := Orient(c, d, b)
	d3 := Orient(a, b, c)
	d4 := Orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
