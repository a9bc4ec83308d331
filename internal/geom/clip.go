package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// minClipArea discards slivers produced by clipping along the border.
const minClipArea = 1e-6

// Clip intersects r with the boundary and returns the surviving pieces,
// each wound clockwise and open. A ring entirely inside comes back untouched
// (same points, same order) so neighbors keep sharing exact coordinates; a
// ring entirely outside yields nil.
func Clip(r Ring, b *Boundary) []Ring {
	r = r.Open()
	if len(r) < 3 {
		return nil
	}
	if b == nil {
		return []Ring{r}
	}
	switch classify(r, b) {
	case inside:
		return []Ring{r}
	case outside:
		return nil
	}

	subject := polyclip.Polygon{toContour(r)}
	clipping := make(polyclip.Polygon, 0, len(b.Rings))
	for _, br := range b.Rings {
		clipping = append(clipping, toContour(br))
	}
	result := subject.Construct(polyclip.INTERSECTION, clipping)

	contours := make([]Ring, 0, len(result))
	for _, c := range result {
		ring := fromContour(c).Distinct(Epsilon)
		if len(ring) < 3 || math.Abs(ring.SignedArea()) < minClipArea {
			continue
		}
		contours = append(contours, ring)
	}

	// Contours nested inside another contour are holes of that piece, not
	// pieces of their own.
	var out []Ring
	for i, c := range contours {
		depth := 0
		for j, o := range contours {
			if i != j && o.Contains(c[0]) {
				depth++
			}
		}
		if depth%2 == 0 {
			out = append(out, c.Clockwise())
		}
	}
	return out
}

type placement int

const (
	straddles placement = iota
	inside
	outside
)

// classify decides whether r can skip the general clipper.
func classify(r Ring, b *Boundary) placement {
	rb := r.Bounds()
	if !rb.Overlaps(b.Bounds) {
		return outside
	}
	in, out := 0, 0
	for _, p := range r {
		if b.Contains(p) {
			in++
		} else {
			out++
		}
	}
	if in > 0 && out > 0 {
		return straddles
	}
	for _, br := range b.Rings {
		for i := range br {
			c, d := br[i], br[(i+1)%len(br)]
			if !rb.Overlaps(EmptyBounds().Extend(c).Extend(d)) {
				continue
			}
			for j := range r {
				if segmentsCross(r[j], r[(j+1)%len(r)], c, d) {
					return straddles
				}
			}
			if r.Contains(c) {
				return straddles
			}
		}
	}
	if out == 0 {
		return inside
	}
	return outside
}

func toContour(r Ring) polyclip.Contour {
	c := make(polyclip.Contour, len(r))
	for i, p := range r {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return c
}

func fromContour(c polyclip.Contour) Ring {
	r := make(Ring, len(c))
	for i, p := range c {
		r[i] = Point{p.X, p.Y}
	}
	return r
}
