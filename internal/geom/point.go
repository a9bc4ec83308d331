// Package geom holds the planar geometry shared by the puzzle pipeline:
// points, rings, border descriptions and the boundary a puzzle is cut to.
//
// World space is y-down (the screen convention). A ring is "clockwise" when it
// winds clockwise on screen, which is a positive shoelace sum in this frame.
package geom

import "math"

// Epsilon is the default distance under which two points are considered equal.
const Epsilon = 1e-6

// Point is a position in world space.
type Point struct {
	X, Y float64
}

func (a Point) Add(b Point) Point {
	return Point{a.X + b.X, a.Y + b.Y}
}

func (a Point) Sub(b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

func (a Point) Scale(f float64) Point {
	return Point{a.X * f, a.Y * f}
}

func (a Point) Dot(b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the 3D cross product of a and b.
func (a Point) Cross(b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (a Point) Length() float64 {
	return math.Hypot(a.X, a.Y)
}

func (a Point) Distance(b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp returns the point a fraction t of the way from a to b.
func (a Point) Lerp(b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Near reports whether a and b are within tol of each other.
func (a Point) Near(b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && a.Distance(b) <= tol
}

// Orient returns the signed area of the parallelogram spanned by (b-a) and
// (c-a). In the y-down frame it is positive when a, b, c turn clockwise.
func Orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// DistanceToSegment returns the distance from p to the segment ab together
// with the parameter t of the closest point along ab.
func DistanceToSegment(p, a, b Point) (float64, float64) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Distance(a), 0
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Lerp(b, t)), t
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Point
}

// EmptyBounds returns bounds that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Point{inf, inf}, Point{-inf, -inf}}
}

func (b Bounds) Extend(p Point) Bounds {
	return Bounds{
		Min: Point{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y)},
		Max: Point{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y)},
	}
}

func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b Bounds) Overlaps(o Bounds) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X && b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}
