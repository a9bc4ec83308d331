package geom

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// kappa places cubic control points so four segments approximate an ellipse.
const kappa = 0.5522847498

// BorderFunc builds a border for a puzzle of the given size.
type BorderFunc func(w, h float64) Border

// borderPresets is the collection of named border outlines.
//
// Invariants (verified at package init):
//   - Every preset flattens to at least one ring for a non-empty area.
//   - The centre of the area lies inside every preset.
var borderPresets = map[string]BorderFunc{
	// "rectangle": the classic straight-edged puzzle.
	"rectangle": RectangleBorder,

	// "rounded": a rectangle with corners rounded by a tenth of the short side.
	"rounded": func(w, h float64) Border {
		return RoundedBorder(w, h, math.Min(w, h)/10)
	},

	// "ellipse": a single cubic-approximated ellipse touching all four sides.
	"ellipse": EllipseBorder,

	// "hexagon": a flat-topped hexagon stretched to the area.
	"hexagon": HexagonBorder,
}

func init() {
	// Validate all presets at startup so a broken outline surfaces immediately.
	for _, name := range PresetNames() {
		b := FlattenBoundary(borderPresets[name](900, 600), DefaultFlattenStep)
		if len(b.Rings) == 0 {
			panic("presets: border " + name + " flattened to nothing")
		}
		if !b.Contains(Point{450, 300}) {
			panic("presets: border " + name + " does not contain its centre")
		}
	}
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(borderPresets))
	for name := range borderPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset returns the named border for a w×h puzzle.
func Preset(name string, w, h float64) (Border, error) {
	f, ok := borderPresets[name]
	if !ok {
		return Border{}, fmt.Errorf("presets: unknown border %q (have %v)", name, PresetNames())
	}
	return f(w, h), nil
}

// RandomPreset returns a randomly selected preset name.
// It performs exactly one draw from rng.
func RandomPreset(rng *rand.Rand) string {
	names := PresetNames()
	return names[rng.Intn(len(names))]
}

// RectangleBorder is the outline of [0,w]×[0,h].
func RectangleBorder(w, h float64) Border {
	p := Path{Start: Point{0, 0}}
	p.LineTo(Point{w, 0})
	p.LineTo(Point{w, h})
	p.LineTo(Point{0, h})
	return Border{Paths: []Path{p}}
}

// RoundedBorder is a rectangle with quarter-ellipse corners of radius r.
func RoundedBorder(w, h, r float64) Border {
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	if r == 0 {
		return RectangleBorder(w, h)
	}
	k := r * kappa
	p := Path{Start: Point{r, 0}}
	p.LineTo(Point{w - r, 0})
	p.CubicTo(Point{w - r + k, 0}, Point{w, r - k}, Point{w, r})
	p.LineTo(Point{w, h - r})
	p.CubicTo(Point{w, h - r + k}, Point{w - r + k, h}, Point{w - r, h})
	p.LineTo(Point{r, h})
	p.CubicTo(Point{r - k, h}, Point{0, h - r + k}, Point{0, h - r})
	p.LineTo(Point{0, r})
	p.CubicTo(Point{0, r - k}, Point{r - k, 0}, Point{r, 0})
	return Border{Paths: []Path{p}}
}

// EllipseBorder is the ellipse inscribed in [0,w]×[0,h].
func EllipseBorder(w, h float64) Border {
	cx, cy := w/2, h/2
	kx, ky := cx*kappa, cy*kappa
	p := Path{Start: Point{w, cy}}
	p.CubicTo(Point{w, cy + ky}, Point{cx + kx, h}, Point{cx, h})
	p.CubicTo(Point{cx - kx, h}, Point{0, cy + ky}, Point{0, cy})
	p.CubicTo(Point{0, cy - ky}, Point{cx - kx, 0}, Point{cx, 0})
	p.CubicTo(Point{cx + kx, 0}, Point{w, cy - ky}, Point{w, cy})
	return Border{Paths: []Path{p}}
}

// HexagonBorder is a flat-topped hexagon touching all four sides of the area.
func HexagonBorder(w, h float64) Border {
	q := w / 4
	p := Path{Start: Point{q, 0}}
	p.LineTo(Point{w - q, 0})
	p.LineTo(Point{w, h / 2})
	p.LineTo(Point{w - q, h})
	p.LineTo(Point{q, h})
	p.LineTo(Point{0, h / 2})
	return Border{Paths: []Path{p}}
}
