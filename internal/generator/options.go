package generator

import (
	"math"
	"time"

	"github.com/meesterstump/puzzle-generator/internal/geom"
	"github.com/meesterstump/puzzle-generator/internal/jigsaw"
	"github.com/meesterstump/puzzle-generator/internal/lattice"
	"github.com/meesterstump/puzzle-generator/internal/topology"
)

const (
	DefaultWidth            = 900
	DefaultHeight           = 600
	DefaultSpacing          = 120
	DefaultMergeProbability = 0.5

	// RandomBorder picks one of the border presets from the seed.
	RandomBorder = "random"
)

// Options configures puzzle generation behavior.
type Options struct {
	Width            float64       // Puzzle width in world units
	Height           float64       // Puzzle height in world units
	Spacing          float64       // Lattice spacing; clamped by lattice.Build
	MergeProbability float64       // Chance a neighbor joins a growing block
	Seed             int64         // Seed for reproducible puzzles (0 = random)
	Strategy         string        // Region growing strategy, see jigsaw.Strategies
	Border           string        // Border preset name or RandomBorder
	CornerRadius     float64       // Radius for the "rounded" border (0 = preset default)
	FillHoles        bool          // Merge blocks walled in by a single neighbor
	FlattenStep      float64       // Curve flattening step for the border
	Tolerance        float64       // Vertex deduplication tolerance
	Timeout          time.Duration // Timeout limits generation time (0 = none)
}

// DefaultOptions returns standard generator options.
func DefaultOptions() *Options {
	return &Options{
		Width:            DefaultWidth,
		Height:           DefaultHeight,
		Spacing:          DefaultSpacing,
		MergeProbability: DefaultMergeProbability,
		Seed:             0,
		Strategy:         jigsaw.StrategyFlood,
		Border:           "rectangle",
		FillHoles:        true,
		FlattenStep:      geom.DefaultFlattenStep,
		Tolerance:        topology.DefaultTolerance,
	}
}

// Normalize clamps out of range values in place and fills empty ones with
// defaults. Unknown strategy or border names are left for Generate to
// reject.
func (o *Options) Normalize() {
	if !positive(o.Width) {
		o.Width = DefaultWidth
	}
	if !positive(o.Height) {
		o.Height = DefaultHeight
	}
	switch {
	case math.IsNaN(o.Spacing) || o.Spacing < lattice.MinSpacing:
		o.Spacing = lattice.MinSpacing
	case math.IsInf(o.Spacing, 1):
		// One cell across the whole area.
		o.Spacing = max(o.Width, o.Height)
	}
	if math.IsNaN(o.MergeProbability) {
		o.MergeProbability = 0
	}
	o.MergeProbability = min(max(o.MergeProbability, 0), 1)
	if o.Strategy == "" {
		o.Strategy = jigsaw.StrategyFlood
	}
	if o.Border == "" {
		o.Border = "rectangle"
	}
	if !positive(o.CornerRadius) {
		o.CornerRadius = 0
	}
	if !positive(o.FlattenStep) {
		o.FlattenStep = geom.DefaultFlattenStep
	}
	if !positive(o.Tolerance) {
		o.Tolerance = topology.DefaultTolerance
	}
	o.Timeout = max(o.Timeout, 0)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
