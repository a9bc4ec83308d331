package generator

import (
	"context"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/meesterstump/puzzle-generator/internal/geom"
	"github.com/meesterstump/puzzle-generator/internal/jigsaw"
	"github.com/meesterstump/puzzle-generator/internal/lattice"
)

func generate(t *testing.T, opts *Options) *Result {
	t.Helper()
	res, err := New(opts).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Partition.Validate(res.Lattice); err != nil {
		t.Fatal(err)
	}
	if err := res.Topology.Validate(); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestGenerate_Defaults(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 7
	res := generate(t, opts)
	if res.Seed != 7 || res.RunID == "" || res.Border != "rectangle" {
		t.Fatalf("unexpected run metadata: seed %d, id %q, border %q", res.Seed, res.RunID, res.Border)
	}
	s := res.Stats
	if s.Pieces == 0 || s.Edges == 0 || s.BorderEdges == 0 {
		t.Fatalf("empty topology: %+v", s)
	}
	if s.Pieces != len(res.Topology.Pieces) || s.Clusters != len(res.Partition.Clusters) {
		t.Fatalf("stats out of sync: %+v", s)
	}
	if s.Pieces+s.Dropped != len(res.Trace.Blocks)-s.ClippedAway+s.Fragments {
		t.Fatalf("pieces do not add up: %+v", s)
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	for _, strategy := range jigsaw.StrategyNames() {
		opts := DefaultOptions()
		opts.Seed = 99
		opts.Strategy = strategy
		a, b := generate(t, opts), generate(t, opts)
		if a.RunID == b.RunID {
			t.Fatalf("run IDs should differ")
		}
		if !reflect.DeepEqual(a.Partition, b.Partition) || !reflect.DeepEqual(a.Topology, b.Topology) {
			t.Fatalf("%s: same seed produced different puzzles", strategy)
		}
	}
}

func TestGenerate_RespectsCurvedBorder(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 3
	opts.Border = "ellipse"
	opts.Spacing = 60
	res := generate(t, opts)
	if res.Stats.Pieces == 0 {
		t.Fatalf("no pieces")
	}
	for _, v := range res.Topology.Vertices {
		if !res.Boundary.Contains(v.Pos) && res.Boundary.Distance(v.Pos) > 1e-6 {
			t.Fatalf("vertex %d at %v lies outside the border", v.ID, v.Pos)
		}
	}
	clipped := 0
	for _, p := range res.Topology.Pieces {
		if p.Clipped {
			clipped++
		}
	}
	if clipped == 0 {
		t.Fatalf("an ellipse should cut some pieces")
	}
}

func TestGenerate_RandomBorderFollowsSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.Border = RandomBorder
	opts.Seed = 5
	a, b := generate(t, opts), generate(t, opts)
	if a.Border != b.Border || !slices.Contains(geom.PresetNames(), a.Border) {
		t.Fatalf("random border resolved to %q and %q", a.Border, b.Border)
	}
}

func TestGenerate_Errors(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "spiral"
	if _, err := New(opts).Generate(context.Background()); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("unknown strategy: got %v", err)
	}

	opts = DefaultOptions()
	opts.Border = "star"
	if _, err := New(opts).Generate(context.Background()); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("unknown border: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultOptions()).Generate(ctx)
	if !errors.Is(err, ErrGenerationFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled context: got %v", err)
	}
}

func TestNew_PicksSeed(t *testing.T) {
	g := New(nil)
	if g.Seed() == 0 {
		t.Fatalf("seed 0 should be replaced")
	}
	opts := DefaultOptions()
	opts.Seed = 12
	if New(opts).Seed() != 12 {
		t.Fatalf("explicit seed not kept")
	}
}

func TestOptions_Normalize(t *testing.T) {
	o := &Options{
		Width:            math.NaN(),
		Height:           -5,
		Spacing:          math.Inf(1),
		MergeProbability: 3,
		CornerRadius:     -1,
	}
	o.Normalize()
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Fatalf("extent not defaulted: %+v", o)
	}
	if o.Spacing != DefaultWidth {
		t.Fatalf("infinite spacing became %v, want the longer side", o.Spacing)
	}
	if o.MergeProbability != 1 || o.CornerRadius != 0 {
		t.Fatalf("values not clamped: %+v", o)
	}
	if o.Strategy != jigsaw.StrategyFlood || o.Border != "rectangle" || o.FlattenStep <= 0 || o.Tolerance <= 0 {
		t.Fatalf("defaults not filled: %+v", o)
	}

	o = &Options{MergeProbability: math.NaN()}
	o.Normalize()
	if o.MergeProbability != 0 {
		t.Fatalf("NaN probability became %v", o.MergeProbability)
	}

	for _, spacing := range []float64{0, -40, 0.25, math.NaN()} {
		o = &Options{Spacing: spacing}
		o.Normalize()
		if o.Spacing != lattice.MinSpacing {
			t.Fatalf("spacing %v clamped to %v, want %v", spacing, o.Spacing, lattice.MinSpacing)
		}
	}

	// New works on a copy.
	in := &Options{Width: -1}
	New(in)
	if in.Width != -1 {
		t.Fatalf("New modified its options")
	}
}
