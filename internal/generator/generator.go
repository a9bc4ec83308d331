// Package generator runs the whole pipeline for one puzzle: lattice,
// region growing, tracing, clipping against the border and topology
// assembly.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/meesterstump/puzzle-generator/internal/geom"
	"github.com/meesterstump/puzzle-generator/internal/jigsaw"
	"github.com/meesterstump/puzzle-generator/internal/lattice"
	"github.com/meesterstump/puzzle-generator/internal/logging"
	"github.com/meesterstump/puzzle-generator/internal/topology"
	"github.com/meesterstump/puzzle-generator/internal/trace"
)

var (
	ErrGenerationFailed = errors.New("failed to generate puzzle")
	ErrInvalidOptions   = errors.New("invalid generator options")
)

// Generator creates puzzle topologies.
type Generator struct {
	options *Options
	seed    int64
	rng     *rand.Rand
}

// New creates a puzzle generator with the given options. The options are
// copied and normalized.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions()
	}
	opts := *options
	opts.Normalize()

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		options: &opts,
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed actually used, which differs from Options.Seed
// when that was 0.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Options returns the normalized options.
func (g *Generator) Options() Options {
	return *g.options
}

// Stats summarizes one run.
type Stats struct {
	Triangles       int
	InsideTriangles int
	Clusters        int
	Skipped         int // clusters whose outline degenerated while tracing
	Holes           int // inner loops discarded while tracing
	ClippedAway     int // blocks entirely outside the border
	Fragments       int // extra pieces from blocks the border cut in two or more
	Dropped         int // outlines that degenerated during assembly
	Mismatched      int
	Pieces          int
	Edges           int
	BorderEdges     int
	TopologyBytes   int // approximate memory held by the topology
	Elapsed         time.Duration
}

// Result is everything one run produced. Later stages never modify earlier
// ones.
type Result struct {
	RunID     string
	Seed      int64
	Border    string
	Boundary  *geom.Boundary
	Lattice   *lattice.Lattice
	Partition *jigsaw.Partition
	Trace     trace.Result
	Topology  *topology.Topology
	Stats     Stats
}

// Generate runs the pipeline once. A Generator draws from its own random
// source, so calling Generate twice continues the sequence rather than
// repeating it. The context is checked between stages.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	if g.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.Timeout)
		defer cancel()
	}
	if _, ok := jigsaw.Strategies[g.options.Strategy]; !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, g.options.Strategy)
	}

	res := &Result{RunID: uuid.NewString(), Seed: g.seed}
	total := logging.NewTimeLog()
	o := g.options

	stage := logging.NewTimeLog()
	boundary, name, err := g.boundary()
	if err != nil {
		return nil, err
	}
	res.Border, res.Boundary = name, boundary
	stage.Debugf("[%s] border %q: %d rings", res.RunID, name, len(boundary.Rings))

	stage = logging.NewTimeLog()
	l := lattice.Build(o.Width, o.Height, o.Spacing, boundary)
	res.Lattice = l
	res.Stats.Triangles = len(l.Triangles)
	res.Stats.InsideTriangles = len(l.InsideTriangles())
	stage.Debugf("[%s] lattice: %d triangles, %d inside, spacing %.3f",
		res.RunID, res.Stats.Triangles, res.Stats.InsideTriangles, l.Spacing)
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	stage = logging.NewTimeLog()
	p, err := jigsaw.Grow(o.Strategy, l, o.MergeProbability, g.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.FillHoles {
		p = jigsaw.FillHoles(l, p)
	}
	res.Partition = p
	res.Stats.Clusters = len(p.Clusters)
	stage.Debugf("[%s] %s growth: %d clusters", res.RunID, o.Strategy, len(p.Clusters))
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	stage = logging.NewTimeLog()
	res.Trace = trace.Polygons(l, p)
	res.Stats.Skipped = res.Trace.Skipped
	for _, b := range res.Trace.Blocks {
		res.Stats.Holes += b.Holes
	}
	stage.Debugf("[%s] traced %d blocks, %d skipped, %d holes discarded",
		res.RunID, len(res.Trace.Blocks), res.Stats.Skipped, res.Stats.Holes)
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	stage = logging.NewTimeLog()
	inputs := clip(res.Trace.Blocks, boundary, &res.Stats)
	stage.Debugf("[%s] clipped: %d pieces, %d blocks outside, %d extra fragments",
		res.RunID, len(inputs), res.Stats.ClippedAway, res.Stats.Fragments)
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	stage = logging.NewTimeLog()
	top := topology.Assemble(inputs, topology.Options{Tolerance: o.Tolerance})
	res.Topology = top
	res.Stats.Dropped = top.Dropped
	res.Stats.Mismatched = top.Mismatched
	res.Stats.Pieces = len(top.Pieces)
	res.Stats.Edges = len(top.Edges)
	res.Stats.BorderEdges = len(top.BorderEdges())
	res.Stats.TopologyBytes = max(size.Of(top), 0)
	stage.Debugf("[%s] topology: %d pieces, %d edges, %d vertices, %s",
		res.RunID, len(top.Pieces), len(top.Edges), len(top.Vertices), humanize.Bytes(uint64(res.Stats.TopologyBytes)))
	if top.Mismatched > 0 {
		logging.Warningf("[%s] %d shared runs did not line up and were kept as border", res.RunID, top.Mismatched)
	}

	res.Stats.Elapsed = total.Elapsed()
	total.Infof("[%s] seed %d: %d pieces from %d clusters (%d dropped)",
		res.RunID, g.seed, res.Stats.Pieces, res.Stats.Clusters, res.Stats.Dropped+res.Stats.Skipped)
	return res, nil
}

// boundary resolves the configured border preset and flattens it, reusing
// an earlier flattening of the same border when there is one.
func (g *Generator) boundary() (*geom.Boundary, string, error) {
	o := g.options
	name := o.Border
	if name == RandomBorder {
		// A separate source keeps the region growing draws independent of
		// whether the border was random.
		name = geom.RandomPreset(rand.New(rand.NewSource(g.seed)))
	}
	key := borderKey{name: name, width: o.Width, height: o.Height, step: o.FlattenStep}
	if name == "rounded" {
		key.radius = o.CornerRadius
	}
	b, cached, err := flattened(key, func() (geom.Border, error) {
		if key.radius > 0 {
			return geom.RoundedBorder(o.Width, o.Height, key.radius), nil
		}
		return geom.Preset(name, o.Width, o.Height)
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if cached {
		logging.Debugf("border %q %gx%g from cache", name, o.Width, o.Height)
	}
	return b, name, nil
}

// clip cuts every block against the boundary. A block the border splits
// yields one piece per fragment, all tagged with the block's cluster.
func clip(blocks []trace.Block, boundary *geom.Boundary, stats *Stats) []topology.Input {
	var inputs []topology.Input
	for _, b := range blocks {
		original := b.Polygon.Open()
		rings := geom.Clip(original, boundary)
		if len(rings) == 0 {
			stats.ClippedAway++
			continue
		}
		stats.Fragments += len(rings) - 1
		for _, r := range rings {
			site := b.Site
			if len(rings) > 1 || !r.Contains(site) {
				site = r.Centroid()
			}
			inputs = append(inputs, topology.Input{
				Cluster:  b.Cluster,
				Polygon:  r,
				Site:     site,
				Original: original,
				Clipped:  len(rings) > 1 || !slices.Equal(r, original),
			})
		}
	}
	return inputs
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return nil
}
