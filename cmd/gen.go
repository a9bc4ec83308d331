package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meesterstump/puzzle-generator/internal/config"
	"github.com/meesterstump/puzzle-generator/internal/export"
	"github.com/meesterstump/puzzle-generator/internal/generator"
	"github.com/meesterstump/puzzle-generator/internal/logging"
)

// MaxSeeds bounds how many puzzles one seed range may request.
const MaxSeeds = 10000

var (
	numPuzzles   int
	seedRange    string
	outputFile   string
	timeout      time.Duration
	jobs         int
	width        float64
	height       float64
	spacing      float64
	probability  float64
	strategy     string
	border       string
	cornerRadius float64
	keepHoles    bool
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate puzzle topologies",
		Long: `Generate one or more puzzle topologies and print a summary of each.

Examples:
  puzzle gen --seed 7
  puzzle gen --seed 10:20 --strategy pairwise -o puzzles.json.gz
  puzzle gen -n 5 --border ellipse -p 0.6`,
		Args: cobra.NoArgs,
		RunE: runGen,
	}

	d := config.Default().Puzzle
	genCmd.Flags().IntVarP(&numPuzzles, "number", "n", 1, "Number of puzzles to generate when no seed is given")
	genCmd.Flags().StringVarP(&seedRange, "seed", "s", "", "Seed like 7 or range like 10:20 (default random)")
	genCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write a JSON dump (gzip for .gz names, snappy for .sz)")
	genCmd.Flags().DurationVar(&timeout, "timeout", 0, "Generation timeout per puzzle (0 = none)")
	genCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Puzzles generated concurrently")
	genCmd.Flags().Float64Var(&width, "width", d.Width, "Puzzle width")
	genCmd.Flags().Float64Var(&height, "height", d.Height, "Puzzle height")
	genCmd.Flags().Float64Var(&spacing, "spacing", d.Spacing, "Lattice spacing")
	genCmd.Flags().Float64VarP(&probability, "probability", "p", d.MergeProbability, "Merge probability 0-1")
	genCmd.Flags().StringVar(&strategy, "strategy", d.Strategy, "Region growing strategy (flood, pairwise)")
	genCmd.Flags().StringVar(&border, "border", d.Border, "Border preset, or random")
	genCmd.Flags().Float64Var(&cornerRadius, "corner-radius", d.CornerRadius, "Corner radius for the rounded border")
	genCmd.Flags().BoolVar(&keepHoles, "keep-holes", false, "Do not merge blocks walled in by a single neighbor")

	rootCmd.AddCommand(genCmd)
}

// parseSeedRange parses a seed string which can be:
// - A single number: "7"
// - A range: "10:20"
// Returns the first and last seed, inclusive.
func parseSeedRange(s string) (first, last int64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		val, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid seed: %w", err)
		}
		return val, val, nil
	} else if len(parts) == 2 {
		firstVal, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid seed range start: %w", err)
		}
		lastVal, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid seed range end: %w", err)
		}
		if firstVal > lastVal {
			return 0, 0, fmt.Errorf("seed range start (%d) cannot be greater than end (%d)", firstVal, lastVal)
		}
		if uint64(lastVal)-uint64(firstVal) >= MaxSeeds {
			return 0, 0, fmt.Errorf("seed range %s has more than %d seeds", s, MaxSeeds)
		}
		return firstVal, lastVal, nil
	}
	return 0, 0, fmt.Errorf("invalid seed format: %s (use format like '7' or '10:20')", s)
}

// seeds lists the seeds to run. Without an explicit seed it draws n random
// nonzero ones.
func seeds(seedArg string, n int, rng *rand.Rand) ([]int64, error) {
	if seedArg == "" {
		if n < 1 || n > MaxSeeds {
			return nil, fmt.Errorf("number of puzzles must be between 1 and %d", MaxSeeds)
		}
		out := make([]int64, n)
		for i := range out {
			for out[i] == 0 {
				out[i] = rng.Int63()
			}
		}
		return out, nil
	}
	first, last, err := parseSeedRange(seedArg)
	if err != nil {
		return nil, err
	}
	var out []int64
	for s := first; ; s++ {
		out = append(out, s)
		if s == last {
			break
		}
	}
	return out, nil
}

// puzzleOptions merges the config file with flags the user set explicitly.
func puzzleOptions(cmd *cobra.Command, p config.Puzzle) *generator.Options {
	flags := cmd.Flags()
	if flags.Changed("width") {
		p.Width = width
	}
	if flags.Changed("height") {
		p.Height = height
	}
	if flags.Changed("spacing") {
		p.Spacing = spacing
	}
	if flags.Changed("probability") {
		p.MergeProbability = probability
	}
	if flags.Changed("strategy") {
		p.Strategy = strategy
	}
	if flags.Changed("border") {
		p.Border = border
	}
	if flags.Changed("corner-radius") {
		p.CornerRadius = cornerRadius
	}

	opts := generator.DefaultOptions()
	opts.Width = p.Width
	opts.Height = p.Height
	opts.Spacing = p.Spacing
	opts.MergeProbability = p.MergeProbability
	opts.Strategy = p.Strategy
	opts.Border = p.Border
	opts.CornerRadius = p.CornerRadius
	opts.FillHoles = !keepHoles
	opts.Timeout = timeout
	return opts
}

func runGen(cmd *cobra.Command, args []string) error {
	seedArg := seedRange
	if seedArg == "" && cfg.Puzzle.Seed != 0 && !cmd.Flags().Changed("number") {
		seedArg = strconv.FormatInt(cfg.Puzzle.Seed, 10)
	}
	list, err := seeds(seedArg, numPuzzles, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	base := puzzleOptions(cmd, cfg.Puzzle)

	results := make([]*generator.Result, len(list))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(jobs, 1))
	for i, seed := range list {
		g.Go(func() error {
			opts := *base
			opts.Seed = seed
			res, err := generator.New(&opts).Generate(ctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		printSummary(out, res)
	}

	if outputFile != "" {
		puzzles := make([]export.Puzzle, len(results))
		for i, res := range results {
			puzzles[i] = export.FromResult(res)
		}
		n, err := export.WriteFile(outputFile, puzzles)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", outputFile, err)
		}
		logging.Infof("wrote %d puzzle(s) to %s", len(puzzles), outputFile)
		fmt.Fprintf(out, "Wrote %d puzzle(s) to %s (%s)\n", len(puzzles), outputFile, humanize.Bytes(uint64(n)))
	}
	return nil
}

func printSummary(w io.Writer, res *generator.Result) {
	s := res.Stats
	fmt.Fprintf(w, "Puzzle seed %d (%s border, run %s):\n", res.Seed, res.Border, res.RunID)
	fmt.Fprintf(w, "  %s pieces, %s edges (%s on the border)\n",
		humanize.Comma(int64(s.Pieces)), humanize.Comma(int64(s.Edges)), humanize.Comma(int64(s.BorderEdges)))
	fmt.Fprintf(w, "  %s of %s triangles inside, grown into %s blocks\n",
		humanize.Comma(int64(s.InsideTriangles)), humanize.Comma(int64(s.Triangles)), humanize.Comma(int64(s.Clusters)))
	if lost := s.Skipped + s.ClippedAway + s.Dropped; lost > 0 {
		fmt.Fprintf(w, "  %s blocks lost to degenerate outlines or clipping\n", humanize.Comma(int64(lost)))
	}
	fmt.Fprintf(w, "  generated in %s, topology holds %s\n",
		s.Elapsed.Round(time.Microsecond), humanize.Bytes(uint64(s.TopologyBytes)))
}
