package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meesterstump/puzzle-generator/internal/geom"
)

func init() {
	bordersCmd := &cobra.Command{
		Use:   "borders",
		Short: "List the available border presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range geom.PresetNames() {
				rings := geom.Flatten(mustPreset(name, cfg.Puzzle.Width, cfg.Puzzle.Height), geom.DefaultFlattenStep)
				points := 0
				for _, r := range rings {
					points += len(r)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d points at %gx%g\n", name, points, cfg.Puzzle.Width, cfg.Puzzle.Height)
			}
			return nil
		},
	}
	rootCmd.AddCommand(bordersCmd)
}

func mustPreset(name string, w, h float64) geom.Border {
	b, err := geom.Preset(name, w, h)
	if err != nil {
		panic(err)
	}
	return b
}
