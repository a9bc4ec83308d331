package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meesterstump/puzzle-generator/internal/config"
	"github.com/meesterstump/puzzle-generator/internal/logging"
)

var (
	configFile string
	logFile    string
	verbose    bool

	// cfg is the loaded configuration, valid once PersistentPreRunE ran.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "puzzle",
	Short: "Generate block-shaped jigsaw puzzle topologies",
	Long: `Generate jigsaw puzzle piece topologies whose pieces look like irregular
city blocks, grown from a triangular lattice and cut to a border shape.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
}

// setup loads the config file and applies its logging section. Flags win
// over the file.
func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.Logfile = logFile
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Logging.SetLogger(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Execute runs the command line tool.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
