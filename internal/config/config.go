// Package config loads puzzle generation settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/meesterstump/puzzle-generator/internal/logging"
)

const (
	DefaultWidth            = 900
	DefaultHeight           = 600
	DefaultSpacing          = 120
	DefaultMergeProbability = 0.5
	DefaultStrategy         = "flood"
	DefaultBorder           = "rectangle"
)

// Puzzle is the [puzzle] table.
type Puzzle struct {
	Width            float64
	Height           float64
	Spacing          float64
	MergeProbability float64 `toml:"merge_probability"`

	// Seed 0 picks a time based seed.
	Seed     int64
	Strategy string
	Border   string

	// CornerRadius only applies to the "rounded" border; 0 uses the preset's
	// own radius.
	CornerRadius float64 `toml:"corner_radius"`
}

type Config struct {
	Puzzle  Puzzle
	Logging logging.LogConfig

	// Location is the file the config was read from, if any.
	Location string `toml:"-"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Puzzle: Puzzle{
			Width:            DefaultWidth,
			Height:           DefaultHeight,
			Spacing:          DefaultSpacing,
			MergeProbability: DefaultMergeProbability,
			Strategy:         DefaultStrategy,
			Border:           DefaultBorder,
		},
		Logging: logging.LogConfig{Level: "info"},
	}
}

// Load reads filename over the defaults. Keys missing from the file keep
// their default value. A relative logfile is taken relative to the file's
// own directory.
func Load(filename string) (Config, error) {
	c := Default()
	if filename == "" {
		return c, fmt.Errorf("no TOML configuration file provided")
	}
	md, err := toml.DecodeFile(filename, &c)
	if err != nil {
		return c, fmt.Errorf("could not decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("unknown keys in %s: %v", filename, undecoded)
	}
	c.Location = filename
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return c, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %w", err)
	}
	logging.Debugf("loaded config %s: %+v", filename, c.Puzzle)
	return c, nil
}

func (c *Config) convertPathsToAbsolute(configPath string) error {
	if c.Logging.Logfile == "" || filepath.IsAbs(c.Logging.Logfile) {
		return nil
	}
	abs, err := filepath.Abs(filepath.Join(filepath.Dir(configPath), c.Logging.Logfile))
	if err != nil {
		return fmt.Errorf("error converting logfile setting to absolute path: %w", err)
	}
	c.Logging.Logfile = abs
	return nil
}

// Write saves c as TOML to filename.
func (c Config) Write(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
