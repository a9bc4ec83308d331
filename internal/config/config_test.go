package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "puzzle.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[puzzle]
width = 1200
merge_probability = 0.25
strategy = "pairwise"
seed = 42

[logging]
logfile = "logs/puzzle.log"
max_log_size = 10
level = "debug"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p := c.Puzzle
	if p.Width != 1200 || p.MergeProbability != 0.25 || p.Strategy != "pairwise" || p.Seed != 42 {
		t.Fatalf("file values not applied: %+v", p)
	}
	if p.Height != DefaultHeight || p.Spacing != DefaultSpacing || p.Border != DefaultBorder {
		t.Fatalf("defaults lost: %+v", p)
	}
	want := filepath.Join(filepath.Dir(path), "logs", "puzzle.log")
	if c.Logging.Logfile != want {
		t.Fatalf("logfile %q, want %q", c.Logging.Logfile, want)
	}
	if c.Logging.MaxSize != 10 || c.Logging.Level != "debug" {
		t.Fatalf("logging table not applied: %+v", c.Logging)
	}
	if c.Location != path {
		t.Fatalf("location %q", c.Location)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected an error for an empty file name")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if _, err := Load(writeConfig(t, "[puzzle\nwidth = 1")); err == nil {
		t.Fatalf("expected a decode error")
	}
	_, err := Load(writeConfig(t, "[puzzle]\nwidht = 100\n"))
	if err == nil || !strings.Contains(err.Error(), "widht") {
		t.Fatalf("expected an unknown key error, got %v", err)
	}
}

func TestWrite_RoundTrips(t *testing.T) {
	c := Default()
	c.Puzzle.Seed = 7
	c.Puzzle.Border = "ellipse"
	path := filepath.Join(t.TempDir(), "out.toml")
	if err := c.Write(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Puzzle != c.Puzzle {
		t.Fatalf("got %+v, want %+v", got.Puzzle, c.Puzzle)
	}
}
