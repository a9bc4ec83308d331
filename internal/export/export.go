// Package export writes generated puzzles as JSON for inspection by other
// tools. The format is a diagnostic dump of the topology, not a saved
// puzzle that can be loaded back into the generator.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blang/semver"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"

	"github.com/meesterstump/puzzle-generator/internal/generator"
	"github.com/meesterstump/puzzle-generator/internal/geom"
)

// FormatVersion is stamped into every dump. Readers accept any dump with
// the same major version.
var FormatVersion = semver.MustParse("1.0.0")

type Dump struct {
	Version string   `json:"version"`
	Puzzles []Puzzle `json:"puzzles"`
}

type Puzzle struct {
	RunID    string          `json:"run_id"`
	Seed     int64           `json:"seed"`
	Border   string          `json:"border"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Stats    generator.Stats `json:"stats"`
	Vertices [][2]float64    `json:"vertices"`
	Pieces   []Piece         `json:"pieces"`
	Edges    []Edge          `json:"edges"`
}

type Piece struct {
	ID        int        `json:"id"`
	Cluster   int        `json:"cluster"`
	Site      [2]float64 `json:"site"`
	Vertices  []int      `json:"vertices"`
	HalfEdges []int      `json:"half_edges"`
	Neighbors []int      `json:"neighbors"`
	Clipped   bool       `json:"clipped,omitempty"`
}

type Edge struct {
	ID     int   `json:"id"`
	Path   []int `json:"path"`
	Pieces []int `json:"pieces"`
	Border bool  `json:"border,omitempty"`
}

func point(p geom.Point) [2]float64 {
	return [2]float64{p.X, p.Y}
}

// FromResult converts a generator result to its exported form.
func FromResult(res *generator.Result) Puzzle {
	top := res.Topology
	out := Puzzle{
		RunID:  res.RunID,
		Seed:   res.Seed,
		Border: res.Border,
		Width:  res.Lattice.Width,
		Height: res.Lattice.Height,
		Stats:  res.Stats,
	}
	out.Vertices = make([][2]float64, len(top.Vertices))
	for i, v := range top.Vertices {
		out.Vertices[i] = point(v.Pos)
	}
	out.Pieces = make([]Piece, len(top.Pieces))
	for i, p := range top.Pieces {
		out.Pieces[i] = Piece{
			ID:        p.ID,
			Cluster:   p.Cluster,
			Site:      point(p.Site),
			Vertices:  p.Vertices,
			HalfEdges: p.HalfEdges,
			Neighbors: p.Neighbors,
			Clipped:   p.Clipped,
		}
	}
	out.Edges = make([]Edge, len(top.Edges))
	for i, e := range top.Edges {
		out.Edges[i] = Edge{ID: e.ID, Path: e.Path, Pieces: e.Pieces, Border: e.Border}
	}
	return out
}

// Write encodes puzzles as an indented JSON dump.
func Write(w io.Writer, puzzles []Puzzle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Dump{Version: FormatVersion.String(), Puzzles: puzzles})
}

// Compression is picked from the file name.
type Compression int

const (
	None Compression = iota
	Gzip
	Snappy
)

// CompressionFor returns Gzip for ".gz" names, Snappy for ".sz" names and
// None otherwise.
func CompressionFor(filename string) Compression {
	switch {
	case strings.HasSuffix(filename, ".gz"):
		return Gzip
	case strings.HasSuffix(filename, ".sz"):
		return Snappy
	}
	return None
}

// WriteFile writes puzzles to filename, compressed according to its
// extension. It returns the number of bytes written to disk.
func WriteFile(filename string, puzzles []Puzzle) (written int64, err error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			written, err = 0, fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	var out io.Writer = f
	var closer io.Closer
	switch CompressionFor(filename) {
	case Gzip:
		zw := gzip.NewWriter(f)
		out, closer = zw, zw
	case Snappy:
		sw := snappy.NewBufferedWriter(f)
		out, closer = sw, sw
	}
	if err := Write(out, puzzles); err != nil {
		return 0, err
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return 0, err
		}
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReadFile decodes and validates a file written by WriteFile.
func ReadFile(filename string) ([]Puzzle, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var in io.Reader = f
	switch CompressionFor(filename) {
	case Gzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("can't uncompress gzip data: %w", err)
		}
		defer zr.Close()
		in = zr
	case Snappy:
		in = snappy.NewReader(f)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", filename, err)
	}
	return Read(data)
}

// Read validates data against the dump schema and decodes it.
func Read(data []byte) ([]Puzzle, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var d Dump
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return nil, fmt.Errorf("can't decode puzzles: %w", err)
	}
	v, err := semver.Make(d.Version)
	if err != nil {
		return nil, fmt.Errorf("bad dump version %q: %w", d.Version, err)
	}
	if v.Major != FormatVersion.Major {
		return nil, fmt.Errorf("dump version %s is not compatible with %s", v, FormatVersion)
	}
	return d.Puzzles, nil
}
