package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meesterstump/puzzle-generator/internal/generator"
)

func puzzle(t *testing.T, seed int64) Puzzle {
	t.Helper()
	opts := generator.DefaultOptions()
	opts.Seed = seed
	res, err := generator.New(opts).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return FromResult(res)
}

func TestFromResult(t *testing.T) {
	p := puzzle(t, 4)
	if p.Seed != 4 || p.Width != 900 || p.Height != 600 || p.Border != "rectangle" {
		t.Fatalf("unexpected header: %+v", p)
	}
	if len(p.Pieces) != p.Stats.Pieces || len(p.Edges) != p.Stats.Edges {
		t.Fatalf("counts differ from stats")
	}
	for _, e := range p.Edges {
		if e.Border != (len(e.Pieces) == 1) {
			t.Fatalf("edge %d: border %v with %d pieces", e.ID, e.Border, len(e.Pieces))
		}
		for _, v := range e.Path {
			if v < 0 || v >= len(p.Vertices) {
				t.Fatalf("edge %d references vertex %d", e.ID, v)
			}
		}
	}
}

func TestWriteFile_Compression(t *testing.T) {
	puzzles := []Puzzle{puzzle(t, 1), puzzle(t, 2)}
	dir := t.TempDir()

	var plainSize int64
	for _, name := range []string{"puzzles.json", "puzzles.json.gz", "puzzles.json.sz"} {
		path := filepath.Join(dir, name)
		n, err := WriteFile(path, puzzles)
		if err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != n {
			t.Fatalf("%s: reported %d bytes, file has %d", name, n, info.Size())
		}
		if CompressionFor(name) == None {
			plainSize = n
		} else if n >= plainSize {
			t.Fatalf("%s (%d bytes) is not smaller than plain (%d bytes)", name, n, plainSize)
		}

		got, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].RunID != puzzles[0].RunID || len(got[1].Pieces) != len(puzzles[1].Pieces) {
			t.Fatalf("%s: read back %d puzzles", name, len(got))
		}
	}
}

func TestWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()
	n, err := WriteFile(filepath.Join(dir, "missing", "out.json"), nil)
	if err == nil || n != 0 {
		t.Fatalf("expected an error and no size, got %d, %v", n, err)
	}

	// Rewriting a file truncates it and reports the new size.
	path := filepath.Join(dir, "out.json.gz")
	if _, err := WriteFile(path, []Puzzle{puzzle(t, 3)}); err != nil {
		t.Fatal(err)
	}
	n, err = WriteFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() != n {
		t.Fatalf("reported %d bytes, stat %v, %v", n, info, err)
	}
	if got, err := ReadFile(path); err != nil || len(got) != 0 {
		t.Fatalf("read back %d puzzles, %v", len(got), err)
	}
}

func TestCompressionFor(t *testing.T) {
	tests := map[string]Compression{
		"a.json":    None,
		"a.json.gz": Gzip,
		"a.sz":      Snappy,
		"gz":        None,
	}
	for name, want := range tests {
		if got := CompressionFor(name); got != want {
			t.Fatalf("CompressionFor(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRead_RejectsBadDumps(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got, err := Read(buf.Bytes()); err != nil || got != nil {
		t.Fatalf("empty dump: %v, %v", got, err)
	}

	tests := map[string]string{
		"not json":        `{"version": `,
		"missing puzzles": `{"version": "1.0.0"}`,
		"short piece": `{"version": "1.0.0", "puzzles": [{"run_id": "x", "seed": 1,
			"vertices": [[0, 0]], "pieces": [{"id": 0, "vertices": [0, 0]}], "edges": []}]}`,
		"three sided edge": `{"version": "1.0.0", "puzzles": [{"run_id": "x", "seed": 1,
			"vertices": [], "pieces": [], "edges": [{"id": 0, "path": [0, 1], "pieces": [0, 1, 2]}]}]}`,
		"bad version":   `{"version": "one", "puzzles": []}`,
		"future format": `{"version": "2.0.0", "puzzles": []}`,
	}
	for name, data := range tests {
		if _, err := Read([]byte(data)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}

	if _, err := Read([]byte(`{"version": "1.3.0", "puzzles": []}`)); err != nil {
		t.Fatalf("minor version bump rejected: %v", err)
	}
}
