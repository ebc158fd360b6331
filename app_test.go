package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/arbor/internal/config"
	"github.com/chazu/arbor/pkg/mesh"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func requireNoErrors(t *testing.T, result Result) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

// TestE2EOakExample exercises the full pipeline: recipe -> engine -> growth
// -> mesher -> smoothing, the same path the generate command takes.
func TestE2EOakExample(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Mesher.CapEnds = true })

	source, err := os.ReadFile("examples/oak.arbor")
	if err != nil {
		t.Fatalf("failed to read oak.arbor: %v", err)
	}

	result := app.Evaluate(string(source))
	requireNoErrors(t, result)

	if len(result.Tree.Stems) != 1 {
		t.Fatalf("expected 1 stem, got %d", len(result.Tree.Stems))
	}
	if result.Tree.NodeCount() <= 16 {
		t.Errorf("expected branches beyond the 16 trunk nodes, got %d nodes", result.Tree.NodeCount())
	}
	if result.Mesh == nil || result.Mesh.IsEmpty() {
		t.Fatal("expected a mesh")
	}
	if err := result.Mesh.CheckParity(); err != nil {
		t.Errorf("attribute parity: %v", err)
	}
	if result.Stats.NonManifoldEdges != 0 {
		t.Errorf("expected a manifold mesh, got %s", result.Stats)
	}
	if !result.Stats.Closed() {
		t.Errorf("expected a closed mesh with capped ends, got %s", result.Stats)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if result.Mesh == nil || !result.Mesh.IsEmpty() {
		t.Errorf("expected an empty mesh for empty source, got %+v", result.Mesh)
	}
	if len(result.Tree.Stems) != 0 {
		t.Errorf("expected no stems, got %d", len(result.Tree.Stems))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t, nil)
	result := app.Evaluate("(trunk :length 3")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Mesh != nil {
		t.Error("expected no mesh on error")
	}
}

// TestE2ESapling checks the small example against the trunk and branch counts
// it is built from.
func TestE2ESapling(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Smoothing.Iterations = 0 })

	source, err := os.ReadFile("examples/sapling.arbor")
	if err != nil {
		t.Fatalf("failed to read sapling.arbor: %v", err)
	}
	result := app.Evaluate(string(source))
	requireNoErrors(t, result)

	trunk := result.Tree.Stems[0].Node
	side := 0
	for n := trunk; n != nil; n = n.Continuation() {
		side += len(n.SideChildren())
	}
	// the window [1.5, 2.7] of a 3 long trunk holds 4 origins at spacing 1/3
	if side != 4 {
		t.Errorf("expected 4 branches, got %d", side)
	}
	if result.Stats.NonManifoldEdges != 0 {
		t.Errorf("expected a manifold mesh, got %s", result.Stats)
	}
}

func TestE2ESmoothingMovesVertices(t *testing.T) {
	source := `(trunk :length 3 :randomness 0 (branch :length 1 :density 3 :split-proba 0 :seed 2))`

	raw := newTestApp(t, func(c *config.Config) { c.Smoothing.Iterations = 0 }).Evaluate(source)
	smooth := newTestApp(t, func(c *config.Config) { c.Smoothing.Iterations = 3 }).Evaluate(source)
	requireNoErrors(t, raw)
	requireNoErrors(t, smooth)

	if len(raw.Mesh.Vertices) != len(smooth.Mesh.Vertices) {
		t.Fatalf("smoothing changed the vertex count: %d vs %d", len(raw.Mesh.Vertices), len(smooth.Mesh.Vertices))
	}
	moved := 0
	for i := range raw.Mesh.Vertices {
		if raw.Mesh.Vertices[i] != smooth.Mesh.Vertices[i] {
			moved++
		}
	}
	if moved == 0 {
		t.Error("smoothing did not move any vertex")
	}
}

func TestExport(t *testing.T) {
	source := `(trunk :length 2 :randomness 0)`
	dir := t.TempDir()

	for _, format := range []string{"obj", "stl"} {
		t.Run(format, func(t *testing.T) {
			app := newTestApp(t, func(c *config.Config) { c.Export.Format = format })
			result := app.Evaluate(source)
			requireNoErrors(t, result)

			path := filepath.Join(dir, "tree."+format)
			if err := app.Export(result.Mesh, path); err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if format == "stl" {
				want := int64(84 + 50*len(result.Mesh.Triangles()))
				if info.Size() != want {
					t.Errorf("stl size = %d, want %d", info.Size(), want)
				}
				return
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			back, err := mesh.ReadOBJ(f)
			if err != nil {
				t.Fatalf("ReadOBJ failed: %v", err)
			}
			if len(back.Polygons) != len(result.Mesh.Polygons) {
				t.Errorf("read %d polygons, wrote %d", len(back.Polygons), len(result.Mesh.Polygons))
			}
		})
	}
}

func TestPreview(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Preview.Cells = 24 })
	result := app.Grow(`(trunk :length 2 :start-radius 0.3)`)
	requireNoErrors(t, result)
	if result.Mesh != nil {
		t.Error("Grow should stop before meshing")
	}

	path := filepath.Join(t.TempDir(), "tree.preview.stl")
	if err := app.Preview(result.Tree, path); err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() <= 84 {
		t.Errorf("expected a non-empty STL, got %v, %v", info, err)
	}
}

func TestPreviewPath(t *testing.T) {
	tests := map[string]string{
		"tree.obj":        "tree.preview.stl",
		"out/oak.stl":     "out/oak.preview.stl",
		"noext":           "noext.preview.stl",
		"dir.v2/tree.obj": "dir.v2/tree.preview.stl",
	}
	for in, want := range tests {
		if got := previewPath(in); got != want {
			t.Errorf("previewPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewAppRejectsInvalidMesher(t *testing.T) {
	cfg := config.Default()
	cfg.Mesher.RadialResolution = 2
	if _, err := NewApp(cfg); err == nil || !strings.Contains(err.Error(), "resolution") {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestNewAppNilConfig(t *testing.T) {
	app, err := NewApp(nil)
	if err != nil {
		t.Fatalf("NewApp(nil) failed: %v", err)
	}
	if app.mesher.RadialResolution != 8 {
		t.Errorf("expected default resolution, got %d", app.mesher.RadialResolution)
	}
}
