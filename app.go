package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chazu/arbor/internal/config"
	"github.com/chazu/arbor/internal/logger"
	"github.com/chazu/arbor/pkg/engine"
	"github.com/chazu/arbor/pkg/graph"
	"github.com/chazu/arbor/pkg/growth"
	"github.com/chazu/arbor/pkg/kernel/sdfx"
	"github.com/chazu/arbor/pkg/mesh"
	"github.com/chazu/arbor/pkg/tessellate"
)

// App runs recipes through the whole pipeline: recipe -> growth functions
// -> skeleton -> manifold mesh -> smoothing -> file.
type App struct {
	cfg     *config.Config
	engine  *engine.Engine
	mesher  *tessellate.Mesher
	preview *sdfx.Preview
	log     *zap.Logger
}

// ErrorData is one problem found while evaluating a recipe.
type ErrorData struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result is everything Evaluate produced. Errors and Warnings are never nil.
type Result struct {
	Tree     *graph.Tree
	Mesh     *mesh.Mesh
	Stats    mesh.Stats
	Errors   []ErrorData
	Warnings []ErrorData
}

// NewApp creates an App from cfg. A nil cfg uses the defaults.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	ms := tessellate.New()
	ms.RadialResolution = cfg.Mesher.RadialResolution
	ms.CapEnds = cfg.Mesher.CapEnds
	ms.MaxBranchRatio = cfg.Mesher.MaxBranchRatio
	if err := ms.Validate(); err != nil {
		return nil, err
	}

	eng := engine.NewEngine()
	eng.Timeout = cfg.Recipe.Timeout

	pv := sdfx.New()
	pv.Cells = cfg.Preview.Cells
	pv.Blend = cfg.Preview.Blend
	pv.MinRadius = cfg.Preview.MinRadius

	return &App{
		cfg:     cfg,
		engine:  eng,
		mesher:  ms,
		preview: pv,
		log:     logger.Log,
	}, nil
}

// Grow evaluates a recipe and runs its growth pipeline, stopping before the
// mesher. Recipe problems are reported in the result, not as an error.
func (a *App) Grow(source string) Result {
	result := Result{
		Tree:     graph.NewTree(nil),
		Errors:   []ErrorData{},
		Warnings: []ErrorData{},
	}

	start := time.Now()
	rec, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("recipe evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, ErrorData{Line: e.Line, Message: e.Message})
	}
	if len(result.Errors) > 0 {
		a.log.Debug("recipe has errors", zap.Int("count", len(result.Errors)))
		return result
	}

	if err := growth.ValidatePipeline(rec.Root); err != nil {
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}

	result.Tree.SetFirstFunction(rec.Root)
	if err := result.Tree.ExecuteFunctions(); err != nil {
		a.log.Error("growth failed", zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: "growth failed: " + err.Error()})
		return result
	}

	for _, v := range graph.Validate(result.Tree.Stems) {
		d := ErrorData{Message: v.Error()}
		if v.Severity == graph.SeverityError {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}

	a.log.Debug("tree grown",
		zap.Int("functions", rec.Functions()),
		zap.Int("stems", len(result.Tree.Stems)),
		zap.Int("nodes", result.Tree.NodeCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

// Evaluate grows the recipe and skins the skeleton into a smoothed mesh.
func (a *App) Evaluate(source string) Result {
	result := a.Grow(source)
	if len(result.Errors) > 0 {
		return result
	}

	start := time.Now()
	m, err := a.mesher.MeshTree(result.Tree)
	if err != nil {
		a.log.Error("meshing failed", zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: "meshing failed: " + err.Error()})
		return result
	}

	s := a.cfg.Smoothing
	if s.Iterations > 0 && !m.IsEmpty() {
		if err := m.Smooth(s.Iterations, s.Factor, s.Attribute); err != nil {
			result.Errors = append(result.Errors, ErrorData{Message: "smoothing failed: " + err.Error()})
			return result
		}
	}

	result.Mesh = m
	result.Stats = m.Stats()
	if n := result.Stats.NonManifoldEdges; n > 0 {
		result.Warnings = append(result.Warnings, ErrorData{
			Message: fmt.Sprintf("mesh has %d non-manifold edges", n),
		})
	}

	a.log.Debug("tree meshed",
		zap.Stringer("stats", result.Stats),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

// Export writes m to path in the configured format.
func (a *App) Export(m *mesh.Mesh, path string) error {
	var err error
	switch a.cfg.Export.Format {
	case "stl":
		err = m.SaveSTL(path)
	default:
		err = m.SaveOBJ(path)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	a.log.Info("mesh written",
		zap.String("path", path),
		zap.String("format", a.cfg.Export.Format),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("polygons", len(m.Polygons)),
	)
	return nil
}

// Preview writes an implicit surface preview of the grown tree as STL.
func (a *App) Preview(tree *graph.Tree, path string) error {
	start := time.Now()
	n, err := a.preview.SaveSTL(path, tree.Stems)
	if err != nil {
		return err
	}
	a.log.Info("preview written",
		zap.String("path", path),
		zap.Int("triangles", n),
		zap.Int("cells", a.preview.Cells),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// previewPath derives the preview file name from the mesh output path:
// tree.obj becomes tree.preview.stl.
func previewPath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".preview.stl"
}
