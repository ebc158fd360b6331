// Command arbor grows procedural trees from recipes and writes them as
// polygon meshes.
//
// Usage:
//
//	arbor generate [flags] recipe.arbor   grow, mesh, smooth and export
//	arbor preview  [flags] recipe.arbor   grow and write an implicit STL preview
//	arbor stats    [flags] recipe.arbor   grow, mesh and print statistics
//	arbor config   [flags]                print the effective configuration
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/arbor/internal/config"
	"github.com/chazu/arbor/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errUsage marks errors that already printed usage.
var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet("arbor "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	save := false
	if cmd == "config" {
		fs.BoolVar(&save, "save", false, "Write the effective configuration to the user config directory")
	}
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(stderr, "arbor:", err)
		return 1
	}

	opts := logger.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON, Console: stderr}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(opts); err != nil {
		fmt.Fprintln(stderr, "arbor:", err)
		return 1
	}
	defer logger.Sync()
	logger.Debug("starting", zap.String("command", cmd), zap.String("flags", flags.String()))

	switch cmd {
	case "generate", "preview", "stats":
		err = runRecipe(cmd, fs.Args(), cfg, stdout)
	case "config":
		err = runConfig(cfg, save, stdout)
	default:
		fmt.Fprintf(stderr, "arbor: unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}

	if errors.Is(err, errUsage) {
		usage(stderr)
		return 2
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", cmd), zap.Error(err))
		return 1
	}
	return 0
}

func runRecipe(cmd string, args []string, cfg *config.Config, stdout io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}

	var result Result
	if cmd == "preview" {
		result = app.Grow(string(source))
	} else {
		result = app.Evaluate(string(source))
	}
	for _, w := range result.Warnings {
		logger.Warn(w.Message, zap.String("recipe", path))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				logger.Error(e.Message, zap.String("recipe", path), zap.Int("line", e.Line))
			} else {
				logger.Error(e.Message, zap.String("recipe", path))
			}
		}
		return fmt.Errorf("%s: %d error(s)", path, len(result.Errors))
	}

	switch cmd {
	case "generate":
		if result.Mesh.IsEmpty() {
			logger.Warn("recipe grew nothing; writing an empty mesh", zap.String("recipe", path))
		}
		return app.Export(result.Mesh, cfg.Export.Output)
	case "preview":
		return app.Preview(result.Tree, previewPath(cfg.Export.Output))
	default:
		lo, hi := result.Mesh.Bounds()
		fmt.Fprintf(stdout, "stems %d, nodes %d\n", len(result.Tree.Stems), result.Tree.NodeCount())
		fmt.Fprintln(stdout, result.Stats)
		fmt.Fprintf(stdout, "area %.4f, bounds (%.3f %.3f %.3f) (%.3f %.3f %.3f)\n",
			result.Mesh.Area(), lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
		return nil
	}
}

func runConfig(cfg *config.Config, save bool, stdout io.Writer) error {
	if save {
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}
	return cfg.Write(stdout)
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: arbor <command> [flags] [recipe]

commands:
  generate   grow, mesh, smooth and export a recipe
  preview    grow a recipe and write an implicit STL preview
  stats      grow and mesh a recipe and print mesh statistics
  config     print the effective configuration (-save to persist it)

run "arbor <command> -h" for flags
`)
}
