package config

import (
	"flag"
	"fmt"
)

// Flags holds command-line overrides registered on one flag set. Only flags
// given on the command line are applied.
type Flags struct {
	fs *flag.FlagSet

	config     string
	debug      bool
	resolution int
	capEnds    bool
	smooth     int
	format     string
	out        string
	cells      int
	logFile    string
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.resolution, "resolution", 0, "Vertices per ring")
	fs.BoolVar(&f.capEnds, "cap-ends", false, "Close branch tips and stem bases")
	fs.IntVar(&f.smooth, "smooth", 0, "Smoothing iterations")
	fs.StringVar(&f.format, "format", "", "Output format (obj or stl)")
	fs.StringVar(&f.out, "out", "", "Output file")
	fs.IntVar(&f.cells, "cells", 0, "Preview marching cubes cells")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this file")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.config
}

// apply copies every flag that was set onto cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "resolution":
			cfg.Mesher.RadialResolution = f.resolution
		case "cap-ends":
			cfg.Mesher.CapEnds = f.capEnds
		case "smooth":
			cfg.Smoothing.Iterations = f.smooth
		case "format":
			cfg.Export.Format = f.format
		case "out":
			cfg.Export.Output = f.out
		case "cells":
			cfg.Preview.Cells = f.cells
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		}
	})
}

// String lists the flags that were set, for logging.
func (f *Flags) String() string {
	if f == nil {
		return ""
	}
	var s string
	f.fs.Visit(func(fl *flag.Flag) {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("-%s=%s", fl.Name, fl.Value)
	})
	return s
}
