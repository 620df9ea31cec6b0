// Command bench runs one or more benchmark dataset files against the
// solver and reports per-dataset node-count statistics.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/gopherfour/solver/bench"
	"github.com/gopherfour/solver/config"
)

func main() {
	fs := config.NewFlagSet("bench")
	cfg, err := config.LoadFromFlagSet(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bench [flags] <dataset> [dataset...]")
		os.Exit(1)
	}

	osFs := afero.NewOsFs()
	exitCode := 0
	for _, path := range paths {
		cases, err := bench.Load(osFs, path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			exitCode = 1
			continue
		}
		results, err := bench.Run(cases, cfg.TTLogSize, cfg.Weak)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			exitCode = 1
			continue
		}
		summary := bench.Summarize(path, results)
		fmt.Printf("%s: %d/%d passed, %d total nodes, mean %.1f +/- %.1f\n",
			path, summary.Total-summary.Failures, summary.Total, summary.TotalNodes, summary.MeanNodes, summary.NodesCI95)
		if summary.Failures > 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
