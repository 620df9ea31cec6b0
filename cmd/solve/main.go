// Command solve solves a single Connect Four position given as a
// column-sequence string and prints its score, optionally the
// per-column analysis, and the node count.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/gopherfour/solver/bitboard"
	"github.com/gopherfour/solver/config"
	"github.com/gopherfour/solver/solver"
)

func main() {
	fs := config.NewFlagSet("solve")
	fs.Bool("analyze", false, "print the score of every playable column instead of just the best")

	cfg, err := config.LoadFromFlagSet(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	analyze, _ := fs.GetBool("analyze")

	seq := ""
	if args := fs.Args(); len(args) > 0 {
		seq = args[0]
	}

	p, err := bitboard.ParseSequence(seq)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	s := solver.New(cfg.TTLogSize)
	if analyze {
		scores := s.Analyze(p, cfg.Weak)
		for c := 0; c < bitboard.Width; c++ {
			if scores[c] == nil {
				fmt.Printf("column %d: unplayable\n", c+1)
				continue
			}
			fmt.Printf("column %d: %d\n", c+1, *scores[c])
		}
		return
	}

	if p.CanWinNext() {
		fmt.Println("score: immediate win available")
		return
	}
	score := s.Solve(p, cfg.Weak)
	fmt.Printf("score: %d (nodes: %s)\n", score, humanize.Comma(s.NodeCount()))
}
