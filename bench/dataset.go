// Package bench runs the solver against the standard benchmark
// datasets: plain-text files of "<moves> <expectedScore>" lines used to
// regression-test search correctness and measure node throughput.
package bench

import (
	"bufio"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/gopherfour/solver/bitboard"
	"github.com/gopherfour/solver/solver"
	"github.com/gopherfour/solver/stats"
)

// Case is one benchmark line: a move sequence and its known
// game-theoretic score.
type Case struct {
	Sequence string
	Expected int
}

// Load reads a dataset file from fs: one "<moves> <expectedScore>"
// pair per line, blank lines ignored.
func Load(fs afero.Fs, path string) ([]Case, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bench: open %s: %w", path, err)
	}
	defer f.Close()

	var cases []Case
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("bench: %s:%d: expected 2 fields, got %d", path, lineNo, len(fields))
		}
		expected, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bench: %s:%d: bad expected score %q: %w", path, lineNo, fields[1], err)
		}
		cases = append(cases, Case{Sequence: fields[0], Expected: expected})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bench: reading %s: %w", path, err)
	}
	return cases, nil
}

// Result is the outcome of solving one Case.
type Result struct {
	Case     Case
	Got      int
	Nodes    int64
	Mismatch bool
	ParseErr error
}

// Run solves every case concurrently (each on its own Solver — the
// search itself stays single-threaded, only the cases are farmed out
// across goroutines) and returns one Result per case, in input order.
// logSize sizes each solver's transposition table; weak selects
// sign-only scoring.
func Run(cases []Case, logSize int, weak bool) ([]Result, error) {
	results := make([]Result, len(cases))
	g := new(errgroup.Group)
	g.SetLimit(runtimeConcurrency())

	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			results[i] = solveOne(c, logSize, weak)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func solveOne(c Case, logSize int, weak bool) Result {
	p, err := bitboard.ParseSequence(c.Sequence)
	if err != nil {
		return Result{Case: c, ParseErr: err}
	}
	s := solver.New(logSize)
	got := s.Solve(p, weak)
	expected := c.Expected
	if weak {
		expected = sign(expected)
	}
	return Result{Case: c, Got: got, Nodes: s.NodeCount(), Mismatch: got != expected}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Summary aggregates a batch of Results for reporting.
type Summary struct {
	Total      int
	Failures   int
	TotalNodes int64
	MeanNodes  float64
	StdevNodes float64
	NodesCI95  float64 // +/- half-width of the 95% confidence interval on MeanNodes
}

// Summarize reduces results to a Summary and logs a one-line report
// per dataset, in the spirit of the teacher's node-count telemetry.
// Node counts per case are additionally run through a Statistic
// (Welford's algorithm) so the summary carries mean/stdev, not just a
// total — useful for spotting a handful of pathologically deep cases
// hiding inside an otherwise-fast dataset.
func Summarize(name string, results []Result) Summary {
	failures := lo.Filter(results, func(r Result, _ int) bool {
		return r.ParseErr != nil || r.Mismatch
	})
	totalNodes := lo.SumBy(results, func(r Result) int64 { return r.Nodes })

	var nodeStats stats.Statistic
	for _, r := range results {
		nodeStats.Push(float64(r.Nodes))
	}

	ci95 := nodeStats.ConfidenceInterval(95)

	log.Info().
		Str("dataset", name).
		Int("cases", len(results)).
		Int("failures", len(failures)).
		Str("nodes", humanize.Comma(totalNodes)).
		Float64("meanNodes", nodeStats.Mean()).
		Float64("stdevNodes", nodeStats.Stdev()).
		Float64("nodesCI95", ci95).
		Msg("benchmark run complete")

	return Summary{
		Total:      len(results),
		Failures:   len(failures),
		TotalNodes: totalNodes,
		MeanNodes:  nodeStats.Mean(),
		StdevNodes: nodeStats.Stdev(),
		NodesCI95:  ci95,
	}
}

func runtimeConcurrency() int {
	return runtime.GOMAXPROCS(0)
}
