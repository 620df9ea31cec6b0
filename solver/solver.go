// Package solver implements the negamax search: alpha-beta pruning, a
// transposition table, pool-backed move ordering, and anticipation of
// the opponent's immediate threats, orchestrated through a null-window
// binary search over the score for iterative deepening.
package solver

import (
	"github.com/rs/zerolog/log"

	"github.com/gopherfour/solver/bitboard"
	"github.com/gopherfour/solver/sorter"
	"github.com/gopherfour/solver/ttable"
)

const (
	width  = bitboard.Width
	height = bitboard.Height
	cells  = width * height

	// minScore/maxScore bound the real scores reachable from positions
	// where the side to move cannot win within the next move.
	minScore = -cells/2 + 3
	maxScore = (cells+1)/2 - 3

	// upperRange is the number of distinct upper-bound codes; any
	// stored value above it decodes as a lower bound instead.
	upperRange = maxScore - minScore + 1
)

// columnOrder explores the centre column first and the edges last: the
// centre column participates in the most lines of four and dominates
// the move-ordering heuristic. For width 7 this is [3,2,4,1,5,0,6].
var columnOrder = buildColumnOrder()

func buildColumnOrder() [width]int {
	var order [width]int
	for i := 0; i < width; i++ {
		order[i] = width/2 + (1-2*(i%2))*(i+1)/2
	}
	return order
}

// Solver holds one transposition table and orchestrates negamax search
// over it. It is not safe for concurrent use — the search itself is
// single-threaded by design (spec: no concurrency inside search). Each
// Solver owns its own move-ordering pool so that independent Solvers
// (bench.Run solves many positions concurrently, one Solver per
// goroutine) never share mutable state.
type Solver struct {
	table     *ttable.Table
	pool      *sorter.Pool
	nodeCount int64
}

// New creates a Solver with a table of nextPrime(2^logSize) slots. A
// logSize of 0 auto-sizes the table from system memory.
func New(logSize int) *Solver {
	return &Solver{table: ttable.NewTable(logSize), pool: sorter.NewPool()}
}

// NodeCount returns the number of search nodes visited since the last
// Reset, for telemetry. It is a plain counter: the search never runs
// concurrently, so no synchronization is needed.
func (s *Solver) NodeCount() int64 { return s.nodeCount }

// Reset clears the transposition table and the node counter.
func (s *Solver) Reset() {
	s.table.Reset()
	s.nodeCount = 0
}

// Solve returns the game-theoretic score of position under optimal
// play. In strong mode the magnitude encodes how many plies remain
// before the game ends; in weak mode only the sign survives. Unlike
// negamax, Solve has no precondition on CanWinNext: a position with an
// immediate winning move is handled directly, so every caller — this
// package's own Analyze included — can call Solve on any position.
func (s *Solver) Solve(position bitboard.Position, weak bool) int {
	if position.CanWinNext() {
		v := (cells + 1 - position.Moves()) / 2
		if weak {
			v = 1
		}
		return v
	}

	lo, hi := -(cells-position.Moves())/2, (cells+1-position.Moves())/2
	if weak {
		lo, hi = -1, 1
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		if mid <= 0 && lo/2 < mid {
			mid = lo / 2
		} else if mid >= 0 && hi/2 > mid {
			mid = hi / 2
		}
		r := s.negamax(position, mid, mid+1)
		if r <= mid {
			hi = r
		} else {
			lo = r
		}
	}
	log.Debug().Int("score", lo).Int64("nodes", s.nodeCount).Msg("solve complete")
	return lo
}

// Analyze returns, for each of the Width columns, the score that
// results from playing there: nil if the column is unplayable, the
// immediate win score if playing there wins outright, otherwise the
// negation of Solve on the resulting position.
func (s *Solver) Analyze(position bitboard.Position, weak bool) [width]*int {
	var out [width]*int
	for c := 0; c < width; c++ {
		if !position.CanPlay(c) {
			continue
		}
		if position.IsWinning(c) {
			v := (cells + 1 - position.Moves()) / 2
			if weak {
				v = 1
			}
			out[c] = &v
			continue
		}
		child := position.Play(c)
		v := -s.Solve(child, weak)
		out[c] = &v
	}
	return out
}

// negamax is the inner alpha-beta search. Pre: !position.CanWinNext();
// violating this is a programmer error and panics, matching the
// solver's precondition-as-assertion failure semantics.
func (s *Solver) negamax(position bitboard.Position, alpha, beta int) int {
	if position.CanWinNext() {
		panic("solver: negamax called on a position with an immediate win available")
	}
	s.nodeCount++

	next := position.PossibleNonLosingMoves()
	if next == 0 {
		// Every remaining move hands the opponent an immediate win.
		return -(cells - position.Moves()) / 2
	}
	if position.Moves() >= cells-2 {
		// At most two plies left and neither side can force a win in
		// that span: the game is drawn.
		return 0
	}

	minBound := -(cells - 2 - position.Moves()) / 2
	if alpha < minBound {
		alpha = minBound
		if alpha >= beta {
			return alpha
		}
	}
	maxBound := (cells - 1 - position.Moves()) / 2
	if beta > maxBound {
		beta = maxBound
		if alpha >= beta {
			return beta
		}
	}

	key := position.Key()
	if v := s.table.Get(key); v != 0 {
		score := decodeBound(int(v))
		if int(v) > upperRange {
			if score > alpha {
				alpha = score
			}
		} else {
			if score < beta {
				beta = score
			}
		}
		if alpha >= beta {
			return score
		}
	}

	ms := s.pool.New(position.Moves())
	for i := 0; i < width; i++ {
		move := next & bitboard.ColumnMask(columnOrder[i])
		if move != 0 {
			ms.Add(move, position.MoveScore(move))
		}
	}

	best := alpha
	for {
		move, ok := ms.Next()
		if !ok {
			break
		}
		child := position.PlayMove(move)
		score := -s.negamax(child, -beta, -best)
		if score >= beta {
			s.table.Put(key, encodeLower(score))
			return score
		}
		if score > best {
			best = score
		}
	}

	s.table.Put(key, encodeUpper(best))
	return best
}

// encodeUpper/encodeLower/decodeBound implement spec.md's discriminator
// scheme: the two offsets guarantee stored values never equal 0 (the
// table's empty sentinel) and that upper- and lower-bound ranges never
// overlap, so Get's caller can tell which kind of bound it read back
// purely from the magnitude of the stored byte.
func encodeUpper(trueUpper int) int8 {
	return int8(trueUpper - minScore + 1)
}

func encodeLower(trueLower int) int8 {
	return int8(trueLower + maxScore - 2*minScore + 2)
}

// decodeBound inverts whichever of encodeUpper/encodeLower produced v,
// selecting the right inverse via the same range test the caller uses
// to decide which kind of bound it has.
func decodeBound(v int) int {
	if v > upperRange {
		return v - (maxScore - 2*minScore + 2)
	}
	return v + minScore - 1
}
