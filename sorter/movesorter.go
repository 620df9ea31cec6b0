// Package sorter implements the search's move ordering: a small,
// in-place, descending-score sorter over at most Width candidate moves
// per node, backed by a pool indexed by search depth so that no node
// allocates on the hot path.
package sorter

import "github.com/gopherfour/solver/bitboard"

type entry struct {
	move  uint64
	score int
}

// Pool is sized Width*Height*Width entries and carved into Width*Height
// slots of Width entries each, one slot per possible search depth. A
// search is single-threaded and strictly depth-first, so no two live
// MoveSorters borrowed from the same Pool ever share a slot — but two
// independent, concurrently-running searches must not share a Pool, so
// each Solver owns its own.
type Pool struct {
	buf []entry
}

// NewPool allocates a fresh, independent backing array.
func NewPool() *Pool {
	return &Pool{buf: make([]entry, bitboard.Width*bitboard.Height*bitboard.Width)}
}

// MoveSorter ranks up to Width candidate (move, score) pairs in
// descending score order via insertion sort, then yields them one at a
// time. It is valid only while its owning search frame is live.
type MoveSorter struct {
	slice []entry
	count int
}

// New returns a MoveSorter borrowing p's slot for the given search
// depth. depth must be in [0, Width*Height).
func (p *Pool) New(depth int) *MoveSorter {
	start := depth * bitboard.Width
	return &MoveSorter{slice: p.buf[start : start+bitboard.Width]}
}

// Add inserts (move, score) in sorted position. Entries are kept in
// ascending score order internally so Next can pop from the top in
// descending order; ties are broken by insertion order, with the
// later-inserted entry yielded first (the scan below shifts up only
// entries scoring strictly higher than the new one, so the new entry
// lands above any earlier entries of equal score). Pre: the sorter
// holds fewer than Width entries.
func (m *MoveSorter) Add(move uint64, score int) {
	if m.count >= bitboard.Width {
		panic("sorter: MoveSorter overflow")
	}
	pos := m.count
	for pos > 0 && m.slice[pos-1].score > score {
		m.slice[pos] = m.slice[pos-1]
		pos--
	}
	m.slice[pos] = entry{move: move, score: score}
	m.count++
}

// Next pops and returns the move with the highest remaining score, and
// true. It returns (0, false) once the sorter is empty. The sequence is
// finite and not restartable.
func (m *MoveSorter) Next() (uint64, bool) {
	if m.count == 0 {
		return 0, false
	}
	m.count--
	return m.slice[m.count].move, true
}
