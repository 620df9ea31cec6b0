// Package ttable implements the solver's transposition table: a flat,
// open-addressed, fixed-size cache of position-key to score bound, plus
// a partial-key variant used by the opening book. Collisions are always
// resolved by overwriting — this is deliberate (newer entries tend to
// come from deeper, more valuable subtrees) and there is no probing.
package ttable

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

const entrySize = 8 // bytes per slot: one uint64

const keyBits = 56
const keyMask = (uint64(1) << keyBits) - 1

// Table is a single flat array of S 64-bit slots, where S is the next
// prime at or above a requested power of two. Each slot packs the
// low 56 bits of the position key and a signed 8-bit bound in the high
// byte; a zero slot means "empty" (every key stored here is non-zero
// because current+mask is non-zero after the first move, and the empty
// root position is never stored).
type Table struct {
	slots []uint64
	size  uint64

	lookups atomic.Uint64
	hits    atomic.Uint64
	stores  atomic.Uint64
}

// NewTable allocates a table with nextPrime(2^logSize) slots. If
// logSize is 0, the size is derived from a fraction of total system
// memory instead, mirroring the teacher's memory-driven auto-sizing
// (endgame/negamax/transposition_table.go's Reset).
func NewTable(logSize int) *Table {
	var size uint64
	if logSize > 0 {
		size = nextPrime(uint64(1) << uint(logSize))
	} else {
		total := memory.TotalMemory()
		desired := float64(total) * autoSizeFraction / float64(entrySize)
		size = nextPrime(uint64(math.Max(desired, float64(uint64(1)<<20))))
	}
	log.Debug().Uint64("slots", size).Uint64("bytes", size*entrySize).Msg("allocated transposition table")
	return &Table{slots: make([]uint64, size), size: size}
}

// autoSizeFraction is how much of total system memory the table may
// claim when the caller did not request an explicit size. 64MB for the
// standard 2^23-slot table on a 7x6 board is roughly 2^23*8 bytes; this
// fraction scales similarly on bigger or smaller machines.
const autoSizeFraction = 0.05

// Put stores value (which must fit a signed 8-bit range) for key,
// unconditionally overwriting whatever was at that slot.
func (t *Table) Put(key uint64, value int8) {
	idx := key % t.size
	t.slots[idx] = (key & keyMask) | uint64(uint8(value))<<keyBits
	t.stores.Add(1)
}

// Get returns the stored value for key, or 0 if the slot is empty or
// holds a different key. A return of 0 is indistinguishable from "no
// entry" and "stored value 0"; callers must never store 0 (the solver
// achieves this via score offsets).
func (t *Table) Get(key uint64) int8 {
	t.lookups.Add(1)
	idx := key % t.size
	slot := t.slots[idx]
	if slot == 0 {
		return 0
	}
	if slot&keyMask != key&keyMask {
		return 0
	}
	t.hits.Add(1)
	return int8(slot >> keyBits)
}

// Reset zeroes the whole table in place.
func (t *Table) Reset() {
	clear(t.slots)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.stores.Store(0)
}

// Len returns the number of slots.
func (t *Table) Len() int { return len(t.slots) }

// Stats returns lookup/hit/store counters, for telemetry.
func (t *Table) Stats() (lookups, hits, stores uint64) {
	return t.lookups.Load(), t.hits.Load(), t.stores.Load()
}
