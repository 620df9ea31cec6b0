package bitboard

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestParseSequenceEmpty(t *testing.T) {
	p, err := ParseSequence("")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Moves())
	assert.Equal(t, uint64(0), p.Key())
}

func TestParseSequenceRejectsNonDigit(t *testing.T) {
	_, err := ParseSequence("1a2")
	require.Error(t, err)
}

func TestParseSequenceRejectsOutOfRangeColumn(t *testing.T) {
	_, err := ParseSequence("8")
	require.Error(t, err)
	_, err = ParseSequence("0")
	require.Error(t, err)
}

func TestParseSequenceRejectsFullColumn(t *testing.T) {
	// Column 1 (7 digits, height 6) overflows on the 7th stone, and no
	// alignment forms first since play alternates vertically one apart.
	_, err := ParseSequence("1111111")
	require.Error(t, err)
}

func TestParseSequenceRejectsWinningMove(t *testing.T) {
	// Columns 1,2,1,2,1,2,1: column 1 collects four player-1 stones
	// (moves 0,2,4,6) completing a vertical alignment on the 4th of
	// them, which is the last move of the string.
	_, err := ParseSequence("1212121")
	require.Error(t, err)
}

func TestPlayFlipsCurrentToOpponentStones(t *testing.T) {
	p := Empty()
	before := p
	p2 := p.Play(3)
	// The new current (the other player's perspective) equals the old
	// opponent stones, which for the empty board were 0.
	assert.Equal(t, before.current^before.mask, p2.current)
	assert.Equal(t, uint64(0), p2.current)
	assert.Equal(t, 1, p2.moves)
	assert.Equal(t, 1, bits.OnesCount64(p2.mask))
}

func TestPlayMaskGainsExactlyOneBit(t *testing.T) {
	p := Empty()
	for i := 0; i < 10; i++ {
		before := p
		col := i % Width
		if !p.CanPlay(col) || p.IsWinning(col) {
			continue
		}
		p = p.Play(col)
		assert.Equal(t, bits.OnesCount64(before.mask)+1, bits.OnesCount64(p.mask))
		assert.Equal(t, before.moves+1, p.moves)
		// current flips to the old opponent stones.
		assert.Equal(t, before.current^before.mask, p.current)
	}
}

// referenceAlignment scans an explicit HxW grid for four-in-a-rows, used
// as an oracle independent of the bitboard shift tricks.
func referenceAlignment(grid [Width][Height]bool) bool {
	dirs := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for c := 0; c < Width; c++ {
		for r := 0; r < Height; r++ {
			if !grid[c][r] {
				continue
			}
			for _, d := range dirs {
				ok := true
				for k := 1; k < 4; k++ {
					cc := c + d[0]*k
					rr := r + d[1]*k
					if cc < 0 || cc >= Width || rr < 0 || rr >= Height || !grid[cc][rr] {
						ok = false
						break
					}
				}
				if ok {
					return true
				}
			}
		}
	}
	return false
}

func toGrid(bb uint64) [Width][Height]bool {
	var grid [Width][Height]bool
	for c := 0; c < Width; c++ {
		for r := 0; r < Height; r++ {
			bit := uint64(1) << (c*(Height+1) + r)
			grid[c][r] = bb&bit != 0
		}
	}
	return grid
}

func TestWinDetectionConsistency(t *testing.T) {
	rng := frand.New()
	for trial := 0; trial < 200; trial++ {
		p := Empty()
		for ply := 0; ply < 30; ply++ {
			var playable []int
			for c := 0; c < Width; c++ {
				if p.CanPlay(c) {
					playable = append(playable, c)
				}
			}
			if len(playable) == 0 {
				break
			}
			c := playable[rng.Intn(len(playable))]

			wins := p.IsWinning(c)

			// Build the grid the move would produce for the side to
			// move and check it against the reference scanner.
			next := p.current | ((p.mask + bottomMask(c)) & columnMask(c))
			grid := toGrid(next)
			assert.Equal(t, referenceAlignment(grid), wins, "trial %d ply %d col %d", trial, ply, c)

			if wins {
				break
			}
			p = p.Play(c)
		}
	}
}

func TestKeyUniquenessUpToDepth8(t *testing.T) {
	// Different move orders can reach the same position (a transposition),
	// which shares its key by design; only two different positions
	// sharing a key is a collision.
	seen := make(map[uint64]string)
	seenPos := make(map[uint64]Position)
	var walk func(p Position, seq string, depth int)
	walk = func(p Position, seq string, depth int) {
		if depth == 8 {
			return
		}
		for c := 0; c < Width; c++ {
			if !p.CanPlay(c) {
				continue
			}
			if p.IsWinning(c) {
				continue
			}
			np := p.Play(c)
			key := np.Key()
			nseq := seq + string(rune('1'+c))
			if prior, ok := seen[key]; ok {
				if seenPos[key] != np {
					require.Fail(t, "key collision", "seq %s and %s share key %d", prior, nseq, key)
				}
				// Same position by another move order: already walked.
				continue
			}
			seen[key] = nseq
			seenPos[key] = np
			walk(np, nseq, depth+1)
		}
	}
	walk(Empty(), "", 0)
	assert.Greater(t, len(seen), 1000)
}

func TestPossibleNonLosingMovesIsSubsetOfPossible(t *testing.T) {
	// "4453" is an early position in which neither side has a threat.
	p, err := ParseSequence("4453")
	require.NoError(t, err)
	_ = p
	// Sanity: possibleNonLosingMoves should never panic and should be a
	// subset of Possible().
	assert.Equal(t, p.PossibleNonLosingMoves()&^p.Possible(), uint64(0))
}

func TestCanWinNextDetectsImmediateWin(t *testing.T) {
	p, err := ParseSequence("112233")
	require.NoError(t, err)
	// col 4 (index 3) for player 1 would be the fourth horizontal stone
	// only if aligned; just check the helper doesn't panic and is
	// consistent with IsWinning over all columns.
	found := false
	for c := 0; c < Width; c++ {
		if p.CanPlay(c) && p.IsWinning(c) {
			found = true
		}
	}
	assert.Equal(t, found, p.CanWinNext())
}

func TestColumnOf(t *testing.T) {
	for c := 0; c < Width; c++ {
		assert.Equal(t, c, ColumnOf(bottomMask(c)))
		assert.Equal(t, c, ColumnOf(topMask(c)))
	}
	assert.Equal(t, -1, ColumnOf(0))
	assert.Equal(t, -1, ColumnOf(bottomMask(0)|bottomMask(1)))
}
