// Package book loads a precomputed opening book from disk: a small
// header describing the board dimensions and key/value encoding,
// followed by a partial-key transposition table in the same
// always-replace, open-addressed style as the live search table.
package book

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/gopherfour/solver/bitboard"
	"github.com/gopherfour/solver/ttable"
)

// header is the fixed 6-byte preamble of a book file: board width,
// board height, the maximum move count the book covers, the byte
// width of stored partial keys, the byte width of stored values (only
// 1 is used today, kept explicit for forward compatibility), and
// log2 of the requested table size.
type header struct {
	width      uint8
	height     uint8
	maxDepth   uint8
	keyBytes   uint8
	valueBytes uint8
	logSize    uint8
}

const headerSize = 6

// Book is a read-only opening book: a lookup from a position already
// known to be within the book's depth range to a pre-solved score.
type Book struct {
	header header
	table  *ttable.SplitTable
}

// Load reads a book file at path from fs and returns a Book. fs is an
// afero.Fs so tests can substitute an in-memory filesystem instead of
// touching disk.
func Load(fs afero.Fs, path string) (*Book, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", path, err)
	}
	defer f.Close()
	return loadFrom(f)
}

func loadFrom(r io.Reader) (*Book, error) {
	br := bufio.NewReader(r)

	var raw [headerSize]byte
	if _, err := io.ReadFull(br, raw[:]); err != nil {
		return nil, fmt.Errorf("book: reading header: %w", err)
	}
	h := header{
		width:      raw[0],
		height:     raw[1],
		maxDepth:   raw[2],
		keyBytes:   raw[3],
		valueBytes: raw[4],
		logSize:    raw[5],
	}
	if int(h.width) != bitboard.Width || int(h.height) != bitboard.Height {
		return nil, fmt.Errorf("book: dimensions %dx%d do not match solver's %dx%d",
			h.width, h.height, bitboard.Width, bitboard.Height)
	}
	kw := ttable.KeyWidth(h.keyBytes)
	table, err := ttable.NewSplitTable(int(h.logSize), kw)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	size := table.Size()
	keys := make([]uint64, size)
	for i := range keys {
		key, err := readKey(br, kw)
		if err != nil {
			return nil, fmt.Errorf("book: reading key %d/%d: %w", i, size, err)
		}
		keys[i] = key
	}
	for i := range keys {
		var vbuf [1]byte
		if _, err := io.ReadFull(br, vbuf[:]); err != nil {
			return nil, fmt.Errorf("book: reading value %d/%d: %w", i, size, err)
		}
		if keys[i] != 0 || vbuf[0] != 0 {
			table.Put(keys[i], int8(vbuf[0]))
		}
	}

	log.Debug().Uint64("slots", size).Uint8("maxDepth", h.maxDepth).Msg("loaded opening book")
	return &Book{header: h, table: table}, nil
}

func readKey(r io.Reader, kw ttable.KeyWidth) (uint64, error) {
	switch kw {
	case ttable.KeyWidth1:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return uint64(b[0]), nil
	case ttable.KeyWidth2:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b[:])), nil
	case ttable.KeyWidth4:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b[:])), nil
	default:
		return 0, fmt.Errorf("book: unsupported key width %d", kw)
	}
}

// MaxDepth returns the highest move count the book was computed for;
// positions with more moves played are never in the book.
func (b *Book) MaxDepth() int { return int(b.header.maxDepth) }

// Get returns the pre-solved score for position and whether it was
// found. Positions beyond MaxDepth are reported as not found without a
// table lookup. A stored value of 0 marks an empty slot and is also
// reported as not found.
func (b *Book) Get(position bitboard.Position) (int, bool) {
	if position.Moves() > b.MaxDepth() {
		return 0, false
	}
	v, ok := b.table.Get(position.Key())
	if !ok || v == 0 {
		return 0, false
	}
	return int(v), true
}
