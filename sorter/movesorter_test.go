package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(m *MoveSorter) []uint64 {
	var out []uint64
	for {
		mv, ok := m.Next()
		if !ok {
			break
		}
		out = append(out, mv)
	}
	return out
}

func TestOrdersDescending(t *testing.T) {
	p := NewPool()
	m := p.New(0)
	m.Add(1, 3)
	m.Add(2, 7)
	m.Add(3, 1)
	m.Add(4, 5)

	assert.Equal(t, []uint64{2, 4, 1, 3}, drain(m))
}

func TestTiesBrokenByLaterInsertionFirst(t *testing.T) {
	p := NewPool()
	m := p.New(1)
	m.Add(10, 5)
	m.Add(20, 5)
	m.Add(30, 5)

	assert.Equal(t, []uint64{30, 20, 10}, drain(m))
}

func TestEmptySorterYieldsNothing(t *testing.T) {
	p := NewPool()
	m := p.New(2)
	_, ok := m.Next()
	assert.False(t, ok)
}

func TestDistinctDepthsDoNotShareSlots(t *testing.T) {
	p := NewPool()
	a := p.New(0)
	b := p.New(1)
	a.Add(99, 1)
	b.Add(42, 1)
	assert.Equal(t, []uint64{99}, drain(a))
	assert.Equal(t, []uint64{42}, drain(b))
}

func TestOverflowPanics(t *testing.T) {
	p := NewPool()
	m := p.New(3)
	for c := 0; c < 7; c++ {
		m.Add(uint64(c), c)
	}
	assert.Panics(t, func() {
		m.Add(999, 0)
	})
}

func TestDistinctPoolsDoNotShareBackingArray(t *testing.T) {
	p1 := NewPool()
	p2 := NewPool()
	a := p1.New(0)
	b := p2.New(0)
	a.Add(1, 1)
	b.Add(2, 1)

	assert.Equal(t, []uint64{1}, drain(a))
	assert.Equal(t, []uint64{2}, drain(b))
}
