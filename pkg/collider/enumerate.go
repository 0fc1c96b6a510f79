package collider

import (
	"fmt"
	"iter"
	"math"

	"github.com/jlrickert/md5coll/pkg/oracle"
)

// BitOrder maps divergence points to bits of the enumeration index.
type BitOrder int

const (
	// FirstIsMSB makes the first divergence the most significant bit, so the
	// last divergence flips fastest.
	FirstIsMSB BitOrder = iota

	// FirstIsLSB makes the first divergence the least significant bit.
	FirstIsLSB
)

func (o BitOrder) String() string {
	switch o {
	case FirstIsMSB:
		return "msb"
	case FirstIsLSB:
		return "lsb"
	default:
		return fmt.Sprintf("BitOrder(%d)", int(o))
	}
}

// ParseBitOrder accepts "msb" or "lsb".
func ParseBitOrder(s string) (BitOrder, error) {
	switch s {
	case "msb", "":
		return FirstIsMSB, nil
	case "lsb":
		return FirstIsLSB, nil
	default:
		return FirstIsMSB, fmt.Errorf("unknown bit order %q (want msb or lsb)", s)
	}
}

// snapshot is a read-only view of the timeline at one moment. Recorded bytes
// are never rewritten, so copying the slice headers is enough.
type snapshot struct {
	segments [][]byte
	pairs    []oracle.Pair
	size     int
}

func (c *Collider) snapshot() snapshot {
	n := len(c.pairs)
	segs := make([][]byte, n+1)
	copy(segs, c.segments)
	return snapshot{
		segments: segs,
		pairs:    c.pairs[:n:n],
		size:     c.Len(),
	}
}

func (s snapshot) count() uint64 {
	if len(s.pairs) >= 64 {
		return math.MaxUint64
	}
	return uint64(1) << len(s.pairs)
}

func (s snapshot) branch(index uint64, i int, order BitOrder) int {
	shift := i
	if order == FirstIsMSB {
		shift = len(s.pairs) - 1 - i
	}
	return int(index >> uint(shift) & 1)
}

func (s snapshot) materialize(index uint64, order BitOrder) []byte {
	out := make([]byte, 0, s.size)
	for i, seg := range s.segments {
		out = append(out, seg...)
		if i < len(s.pairs) {
			out = append(out, s.pairs[i].Branch(s.branch(index, i, order))...)
		}
	}
	return out
}

// Count is the number of distinct outputs, 2^n for n divergences. It
// saturates at math.MaxUint64.
func (c *Collider) Count() uint64 {
	return c.snapshot().count()
}

// Variant materializes the output selected by index under order.
func (c *Collider) Variant(index uint64, order BitOrder) ([]byte, error) {
	s := c.snapshot()
	if index >= s.count() {
		return nil, fmt.Errorf("%w: %d of %d", ErrVariantRange, index, s.count())
	}
	return s.materialize(index, order), nil
}

// Bytes is the output that uses branch 0 everywhere.
func (c *Collider) Bytes() []byte {
	return c.snapshot().materialize(0, FirstIsMSB)
}

// Iterator walks outputs in binary counting order. Each output is built on
// demand; nothing beyond the current one is held.
type Iterator struct {
	snap  snapshot
	order BitOrder
	limit uint64
	next  uint64
	cur   []byte
	index uint64
}

// Enumerate returns an iterator over min(limit, 2^n) outputs, where n is the
// number of divergences recorded at the time of the call. A limit of zero or
// less means all of them. Divergences recorded later do not affect the
// iterator.
func (c *Collider) Enumerate(limit int, order BitOrder) *Iterator {
	s := c.snapshot()
	total := s.count()
	if limit > 0 && uint64(limit) < total {
		total = uint64(limit)
	}
	return &Iterator{snap: s, order: order, limit: total}
}

// Next advances to the next output.
func (it *Iterator) Next() bool {
	if it.next >= it.limit {
		it.cur = nil
		return false
	}
	it.index = it.next
	it.cur = it.snap.materialize(it.index, it.order)
	it.next++
	return true
}

// Bytes is the current output. The slice belongs to the caller.
func (it *Iterator) Bytes() []byte { return it.cur }

// Index is the counting index of the current output.
func (it *Iterator) Index() uint64 { return it.index }

// Selection is the branch chosen at each divergence for the current output.
func (it *Iterator) Selection() []int {
	sel := make([]int, len(it.snap.pairs))
	for i := range sel {
		sel[i] = it.snap.branch(it.index, i, it.order)
	}
	return sel
}

// Len is the number of outputs the iterator yields in total.
func (it *Iterator) Len() uint64 { return it.limit }

// Reset rewinds to the first output.
func (it *Iterator) Reset() {
	it.next = 0
	it.index = 0
	it.cur = nil
}

// All ranges over the outputs of a fresh Enumerate call, yielding the
// counting index and the output bytes.
func (c *Collider) All(limit int, order BitOrder) iter.Seq2[uint64, []byte] {
	it := c.Enumerate(limit, order)
	return func(yield func(uint64, []byte) bool) {
		it.Reset()
		for it.Next() {
			if !yield(it.Index(), it.Bytes()) {
				return
			}
		}
	}
}
