package pst

import "pstdb/internal/ltp"

// BTH is a B-tree on heap: fixed-width keys widened to uint64, raw
// []byte values whose width the caller already knows from context
// (spec.md §4.12).
type BTH struct {
	b *ltp.BTH
}

// Lookup returns the value bytes stored under key.
func (b *BTH) Lookup(key uint64) ([]byte, error) { return b.b.Lookup(key) }

// Iterate visits every (key, value) pair in ascending key order.
func (b *BTH) Iterate(fn func(key uint64, value []byte) error) error { return b.b.Iterate(fn) }

// Levels returns the tree's depth below the root (0 for a root that is
// itself a leaf).
func (b *BTH) Levels() int { return b.b.Levels() }

// Heap returns the heap this BTH is built over.
func (b *BTH) Heap() *Heap { return &Heap{h: b.b.Heap()} }
