package ltp

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
)

// bthHeaderSize is {key_size(1), value_size(1), levels(1), reserved(1),
// root_heap_id(4)}: the fixed-size allocation a BTH is rooted at.
const bthHeaderSize = 8

// childHeapIDSize is the width of the child heapnode_id in a non-leaf
// BTH entry; each such entry is the key bytes followed by it.
const childHeapIDSize = 4

// BTH is a B-tree whose pages are heap allocations (spec.md §4.12). Key
// and value widths are runtime header fields rather than compile-time
// parameters (unlike package btree's NBT/BBT, whose widths are fixed by
// format variant), so BTH widens every key to a uint64 and returns raw
// value bytes for the caller to interpret — see DESIGN.md for why this
// isn't a generic[K,V] type the way package btree is.
type BTH struct {
	heap       *HeapOnNode
	keySize    int
	valueSize  int
	levels     int
	rootHeapID uint32
}

// OpenBTH reads the BTH header allocation at headerHeapID within heap
// and returns the resulting view (spec.md §4.12's open_bth).
func OpenBTH(heap *HeapOnNode, headerHeapID uint32) (*BTH, error) {
	raw, err := heap.Read(headerHeapID)
	if err != nil {
		return nil, err
	}
	if len(raw) < bthHeaderSize {
		return nil, dbutil.WrapError("ltp: bth header allocation truncated", dbutil.ErrDatabaseCorrupt)
	}

	keySize := int(raw[0])
	valueSize := int(raw[1])
	levels := int(raw[2])
	if keySize <= 0 || keySize > 8 {
		return nil, dbutil.WrapError("ltp: bth key size out of range", dbutil.ErrDatabaseCorrupt)
	}

	return &BTH{
		heap:       heap,
		keySize:    keySize,
		valueSize:  valueSize,
		levels:     levels,
		rootHeapID: binary.LittleEndian.Uint32(raw[4:8]),
	}, nil
}

// Heap returns the heap this BTH was opened from (spec.md §4.12's
// "pointer to its heap", the BTH->property-bag get_heap_ptr contract
// named explicitly in SPEC_FULL.md §3).
func (b *BTH) Heap() *HeapOnNode {
	return b.heap
}

// Levels reports the BTH's non-root depth (0 ⇒ the root allocation is
// itself a leaf page).
func (b *BTH) Levels() int {
	return b.levels
}

func decodeKey(raw []byte) uint64 {
	var v uint64
	for i, b := range raw {
		v |= uint64(b) << (8 * i)
	}
	return v
}

// Lookup returns the raw value bytes stored for key, or a
// KeyNotFoundError[uint64] if absent.
func (b *BTH) Lookup(key uint64) ([]byte, error) {
	return b.lookup(b.rootHeapID, b.levels, key)
}

func (b *BTH) lookup(heapID uint32, level int, key uint64) ([]byte, error) {
	raw, err := b.heap.Read(heapID)
	if err != nil {
		return nil, err
	}

	if level == 0 {
		entrySize := b.keySize + b.valueSize
		if entrySize == 0 {
			return nil, dbutil.NewKeyNotFoundError(key)
		}
		for off := 0; off+entrySize <= len(raw); off += entrySize {
			if decodeKey(raw[off:off+b.keySize]) == key {
				return append([]byte(nil), raw[off+b.keySize:off+entrySize]...), nil
			}
		}
		return nil, dbutil.NewKeyNotFoundError(key)
	}

	entrySize := b.keySize + childHeapIDSize
	childOff := -1
	for off := 0; off+entrySize <= len(raw); off += entrySize {
		if decodeKey(raw[off:off+b.keySize]) <= key {
			childOff = off
		} else {
			break
		}
	}
	if childOff == -1 {
		return nil, dbutil.NewKeyNotFoundError(key)
	}
	childID := binary.LittleEndian.Uint32(raw[childOff+b.keySize : childOff+entrySize])
	return b.lookup(childID, level-1, key)
}

// Iterate visits every (key, value) leaf pair in ascending key order.
func (b *BTH) Iterate(fn func(key uint64, value []byte) error) error {
	return b.iterate(b.rootHeapID, b.levels, fn)
}

func (b *BTH) iterate(heapID uint32, level int, fn func(uint64, []byte) error) error {
	raw, err := b.heap.Read(heapID)
	if err != nil {
		return err
	}

	if level == 0 {
		entrySize := b.keySize + b.valueSize
		if entrySize == 0 {
			return nil
		}
		for off := 0; off+entrySize <= len(raw); off += entrySize {
			key := decodeKey(raw[off : off+b.keySize])
			value := raw[off+b.keySize : off+entrySize]
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	}

	entrySize := b.keySize + childHeapIDSize
	for off := 0; off+entrySize <= len(raw); off += entrySize {
		childID := binary.LittleEndian.Uint32(raw[off+b.keySize : off+entrySize])
		if err := b.iterate(childID, level-1, fn); err != nil {
			return err
		}
	}
	return nil
}
