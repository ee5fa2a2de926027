// Package ltp implements the Lists/Tables/Properties layer: a heap of
// variable-length allocations laid over a Node's byte stream, the
// embedded B-tree-on-heap (BTH) that indexes those allocations, and the
// raw property-entry decode the property bag builds on (spec.md
// §4.11-§4.13).
package ltp

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
	"pstdb/internal/ndb"
)

// heapPageSize is the logical page size the heap divides a node's byte
// stream into; unlike disk.PageSize this has no on-disk alignment
// meaning of its own; it only needs to agree with the 16-bit alloc_index
// half of a heapnode_id (spec.md §4.11, disk.HeapMaxAllocsPerPage).
const heapPageSize = 4096

// heapPage0HeaderSize is {client_signature(1), reserved(3), root_id(4)},
// present only at the front of page 0.
const heapPage0HeaderSize = 8

// heapTrailerCountSize is the uint16 allocation count at the very end of
// every heap page; the allocation-map entries ({offset,length} uint16
// pairs) sit immediately before it, so decoding never needs to guess
// where the trailer starts.
const (
	heapTrailerCountSize = 2
	heapTrailerEntrySize = 4
)

// HeapOnNode interprets a Node's byte stream as a sequence of
// fixed-size pages, each with a fill-map trailer describing its
// allocations (spec.md §4.11).
type HeapOnNode struct {
	node *ndb.Node
}

// OpenHeap wraps node as a heap, eagerly validating that page 0 is
// readable. The page-0 header length is checked later, by
// ClientSignature and RootID.
func OpenHeap(node *ndb.Node) (*HeapOnNode, error) {
	h := &HeapOnNode{node: node}
	if _, err := h.pageBytes(0); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HeapOnNode) pageCount() (count int, totalSize int64, err error) {
	size, err := h.node.Size()
	if err != nil {
		return 0, 0, err
	}
	if size == 0 {
		return 0, 0, dbutil.WrapError("ltp: heap has no pages", dbutil.ErrDatabaseCorrupt)
	}
	n := (size + heapPageSize - 1) / heapPageSize
	return int(n), size, nil
}

func (h *HeapOnNode) pageBytes(pageIndex int) ([]byte, error) {
	n, total, err := h.pageCount()
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 || pageIndex >= n {
		return nil, dbutil.WrapError("ltp: heap page index out of range", dbutil.ErrOutOfRange)
	}

	start := int64(pageIndex) * heapPageSize
	end := start + heapPageSize
	if end > total {
		end = total
	}

	buf := make([]byte, end-start)
	if err := h.node.Read(buf, start); err != nil {
		return nil, err
	}
	return buf, nil
}

// allocation locates the {offset, length} of alloc_index within a
// decoded heap page's trailer.
func allocation(page []byte, allocIndex int) (offset, length int, err error) {
	if len(page) < heapTrailerCountSize {
		return 0, 0, dbutil.WrapError("ltp: heap page too short for trailer", dbutil.ErrDatabaseCorrupt)
	}
	countOff := len(page) - heapTrailerCountSize
	count := int(binary.LittleEndian.Uint16(page[countOff:]))
	if allocIndex < 0 || allocIndex >= count {
		return 0, 0, dbutil.WrapError("ltp: alloc index out of range", dbutil.ErrOutOfRange)
	}

	entriesStart := countOff - count*heapTrailerEntrySize
	if entriesStart < 0 {
		return 0, 0, dbutil.WrapError("ltp: heap page trailer overflows page", dbutil.ErrDatabaseCorrupt)
	}
	e := page[entriesStart+allocIndex*heapTrailerEntrySize:]
	offset = int(binary.LittleEndian.Uint16(e[0:2]))
	length = int(binary.LittleEndian.Uint16(e[2:4]))
	if offset+length > entriesStart {
		return 0, 0, dbutil.WrapError("ltp: heap allocation overlaps trailer", dbutil.ErrDatabaseCorrupt)
	}
	return offset, length, nil
}

// packHeapID and unpackHeapID implement the Open Question resolution
// from SPEC_FULL.md §9: a heap allocation id is (page_index<<16) |
// alloc_index, occupying the low 16 bits.
func packHeapID(pageIndex, allocIndex int) uint32 {
	return uint32(pageIndex)<<16 | uint32(allocIndex&0xFFFF)
}

func unpackHeapID(id uint32) (pageIndex, allocIndex int) {
	return int(id >> 16), int(id & 0xFFFF)
}

// IsSubnodeHeapID reports whether a raw 32-bit heapnode_id (as stored in
// a property entry's id field) should be interpreted as a sub-node id
// rather than a packed (page_index, alloc_index) heap address — bit 0,
// per the Open Question resolution documented in DESIGN.md.
func IsSubnodeHeapID(raw uint32) bool {
	return raw&1 != 0
}

// Read returns an owned copy of the allocation addressed by id.
func (h *HeapOnNode) Read(id uint32) ([]byte, error) {
	pageIndex, allocIndex := unpackHeapID(id)
	page, err := h.pageBytes(pageIndex)
	if err != nil {
		return nil, err
	}
	offset, length, err := allocation(page, allocIndex)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, page[offset:offset+length])
	return out, nil
}

// ClientSignature returns page 0's client_signature byte.
func (h *HeapOnNode) ClientSignature() (byte, error) {
	page, err := h.pageBytes(0)
	if err != nil {
		return 0, err
	}
	if len(page) < heapPage0HeaderSize {
		return 0, dbutil.WrapError("ltp: heap page 0 too short for header", dbutil.ErrDatabaseCorrupt)
	}
	return page[0], nil
}

// RootID returns page 0's root_id: the heapnode_id of the user-root
// allocation (for a property context, the BTH header allocation).
func (h *HeapOnNode) RootID() (uint32, error) {
	page, err := h.pageBytes(0)
	if err != nil {
		return 0, err
	}
	if len(page) < heapPage0HeaderSize {
		return 0, dbutil.WrapError("ltp: heap page 0 too short for header", dbutil.ErrDatabaseCorrupt)
	}
	return binary.LittleEndian.Uint32(page[4:8]), nil
}
