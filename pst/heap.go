package pst

import "pstdb/internal/ltp"

// Heap is a heap-on-node view: a node's byte stream paged into fixed
// allocations addressable by heapnode_id (spec.md §4.11).
type Heap struct {
	h *ltp.HeapOnNode
}

// Read returns the bytes of the allocation named by id.
func (h *Heap) Read(id uint32) ([]byte, error) { return h.h.Read(id) }

// ClientSignature returns the heap's page-0 client_signature byte,
// identifying what the heap holds (e.g. disk.HeapSigPC, disk.HeapSigBTH).
func (h *Heap) ClientSignature() (byte, error) { return h.h.ClientSignature() }

// RootID returns the heapnode_id recorded in the page-0 header.
func (h *Heap) RootID() (uint32, error) { return h.h.RootID() }

// OpenBTH opens the B-tree-on-heap rooted at rootHeapID within h
// (spec.md §4.12).
func (h *Heap) OpenBTH(rootHeapID uint32) (*BTH, error) {
	b, err := ltp.OpenBTH(h.h, rootHeapID)
	if err != nil {
		return nil, err
	}
	return &BTH{b: b}, nil
}
