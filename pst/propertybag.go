package pst

import (
	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
	"pstdb/internal/ltp"
)

// PropertyBag is a prop_id -> (prop_type, value) map realised as a BTH
// over a node's heap, where the heap's client_signature identifies it
// as a property context (spec.md §4.13).
type PropertyBag struct {
	node *Node
	heap *ltp.HeapOnNode
	bth  *ltp.BTH
}

// OpenPropertyBag builds a PropertyBag from node's heap-on-node,
// rejecting heaps whose client_signature isn't the property-context
// signature (spec.md §4.13, §8 S6).
func OpenPropertyBag(node *Node) (*PropertyBag, error) {
	h, err := ltp.OpenHeap(node.n)
	if err != nil {
		return nil, err
	}
	sig, err := h.ClientSignature()
	if err != nil {
		return nil, err
	}
	if sig != disk.HeapSigPC {
		return nil, dbutil.WrapError("pst: heap is not a property context", dbutil.ErrSigMismatch)
	}
	rootID, err := h.RootID()
	if err != nil {
		return nil, err
	}
	bth, err := ltp.OpenBTH(h, rootID)
	if err != nil {
		return nil, err
	}
	return &PropertyBag{node: node, heap: h, bth: bth}, nil
}

// GetPropList returns every prop_id present, in ascending order with no
// duplicates (spec.md §4.13, §8 invariant).
func (pb *PropertyBag) GetPropList() ([]uint16, error) {
	var ids []uint16
	err := pb.bth.Iterate(func(key uint64, _ []byte) error {
		ids = append(ids, uint16(key))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (pb *PropertyBag) entry(id uint16) (ltp.PropEntry, error) {
	raw, err := pb.bth.Lookup(uint64(id))
	if err != nil {
		return ltp.PropEntry{}, err
	}
	return ltp.DecodePropEntry(raw)
}

// GetPropType returns the prop_type stored alongside id.
func (pb *PropertyBag) GetPropType(id uint16) (uint16, error) {
	e, err := pb.entry(id)
	if err != nil {
		return 0, err
	}
	return e.PropType, nil
}

// PropExists reports whether id is present, swallowing key_not_found
// (spec.md §4.13: "a lookup that swallows key_not_found").
func (pb *PropertyBag) PropExists(id uint16) bool {
	_, err := pb.entry(id)
	return err == nil
}

// GetValue1 reinterprets the entry's inline id field as a single byte
// (spec.md §4.13, §8 invariant 4).
func (pb *PropertyBag) GetValue1(id uint16) (byte, error) {
	e, err := pb.entry(id)
	if err != nil {
		return 0, err
	}
	return byte(e.ID), nil
}

// GetValue2 reinterprets the entry's inline id field as a little-endian
// 16-bit value.
func (pb *PropertyBag) GetValue2(id uint16) (uint16, error) {
	e, err := pb.entry(id)
	if err != nil {
		return 0, err
	}
	return uint16(e.ID), nil
}

// GetValue4 returns the entry's inline id field directly.
func (pb *PropertyBag) GetValue4(id uint16) (uint32, error) {
	e, err := pb.entry(id)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// GetValue8 resolves id's heapnode_id (spec.md §4.13 steps 1-3) and
// decodes the first 8 bytes little-endian.
func (pb *PropertyBag) GetValue8(id uint16) (uint64, error) {
	raw, err := pb.GetValueVariable(id)
	if err != nil {
		return 0, err
	}
	v, err := dbutil.DecodeUint64LE(raw)
	if err != nil {
		return 0, dbutil.WrapError("pst: decoding 8-byte value", err)
	}
	return v, nil
}

// GetValueVariable resolves an out-of-line value by the entry's id field
// treated as a heapnode_id: zero resolves to an empty slice, a
// sub-node-flagged id resolves via the node's own sub-node tree and
// reads that node's full stream, and anything else is a heap allocation
// read (spec.md §4.13, §8 invariant 5).
func (pb *PropertyBag) GetValueVariable(id uint16) ([]byte, error) {
	e, err := pb.entry(id)
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return []byte{}, nil
	}
	if ltp.IsSubnodeHeapID(e.ID) {
		child, err := pb.node.Lookup(NodeID(e.ID))
		if err != nil {
			return nil, err
		}
		return child.ReadAll()
	}
	return pb.heap.Read(e.ID)
}
