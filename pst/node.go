package pst

import (
	"pstdb/internal/ltp"
	"pstdb/internal/ndb"
)

// Node is a random-access logical object: a flat byte stream (its data
// block, possibly extended) plus an optional sub-node tree (spec.md
// §4.5, §4.10).
type Node struct {
	n *ndb.Node
}

// ID returns the node's own id.
func (nd *Node) ID() NodeID { return nd.n.ID() }

// ParentID returns the owning node's id, or zero if nd is top-level.
func (nd *Node) ParentID() NodeID { return nd.n.ParentID() }

// Size returns the length of the node's byte stream.
func (nd *Node) Size() (int64, error) { return nd.n.Size() }

// Read fills dst from the node's byte stream starting at offset.
func (nd *Node) Read(dst []byte, offset int64) error { return nd.n.Read(dst, offset) }

// ReadAll returns the node's entire byte stream.
func (nd *Node) ReadAll() ([]byte, error) { return nd.n.ReadAll() }

// Lookup resolves subID in nd's own sub-node tree (spec.md §4.10).
func (nd *Node) Lookup(subID NodeID) (*Node, error) {
	child, err := nd.n.Lookup(subID)
	if err != nil {
		return nil, err
	}
	return &Node{n: child}, nil
}

// Clone returns an independent handle re-resolved from the NBT, useful
// once a caller has retained a NodeID past the point the tree might
// have been re-walked.
func (nd *Node) Clone() (*Node, error) {
	c, err := nd.n.Clone()
	if err != nil {
		return nil, err
	}
	return &Node{n: c}, nil
}

// Alias returns a handle sharing nd's already-resolved NodeInfo, without
// a fresh NBT lookup.
func (nd *Node) Alias() *Node {
	return &Node{n: nd.n.Alias()}
}

// Heap opens a heap-on-node view over nd's byte stream (spec.md §4.11).
func (nd *Node) Heap() (*Heap, error) {
	h, err := ltp.OpenHeap(nd.n)
	if err != nil {
		return nil, err
	}
	return &Heap{h: h}, nil
}

// PropertyBag opens nd's heap as a property context (spec.md §4.13).
func (nd *Node) PropertyBag() (*PropertyBag, error) {
	return OpenPropertyBag(nd)
}
