package pst

import (
	"io"

	"pstdb/internal/ndb"
)

// NodeID identifies a logical object in the Node B-Tree (spec.md §4.5).
type NodeID = ndb.NodeID

// BlockID identifies a physical block in the Block B-Tree (spec.md §4.6).
type BlockID = ndb.BlockID

// Database is the public handle over an opened PST-style container
// (spec.md §4.2). It owns the NBT/BBT roots and the underlying reader;
// every Node obtained from it shares this handle.
type Database struct {
	db *ndb.Database
}

// Open opens a database over r under the given validation policy. The
// small (32-bit) or large (64-bit) on-disk variant is selected from the
// header's version field in one header read (see ndb.Open).
func Open(r io.ReaderAt, policy ValidationPolicy) (*Database, error) {
	fr := ndb.NewFileReader(r)
	db, err := ndb.Open(fr, policy)
	if err != nil {
		return nil, err
	}
	return &Database{db: db}, nil
}

// LargeFormat reports whether the opened file uses the 64-bit variant.
func (d *Database) LargeFormat() bool {
	return d.db.Header.Large
}

// LookupNode resolves nid via the Node B-Tree.
func (d *Database) LookupNode(nid NodeID) (*Node, error) {
	n, err := d.db.LookupNode(nid)
	if err != nil {
		return nil, err
	}
	return &Node{n: n}, nil
}

// WalkNodes visits every NBT leaf entry in ascending node_id order
// (spec.md §4.5, §8 S5).
func (d *Database) WalkNodes(fn func(NodeID) error) error {
	return d.db.WalkNodes(func(ni ndb.NodeInfo) error {
		return fn(ni.ID)
	})
}
