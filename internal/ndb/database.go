package ndb

import (
	"sync"

	"pstdb/internal/btree"
	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
)

// Database is the shared handle every Node, Page, and Block holds a
// reference to (spec.md §3 Ownership, §5). Its only mutable state is the
// memoised B-tree roots and the header's block-id counter.
type Database struct {
	r      FileReader
	Header *disk.Header
	policy ValidationPolicy

	nbtOnce sync.Once
	nbtRoot *btree.Page[NodeID, NodeInfo]
	nbtErr  error

	bbtOnce sync.Once
	bbtRoot *btree.Page[BlockID, BlockInfo]
	bbtErr  error

	bidMu    sync.Mutex
	bidNextB uint64
}

// Open opens a database over r. The small (32-bit) or large (64-bit)
// layout is chosen from the header's wVer in a single header read (see
// disk.ReadHeader); no small-layout attempt precedes the large one. On
// ErrInvalidFormat the header is read once more, which returns the same
// error because the decision is made from the same bytes.
func Open(r FileReader, policy ValidationPolicy) (*Database, error) {
	db, err := openVariant(r, policy)
	if err == nil {
		return db, nil
	}
	if !dbutil.IsInvalidFormat(err) {
		return nil, err
	}
	// The second attempt re-reads the same header bytes, so it reaches
	// the same variant decision as the first.
	return openVariant(r, policy)
}

func openVariant(r FileReader, policy ValidationPolicy) (*Database, error) {
	h, err := readHeader(r, policy)
	if err != nil {
		return nil, err
	}
	return &Database{
		r:        r,
		Header:   h,
		policy:   policy,
		bidNextB: h.BIDNextB,
	}, nil
}

// nbtRootPage memoises and returns the NBT root page.
func (db *Database) nbtRootPage() (*btree.Page[NodeID, NodeInfo], error) {
	db.nbtOnce.Do(func() {
		db.nbtRoot, db.nbtErr = readNBTPage(db.r, BlockID(db.Header.Root.NBT.BID), db.Header.Root.NBT.IB, db.policy)
	})
	return db.nbtRoot, db.nbtErr
}

// bbtRootPage memoises and returns the BBT root page.
func (db *Database) bbtRootPage() (*btree.Page[BlockID, BlockInfo], error) {
	db.bbtOnce.Do(func() {
		db.bbtRoot, db.bbtErr = readBBTPage(db.r, BlockID(db.Header.Root.BBT.BID), db.Header.Root.BBT.IB, db.policy)
	})
	return db.bbtRoot, db.bbtErr
}

// LookupNodeInfo resolves nid to its NBT leaf entry.
func (db *Database) LookupNodeInfo(nid NodeID) (NodeInfo, error) {
	root, err := db.nbtRootPage()
	if err != nil {
		return NodeInfo{}, err
	}
	return btree.Lookup[NodeID, NodeInfo](&nbtLoader{r: db.r, policy: db.policy}, root, nid)
}

// LookupBlockInfo resolves bid to its BBT leaf entry. A zero bid
// short-circuits to a zeroed BlockInfo without touching the BBT at all
// (spec.md §4.6: the sentinel for an absent/empty sub-stream).
func (db *Database) LookupBlockInfo(bid BlockID) (BlockInfo, error) {
	if bid.IsZero() {
		return BlockInfo{}, nil
	}
	root, err := db.bbtRootPage()
	if err != nil {
		return BlockInfo{}, err
	}
	return btree.Lookup[BlockID, BlockInfo](&bbtLoader{r: db.r, policy: db.policy}, root, bid)
}

// WalkNodes visits every NBT leaf entry in ascending node_id order.
func (db *Database) WalkNodes(fn func(NodeInfo) error) error {
	root, err := db.nbtRootPage()
	if err != nil {
		return err
	}
	return btree.Iterate[NodeID, NodeInfo](&nbtLoader{r: db.r, policy: db.policy}, root, func(_ NodeID, ni NodeInfo) error {
		return fn(ni)
	})
}

// LookupNode resolves nid and wraps it as a Node.
func (db *Database) LookupNode(nid NodeID) (*Node, error) {
	ni, err := db.LookupNodeInfo(nid)
	if err != nil {
		return nil, err
	}
	return newNode(db, ni), nil
}
