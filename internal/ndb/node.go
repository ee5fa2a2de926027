package ndb

import "pstdb/internal/dbutil"

// Node composes a data stream (rooted at NodeInfo.DataBID) and a
// sub-node tree (rooted at NodeInfo.SubBID) into a random-access logical
// object (spec.md §4.10). It holds a shared Database handle; both the
// stream and sub-node resolution are lazy, recomputed on every call since
// blocks are immutable once written and cheap to re-walk.
type Node struct {
	db   *Database
	info NodeInfo
}

func newNode(db *Database, info NodeInfo) *Node {
	return &Node{db: db, info: info}
}

// ID returns the node's own node_id.
func (n *Node) ID() NodeID {
	return n.info.ID
}

// ParentID returns the node_id of the node this one was nested under,
// or 0 if it is top-level.
func (n *Node) ParentID() NodeID {
	return n.info.ParentID
}

// Size returns the byte length of the node's data stream.
func (n *Node) Size() (int64, error) {
	return streamSize(n.db, n.info.DataBID)
}

// Read fills dst from the node's data stream starting at offset.
func (n *Node) Read(dst []byte, offset int64) error {
	if offset < 0 {
		return dbutil.WrapError("ndb: negative read offset", dbutil.ErrOutOfRange)
	}
	return readStream(n.db, n.info.DataBID, dst, offset)
}

// ReadAll reads the node's entire data stream.
func (n *Node) ReadAll() ([]byte, error) {
	size, err := n.Size()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := n.Read(buf, 0); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Lookup navigates this node's sub-node tree for subID, then re-enters
// the node machinery with the child's own data_bid/sub_bid (spec.md
// §4.10). It raises a KeyNotFoundError[NodeID] if subID isn't present.
func (n *Node) Lookup(subID NodeID) (*Node, error) {
	si, err := lookupSubnode(n.db, n.info.SubBID, subID)
	if err != nil {
		return nil, err
	}
	return newNode(n.db, NodeInfo{
		ID:       si.ID,
		DataBID:  si.DataBID,
		SubBID:   si.SubBID,
		ParentID: n.info.ID,
	}), nil
}

// Clone independently re-resolves this node's NodeInfo from the NBT,
// producing fresh decode state (original_source fairport/ltp/propbag.h's
// non-alias construction path).
func (n *Node) Clone() (*Node, error) {
	return n.db.LookupNode(n.info.ID)
}

// Alias returns a copy of this Node sharing the same already-resolved
// NodeInfo and Database handle. Since Node carries no mutable decode
// cache of its own (every Read/Size re-walks the block tree), Alias and
// Clone currently differ only in whether the NBT is consulted again;
// Alias is the cheap path callers should prefer when they already hold a
// valid NodeInfo (original_source fairport/ltp/propbag.h alias_tag
// construction).
func (n *Node) Alias() *Node {
	return &Node{db: n.db, info: n.info}
}
