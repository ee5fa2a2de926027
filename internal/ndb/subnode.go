package ndb

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
)

// subnodeLeafEntrySize is {nid(4), data_bid(8), sub_bid(8)}.
const subnodeLeafEntrySize = 20

// subnodeNonLeafEntrySize is {key_nid(4), child_bid(8)}.
const subnodeNonLeafEntrySize = 12

const subnodeBlockHeaderSize = 8 // type(1)+reserved(3)+count(4)

// subnodeInfo is a sub-node tree leaf entry (spec.md §4.9).
type subnodeInfo struct {
	ID      NodeID
	DataBID BlockID
	SubBID  BlockID
}

type subnodeNonLeafEntry struct {
	key      NodeID
	childBID BlockID
}

func parseSubnodeLeaf(data []byte) ([]subnodeInfo, error) {
	count, err := subnodeCount(data)
	if err != nil {
		return nil, err
	}
	need := subnodeBlockHeaderSize + count*subnodeLeafEntrySize
	if len(data) < need {
		return nil, dbutil.WrapError("ndb: sub-node leaf block truncated", dbutil.ErrDatabaseCorrupt)
	}

	entries := make([]subnodeInfo, count)
	for i := 0; i < count; i++ {
		off := subnodeBlockHeaderSize + i*subnodeLeafEntrySize
		entries[i] = subnodeInfo{
			ID:      NodeID(binary.LittleEndian.Uint32(data[off : off+4])),
			DataBID: BlockID(binary.LittleEndian.Uint64(data[off+4 : off+12])),
			SubBID:  BlockID(binary.LittleEndian.Uint64(data[off+12 : off+20])),
		}
	}
	return entries, nil
}

func parseSubnodeNonLeaf(data []byte) ([]subnodeNonLeafEntry, error) {
	count, err := subnodeCount(data)
	if err != nil {
		return nil, err
	}
	need := subnodeBlockHeaderSize + count*subnodeNonLeafEntrySize
	if len(data) < need {
		return nil, dbutil.WrapError("ndb: sub-node non-leaf block truncated", dbutil.ErrDatabaseCorrupt)
	}

	entries := make([]subnodeNonLeafEntry, count)
	for i := 0; i < count; i++ {
		off := subnodeBlockHeaderSize + i*subnodeNonLeafEntrySize
		entries[i] = subnodeNonLeafEntry{
			key:      NodeID(binary.LittleEndian.Uint32(data[off : off+4])),
			childBID: BlockID(binary.LittleEndian.Uint64(data[off+4 : off+12])),
		}
	}
	return entries, nil
}

func subnodeCount(data []byte) (int, error) {
	if len(data) < subnodeBlockHeaderSize {
		return 0, dbutil.WrapError("ndb: sub-node block too short", dbutil.ErrDatabaseCorrupt)
	}
	return int(binary.LittleEndian.Uint32(data[4:8])), nil
}

// lookupSubnode resolves nid within the sub-node tree rooted at rootBID,
// descending non-leaf blocks by the same greatest-key<=target rule as
// package btree (spec.md §4.9: "Lookup identical to C5"), reimplemented
// here because sub-node tree pages are blocks, not NBT/BBT pages. A zero
// rootBID is the sentinel empty sub-node tree.
func lookupSubnode(db *Database, rootBID BlockID, nid NodeID) (subnodeInfo, error) {
	if rootBID.IsZero() {
		return subnodeInfo{}, dbutil.NewKeyNotFoundError(nid)
	}

	bi, err := db.LookupBlockInfo(rootBID)
	if err != nil {
		return subnodeInfo{}, err
	}
	rb, err := readSubnodeBlock(db.r, db.Header, bi, db.policy)
	if err != nil {
		return subnodeInfo{}, err
	}

	switch rb.kind {
	case blockSubnodeLeaf:
		entries, err := parseSubnodeLeaf(rb.data)
		if err != nil {
			return subnodeInfo{}, err
		}
		for _, e := range entries {
			if e.ID == nid {
				return e, nil
			}
		}
		return subnodeInfo{}, dbutil.NewKeyNotFoundError(nid)

	case blockSubnodeNonLeaf:
		entries, err := parseSubnodeNonLeaf(rb.data)
		if err != nil {
			return subnodeInfo{}, err
		}
		idx, ok := subnodeFloorIndex(entries, nid)
		if !ok {
			return subnodeInfo{}, dbutil.NewKeyNotFoundError(nid)
		}
		return lookupSubnode(db, entries[idx].childBID, nid)

	default:
		return subnodeInfo{}, dbutil.WrapError("ndb: sub-node root is not a sub-node block", dbutil.ErrUnexpectedBlock)
	}
}

func subnodeFloorIndex(entries []subnodeNonLeafEntry, target NodeID) (int, bool) {
	idx := -1
	for i, e := range entries {
		if e.key <= target {
			idx = i
		} else {
			break
		}
	}
	if idx == -1 {
		return 0, false
	}
	return idx, true
}
