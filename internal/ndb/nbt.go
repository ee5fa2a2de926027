package ndb

import (
	"encoding/binary"

	"pstdb/internal/btree"
	"pstdb/internal/disk"
)

// nbtLoader implements btree.Loader[NodeID, NodeInfo] over a backing file.
type nbtLoader struct {
	r      FileReader
	policy ValidationPolicy
}

func (l *nbtLoader) LoadPage(ref btree.PageRef) (*btree.Page[NodeID, NodeInfo], error) {
	return readNBTPage(l.r, BlockID(ref.BID), ref.Address, l.policy)
}

// readNBTPage decodes the NBT page at (bid, address): entries are
// {nid, parent_nid, data_bid, sub_bid} on a leaf page, or the shared
// {key, child_bid, child_address} shape on a non-leaf page.
func readNBTPage(r FileReader, bid BlockID, address uint64, policy ValidationPolicy) (*btree.Page[NodeID, NodeInfo], error) {
	level, entries, err := readPageRaw(r, bid, address, disk.PageTypeNBT, policy)
	if err != nil {
		return nil, err
	}

	page := &btree.Page[NodeID, NodeInfo]{Level: int(level)}
	n := numEntries(entries)

	if level == 0 {
		page.Leaf = make([]btree.LeafEntry[NodeID, NodeInfo], n)
		for i := 0; i < n; i++ {
			e := entryAt(entries, i)
			nid := NodeID(binary.LittleEndian.Uint32(e[0:4]))
			parent := NodeID(binary.LittleEndian.Uint32(e[4:8]))
			dataBID := BlockID(binary.LittleEndian.Uint64(e[8:16]))
			subBID := BlockID(binary.LittleEndian.Uint64(e[16:24]))
			page.Leaf[i] = btree.LeafEntry[NodeID, NodeInfo]{
				Key: nid,
				Value: NodeInfo{
					ID:       nid,
					DataBID:  dataBID,
					SubBID:   subBID,
					ParentID: parent,
				},
			}
		}
		return page, nil
	}

	page.NonLeaf = make([]btree.NonLeafEntry[NodeID], n)
	for i := 0; i < n; i++ {
		e := entryAt(entries, i)
		key := NodeID(binary.LittleEndian.Uint64(e[0:8]))
		childBID := binary.LittleEndian.Uint64(e[8:16])
		childAddr := binary.LittleEndian.Uint64(e[16:24])
		page.NonLeaf[i] = btree.NonLeafEntry[NodeID]{
			Key:   key,
			Child: btree.PageRef{BID: childBID, Address: childAddr},
		}
	}
	return page, nil
}
