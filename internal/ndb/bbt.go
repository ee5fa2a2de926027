package ndb

import (
	"encoding/binary"

	"pstdb/internal/btree"
	"pstdb/internal/disk"
)

// bbtLoader implements btree.Loader[BlockID, BlockInfo] over a backing file.
type bbtLoader struct {
	r      FileReader
	policy ValidationPolicy
}

func (l *bbtLoader) LoadPage(ref btree.PageRef) (*btree.Page[BlockID, BlockInfo], error) {
	return readBBTPage(l.r, BlockID(ref.BID), ref.Address, l.policy)
}

// readBBTPage decodes the BBT page at (bid, address): entries are
// {bid, address, size, ref_count} on a leaf page, or the shared
// {key, child_bid, child_address} shape on a non-leaf page.
func readBBTPage(r FileReader, bid BlockID, address uint64, policy ValidationPolicy) (*btree.Page[BlockID, BlockInfo], error) {
	level, entries, err := readPageRaw(r, bid, address, disk.PageTypeBBT, policy)
	if err != nil {
		return nil, err
	}

	page := &btree.Page[BlockID, BlockInfo]{Level: int(level)}
	n := numEntries(entries)

	if level == 0 {
		page.Leaf = make([]btree.LeafEntry[BlockID, BlockInfo], n)
		for i := 0; i < n; i++ {
			e := entryAt(entries, i)
			id := BlockID(binary.LittleEndian.Uint64(e[0:8]))
			addr := binary.LittleEndian.Uint64(e[8:16])
			size := binary.LittleEndian.Uint32(e[16:20])
			refCount := binary.LittleEndian.Uint32(e[20:24])
			page.Leaf[i] = btree.LeafEntry[BlockID, BlockInfo]{
				Key: id,
				Value: BlockInfo{
					ID:       id,
					Address:  addr,
					Size:     size,
					RefCount: refCount,
				},
			}
		}
		return page, nil
	}

	page.NonLeaf = make([]btree.NonLeafEntry[BlockID], n)
	for i := 0; i < n; i++ {
		e := entryAt(entries, i)
		key := BlockID(binary.LittleEndian.Uint64(e[0:8]))
		childBID := binary.LittleEndian.Uint64(e[8:16])
		childAddr := binary.LittleEndian.Uint64(e[16:24])
		page.NonLeaf[i] = btree.NonLeafEntry[BlockID]{
			Key:   key,
			Child: btree.PageRef{BID: childBID, Address: childAddr},
		}
	}
	return page, nil
}
