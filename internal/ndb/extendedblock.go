package ndb

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
)

// extendedHeader is a parsed extended-block payload (spec.md §4.8):
// block_type=extended, level in {1,2}, a child bid per level-1 external
// block or level-2 extended block, and the stream's declared total size.
type extendedHeader struct {
	level     uint8
	totalSize uint64
	children  []BlockID
}

const extendedHeaderFixedSize = 16 // type(1)+level(1)+reserved(2)+count(4)+totalSize(8)

func parseExtendedBlock(data []byte) (*extendedHeader, error) {
	if len(data) < extendedHeaderFixedSize {
		return nil, dbutil.WrapError("ndb: extended block too short", dbutil.ErrDatabaseCorrupt)
	}

	level := data[1]
	if level != disk.ExtendedLevel1 && level != disk.ExtendedLevel2 {
		return nil, dbutil.WrapError("ndb: extended block bad level", dbutil.ErrDatabaseCorrupt)
	}

	count := binary.LittleEndian.Uint32(data[4:8])
	if count > disk.ExtendedMaxCount {
		return nil, dbutil.WrapError("ndb: extended block count exceeds max", dbutil.ErrDatabaseCorrupt)
	}
	totalSize := binary.LittleEndian.Uint64(data[8:16])

	need := extendedHeaderFixedSize + int(count)*8
	if len(data) < need {
		return nil, dbutil.WrapError("ndb: extended block truncated child list", dbutil.ErrDatabaseCorrupt)
	}

	children := make([]BlockID, count)
	for i := 0; i < int(count); i++ {
		off := extendedHeaderFixedSize + i*8
		children[i] = BlockID(binary.LittleEndian.Uint64(data[off : off+8]))
	}

	return &extendedHeader{level: level, totalSize: totalSize, children: children}, nil
}

// childCapacity returns the maximum byte span a single child of this
// extended block covers: external::max_size for a level-1 block, or
// extended::max_size (the level-1 child's own capacity) for a level-2
// block.
func (h *extendedHeader) childCapacity() int64 {
	if h.level == disk.ExtendedLevel1 {
		return disk.ExternalMaxSize
	}
	return disk.ExtendedMaxSize
}

// readStream fills dst from the logical byte stream rooted at bid,
// dispatching to the external or extended case and, for extended blocks,
// recursing with divmod(off, childCapacity) at each level (spec.md §4.8).
func readStream(db *Database, bid BlockID, dst []byte, off int64) error {
	if len(dst) == 0 {
		return nil
	}
	if bid.IsZero() {
		return dbutil.WrapError("ndb: read past end of empty stream", dbutil.ErrOutOfRange)
	}

	bi, err := db.LookupBlockInfo(bid)
	if err != nil {
		return err
	}
	rb, err := readDataBlock(db.r, db.Header, bi, db.policy)
	if err != nil {
		return err
	}

	switch rb.kind {
	case blockExternal:
		if off < 0 || off+int64(len(dst)) > int64(len(rb.data)) {
			return dbutil.WrapError("ndb: read out of range of external block", dbutil.ErrOutOfRange)
		}
		copy(dst, rb.data[off:off+int64(len(dst))])
		return nil

	case blockExtended:
		hdr, err := parseExtendedBlock(rb.data)
		if err != nil {
			return err
		}
		if off < 0 || off+int64(len(dst)) > int64(hdr.totalSize) {
			return dbutil.WrapError("ndb: read out of range of extended block", dbutil.ErrOutOfRange)
		}
		return readExtendedChildren(db, hdr, dst, off)

	default:
		return dbutil.WrapError("ndb: stream root is not a data block", dbutil.ErrUnexpectedBlock)
	}
}

func readExtendedChildren(db *Database, hdr *extendedHeader, dst []byte, off int64) error {
	capacity := hdr.childCapacity()

	for len(dst) > 0 {
		childIdx, childOff := divmod(off, capacity)
		if childIdx < 0 || childIdx >= int64(len(hdr.children)) {
			return dbutil.WrapError("ndb: read past extended block children", dbutil.ErrOutOfRange)
		}

		avail := capacity - childOff
		n := int64(len(dst))
		if n > avail {
			n = avail
		}

		if err := readStream(db, hdr.children[childIdx], dst[:n], childOff); err != nil {
			return err
		}

		dst = dst[n:]
		off += n
	}
	return nil
}

// divmod splits off into (child index, offset within child) for a fixed
// per-child capacity, per spec.md §4.8.
func divmod(off, capacity int64) (index, remainder int64) {
	return off / capacity, off % capacity
}

// streamSize resolves the total byte length of the stream rooted at bid:
// an external block's own size, or an extended block's declared
// total_size (spec.md §8 invariant 2).
func streamSize(db *Database, bid BlockID) (int64, error) {
	if bid.IsZero() {
		return 0, nil
	}
	bi, err := db.LookupBlockInfo(bid)
	if err != nil {
		return 0, err
	}
	rb, err := readDataBlock(db.r, db.Header, bi, db.policy)
	if err != nil {
		return 0, err
	}
	switch rb.kind {
	case blockExternal:
		return int64(len(rb.data)), nil
	case blockExtended:
		hdr, err := parseExtendedBlock(rb.data)
		if err != nil {
			return 0, err
		}
		return int64(hdr.totalSize), nil
	default:
		return 0, dbutil.WrapError("ndb: stream root is not a data block", dbutil.ErrUnexpectedBlock)
	}
}
