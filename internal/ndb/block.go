package ndb

import (
	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
)

// blockKind is the classification of a decoded block: a closed, tagged
// set modeled as a sum type rather than open inheritance (spec.md §9
// "Polymorphism").
type blockKind int

const (
	blockExternal blockKind = iota
	blockExtended
	blockSubnodeLeaf
	blockSubnodeNonLeaf
)

// rawBlock is a trailer-validated, classified block payload. For
// external blocks, Data has already been de-obfuscated; the trailer
// itself is stripped.
type rawBlock struct {
	kind blockKind
	bid  BlockID
	data []byte
}

// readRawBlock reads the block bi describes, validates its trailer, and
// classifies it (spec.md §4.7): external if bi.ID is not internal,
// otherwise by the block_type byte at the head of the payload.
func readRawBlock(r FileReader, header *disk.Header, bi BlockInfo, policy ValidationPolicy) (*rawBlock, error) {
	aligned := disk.AlignDisk(int(bi.Size) + disk.TrailerSize())
	buf := dbutil.GetBuffer(aligned)
	defer dbutil.ReleaseBuffer(buf)

	if err := r.ReadAt(buf, int64(bi.Address)); err != nil {
		return nil, dbutil.WrapError("ndb: block read failed", err)
	}

	trailer := disk.ReadBlockTrailer(buf)

	if policy >= ValidationWeak {
		if aligned > disk.MaxBlockDiskSize {
			return nil, dbutil.WrapError("ndb: nonsensical block size", dbutil.ErrUnexpectedBlock)
		}
		if trailer.BID != uint64(bi.ID) {
			return nil, dbutil.WrapError("ndb: block id mismatch", dbutil.ErrUnexpectedBlock)
		}
		if trailer.CB != uint16(bi.Size) {
			return nil, dbutil.WrapError("ndb: block size mismatch", dbutil.ErrUnexpectedBlock)
		}
		wantSig := disk.ComputeSignature(uint64(bi.ID), bi.Address)
		if trailer.Signature != wantSig {
			return nil, dbutil.WrapError("ndb: block signature mismatch", dbutil.ErrSigMismatch)
		}
	}

	payload := make([]byte, bi.Size)
	copy(payload, buf[:bi.Size])

	if policy >= ValidationFull {
		crc := disk.ComputeCRC(payload)
		if crc != trailer.CRC {
			return nil, dbutil.WrapError("ndb: block crc mismatch", dbutil.ErrCRCFail)
		}
	}

	if !bi.ID.IsInternal() {
		switch header.CryptMethod {
		case disk.CryptMethodPermute:
			disk.PermuteDecode(payload)
		case disk.CryptMethodCyclic:
			disk.CyclicDecode(payload, uint64(bi.ID))
		}
		return &rawBlock{kind: blockExternal, bid: bi.ID, data: payload}, nil
	}

	if len(payload) < 1 {
		return nil, dbutil.WrapError("ndb: internal block too short", dbutil.ErrDatabaseCorrupt)
	}
	switch payload[0] {
	case disk.BlockTypeExtended:
		return &rawBlock{kind: blockExtended, bid: bi.ID, data: payload}, nil
	case disk.BlockTypeSubnodeLeaf:
		return &rawBlock{kind: blockSubnodeLeaf, bid: bi.ID, data: payload}, nil
	case disk.BlockTypeSubnodeIntrn:
		return &rawBlock{kind: blockSubnodeNonLeaf, bid: bi.ID, data: payload}, nil
	default:
		return nil, dbutil.WrapError("ndb: unrecognized internal block type", dbutil.ErrUnexpectedBlock)
	}
}

// readDataBlock narrows readRawBlock to external/extended kinds,
// raising ErrUnexpectedBlock for anything else.
func readDataBlock(r FileReader, header *disk.Header, bi BlockInfo, policy ValidationPolicy) (*rawBlock, error) {
	rb, err := readRawBlock(r, header, bi, policy)
	if err != nil {
		return nil, err
	}
	if rb.kind != blockExternal && rb.kind != blockExtended {
		return nil, dbutil.WrapError("ndb: not a data block", dbutil.ErrUnexpectedBlock)
	}
	return rb, nil
}

// readSubnodeBlock narrows readRawBlock to sub-node kinds, raising
// ErrUnexpectedBlock for anything else.
func readSubnodeBlock(r FileReader, header *disk.Header, bi BlockInfo, policy ValidationPolicy) (*rawBlock, error) {
	rb, err := readRawBlock(r, header, bi, policy)
	if err != nil {
		return nil, err
	}
	if rb.kind != blockSubnodeLeaf && rb.kind != blockSubnodeNonLeaf {
		return nil, dbutil.WrapError("ndb: not a sub-node block", dbutil.ErrUnexpectedBlock)
	}
	return rb, nil
}

// ReadBlock is the front-door dispatcher from spec.md §4.7: try reading
// bid as a data block, and only on ErrUnexpectedBlock retry it as a
// sub-node block. This is an explicit two-step call, not a caught panic
// (spec.md §9 "Exceptions-as-dispatch").
func ReadBlock(r FileReader, header *disk.Header, bi BlockInfo, policy ValidationPolicy) (*rawBlock, error) {
	rb, err := readDataBlock(r, header, bi, policy)
	if err == nil {
		return rb, nil
	}
	if !dbutil.IsUnexpectedBlock(err) {
		return nil, err
	}
	return readSubnodeBlock(r, header, bi, policy)
}
