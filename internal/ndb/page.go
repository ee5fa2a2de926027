package ndb

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
)

// Page layout (spec.md §4.4, §6): 512 bytes total —
//   [0:4)   page header: level uint16, entry count uint16
//   [4:4+n) entries, pageEntrySize bytes each
//   [...)   zero padding
//   [-16:)  trailer: page_type, page_type_repeat, signature, crc, bid
//
// pageEntrySize (24 bytes) is shared by every entry shape this format
// uses (NBT leaf, BBT leaf, and the shared non-leaf shape) so the page
// header/trailer logic never needs to know which tree it's serving.
const (
	pageHeaderSize = 4
	pageEntrySize  = 24
)

// readPageRaw reads the page at address, validates its trailer against
// bid and wantType under policy, and returns the decoded level and an
// owned copy of the entries region.
func readPageRaw(r FileReader, bid BlockID, address uint64, wantType byte, policy ValidationPolicy) (level uint16, entries []byte, err error) {
	buf := dbutil.GetBuffer(disk.PageSize)
	defer dbutil.ReleaseBuffer(buf)

	if err := r.ReadAt(buf, int64(address)); err != nil {
		return 0, nil, dbutil.WrapError("ndb: page read failed", err)
	}

	trailer := disk.ReadPageTrailer(buf)

	if policy >= ValidationWeak {
		if trailer.PageType != trailer.PageTypeRepeat {
			return 0, nil, dbutil.WrapError("ndb: page type mismatch", dbutil.ErrDatabaseCorrupt)
		}
		if trailer.PageType != wantType {
			return 0, nil, dbutil.WrapError("ndb: unexpected page type", dbutil.ErrUnexpectedPage)
		}
		if trailer.BID != uint64(bid) {
			return 0, nil, dbutil.WrapError("ndb: page bid mismatch", dbutil.ErrUnexpectedPage)
		}
		wantSig := disk.ComputeSignature(uint64(bid), address)
		if trailer.Signature != wantSig {
			return 0, nil, dbutil.WrapError("ndb: page signature mismatch", dbutil.ErrSigMismatch)
		}
	}

	if policy >= ValidationFull {
		crc := disk.ComputeCRC(buf[:len(buf)-disk.TrailerSize()])
		if crc != trailer.CRC {
			return 0, nil, dbutil.WrapError("ndb: page crc mismatch", dbutil.ErrCRCFail)
		}
	}

	lvl := binary.LittleEndian.Uint16(buf[0:2])
	count := binary.LittleEndian.Uint16(buf[2:4])

	entriesEnd := pageHeaderSize + int(count)*pageEntrySize
	if entriesEnd > len(buf)-disk.TrailerSize() {
		return 0, nil, dbutil.WrapError("ndb: page entry count overflows page", dbutil.ErrDatabaseCorrupt)
	}

	owned := make([]byte, int(count)*pageEntrySize)
	copy(owned, buf[pageHeaderSize:entriesEnd])
	return lvl, owned, nil
}

func entryAt(entries []byte, i int) []byte {
	return entries[i*pageEntrySize : (i+1)*pageEntrySize]
}

func numEntries(entries []byte) int {
	return len(entries) / pageEntrySize
}
