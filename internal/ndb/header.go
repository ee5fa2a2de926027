package ndb

import (
	"pstdb/internal/dbutil"
	"pstdb/internal/disk"
)

// readHeader reads and validates the fixed prologue at offset 0,
// dispatching to the small or large layout by version field (spec.md
// §4.2). The magic check and wVer-based variant selection inside
// disk.ReadHeader run regardless of policy; only the CRC check below
// depends on it.
func readHeader(r FileReader, policy ValidationPolicy) (*disk.Header, error) {
	buf := dbutil.GetBuffer(disk.LargeHeaderSize)
	defer dbutil.ReleaseBuffer(buf)

	if err := r.ReadAt(buf, 0); err != nil {
		return nil, dbutil.WrapError("ndb: header read failed", err)
	}

	h, err := disk.ReadHeader(buf)
	if err != nil {
		return nil, err
	}

	if policy >= ValidationFull {
		if err := validateHeaderCRC(buf, h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func validateHeaderCRC(buf []byte, h *disk.Header) error {
	partialStart, partialLen, fullStart, fullLen := disk.HeaderCRCRange(h.Large)

	crc := disk.ComputeCRC(buf[partialStart : partialStart+partialLen])
	if crc != h.CRCPartial {
		return dbutil.WrapError("ndb: header partial CRC mismatch", dbutil.ErrCRCFail)
	}

	if h.Large {
		crcFull := disk.ComputeCRC(buf[fullStart : fullStart+fullLen])
		if crcFull != h.CRCFull {
			return dbutil.WrapError("ndb: header full CRC mismatch", dbutil.ErrCRCFail)
		}
	}
	return nil
}
