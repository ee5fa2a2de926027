package ltp

import (
	"encoding/binary"

	"pstdb/internal/dbutil"
)

// propEntrySize is a property entry's fixed width as a BTH leaf value:
// {prop_type(2), id(4)} (spec.md §3 item 9).
const propEntrySize = 6

// PropEntry is a raw-decoded BTH leaf value for a property-context BTH.
// ID's meaning depends on PropType: an inline 1/2/4-byte value, or a
// heapnode_id/sub-node id resolved by the caller (spec.md §4.13).
type PropEntry struct {
	PropType uint16
	ID       uint32
}

// DecodePropEntry decodes raw BTH leaf-value bytes into a PropEntry.
func DecodePropEntry(raw []byte) (PropEntry, error) {
	if len(raw) < propEntrySize {
		return PropEntry{}, dbutil.WrapError("ltp: property entry truncated", dbutil.ErrDatabaseCorrupt)
	}
	return PropEntry{
		PropType: binary.LittleEndian.Uint16(raw[0:2]),
		ID:       binary.LittleEndian.Uint32(raw[2:6]),
	}, nil
}
