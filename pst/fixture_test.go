package pst

import (
	"encoding/binary"
	"testing"

	"pstdb/internal/dbtest"
	"pstdb/internal/disk"
)

// These duplicate fixed format constants owned by internal/ndb and
// internal/ltp (page-entry layout, heap page-0 header, BTH header/entry
// layout). They're re-declared here, rather than exported, because
// they're not an API surface those packages want to commit to — only
// fixture code one layer up needs to poke at the raw bytes directly.
const (
	pageHeaderSize = 4
	pageEntrySize  = 24

	heapPage0HeaderSize  = 8
	heapTrailerCountSize = 2
	heapTrailerEntrySize = 4

	bthHeaderSize = 8
	propEntrySize = 6
)

func packHeapID(pageIndex, allocIndex int) uint32 {
	return uint32(pageIndex)<<16 | uint32(allocIndex)
}

func encodeLeafEntry(key uint16, propType uint16, id uint32) []byte {
	b := make([]byte, 2+propEntrySize)
	binary.LittleEndian.PutUint16(b[0:2], key)
	binary.LittleEndian.PutUint16(b[2:4], propType)
	binary.LittleEndian.PutUint32(b[4:8], id)
	return b
}

// buildHeapBytes assembles a single heap page (page index 0): the
// page-0 header, each allocation placed back to back right after it,
// and a trailing fill-map. Allocation i's heapnode_id is
// packHeapID(0, i).
func buildHeapBytes(clientSig byte, rootID uint32, allocs [][]byte) []byte {
	data := make([]byte, 0, 64)
	offsets := make([]int, len(allocs))
	cur := heapPage0HeaderSize
	for i, a := range allocs {
		offsets[i] = cur
		data = append(data, a...)
		cur += len(a)
	}

	entries := make([]byte, len(allocs)*heapTrailerEntrySize)
	for i, a := range allocs {
		binary.LittleEndian.PutUint16(entries[i*4:i*4+2], uint16(offsets[i]))
		binary.LittleEndian.PutUint16(entries[i*4+2:i*4+4], uint16(len(a)))
	}

	count := make([]byte, heapTrailerCountSize)
	binary.LittleEndian.PutUint16(count, uint16(len(allocs)))

	page := make([]byte, heapPage0HeaderSize)
	page[0] = clientSig
	binary.LittleEndian.PutUint32(page[4:8], rootID)
	page = append(page, data...)
	page = append(page, entries...)
	page = append(page, count...)
	return page
}

// buildDatabaseWithNodeStream constructs a minimal large-format database
// whose node 1 has a single external data block containing data, and
// returns the opened *Database via the public Open API.
func buildDatabaseWithNodeStream(t *testing.T, data []byte) *Database {
	t.Helper()

	const (
		nbtBID, nbtAddr   = 0x20, 0x1000
		bbtBID, bbtAddr   = 0x21, 0x2000
		blockBID, blkAddr = 0x100, 0x3000
	)

	buf := make([]byte, 0, 16384)
	put := func(offset int, b []byte) {
		if len(buf) < offset+len(b) {
			grown := make([]byte, offset+len(b))
			copy(grown, buf)
			buf = grown
		}
		copy(buf[offset:], b)
	}

	header := make([]byte, disk.LargeHeaderSize)
	copy(header[0:4], disk.Magic[:])
	binary.LittleEndian.PutUint16(header[4:6], disk.DatabaseFormatUnicodeMin)
	header[6] = disk.CryptMethodNone
	binary.LittleEndian.PutUint64(header[8:16], 4)
	binary.LittleEndian.PutUint64(header[16:24], nbtBID)
	binary.LittleEndian.PutUint64(header[24:32], nbtAddr)
	binary.LittleEndian.PutUint64(header[32:40], bbtBID)
	binary.LittleEndian.PutUint64(header[40:48], bbtAddr)
	binary.LittleEndian.PutUint64(header[48:56], 0x10000)
	pStart, pLen, fStart, fLen := disk.HeaderCRCRange(true)
	binary.LittleEndian.PutUint32(header[56:60], disk.ComputeCRC(header[pStart:pStart+pLen]))
	binary.LittleEndian.PutUint32(header[60:64], disk.ComputeCRC(header[fStart:fStart+fLen]))
	put(0, header)

	nbtPage := make([]byte, disk.PageSize)
	binary.LittleEndian.PutUint16(nbtPage[2:4], 1)
	off := pageHeaderSize
	binary.LittleEndian.PutUint32(nbtPage[off:off+4], 1)
	binary.LittleEndian.PutUint32(nbtPage[off+4:off+8], 0)
	binary.LittleEndian.PutUint64(nbtPage[off+8:off+16], blockBID)
	binary.LittleEndian.PutUint64(nbtPage[off+16:off+24], 0)
	writeFixturePageTrailer(nbtPage, disk.PageTypeNBT, nbtBID, nbtAddr)
	put(nbtAddr, nbtPage)

	aligned := disk.AlignDisk(len(data) + disk.TrailerSize())
	blk := make([]byte, aligned)
	copy(blk, data)
	writeFixtureBlockTrailer(blk, len(data), blockBID, blkAddr)
	put(blkAddr, blk)

	bbtPage := make([]byte, disk.PageSize)
	binary.LittleEndian.PutUint16(bbtPage[2:4], 1)
	off = pageHeaderSize
	binary.LittleEndian.PutUint64(bbtPage[off:off+8], blockBID)
	binary.LittleEndian.PutUint64(bbtPage[off+8:off+16], blkAddr)
	binary.LittleEndian.PutUint32(bbtPage[off+16:off+20], uint32(len(data)))
	binary.LittleEndian.PutUint32(bbtPage[off+20:off+24], 1)
	writeFixturePageTrailer(bbtPage, disk.PageTypeBBT, bbtBID, bbtAddr)
	put(bbtAddr, bbtPage)

	db, err := Open(dbtest.NewMockReaderAt(buf), ValidationFull)
	if err != nil {
		t.Fatalf("pst.Open: %v", err)
	}
	return db
}

func writeFixturePageTrailer(page []byte, pageType byte, bid, address uint64) {
	tr := page[len(page)-disk.TrailerSize():]
	tr[0] = pageType
	tr[1] = pageType
	sig := disk.ComputeSignature(bid, address)
	binary.LittleEndian.PutUint16(tr[2:4], sig)
	crc := disk.ComputeCRC(page[:len(page)-disk.TrailerSize()])
	binary.LittleEndian.PutUint32(tr[4:8], crc)
	binary.LittleEndian.PutUint64(tr[8:16], bid)
}

func writeFixtureBlockTrailer(blk []byte, payloadLen int, bid, address uint64) {
	tr := blk[len(blk)-disk.TrailerSize():]
	binary.LittleEndian.PutUint16(tr[0:2], uint16(payloadLen))
	sig := disk.ComputeSignature(bid, address)
	binary.LittleEndian.PutUint16(tr[2:4], sig)
	crc := disk.ComputeCRC(blk[:payloadLen])
	binary.LittleEndian.PutUint32(tr[4:8], crc)
	binary.LittleEndian.PutUint64(tr[8:16], bid)
}

// buildPropertyBagNode builds node 1 of a fresh database whose stream is
// a single heap page holding a levels=0 BTH over entries.
func buildPropertyBagNode(t *testing.T, entries []struct {
	Key      uint16
	PropType uint16
	ID       uint32
}) *Node {
	t.Helper()

	var leaf []byte
	for _, e := range entries {
		leaf = append(leaf, encodeLeafEntry(e.Key, e.PropType, e.ID)...)
	}

	header := make([]byte, bthHeaderSize)
	header[0] = 2 // key_size: prop_id is 16-bit
	header[1] = propEntrySize
	header[2] = 0 // levels
	binary.LittleEndian.PutUint32(header[4:8], packHeapID(0, 1))

	pageBytes := buildHeapBytes(disk.HeapSigPC, packHeapID(0, 0), [][]byte{header, leaf})

	db := buildDatabaseWithNodeStream(t, pageBytes)
	n, err := db.LookupNode(1)
	if err != nil {
		t.Fatalf("LookupNode: %v", err)
	}
	return n
}
