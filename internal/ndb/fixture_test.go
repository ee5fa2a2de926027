package ndb

import (
	"bytes"
	"encoding/binary"

	"pstdb/internal/disk"
)

// testFile is a growable in-memory backing store, letting tests place
// pages and blocks at chosen offsets the way a real PST file would be
// laid out, in the teacher's style of hand-built byte buffers in
// table-driven fixtures.
type testFile struct {
	buf []byte
}

func newTestFile() *testFile {
	return &testFile{buf: make([]byte, 0, 16384)}
}

func (f *testFile) ensure(size int) {
	if len(f.buf) < size {
		grown := make([]byte, size)
		copy(grown, f.buf)
		f.buf = grown
	}
}

func (f *testFile) put(offset int64, data []byte) {
	f.ensure(int(offset) + len(data))
	copy(f.buf[offset:], data)
}

func (f *testFile) reader() FileReader {
	return NewFileReader(bytes.NewReader(f.buf))
}

// writeHeader always writes disk.LargeHeaderSize bytes (zero-padded
// past the small variant's real fields) because readHeader reads a
// fixed-size buffer before it knows which variant it's looking at.
func writeHeader(f *testFile, large bool, cryptMethod byte, nbtBID, nbtAddr, bbtBID, bbtAddr, fileEOF, bidNextB uint64) {
	wVer := uint16(disk.DatabaseFormatUnicodeMin - 1)
	if large {
		wVer = disk.DatabaseFormatUnicodeMin
	}

	buf := make([]byte, disk.LargeHeaderSize)
	copy(buf[0:4], disk.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], wVer)
	buf[6] = cryptMethod

	if !large {
		binary.LittleEndian.PutUint32(buf[8:12], uint32(bidNextB))
		binary.LittleEndian.PutUint32(buf[12:16], uint32(nbtBID))
		binary.LittleEndian.PutUint32(buf[16:20], uint32(nbtAddr))
		binary.LittleEndian.PutUint32(buf[20:24], uint32(bbtBID))
		binary.LittleEndian.PutUint32(buf[24:28], uint32(bbtAddr))
		binary.LittleEndian.PutUint32(buf[28:32], uint32(fileEOF))
		pStart, pLen, _, _ := disk.HeaderCRCRange(false)
		binary.LittleEndian.PutUint32(buf[32:36], disk.ComputeCRC(buf[pStart:pStart+pLen]))
	} else {
		binary.LittleEndian.PutUint64(buf[8:16], bidNextB)
		binary.LittleEndian.PutUint64(buf[16:24], nbtBID)
		binary.LittleEndian.PutUint64(buf[24:32], nbtAddr)
		binary.LittleEndian.PutUint64(buf[32:40], bbtBID)
		binary.LittleEndian.PutUint64(buf[40:48], bbtAddr)
		binary.LittleEndian.PutUint64(buf[48:56], fileEOF)
		pStart, pLen, fStart, fLen := disk.HeaderCRCRange(true)
		binary.LittleEndian.PutUint32(buf[56:60], disk.ComputeCRC(buf[pStart:pStart+pLen]))
		binary.LittleEndian.PutUint32(buf[60:64], disk.ComputeCRC(buf[fStart:fStart+fLen]))
	}
	f.put(0, buf)
}

func writeTrailer(buf []byte, pageType byte, bid, address uint64) {
	t := buf[len(buf)-disk.TrailerSize():]
	t[0] = pageType
	t[1] = pageType
	sig := disk.ComputeSignature(bid, address)
	binary.LittleEndian.PutUint16(t[2:4], sig)
	crc := disk.ComputeCRC(buf[:len(buf)-disk.TrailerSize()])
	binary.LittleEndian.PutUint32(t[4:8], crc)
	binary.LittleEndian.PutUint64(t[8:16], bid)
}

func writeNBTLeafPage(f *testFile, address, bid uint64, nodes []NodeInfo) {
	buf := make([]byte, disk.PageSize)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(nodes)))
	for i, ni := range nodes {
		off := pageHeaderSize + i*pageEntrySize
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(ni.ID))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(ni.ParentID))
		binary.LittleEndian.PutUint64(buf[off+8:off+16], uint64(ni.DataBID))
		binary.LittleEndian.PutUint64(buf[off+16:off+24], uint64(ni.SubBID))
	}
	writeTrailer(buf, disk.PageTypeNBT, bid, address)
	f.put(int64(address), buf)
}

func writeBBTLeafPage(f *testFile, address, bid uint64, blocks []BlockInfo) {
	buf := make([]byte, disk.PageSize)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(blocks)))
	for i, bi := range blocks {
		off := pageHeaderSize + i*pageEntrySize
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(bi.ID))
		binary.LittleEndian.PutUint64(buf[off+8:off+16], bi.Address)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], bi.Size)
		binary.LittleEndian.PutUint32(buf[off+20:off+24], bi.RefCount)
	}
	writeTrailer(buf, disk.PageTypeBBT, bid, address)
	f.put(int64(address), buf)
}

// writeExternalBlock writes payload (already obfuscated by the caller,
// if needed) as an external block's on-disk bytes.
func writeExternalBlock(f *testFile, address, bid uint64, payload []byte) {
	writeBlockBytes(f, address, bid, payload)
}

func writeBlockBytes(f *testFile, address, bid uint64, payload []byte) {
	alignedLen := disk.AlignDisk(len(payload) + disk.TrailerSize())
	buf := make([]byte, alignedLen)
	copy(buf, payload)

	t := buf[alignedLen-disk.TrailerSize():]
	binary.LittleEndian.PutUint16(t[0:2], uint16(len(payload)))
	sig := disk.ComputeSignature(bid, address)
	binary.LittleEndian.PutUint16(t[2:4], sig)
	crc := disk.ComputeCRC(payload)
	binary.LittleEndian.PutUint32(t[4:8], crc)
	binary.LittleEndian.PutUint64(t[8:16], bid)

	f.put(int64(address), buf)
}

func writeExtendedBlock(f *testFile, address, bid uint64, level uint8, totalSize uint64, children []uint64) {
	payload := make([]byte, extendedHeaderFixedSize+len(children)*8)
	payload[0] = disk.BlockTypeExtended
	payload[1] = level
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(children)))
	binary.LittleEndian.PutUint64(payload[8:16], totalSize)
	for i, c := range children {
		off := extendedHeaderFixedSize + i*8
		binary.LittleEndian.PutUint64(payload[off:off+8], c)
	}
	writeBlockBytes(f, address, bid, payload)
}

func writeSubnodeNonLeafBlock(f *testFile, address, bid uint64, entries []subnodeNonLeafEntry) {
	payload := make([]byte, subnodeBlockHeaderSize+len(entries)*subnodeNonLeafEntrySize)
	payload[0] = disk.BlockTypeSubnodeIntrn
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(entries)))
	for i, e := range entries {
		off := subnodeBlockHeaderSize + i*subnodeNonLeafEntrySize
		binary.LittleEndian.PutUint32(payload[off:off+4], uint32(e.key))
		binary.LittleEndian.PutUint64(payload[off+4:off+12], uint64(e.childBID))
	}
	writeBlockBytes(f, address, bid, payload)
}

func writeSubnodeLeafBlock(f *testFile, address, bid uint64, entries []subnodeInfo) {
	payload := make([]byte, subnodeBlockHeaderSize+len(entries)*subnodeLeafEntrySize)
	payload[0] = disk.BlockTypeSubnodeLeaf
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(entries)))
	for i, e := range entries {
		off := subnodeBlockHeaderSize + i*subnodeLeafEntrySize
		binary.LittleEndian.PutUint32(payload[off:off+4], uint32(e.ID))
		binary.LittleEndian.PutUint64(payload[off+4:off+12], uint64(e.DataBID))
		binary.LittleEndian.PutUint64(payload[off+12:off+20], uint64(e.SubBID))
	}
	writeBlockBytes(f, address, bid, payload)
}
