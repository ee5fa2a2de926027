// Package disk models the fixed on-disk layout of the container format:
// header, page/block trailers, signatures, and the two obfuscation
// codecs. Nothing in this package touches the backing file directly;
// callers decode already-read byte slices.
package disk

// PageSize is the fixed size of every NBT/BBT page, in bytes.
const PageSize = 512

// MaxBlockDiskSize bounds the padded on-disk size of any single block.
const MaxBlockDiskSize = 8192

// FirstAMapPageLocation is the file offset of the first allocation-map
// page; every page address is sector-aligned relative to this offset.
const FirstAMapPageLocation = 0x4200

// DatabaseFormatUnicodeMin is the version threshold that discriminates
// the small (32-bit) variant from the large (64-bit) variant: wVer below
// this value selects small, at or above selects large.
const DatabaseFormatUnicodeMin = 0x15

// BlockIDIncrement is added to header.BIDNextB on every allocation.
const BlockIDIncrement = 4

// BlockIDInternalBit is bit 0 of a block_id: when set, the block is
// internal (structural: extended or sub-node); when clear, external (raw).
const BlockIDInternalBit = 0x1

// Crypt method selectors, read from the header's bCryptMethod field.
const (
	CryptMethodNone    = 0
	CryptMethodPermute = 1
	CryptMethodCyclic  = 2
)

// Page type tags, stored in the page trailer.
const (
	PageTypeBBT = 0x80
	PageTypeNBT = 0x81
)

// Block type tags, stored at a fixed offset in internal block headers.
const (
	BlockTypeExtended     = 0x01
	BlockTypeSubnodeLeaf  = 0x02
	BlockTypeSubnodeIntrn = 0x03
)

// Extended-block level values.
const (
	ExtendedLevel1 = 1
	ExtendedLevel2 = 2
)

// External and extended block size/count ceilings.
const (
	ExternalMaxSize  = 8176
	ExtendedMaxSize  = ExternalMaxSize * 344
	ExtendedMaxCount = 344
)

// Heap client signatures, tagging the intended consumer of a heap-on-node.
const (
	HeapSigTC  = 0x7C // table context
	HeapSigBTH = 0xB5
	HeapSigPC  = 0xBC // property context
)

// HeapMaxAllocsPerPage bounds the number of allocations addressable
// within a single heap page, per spec.md's heapnode_id packing.
const HeapMaxAllocsPerPage = 1 << 16
