package dbutil

import (
	"encoding/binary"
	"errors"
)

// DecodeUint64LE decodes the first 8 bytes of buf as a little-endian
// uint64, erroring on a short buffer rather than assuming a wider
// backing allocation the way a raw pointer reinterpret-cast would.
func DecodeUint64LE(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, errors.New("dbutil: buffer shorter than 8 bytes")
	}
	return binary.LittleEndian.Uint64(buf[:8]), nil
}
