package ndb

import (
	"fmt"
	"io"

	"pstdb/internal/dbutil"
)

// FileReader is the positioned-read contract (spec.md §4.1): fills dst
// exactly from offset or fails with ErrReadError. No seek state is
// visible to callers.
type FileReader interface {
	ReadAt(dst []byte, offset int64) error
}

// fileReader adapts an io.ReaderAt, requiring a full read of len(dst)
// bytes exactly as spec.md §4.1 demands (io.ReaderAt alone permits short
// reads followed by io.EOF on some implementations).
type fileReader struct {
	r io.ReaderAt
}

// NewFileReader wraps r as a FileReader.
func NewFileReader(r io.ReaderAt) FileReader {
	return &fileReader{r: r}
}

func (f *fileReader) ReadAt(dst []byte, offset int64) error {
	n, err := f.r.ReadAt(dst, offset)
	if err != nil && !(err == io.EOF && n == len(dst)) {
		return fmt.Errorf("ndb: positioned read failed: %w: %w", dbutil.ErrReadError, err)
	}
	if n != len(dst) {
		return dbutil.WrapError("ndb: short read", dbutil.ErrReadError)
	}
	return nil
}
