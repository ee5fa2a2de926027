package pst

import "pstdb/internal/dbutil"

// Sentinel errors matching the taxonomy in spec.md §7. Each is the same
// value internal/dbutil declares, so callers can use errors.Is against
// either package's symbol interchangeably.
var (
	ErrInvalidFormat   = dbutil.ErrInvalidFormat
	ErrSigMismatch     = dbutil.ErrSigMismatch
	ErrCRCFail         = dbutil.ErrCRCFail
	ErrUnexpectedPage  = dbutil.ErrUnexpectedPage
	ErrUnexpectedBlock = dbutil.ErrUnexpectedBlock
	ErrDatabaseCorrupt = dbutil.ErrDatabaseCorrupt
	ErrOutOfRange      = dbutil.ErrOutOfRange
	ErrReadError       = dbutil.ErrReadError
	ErrKeyNotFound     = dbutil.ErrKeyNotFound
)

// KeyNotFoundError is a lookup failure naming the missing key, matching
// key_not_found<K> from spec.md §7.
type KeyNotFoundError[K any] = dbutil.KeyNotFoundError[K]
