package dbutil

import (
	"errors"
	"fmt"
)

// IsInvalidFormat reports whether err is, or wraps, ErrInvalidFormat —
// the error on which ndb.Open repeats its header read.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsUnexpectedBlock reports whether err is, or wraps, ErrUnexpectedBlock —
// the signal ReadBlock uses to retry a data-block read as a sub-node
// block read.
func IsUnexpectedBlock(err error) bool {
	return errors.Is(err, ErrUnexpectedBlock)
}

// Sentinel errors for the taxonomy every layer of the database maps onto.
// ErrInvalidFormat is returned for a header whose magic does not match;
// ndb.Open is the one caller that checks for it and reads the header again.
var (
	ErrInvalidFormat   = errors.New("dbutil: version/variant mismatch")
	ErrSigMismatch     = errors.New("dbutil: trailer signature mismatch")
	ErrCRCFail         = errors.New("dbutil: crc mismatch")
	ErrUnexpectedPage  = errors.New("dbutil: unexpected page")
	ErrUnexpectedBlock = errors.New("dbutil: unexpected block")
	ErrDatabaseCorrupt = errors.New("dbutil: database corrupt")
	ErrOutOfRange      = errors.New("dbutil: offset out of range")
	ErrReadError       = errors.New("dbutil: underlying read failed")
)

// KeyNotFoundError reports a failed lookup against a keyed structure
// (NBT, BBT, sub-node tree, BTH, property bag). K is the key's Go type;
// instantiating the generic per call site keeps the zero-cost property
// spec.md §9 asks for ("avoid virtual dispatch... monomorphising per
// tree") while still carrying the offending key for diagnostics.
type KeyNotFoundError[K any] struct {
	Key K
}

// Error implements the error interface.
func (e *KeyNotFoundError[K]) Error() string {
	return fmt.Sprintf("dbutil: key not found: %v", e.Key)
}

// Is lets errors.Is(err, ErrKeyNotFound) match any KeyNotFoundError[K],
// since the concrete K varies per call site and can't be a package-level
// sentinel.
func (e *KeyNotFoundError[K]) Is(target error) bool {
	return target == ErrKeyNotFound
}

// ErrKeyNotFound is the untyped sentinel usable with errors.Is when the
// caller doesn't need the offending key back.
var ErrKeyNotFound = errors.New("dbutil: key not found")

// NewKeyNotFoundError builds a KeyNotFoundError for the given key.
func NewKeyNotFoundError[K any](key K) error {
	return &KeyNotFoundError[K]{Key: key}
}
