package pst

import "pstdb/internal/ndb"

// ValidationPolicy controls how much structural checking Open and the
// decoders downstream of it perform (spec.md §9 "Validation policy").
// The format-version check is always enforced regardless of policy.
type ValidationPolicy = ndb.ValidationPolicy

const (
	// ValidationOff skips CRC and cross-reference checks.
	ValidationOff = ndb.ValidationOff
	// ValidationWeak checks signatures and types but not CRCs.
	ValidationWeak = ndb.ValidationWeak
	// ValidationFull checks everything, including block CRCs.
	ValidationFull = ndb.ValidationFull
)
