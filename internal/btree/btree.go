// Package btree implements the generic key-ordered B-tree descent and
// lookup algorithm shared by the Node B-Tree and Block B-Tree (spec.md
// §4.5): a single implementation parameterized over (K, V), monomorphized
// per instantiation by the Go compiler rather than dispatched through an
// interface at the hot path.
package btree

import "pstdb/internal/dbutil"

// Ordered is the set of key types a tree may be keyed by: node_id is a
// 32-bit unsigned integer, and block_id is 32-bit in the small format
// and 64-bit in the large one.
type Ordered interface {
	~uint32 | ~uint64
}

// PageRef addresses a child page by (bid, file offset). It mirrors
// disk.BREF without importing package disk, keeping this package free of
// any on-disk layout concerns.
type PageRef struct {
	BID     uint64
	Address uint64
}

// NonLeafEntry is a (key, child page reference) pair found on a non-leaf
// page, sorted ascending by Key.
type NonLeafEntry[K Ordered] struct {
	Key   K
	Child PageRef
}

// LeafEntry is a (key, value) pair found on a leaf page, sorted ascending
// by Key.
type LeafEntry[K Ordered, V any] struct {
	Key   K
	Value V
}

// Page is a decoded B-tree page. Level == 0 means Leaf is populated;
// Level > 0 means NonLeaf is populated. The two are never both set,
// modeling the closed leaf/non-leaf sum type from spec.md §9.
type Page[K Ordered, V any] struct {
	Level   int
	NonLeaf []NonLeafEntry[K]
	Leaf    []LeafEntry[K, V]
}

// IsLeaf reports whether this page is a leaf page.
func (p *Page[K, V]) IsLeaf() bool {
	return p.Level == 0
}

// Loader loads a child page by reference. Implementations live in package
// ndb, where loading means reading bytes from the backing file and
// validating the page trailer.
type Loader[K Ordered, V any] interface {
	LoadPage(ref PageRef) (*Page[K, V], error)
}

// Lookup descends from root to the leaf holding target, per spec.md
// §4.5's policy: in a non-leaf page, find the greatest entry whose key is
// <= target and descend into its child; at a leaf, return an exact match
// or a KeyNotFoundError.
func Lookup[K Ordered, V any](loader Loader[K, V], root *Page[K, V], target K) (V, error) {
	var zero V
	page := root

	for !page.IsLeaf() {
		idx, ok := floorIndex(page.NonLeaf, target)
		if !ok {
			return zero, dbutil.NewKeyNotFoundError(target)
		}

		child, err := loader.LoadPage(page.NonLeaf[idx].Child)
		if err != nil {
			return zero, err
		}
		page = child
	}

	for _, e := range page.Leaf {
		if e.Key == target {
			return e.Value, nil
		}
	}
	return zero, dbutil.NewKeyNotFoundError(target)
}

// Iterate walks every leaf entry across the tree in ascending key order,
// calling fn for each. Iteration stops early if fn returns an error.
func Iterate[K Ordered, V any](loader Loader[K, V], root *Page[K, V], fn func(K, V) error) error {
	if root.IsLeaf() {
		for _, e := range root.Leaf {
			if err := fn(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range root.NonLeaf {
		child, err := loader.LoadPage(e.Child)
		if err != nil {
			return err
		}
		if err := Iterate(loader, child, fn); err != nil {
			return err
		}
	}
	return nil
}

// floorIndex returns the index of the rightmost entry whose key is <=
// target, assuming entries is sorted ascending by key. ok is false if no
// such entry exists (target is smaller than every key on the page).
func floorIndex[K Ordered](entries []NonLeafEntry[K], target K) (int, bool) {
	idx := -1
	for i, e := range entries {
		if e.Key <= target {
			idx = i
		} else {
			break
		}
	}
	if idx == -1 {
		return 0, false
	}
	return idx, true
}
