package orderbook

import "fmt"

// PriceIndex keeps the price levels of one side ordered by price.
type PriceIndex interface {
	// UpsertLevel returns the level at price, creating an empty one if
	// absent. created reports whether a new level was inserted.
	UpsertLevel(price int64, create func() *PriceLevel) (lvl *PriceLevel, created bool)
	FindLevel(price int64) *PriceLevel
	DeleteLevel(price int64) bool
	MinLevel() *PriceLevel
	MaxLevel() *PriceLevel
	Size() int
	ForEachAscending(fn func(*PriceLevel) bool)
	ForEachDescending(fn func(*PriceLevel) bool)
}

type IndexKind string

const (
	IndexRBTree IndexKind = "rbtree"
	IndexBTree  IndexKind = "btree"
)

// ParseIndexKind validates a configured index name. Empty means rbtree.
func ParseIndexKind(v string) (IndexKind, error) {
	switch IndexKind(v) {
	case "", IndexRBTree:
		return IndexRBTree, nil
	case IndexBTree:
		return IndexBTree, nil
	default:
		return "", fmt.Errorf("unknown price index %q", v)
	}
}

func newPriceIndex(kind IndexKind) PriceIndex {
	if kind == IndexBTree {
		return NewBTreeIndex()
	}
	return NewRBTree()
}
