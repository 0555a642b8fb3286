package orderbook

import "github.com/tidwall/btree"

const btreeDegree = 32

// BTreeIndex is a PriceIndex backed by a tidwall B-tree.
type BTreeIndex struct {
	levels *btree.Map[int64, *PriceLevel]
}

func NewBTreeIndex() *BTreeIndex {
	return &BTreeIndex{levels: btree.NewMap[int64, *PriceLevel](btreeDegree)}
}

func (t *BTreeIndex) UpsertLevel(price int64, create func() *PriceLevel) (*PriceLevel, bool) {
	if lvl, ok := t.levels.Get(price); ok {
		return lvl, false
	}
	lvl := create()
	t.levels.Set(price, lvl)
	return lvl, true
}

func (t *BTreeIndex) FindLevel(price int64) *PriceLevel {
	lvl, _ := t.levels.Get(price)
	return lvl
}

func (t *BTreeIndex) DeleteLevel(price int64) bool {
	_, ok := t.levels.Delete(price)
	return ok
}

func (t *BTreeIndex) MinLevel() *PriceLevel {
	_, lvl, _ := t.levels.Min()
	return lvl
}

func (t *BTreeIndex) MaxLevel() *PriceLevel {
	_, lvl, _ := t.levels.Max()
	return lvl
}

func (t *BTreeIndex) Size() int { return t.levels.Len() }

func (t *BTreeIndex) ForEachAscending(fn func(*PriceLevel) bool) {
	t.levels.Scan(func(_ int64, lvl *PriceLevel) bool {
		return fn(lvl)
	})
}

func (t *BTreeIndex) ForEachDescending(fn func(*PriceLevel) bool) {
	t.levels.Reverse(func(_ int64, lvl *PriceLevel) bool {
		return fn(lvl)
	})
}
