package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var indexKinds = []IndexKind{IndexRBTree, IndexBTree}

func TestPriceIndexContract(t *testing.T) {
	for _, kind := range indexKinds {
		t.Run(string(kind), func(t *testing.T) {
			idx := newPriceIndex(kind)
			assert.Nil(t, idx.MinLevel())
			assert.Nil(t, idx.MaxLevel())
			assert.Zero(t, idx.Size())

			for _, p := range []int64{50, 10, 90, 30, 70, -5} {
				_, created := idx.UpsertLevel(p, level(p))
				require.True(t, created)
			}
			_, created := idx.UpsertLevel(30, level(30))
			assert.False(t, created)

			assert.Equal(t, 6, idx.Size())
			assert.EqualValues(t, -5, idx.MinLevel().Price)
			assert.EqualValues(t, 90, idx.MaxLevel().Price)

			var asc, desc []int64
			idx.ForEachAscending(func(pl *PriceLevel) bool {
				asc = append(asc, pl.Price)
				return true
			})
			idx.ForEachDescending(func(pl *PriceLevel) bool {
				desc = append(desc, pl.Price)
				return len(desc) < 3
			})
			assert.Equal(t, []int64{-5, 10, 30, 50, 70, 90}, asc)
			assert.Equal(t, []int64{90, 70, 50}, desc)

			assert.True(t, idx.DeleteLevel(90))
			assert.False(t, idx.DeleteLevel(90))
			assert.EqualValues(t, 70, idx.MaxLevel().Price)
			assert.Nil(t, idx.FindLevel(90))
			assert.NotNil(t, idx.FindLevel(10))
		})
	}
}

func TestParseIndexKind(t *testing.T) {
	k, err := ParseIndexKind("")
	require.NoError(t, err)
	assert.Equal(t, IndexRBTree, k)

	k, err = ParseIndexKind("btree")
	require.NoError(t, err)
	assert.Equal(t, IndexBTree, k)

	_, err = ParseIndexKind("skiplist")
	assert.Error(t, err)
}
