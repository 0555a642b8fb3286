package snapshot

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lob/domain/orderbook"
)

func orders(b *orderbook.OrderBook) []orderbook.Order {
	var out []orderbook.Order
	b.Walk(func(o orderbook.Order) {
		o.SeqID, o.EntryTime = 0, 0
		out = append(out, o)
	})
	return out
}

func TestWriteLoad(t *testing.T) {
	dir := t.TempDir()
	src := orderbook.NewOrderBook()
	require.NoError(t, src.Add(1, orderbook.Bid, 10, 100))
	require.NoError(t, src.Add(2, orderbook.Bid, 5, 101))
	require.NoError(t, src.Add(3, orderbook.Bid, 7, 100))
	require.NoError(t, src.Add(4, orderbook.Ask, 3, 105))
	require.NoError(t, src.Execute(1, 4))

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(17, src))

	dst := orderbook.NewOrderBook(orderbook.WithIndex(orderbook.IndexBTree))
	seq, err := Load(Path(dir), dst)
	require.NoError(t, err)
	assert.EqualValues(t, 17, seq)

	assert.Equal(t, orders(src), orders(dst))
	assert.Equal(t, []orderbook.Order{
		{ID: 1, Side: orderbook.Bid, Price: 100, Qty: 6},
		{ID: 3, Side: orderbook.Bid, Price: 100, Qty: 7},
	}, func() []orderbook.Order {
		var out []orderbook.Order
		for _, o := range dst.LevelOrders(orderbook.Bid, 100) {
			o.SeqID, o.EntryTime = 0, 0
			out = append(out, o)
		}
		return out
	}(), "FIFO within a level survives")

	bid, ok := dst.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 101, bid)
}

func TestOverwriteLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	b := orderbook.NewOrderBook()
	require.NoError(t, w.Write(1, b))
	require.NoError(t, b.Add(9, orderbook.Ask, 1, 50))
	require.NoError(t, w.Write(2, b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fileName, entries[0].Name())

	dst := orderbook.NewOrderBook()
	seq, err := Load(Path(dir), dst)
	require.NoError(t, err)
	assert.EqualValues(t, 2, seq)
	assert.Equal(t, 1, dst.Len())
}

func TestLoadMissing(t *testing.T) {
	b := orderbook.NewOrderBook()
	seq, err := Load(Path(t.TempDir()), b)
	require.NoError(t, err)
	assert.Zero(t, seq)
	assert.Zero(t, b.Len())
}

func TestLoadGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("not gob"), 0o644))
	_, err := Load(Path(dir), orderbook.NewOrderBook())
	assert.Error(t, err)
}

func TestWriteSyncsDirAfterRename(t *testing.T) {
	dir := t.TempDir()
	book := orderbook.NewOrderBook()
	require.NoError(t, book.Add(1, orderbook.Ask, 2, 99))

	orig := syncDir
	t.Cleanup(func() { syncDir = orig })

	var synced []string
	syncDir = func(d string) error {
		_, err := os.Stat(Path(d))
		require.NoError(t, err, "snapshot must be in place before the dir sync")
		synced = append(synced, d)
		return orig(d)
	}
	require.NoError(t, (&Writer{Dir: dir}).Write(3, book))
	assert.Equal(t, []string{dir}, synced)

	syncDir = func(string) error { return errors.New("io error") }
	assert.Error(t, (&Writer{Dir: dir}).Write(4, book))
}
