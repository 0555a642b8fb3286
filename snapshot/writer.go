package snapshot

import (
	"encoding/gob"
	"os"
	"time"

	"github.com/pkg/errors"

	"lob/domain/orderbook"
)

type Writer struct {
	Dir string
}

// syncDir makes a rename in dir durable.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Write stores every resting order of book under seq. The file is
// written next to the live one and renamed over it, so a crash leaves
// either the old or the new snapshot.
func (w *Writer) Write(seq uint64, book *orderbook.OrderBook) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, book.Len()),
	}
	book.Walk(func(o orderbook.Order) {
		s.Orders = append(s.Orders, OrderEntry{
			ID:    o.ID,
			Side:  uint8(o.Side),
			Price: o.Price,
			Qty:   o.Qty,
		})
	})

	path := Path(w.Dir)
	tmp, err := os.CreateTemp(w.Dir, fileName+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "publish snapshot")
	}
	// Journals are truncated after Write returns, so the rename must
	// survive a crash.
	return errors.Wrap(syncDir(w.Dir), "sync snapshot dir")
}
