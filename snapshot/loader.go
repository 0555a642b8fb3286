package snapshot

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"

	"lob/domain/orderbook"
)

// Load re-adds the orders stored at path into book and returns the
// snapshot seq. A missing file is an empty snapshot at seq 0.
func Load(path string, book *orderbook.OrderBook) (uint64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, errors.Wrap(err, "decode snapshot")
	}

	for _, e := range s.Orders {
		if err := book.Add(e.ID, orderbook.Side(e.Side), e.Qty, e.Price); err != nil {
			return 0, errors.Wrapf(err, "restore order %d", e.ID)
		}
	}
	return s.Seq, nil
}
