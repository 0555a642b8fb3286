package snapshot

import (
	"path/filepath"
	"time"
)

const fileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	ID    uint64
	Side  uint8
	Price int64
	Qty   int64
}

// Path returns the snapshot file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}
