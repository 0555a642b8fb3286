package service

import (
	"context"
	"testing"

	"lob/domain/orderbook"
	"lob/infra/sequence"
	entrywal "lob/infra/wal/entry"
)

func BenchmarkAddCancel_Core(b *testing.B) {
	svc := NewOrderService(orderbook.NewOrderBook(), sequence.New(0), Deps{})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(i + 1)
		if _, err := svc.Add(ctx, id, orderbook.Bid, 1, int64(100+i%16)); err != nil {
			b.Fatal(err)
		}
		if i%2 == 1 {
			if _, err := svc.Cancel(ctx, id-1); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkAdd_Journalled(b *testing.B) {
	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:         b.TempDir(),
		SegmentSize: 64 << 20,
	})
	if err != nil {
		b.Fatal(err)
	}
	defer entryWAL.Close()

	svc := NewOrderService(orderbook.NewOrderBook(), sequence.New(0), Deps{EntryWAL: entryWAL})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Add(ctx, uint64(i+1), orderbook.Ask, 1, 100); err != nil {
			b.Fatal(err)
		}
	}
}
