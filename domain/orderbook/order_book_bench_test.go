package orderbook

import "testing"

func BenchmarkAddCancel(b *testing.B) {
	for _, kind := range indexKinds {
		b.Run(string(kind), func(b *testing.B) {
			book := NewOrderBook(WithIndex(kind), WithCapacity(b.N))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				id := uint64(i + 1)
				_ = book.Add(id, Side(i&1), 10, int64(1000+i%64))
				if i%2 == 1 {
					_ = book.Cancel(id - 1)
				}
			}
		})
	}
}

func BenchmarkBestBid(b *testing.B) {
	book := NewOrderBook()
	for i := 0; i < 1000; i++ {
		_ = book.Add(uint64(i+1), Bid, 1, int64(i%200))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.BestBid()
	}
}
