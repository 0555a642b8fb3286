package memory

import "sync"

// Pool is a typed sync.Pool. When set, reset runs on Put so a pooled
// value never carries state from its previous user.
type Pool[T any] struct {
	p     sync.Pool
	reset func(*T)
}

func NewPool[T any](ctor func() *T, reset func(*T)) *Pool[T] {
	pool := &Pool[T]{reset: reset}
	pool.p.New = func() any { return ctor() }
	return pool
}

func (p *Pool[T]) Get() *T {
	return p.p.Get().(*T)
}

func (p *Pool[T]) Put(v *T) {
	if p.reset != nil {
		p.reset(v)
	}
	p.p.Put(v)
}

// Buffers pools byte slices. Slices that grew past limit are dropped
// instead of being kept alive by the pool.
type Buffers struct {
	pool  *Pool[[]byte]
	limit int
}

func NewBuffers(size, limit int) *Buffers {
	return &Buffers{
		pool: NewPool(
			func() *[]byte { b := make([]byte, 0, size); return &b },
			func(b *[]byte) { *b = (*b)[:0] },
		),
		limit: limit,
	}
}

// Get returns an empty buffer.
func (b *Buffers) Get() *[]byte {
	return b.pool.Get()
}

func (b *Buffers) Put(buf *[]byte) {
	if cap(*buf) > b.limit {
		return
	}
	b.pool.Put(buf)
}
