package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type counter struct{ n int }

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *counter { return &counter{} }, func(c *counter) { c.n = 0 })
	c := p.Get()
	c.n = 7
	p.Put(c)
	assert.Zero(t, c.n)
	assert.NotNil(t, p.Get())
}

func TestBuffersComeBackEmpty(t *testing.T) {
	b := NewBuffers(16, 64)
	buf := b.Get()
	assert.Empty(t, *buf)
	assert.GreaterOrEqual(t, cap(*buf), 16)

	*buf = append(*buf, "frame"...)
	b.Put(buf)
	assert.Empty(t, *buf, "put truncates")
}

func TestBuffersDropOversized(t *testing.T) {
	b := NewBuffers(4, 8)
	buf := b.Get()
	*buf = append(*buf, make([]byte, 100)...)
	b.Put(buf)
	assert.Len(t, *buf, 100, "oversized buffers are not reset or kept")
}
