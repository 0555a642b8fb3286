package broadcaster

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exitwal "lob/infra/wal/exit"
)

type fakePublisher struct {
	sent   []string
	failAt map[string]int
}

func (f *fakePublisher) Publish(key, value []byte) error {
	if n := f.failAt[string(key)]; n > 0 {
		f.failAt[string(key)] = n - 1
		return errors.New("broker down")
	}
	f.sent = append(f.sent, string(key)+"="+string(value))
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func outbox(t *testing.T, n int) *exitwal.WAL {
	t.Helper()
	w, err := exitwal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	for seq := 1; seq <= n; seq++ {
		require.NoError(t, w.PutNew(uint64(seq), []byte{'a' + byte(seq-1)}))
	}
	return w
}

func TestDrainPublishesInOrder(t *testing.T) {
	w := outbox(t, 3)
	pub := &fakePublisher{}
	b := New(w, pub)

	n, err := b.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"1=a", "2=b", "3=c"}, pub.sent)

	rec, err := w.Get(2)
	require.NoError(t, err)
	assert.Equal(t, exitwal.StateAcked, rec.State)

	n, err = b.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "acked entries are not resent")
}

func TestDrainStopsAtFailureAndRetries(t *testing.T) {
	w := outbox(t, 3)
	pub := &fakePublisher{failAt: map[string]int{"2": 1}}
	b := New(w, pub)

	n, err := b.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"1=a"}, pub.sent)

	rec, err := w.Get(2)
	require.NoError(t, err)
	assert.Equal(t, exitwal.StateFailed, rec.State)
	assert.EqualValues(t, 1, rec.Retries)

	n, err = b.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1=a", "2=b", "3=c"}, pub.sent)
}

func TestMaxRetriesParksEntry(t *testing.T) {
	w := outbox(t, 2)
	pub := &fakePublisher{failAt: map[string]int{"1": 100}}
	b := New(w, pub, WithMaxRetries(2))

	for i := 0; i < 3; i++ {
		_, err := b.Drain(context.Background())
		require.NoError(t, err)
	}
	rec, err := w.Get(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rec.Retries)
	assert.Equal(t, []string{"2=b"}, pub.sent, "later events flow once the entry is parked")
}

func TestDrainHonoursCancelledContext(t *testing.T) {
	w := outbox(t, 2)
	pub := &fakePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := New(w, pub).Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.sent)
}

func TestSaramaPublisher(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"seq":1}` {
			return errors.Errorf("unexpected payload %s", val)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(producer, "book.events")
	require.NoError(t, p.Publish([]byte("1"), []byte(`{"seq":1}`)))
	assert.ErrorIs(t, p.Publish([]byte("2"), []byte(`{"seq":2}`)), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type slowPublisher struct {
	delay time.Duration
	calls chan struct{}
}

func (p *slowPublisher) Publish(key, value []byte) error {
	select {
	case p.calls <- struct{}{}:
	default:
	}
	time.Sleep(p.delay)
	return nil
}

func (p *slowPublisher) Close() error { return nil }

func TestRunReturnsAfterPassSoOutboxCanClose(t *testing.T) {
	w, err := exitwal.Open(t.TempDir())
	require.NoError(t, err)
	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, w.PutNew(seq, []byte("x")))
	}

	pub := &slowPublisher{delay: 100 * time.Millisecond, calls: make(chan struct{}, 1)}
	b := New(w, pub, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	select {
	case <-pub.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("no publish attempted")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, b.Close())
	require.NoError(t, w.Close())
}
