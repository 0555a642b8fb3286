package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lob/domain/orderbook"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerPublishesQuote(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, instrument: "BTC-USD"}

	err := p.Publish(context.Background(), orderbook.Quote{
		Seq:    12,
		Bid:    orderbook.LevelView{Price: 100, TotalQty: 7, OrderCount: 2},
		HasBid: true,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "BTC-USD", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "seq", Value: []byte("12")}}, msg.Headers)
	assert.JSONEq(t, `{"instrument":"BTC-USD","seq":12,"bid_price":100,"bid_qty":7,"bid_orders":2,"ask_qty":0,"ask_orders":0}`, string(msg.Value))
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type call struct {
	op    string
	id    uint64
	side  orderbook.Side
	qty   int64
	price int64
}

type fakeCommands struct {
	calls []call
}

func (f *fakeCommands) Add(_ context.Context, id uint64, side orderbook.Side, qty, price int64) (uint64, error) {
	f.calls = append(f.calls, call{"add", id, side, qty, price})
	return 1, nil
}

func (f *fakeCommands) Cancel(_ context.Context, id uint64) (uint64, error) {
	f.calls = append(f.calls, call{op: "cancel", id: id})
	return 0, orderbook.ErrUnknownOrder
}

func (f *fakeCommands) Execute(_ context.Context, id uint64, qty int64) (uint64, error) {
	f.calls = append(f.calls, call{op: "execute", id: id, qty: qty})
	return 2, nil
}

func message(t *testing.T, offset int64, m any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: b}
}

func TestCommandReaderAppliesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{cancel: cancel, msgs: []kafka.Message{
		message(t, 0, CommandMessage{Op: "add", ID: 1, Side: "sell", Qty: 5, Price: 101}),
		message(t, 1, CommandMessage{Op: "cancel", ID: 9}),
		{Offset: 2, Value: []byte("{broken")},
		message(t, 3, CommandMessage{Op: "replace", ID: 1}),
		message(t, 4, CommandMessage{Op: "add", ID: 2, Side: "sideways", Qty: 1}),
		message(t, 5, CommandMessage{Op: "execute", ID: 1, Qty: 2}),
	}}
	cmds := &fakeCommands{}

	require.NoError(t, newCommandReader(r, cmds, nil).Run(ctx))

	assert.Equal(t, []call{
		{op: "add", id: 1, side: orderbook.Ask, qty: 5, price: 101},
		{op: "cancel", id: 9},
		{op: "execute", id: 1, qty: 2},
	}, cmds.calls)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, r.committed, "failed commands are still committed")
}

func TestHandleReportsErrors(t *testing.T) {
	c := newCommandReader(nil, &fakeCommands{}, nil)
	err := c.handle(context.Background(), []byte(`{"op":"cancel","id":3}`))
	assert.True(t, errors.Is(err, orderbook.ErrUnknownOrder))
}
