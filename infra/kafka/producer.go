package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"lob/domain/orderbook"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes top-of-book quotes to a topic keyed by instrument,
// so every quote of one book lands on the same partition.
type Producer struct {
	writer     messageWriter
	instrument string
}

func NewProducer(brokers []string, topic, instrument string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		instrument: instrument,
	}
}

type quoteMessage struct {
	Instrument string `json:"instrument"`
	Seq        uint64 `json:"seq"`
	BidPrice   *int64 `json:"bid_price,omitempty"`
	BidQty     int64  `json:"bid_qty"`
	BidOrders  int    `json:"bid_orders"`
	AskPrice   *int64 `json:"ask_price,omitempty"`
	AskQty     int64  `json:"ask_qty"`
	AskOrders  int    `json:"ask_orders"`
}

func encodeQuote(instrument string, q orderbook.Quote) ([]byte, error) {
	m := quoteMessage{Instrument: instrument, Seq: q.Seq}
	if q.HasBid {
		m.BidPrice, m.BidQty, m.BidOrders = &q.Bid.Price, q.Bid.TotalQty, q.Bid.OrderCount
	}
	if q.HasAsk {
		m.AskPrice, m.AskQty, m.AskOrders = &q.Ask.Price, q.Ask.TotalQty, q.Ask.OrderCount
	}
	return json.Marshal(m)
}

func (p *Producer) Name() string { return "kafka_quotes" }

func (p *Producer) Publish(ctx context.Context, q orderbook.Quote) error {
	value, err := encodeQuote(p.instrument, q)
	if err != nil {
		return err
	}
	return p.Send(ctx, []byte(p.instrument), value, kafka.Header{
		Key:   "seq",
		Value: []byte(strconv.FormatUint(q.Seq, 10)),
	})
}

func (p *Producer) Send(
	ctx context.Context,
	key []byte,
	value []byte,
	headers ...kafka.Header,
) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: headers,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
