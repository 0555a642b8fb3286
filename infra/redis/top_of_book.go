// Package redis mirrors the top of book into a Redis hash and announces
// each change on a channel of the same name.
package redis

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"lob/domain/orderbook"
)

type TopOfBook struct {
	client redis.Cmdable
	key    string
}

// NewClient opens a client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	return client, nil
}

func NewTopOfBook(client redis.Cmdable, prefix, instrument string) *TopOfBook {
	return &TopOfBook{client: client, key: Key(prefix, instrument)}
}

// Key is the hash and channel name for an instrument.
func Key(prefix, instrument string) string {
	return prefix + "tob:" + instrument
}

func (t *TopOfBook) Name() string { return "redis_tob" }

// Publish replaces the hash and notifies subscribers with the seq.
// An empty side is written as empty strings.
func (t *TopOfBook) Publish(ctx context.Context, q orderbook.Quote) error {
	_, err := t.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, t.key, fields(q))
		p.Publish(ctx, t.key, strconv.FormatUint(q.Seq, 10))
		return nil
	})
	return errors.Wrapf(err, "write %s", t.key)
}

func fields(q orderbook.Quote) map[string]any {
	m := map[string]any{
		"seq":        q.Seq,
		"bid_price":  "",
		"bid_qty":    int64(0),
		"bid_orders": 0,
		"ask_price":  "",
		"ask_qty":    int64(0),
		"ask_orders": 0,
	}
	if q.HasBid {
		m["bid_price"] = q.Bid.Price
		m["bid_qty"] = q.Bid.TotalQty
		m["bid_orders"] = q.Bid.OrderCount
	}
	if q.HasAsk {
		m["ask_price"] = q.Ask.Price
		m["ask_qty"] = q.Ask.TotalQty
		m["ask_orders"] = q.Ask.OrderCount
	}
	return m
}
