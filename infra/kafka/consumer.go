package kafka

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"lob/domain/orderbook"
	"lob/infra/logger"
)

// Commands is the write surface the reader drives.
type Commands interface {
	Add(ctx context.Context, id uint64, side orderbook.Side, qty, price int64) (uint64, error)
	Cancel(ctx context.Context, id uint64) (uint64, error)
	Execute(ctx context.Context, id uint64, qty int64) (uint64, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CommandMessage is the JSON form of a book command on the commands topic.
type CommandMessage struct {
	Op    string `json:"op"`
	ID    uint64 `json:"id"`
	Side  string `json:"side,omitempty"`
	Qty   int64  `json:"qty,omitempty"`
	Price int64  `json:"price,omitempty"`
}

// CommandReader consumes commands and applies them in partition order.
// Rejected commands are logged and committed; they are never retried.
type CommandReader struct {
	reader   messageReader
	commands Commands
	log      *logger.Logger
}

func NewCommandReader(brokers []string, topic, groupID string, commands Commands, log *logger.Logger) *CommandReader {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return newCommandReader(r, commands, log)
}

func newCommandReader(r messageReader, commands Commands, log *logger.Logger) *CommandReader {
	if log == nil {
		log = logger.Nop()
	}
	return &CommandReader{reader: r, commands: commands, log: log}
}

// Run blocks until ctx is done or the reader fails.
func (c *CommandReader) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "fetch command")
		}

		if err := c.handle(ctx, msg.Value); err != nil {
			c.log.Warn("command failed",
				logger.NewField("partition", msg.Partition),
				logger.NewField("offset", msg.Offset),
				logger.NewField("error", err.Error()),
			)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "commit command")
		}
	}
}

func (c *CommandReader) handle(ctx context.Context, value []byte) error {
	var m CommandMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return errors.Wrap(err, "decode command")
	}

	var err error
	switch m.Op {
	case "add":
		var side orderbook.Side
		if side, err = orderbook.ParseSide(m.Side); err != nil {
			return err
		}
		_, err = c.commands.Add(ctx, m.ID, side, m.Qty, m.Price)
	case "cancel":
		_, err = c.commands.Cancel(ctx, m.ID)
	case "execute":
		_, err = c.commands.Execute(ctx, m.ID, m.Qty)
	default:
		return errors.Errorf("unknown op %q", m.Op)
	}
	return err
}

func (c *CommandReader) Close() error {
	return c.reader.Close()
}
