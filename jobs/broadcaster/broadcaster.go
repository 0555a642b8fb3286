package broadcaster

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"lob/infra/logger"
	"lob/infra/metrics"
	exitwal "lob/infra/wal/exit"
)

// Publisher delivers one outbox payload. The key is the event seq.
type Publisher interface {
	Publish(key, value []byte) error
	Close() error
}

// Broadcaster drains the outbox in seq order. Every pending entry is
// retried on each pass until the publisher acknowledges it.
type Broadcaster struct {
	exitWAL   *exitwal.WAL
	publisher Publisher
	interval  time.Duration
	maxRetry  uint32
	metrics   *metrics.Book
	log       *logger.Logger
}

type Option func(*Broadcaster)

func WithInterval(d time.Duration) Option {
	return func(b *Broadcaster) { b.interval = d }
}

// WithMaxRetries stops retrying an entry after n failed attempts. The
// entry is kept in the outbox as FAILED. Zero retries forever.
func WithMaxRetries(n uint32) Option {
	return func(b *Broadcaster) { b.maxRetry = n }
}

func WithMetrics(m *metrics.Book) Option {
	return func(b *Broadcaster) { b.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(b *Broadcaster) { b.log = l }
}

func New(exitWAL *exitwal.WAL, publisher Publisher, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		exitWAL:   exitWAL,
		publisher: publisher,
		interval:  250 * time.Millisecond,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ------------------------------------------------
// RUN LOOP
// ------------------------------------------------

// Run drains the outbox every interval and blocks until ctx is done.
// It returns only after the current pass has finished, so the outbox
// may be closed once Run returns.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", logger.NewField("interval", b.interval.String()))
	defer b.log.Info("broadcaster stopped")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Drain(ctx); err != nil {
				b.log.Error(err)
			}
		}
	}
}

// ------------------------------------------------
// DRAIN
// ------------------------------------------------

// Drain makes one pass over the pending entries and returns how many
// were acknowledged. A failed publish stops the pass so later events
// are not delivered ahead of it.
func (b *Broadcaster) Drain(ctx context.Context) (int, error) {
	acked := 0
	errStop := errors.New("stop")

	err := b.exitWAL.ScanPending(func(rec *exitwal.Record) error {
		if ctx.Err() != nil {
			return errStop
		}
		if b.maxRetry > 0 && rec.Retries >= b.maxRetry {
			return nil
		}

		if err := b.exitWAL.MarkSent(rec.Seq); err != nil {
			return err
		}

		key := []byte(formatSeq(rec.Seq))
		if err := b.publisher.Publish(key, rec.Payload); err != nil {
			b.count("error")
			b.log.Warn("publish failed",
				logger.NewField("seq", rec.Seq),
				logger.NewField("retries", rec.Retries+1),
				logger.NewField("error", err.Error()),
			)
			if err := b.exitWAL.MarkFailed(rec.Seq); err != nil {
				return err
			}
			return errStop
		}

		b.count("ok")
		if err := b.exitWAL.MarkAcked(rec.Seq); err != nil {
			return err
		}
		acked++
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return acked, err
}

func (b *Broadcaster) count(result string) {
	if b.metrics != nil {
		b.metrics.Published.WithLabelValues("kafka_events", result).Inc()
	}
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
