// Package quotes fans top-of-book updates out to external sinks.
package quotes

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"lob/domain/orderbook"
	"lob/infra/logger"
	"lob/infra/metrics"
)

// Sink receives every quote the job reads.
type Sink interface {
	Name() string
	Publish(ctx context.Context, q orderbook.Quote) error
}

type Job struct {
	in      <-chan orderbook.Quote
	sinks   []Sink
	timeout time.Duration
	metrics *metrics.Book
	log     *logger.Logger
}

func New(in <-chan orderbook.Quote, sinks []Sink, m *metrics.Book, log *logger.Logger) *Job {
	if log == nil {
		log = logger.Nop()
	}
	return &Job{in: in, sinks: sinks, timeout: 2 * time.Second, metrics: m, log: log}
}

// Run publishes quotes until ctx is done or the channel is closed.
// A failing sink is logged and does not hold back the others.
func (j *Job) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-j.in:
			if !ok {
				return
			}
			j.publish(ctx, q)
		}
	}
}

func (j *Job) publish(ctx context.Context, q orderbook.Quote) {
	for _, s := range j.sinks {
		pctx, cancel := context.WithTimeout(ctx, j.timeout)
		err := s.Publish(pctx, q)
		cancel()

		if j.metrics != nil {
			j.metrics.Published.WithLabelValues(s.Name(), metrics.Result(err)).Inc()
		}
		if err != nil {
			j.log.Error(errors.Wrapf(err, "quote %d to %s", q.Seq, s.Name()))
		}
	}
}
