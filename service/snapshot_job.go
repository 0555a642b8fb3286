package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"lob/infra/logger"
	"lob/snapshot"
)

// RunSnapshotJob snapshots the book every interval and blocks until ctx
// is done. Ticks with no new commands since the last snapshot are
// skipped. A snapshot in progress completes before it returns.
func (s *OrderService) RunSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}
	t := time.NewTicker(interval)
	defer t.Stop()

	var done uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if s.seqGen.Current() == done {
			continue
		}
		seq, err := s.WriteSnapshot(w)
		if err != nil {
			s.log.Error(err)
			continue
		}
		done = seq
	}
}

// WriteSnapshot stores the book and compacts both journals up to the
// snapshot seq. Only ACKED outbox entries are dropped.
func (s *OrderService) WriteSnapshot(w *snapshot.Writer) (uint64, error) {
	s.mu.Lock()
	seq := s.seqGen.Current()
	err := w.Write(seq, s.book)
	s.mu.Unlock()
	if err != nil {
		return 0, errors.Wrapf(err, "snapshot at %d", seq)
	}

	if s.entryWAL != nil {
		if err := s.entryWAL.TruncateBefore(seq); err != nil {
			return seq, errors.Wrap(err, "truncate entry wal")
		}
	}
	dropped := 0
	if s.exitWAL != nil {
		if dropped, err = s.exitWAL.TruncateAckedUpTo(seq); err != nil {
			return seq, errors.Wrap(err, "truncate outbox")
		}
	}

	s.log.Debug("snapshot written",
		logger.NewField("seq", seq),
		logger.NewField("outbox_dropped", dropped),
	)
	return seq, nil
}
