package service

import (
	"github.com/pkg/errors"

	"lob/domain/orderbook"
	"lob/infra/logger"
	entrywal "lob/infra/wal/entry"
	"lob/snapshot"
)

// Recover rebuilds the book from the latest snapshot in snapshotDir and
// the journal records in walDir written after it, then resumes the
// sequencer at the last seq seen. It must run on an empty book before
// the service accepts traffic. The outbox is not replayed: pending
// entries are still there for the broadcaster.
func (s *OrderService) Recover(snapshotDir, walDir string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.book.Len() != 0 {
		return 0, errors.New("recover: book is not empty")
	}

	snapSeq, err := snapshot.Load(snapshot.Path(snapshotDir), s.book)
	if err != nil {
		return 0, err
	}

	replayed := 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= snapSeq {
			return nil
		}
		replayed++
		return errors.Wrapf(s.apply(rec), "replay seq %d", rec.Seq)
	})
	if err != nil {
		return 0, err
	}

	lastSeq = max(lastSeq, snapSeq)
	s.seqGen.Reset(lastSeq)
	s.last = s.book.Top()
	if s.metrics != nil {
		s.refreshGauges()
	}

	s.log.Info("book recovered",
		logger.NewField("snapshot_seq", snapSeq),
		logger.NewField("replayed", replayed),
		logger.NewField("last_seq", lastSeq),
		logger.NewField("resting", s.book.Len()),
	)
	return lastSeq, nil
}

func (s *OrderService) apply(rec *entrywal.Record) error {
	cmd, err := rec.Command()
	if err != nil {
		return err
	}
	switch rec.Type {
	case entrywal.RecordAdd:
		return s.book.Add(cmd.OrderID, orderbook.Side(cmd.Side), cmd.Qty, cmd.Price)
	case entrywal.RecordCancel:
		return s.book.Cancel(cmd.OrderID)
	case entrywal.RecordExecute:
		return s.book.Execute(cmd.OrderID, cmd.Qty)
	default:
		return errors.Errorf("unknown record type %s", rec.Type)
	}
}
