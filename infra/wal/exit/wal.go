package exit

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Pending reports whether the broadcaster still owes this entry a send.
func (s State) Pending() bool {
	return s != StateAcked
}

// -------------------- Record --------------------

type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const recordHeader = 1 + 4 + 8

// [state:1][retries:4][lastAttempt:8][payload]
func encodeRecord(r *Record) []byte {
	buf := make([]byte, recordHeader+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[recordHeader:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (*Record, error) {
	if len(b) < recordHeader {
		return nil, errors.Errorf("outbox record %d: short value (%d bytes)", seq, len(b))
	}
	payload := make([]byte, len(b)-recordHeader)
	copy(payload, b[recordHeader:])
	return &Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- WAL --------------------

// WAL is the outbox of book events waiting to be broadcast. Entries
// are keyed by event seq so a scan yields them in publish order.
type WAL struct {
	db  *pebble.DB
	now func() time.Time
}

func Open(dir string) (*WAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open outbox %s", dir)
	}
	return &WAL{db: db, now: time.Now}, nil
}

func (w *WAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew stores an event payload in state NEW.
func (w *WAL) PutNew(seq uint64, payload []byte) error {
	rec := &Record{Seq: seq, State: StateNew, Payload: payload}
	return errors.Wrapf(w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync), "put %d", seq)
}

func (w *WAL) MarkSent(seq uint64) error {
	return w.update(seq, func(r *Record) {
		r.State = StateSent
		r.LastAttempt = w.now().UnixNano()
	})
}

func (w *WAL) MarkAcked(seq uint64) error {
	return w.update(seq, func(r *Record) {
		r.State = StateAcked
	})
}

// MarkFailed records a failed attempt. The entry stays pending.
func (w *WAL) MarkFailed(seq uint64) error {
	return w.update(seq, func(r *Record) {
		r.State = StateFailed
		r.Retries++
		r.LastAttempt = w.now().UnixNano()
	})
}

// Get returns the entry for seq, or pebble.ErrNotFound.
func (w *WAL) Get(seq uint64) (*Record, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return decodeRecord(seq, val)
}

func (w *WAL) update(seq uint64, fn func(*Record)) error {
	rec, err := w.Get(seq)
	if err != nil {
		return errors.Wrapf(err, "outbox %d", seq)
	}
	fn(rec)
	return errors.Wrapf(w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync), "update %d", seq)
}

// -------------------- Scan --------------------

// ScanPending visits every entry that is not yet ACKED, in seq order.
func (w *WAL) ScanPending(fn func(*Record) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if !rec.State.Pending() {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo deletes ACKED entries with seq <= upTo. Pending
// entries are kept whatever their seq.
func (w *WAL) TruncateAckedUpTo(upTo uint64) (int, error) {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: keyFor(upTo + 1),
	})
	if err != nil {
		return 0, err
	}

	batch := w.db.NewBatch()
	defer batch.Close()

	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if len(iter.Value()) == 0 || State(iter.Value()[0]) != StateAcked {
			continue
		}
		if err := batch.Delete(iter.Key(), nil); err != nil {
			_ = iter.Close()
			return 0, err
		}
		n++
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, errors.Wrap(batch.Commit(pebble.Sync), "commit truncate")
}

// -------------------- Helpers --------------------

const keyPrefix = "event/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	seq, err := strconv.ParseUint(strings.TrimPrefix(string(b), keyPrefix), 10, 64)
	return seq, errors.Wrapf(err, "bad outbox key %q", b)
}
