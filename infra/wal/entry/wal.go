package entry

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"lob/infra/memory"
)

var frames = memory.NewBuffers(256, 64<<10)

type Config struct {
	Dir         string
	SegmentSize int64
	// SyncOnAppend fsyncs after every record.
	SyncOnAppend bool
}

// WAL is the entry journal: every accepted command is appended here
// before it is applied to the book.
type WAL struct {
	mu sync.Mutex

	dir          string
	segSize      int64
	syncOnAppend bool
	current      *segment
	segIndex     int

	// failed is set when a partial frame could not be cut off. Every
	// later append is refused so nothing lands behind the garbage.
	failed error
}

// Open resumes the highest existing segment, cutting off a torn final
// frame left by a crash, or starts segment 0 in an empty directory.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create wal dir")
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = 2 * 1024 * 1024
	}

	files, err := segments(cfg.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "list segments")
	}
	index := 0
	if n := len(files); n > 0 {
		last := files[n-1]
		index = segmentIndex(last)
		if err := truncateTornTail(last); err != nil {
			return nil, err
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:          cfg.Dir,
		segSize:      cfg.SegmentSize,
		syncOnAppend: cfg.SyncOnAppend,
		current:      seg,
		segIndex:     index,
	}, nil
}

func (w *WAL) Append(r *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.failed != nil {
		return errors.Wrapf(w.failed, "append seq %d", r.Seq)
	}
	if len(r.Data) > MaxRecordSize {
		return errors.Errorf("append seq %d: payload %d exceeds %d bytes", r.Seq, len(r.Data), MaxRecordSize)
	}

	buf := frames.Get()
	*buf = appendFrame(*buf, r)
	err := w.current.append(*buf)
	frames.Put(buf)
	if err != nil {
		if rerr := w.current.rollback(); rerr != nil {
			w.failed = errors.Wrap(rerr, "entry wal unusable: rollback partial frame")
		}
		return errors.Wrapf(err, "append seq %d", r.Seq)
	}
	if w.syncOnAppend {
		if err := w.current.sync(); err != nil {
			return errors.Wrap(err, "sync segment")
		}
	}
	if w.current.offset >= w.segSize {
		// The record is already durable. A failed rotation is retried
		// on the next append.
		_ = w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current.sync()
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

func (w *WAL) Dir() string { return w.dir }

func (w *WAL) rotate() error {
	if err := w.current.sync(); err != nil {
		return errors.Wrap(err, "sync before rotate")
	}
	// The next segment is opened first so a failure keeps the current
	// one usable.
	seg, err := openSegment(w.dir, w.segIndex+1)
	if err != nil {
		return err
	}
	_ = w.current.close()
	w.current = seg
	w.segIndex++
	return nil
}

// TruncateBefore removes closed segments whose records are all at or
// below seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	files, err := segments(w.dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		if segmentIndex(path) >= w.segIndex {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return errors.Wrapf(err, "remove %s", path)
			}
		}
	}
	return nil
}

func truncateTornTail(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrap(err, "open last segment")
	}
	defer f.Close()

	var valid int64
	for {
		rec, err := readFrame(f)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF || errors.Is(err, ErrCorrupt) {
			return errors.Wrap(f.Truncate(valid), "truncate torn tail")
		}
		if err != nil {
			return errors.Wrap(err, "scan last segment")
		}
		valid += int64(headerSize + len(rec.Data) + 4)
	}
}
