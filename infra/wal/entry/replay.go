package entry

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

type ReplayHandler func(*Record) error

// Replay feeds every record in dir to fn in sequence order and returns
// the last sequence seen. A torn frame at the very end of the newest
// segment is treated as the end of the journal.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := segments(dir)
	if err != nil {
		return 0, errors.Wrap(err, "list segments")
	}

	for i, path := range files {
		lastSeq, err = replaySegment(path, i == len(files)-1, lastSeq, fn)
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, newest bool, lastSeq uint64, fn ReplayHandler) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return lastSeq, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	for {
		rec, err := readFrame(f)
		switch {
		case err == io.EOF:
			return lastSeq, nil
		case newest && (err == io.ErrUnexpectedEOF || errors.Is(err, ErrCorrupt)):
			return lastSeq, nil
		case err != nil:
			return lastSeq, errors.Wrapf(err, "read %s", path)
		}

		if rec.Seq <= lastSeq {
			return lastSeq, errors.Errorf("non-monotonic seq %d after %d in %s", rec.Seq, lastSeq, path)
		}
		lastSeq = rec.Seq

		if err := fn(rec); err != nil {
			return lastSeq, err
		}
	}
}
