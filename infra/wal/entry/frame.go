package entry

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"lob/infra/wal"
)

// Frame:
// [type:1][seq:8][time:8][len:4][payload][crc:4]
const headerSize = 1 + 8 + 8 + 4

// MaxRecordSize bounds a record payload. A larger length header can
// only come from a damaged frame.
const MaxRecordSize = 1 << 20

var ErrCorrupt = errors.New("entry wal: corrupt frame")

// appendFrame appends the encoded frame for r to dst.
func appendFrame(dst []byte, r *Record) []byte {
	start := len(dst)
	var header [headerSize]byte
	header[0] = byte(r.Type)
	binary.BigEndian.PutUint64(header[1:9], r.Seq)
	binary.BigEndian.PutUint64(header[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(header[17:21], uint32(len(r.Data)))

	dst = append(dst, header[:]...)
	dst = append(dst, r.Data...)
	return binary.BigEndian.AppendUint32(dst, wal.CRC32(dst[start:]))
}

// readFrame returns io.EOF on a clean end of segment and
// io.ErrUnexpectedEOF when the last frame is torn.
func readFrame(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	l := binary.BigEndian.Uint32(header[17:21])
	if l > MaxRecordSize {
		return nil, ErrCorrupt
	}
	body := make([]byte, int(l)+4)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payload := body[:l]
	crc := binary.BigEndian.Uint32(body[l:])
	if !wal.CRC32Valid(append(header, payload...), crc) {
		return nil, ErrCorrupt
	}

	return &Record{
		Type: RecordType(header[0]),
		Seq:  binary.BigEndian.Uint64(header[1:9]),
		Time: int64(binary.BigEndian.Uint64(header[9:17])),
		Data: payload,
	}, nil
}
