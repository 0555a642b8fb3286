package entry

import (
	"encoding/binary"
	"io"
	"os"
)

// maxSeqInSegment returns the highest seq in a segment without
// checking CRCs. Only used to decide what TruncateBefore may drop.
func maxSeqInSegment(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var hi uint64
	header := make([]byte, headerSize)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return hi, nil
			}
			return hi, err
		}

		if seq := binary.BigEndian.Uint64(header[1:9]); seq > hi {
			hi = seq
		}

		// Skip payload + CRC
		payloadLen := binary.BigEndian.Uint32(header[17:21])
		if _, err := f.Seek(int64(payloadLen)+4, io.SeekCurrent); err != nil {
			return hi, err
		}
	}
}
