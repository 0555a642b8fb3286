package entry

import (
	"fmt"
	"time"

	"lob/infra/wal"
)

type RecordType uint8

const (
	RecordAdd RecordType = iota + 1
	RecordCancel
	RecordExecute
)

func (t RecordType) String() string {
	switch t {
	case RecordAdd:
		return "add"
	case RecordCancel:
		return "cancel"
	case RecordExecute:
		return "execute"
	default:
		return fmt.Sprintf("RecordType(%d)", uint8(t))
	}
}

// Record is one journalled command.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, cmd wal.Command) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: cmd.Marshal(),
	}
}

// Command decodes the record payload.
func (r *Record) Command() (wal.Command, error) {
	return wal.UnmarshalCommand(r.Data)
}
