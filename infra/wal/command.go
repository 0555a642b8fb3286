// Package wal holds the pieces shared by the journals: the command
// payload codec and frame checksums.
package wal

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Command is the journalled form of a book command. Fields unused by
// an operation are left zero.
type Command struct {
	OrderID uint64
	Side    uint8
	Qty     int64
	Price   int64
}

const (
	fieldOrderID protowire.Number = 1
	fieldSide    protowire.Number = 2
	fieldQty     protowire.Number = 3
	fieldPrice   protowire.Number = 4
)

// Marshal encodes c in protobuf wire format. Zero fields are omitted.
func (c Command) Marshal() []byte {
	b := make([]byte, 0, 32)
	if c.OrderID != 0 {
		b = protowire.AppendTag(b, fieldOrderID, protowire.VarintType)
		b = protowire.AppendVarint(b, c.OrderID)
	}
	if c.Side != 0 {
		b = protowire.AppendTag(b, fieldSide, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.Side))
	}
	if c.Qty != 0 {
		b = protowire.AppendTag(b, fieldQty, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(c.Qty))
	}
	if c.Price != 0 {
		b = protowire.AppendTag(b, fieldPrice, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(c.Price))
	}
	return b
}

// UnmarshalCommand decodes a payload written by Marshal. Unknown fields
// are skipped.
func UnmarshalCommand(b []byte) (Command, error) {
	var c Command
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return c, errors.Wrap(protowire.ParseError(n), "command tag")
		}
		b = b[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return c, errors.Wrapf(protowire.ParseError(n), "command field %d", num)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return c, errors.Wrapf(protowire.ParseError(n), "command field %d", num)
		}
		b = b[n:]

		switch num {
		case fieldOrderID:
			c.OrderID = v
		case fieldSide:
			c.Side = uint8(v)
		case fieldQty:
			c.Qty = protowire.DecodeZigZag(v)
		case fieldPrice:
			c.Price = protowire.DecodeZigZag(v)
		}
	}
	return c, nil
}
