// Package bookpb holds the lob.v1 wire messages and the gRPC service
// descriptor. Messages use the protobuf wire format and are encoded by
// hand with protowire.
package bookpb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every request and response.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type Side int32

const (
	SideBid Side = 0
	SideAsk Side = 1
)

// -------------------- Commands --------------------

type AddOrderRequest struct {
	OrderId uint64
	Side    Side
	Qty     int64
	Price   int64
}

func (m *AddOrderRequest) appendTo(b []byte) []byte {
	b = appendVarint(b, 1, m.OrderId)
	b = appendVarint(b, 2, uint64(m.Side))
	b = appendVarint(b, 3, uint64(m.Qty))
	return appendSint(b, 4, m.Price)
}

func (m *AddOrderRequest) Marshal() ([]byte, error) { return m.appendTo(nil), nil }

func (m *AddOrderRequest) Unmarshal(b []byte) error {
	*m = AddOrderRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 2, 3, 4:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 1:
				m.OrderId = v
			case 2:
				m.Side = Side(v)
			case 3:
				m.Qty = int64(v)
			case 4:
				m.Price = protowire.DecodeZigZag(v)
			}
			return n, nil
		}
		return -1, nil
	})
}

type CancelOrderRequest struct {
	OrderId uint64
}

func (m *CancelOrderRequest) Marshal() ([]byte, error) { return appendVarint(nil, 1, m.OrderId), nil }

func (m *CancelOrderRequest) Unmarshal(b []byte) error {
	*m = CancelOrderRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}
		v, n, err := consumeVarint(typ, b)
		m.OrderId = v
		return n, err
	})
}

type ExecuteOrderRequest struct {
	OrderId uint64
	Qty     int64
}

func (m *ExecuteOrderRequest) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, m.OrderId)
	return appendVarint(b, 2, uint64(m.Qty)), nil
}

func (m *ExecuteOrderRequest) Unmarshal(b []byte) error {
	*m = ExecuteOrderRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 && num != 2 {
			return -1, nil
		}
		v, n, err := consumeVarint(typ, b)
		if num == 1 {
			m.OrderId = v
		} else {
			m.Qty = int64(v)
		}
		return n, err
	})
}

// CommandResponse answers every command. Seq is the journal seq, or 0
// when an unknown id was ignored.
type CommandResponse struct {
	Seq uint64
}

func (m *CommandResponse) Marshal() ([]byte, error) { return appendVarint(nil, 1, m.Seq), nil }

func (m *CommandResponse) Unmarshal(b []byte) error {
	*m = CommandResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}
		v, n, err := consumeVarint(typ, b)
		m.Seq = v
		return n, err
	})
}

// -------------------- Queries --------------------

type Level struct {
	Price  int64
	Qty    int64
	Orders int32
}

func (m *Level) appendTo(b []byte) []byte {
	b = appendSint(b, 1, m.Price)
	b = appendVarint(b, 2, uint64(m.Qty))
	return appendVarint(b, 3, uint64(m.Orders))
}

func (m *Level) Marshal() ([]byte, error) { return m.appendTo(nil), nil }

func (m *Level) Unmarshal(b []byte) error {
	*m = Level{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num < 1 || num > 3 {
			return -1, nil
		}
		v, n, err := consumeVarint(typ, b)
		switch num {
		case 1:
			m.Price = protowire.DecodeZigZag(v)
		case 2:
			m.Qty = int64(v)
		case 3:
			m.Orders = int32(v)
		}
		return n, err
	})
}

type TopOfBookRequest struct{}

func (m *TopOfBookRequest) Marshal() ([]byte, error) { return nil, nil }

func (m *TopOfBookRequest) Unmarshal(b []byte) error {
	return walkFields(b, func(protowire.Number, protowire.Type, []byte) (int, error) { return -1, nil })
}

// TopOfBookResponse leaves Bid or Ask nil when that side is empty.
type TopOfBookResponse struct {
	Seq uint64
	Bid *Level
	Ask *Level
}

func (m *TopOfBookResponse) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, m.Seq)
	if m.Bid != nil {
		b = appendMessage(b, 2, m.Bid)
	}
	if m.Ask != nil {
		b = appendMessage(b, 3, m.Ask)
	}
	return b, nil
}

func (m *TopOfBookResponse) Unmarshal(b []byte) error {
	*m = TopOfBookResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Seq = v
			return n, err
		case 2, 3:
			raw, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			lvl := &Level{}
			if err := lvl.Unmarshal(raw); err != nil {
				return 0, err
			}
			if num == 2 {
				m.Bid = lvl
			} else {
				m.Ask = lvl
			}
			return n, nil
		}
		return -1, nil
	})
}

// DepthRequest asks for up to Levels levels of one side. Levels <= 0
// returns the whole side.
type DepthRequest struct {
	Side   Side
	Levels int32
}

func (m *DepthRequest) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Side))
	return appendVarint(b, 2, uint64(m.Levels)), nil
}

func (m *DepthRequest) Unmarshal(b []byte) error {
	*m = DepthRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 && num != 2 {
			return -1, nil
		}
		v, n, err := consumeVarint(typ, b)
		if num == 1 {
			m.Side = Side(v)
		} else {
			m.Levels = int32(v)
		}
		return n, err
	})
}

type DepthResponse struct {
	Side   Side
	Levels []*Level
}

func (m *DepthResponse) Marshal() ([]byte, error) {
	b := appendVarint(nil, 1, uint64(m.Side))
	for _, lvl := range m.Levels {
		b = appendMessage(b, 2, lvl)
	}
	return b, nil
}

func (m *DepthResponse) Unmarshal(b []byte) error {
	*m = DepthResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.Side = Side(v)
			return n, err
		case 2:
			raw, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			lvl := &Level{}
			if err := lvl.Unmarshal(raw); err != nil {
				return 0, err
			}
			m.Levels = append(m.Levels, lvl)
			return n, nil
		}
		return -1, nil
	})
}
