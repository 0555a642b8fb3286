package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lob/api/bookpb"
	"lob/domain/orderbook"
	"lob/service"
)

// Server adapts OrderService to gRPC.
type Server struct {
	svc *service.OrderService
}

var _ bookpb.OrderBookServer = (*Server)(nil)

func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) AddOrder(ctx context.Context, req *bookpb.AddOrderRequest) (*bookpb.CommandResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, toStatus(err)
	}
	seq, err := s.svc.Add(ctx, req.OrderId, side, req.Qty, req.Price)
	if err != nil {
		return nil, toStatus(err)
	}
	return &bookpb.CommandResponse{Seq: seq}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *bookpb.CancelOrderRequest) (*bookpb.CommandResponse, error) {
	seq, err := s.svc.Cancel(ctx, req.OrderId)
	if err != nil {
		return nil, toStatus(err)
	}
	return &bookpb.CommandResponse{Seq: seq}, nil
}

func (s *Server) ExecuteOrder(ctx context.Context, req *bookpb.ExecuteOrderRequest) (*bookpb.CommandResponse, error) {
	seq, err := s.svc.Execute(ctx, req.OrderId, req.Qty)
	if err != nil {
		return nil, toStatus(err)
	}
	return &bookpb.CommandResponse{Seq: seq}, nil
}

// -------------------- Queries --------------------

func (s *Server) GetTopOfBook(ctx context.Context, _ *bookpb.TopOfBookRequest) (*bookpb.TopOfBookResponse, error) {
	q := s.svc.Top()
	resp := &bookpb.TopOfBookResponse{Seq: q.Seq}
	if q.HasBid {
		resp.Bid = fromLevel(q.Bid)
	}
	if q.HasAsk {
		resp.Ask = fromLevel(q.Ask)
	}
	return resp, nil
}

func (s *Server) GetDepth(ctx context.Context, req *bookpb.DepthRequest) (*bookpb.DepthResponse, error) {
	side, err := toSide(req.Side)
	if err != nil {
		return nil, toStatus(err)
	}
	levels := s.svc.Depth(side, int(req.Levels))
	resp := &bookpb.DepthResponse{
		Side:   req.Side,
		Levels: make([]*bookpb.Level, 0, len(levels)),
	}
	for _, lvl := range levels {
		resp.Levels = append(resp.Levels, fromLevel(lvl))
	}
	return resp, nil
}

// -------------------- Converters --------------------

func toSide(s bookpb.Side) (orderbook.Side, error) {
	switch s {
	case bookpb.SideBid:
		return orderbook.Bid, nil
	case bookpb.SideAsk:
		return orderbook.Ask, nil
	default:
		return 0, orderbook.ErrInvalidSide
	}
}

func fromLevel(l orderbook.LevelView) *bookpb.Level {
	return &bookpb.Level{Price: l.Price, Qty: l.TotalQty, Orders: int32(l.OrderCount)}
}

// toStatus maps book errors to gRPC codes. Anything else is Internal.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, orderbook.ErrUnknownOrder):
		code = codes.NotFound
	case errors.Is(err, orderbook.ErrDuplicateOrderID):
		code = codes.AlreadyExists
	case errors.Is(err, orderbook.ErrInvalidQuantity),
		errors.Is(err, orderbook.ErrInvalidOrderID),
		errors.Is(err, orderbook.ErrInvalidSide):
		code = codes.InvalidArgument
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
