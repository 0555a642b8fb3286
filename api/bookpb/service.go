package bookpb

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "lob.v1.OrderBook"

// OrderBookServer is implemented by the gRPC adapter of the service.
type OrderBookServer interface {
	AddOrder(context.Context, *AddOrderRequest) (*CommandResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CommandResponse, error)
	ExecuteOrder(context.Context, *ExecuteOrderRequest) (*CommandResponse, error)
	GetTopOfBook(context.Context, *TopOfBookRequest) (*TopOfBookResponse, error)
	GetDepth(context.Context, *DepthRequest) (*DepthResponse, error)
}

func RegisterOrderBookServer(s grpc.ServiceRegistrar, srv OrderBookServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a method handler for a request type Req.
func unary[Req any, PReq interface {
	*Req
	Message
}, Resp any](
	name string,
	call func(OrderBookServer, context.Context, PReq) (Resp, error),
) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderBookServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrderBookServer), ctx, req.(PReq))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderBookServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddOrder", OrderBookServer.AddOrder),
		unary("CancelOrder", OrderBookServer.CancelOrder),
		unary("ExecuteOrder", OrderBookServer.ExecuteOrder),
		unary("GetTopOfBook", OrderBookServer.GetTopOfBook),
		unary("GetDepth", OrderBookServer.GetDepth),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lob/v1/book.proto",
}

// -------------------- Client --------------------

type OrderBookClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderBookClient wraps cc. Every call selects the lobwire codec.
func NewOrderBookClient(cc grpc.ClientConnInterface) *OrderBookClient {
	return &OrderBookClient{cc: cc}
}

func (c *OrderBookClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *OrderBookClient) AddOrder(ctx context.Context, in *AddOrderRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.invoke(ctx, "AddOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderBookClient) CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.invoke(ctx, "CancelOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderBookClient) ExecuteOrder(ctx context.Context, in *ExecuteOrderRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.invoke(ctx, "ExecuteOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderBookClient) GetTopOfBook(ctx context.Context, in *TopOfBookRequest, opts ...grpc.CallOption) (*TopOfBookResponse, error) {
	out := new(TopOfBookResponse)
	if err := c.invoke(ctx, "GetTopOfBook", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderBookClient) GetDepth(ctx context.Context, in *DepthRequest, opts ...grpc.CallOption) (*DepthResponse, error) {
	out := new(DepthResponse)
	if err := c.invoke(ctx, "GetDepth", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
