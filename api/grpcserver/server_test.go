package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"lob/api/bookpb"
	"lob/domain/orderbook"
	"lob/infra/logger"
	"lob/infra/sequence"
	"lob/service"
)

func startServer(t *testing.T) (*bookpb.OrderBookClient, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	log := logger.New(zap.New(core))

	svc := service.NewOrderService(orderbook.NewOrderBook(), sequence.New(0), service.Deps{Logger: log})
	g := NewGRPCServer(NewServer(svc), log)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return bookpb.NewOrderBookClient(conn), logs
}

func TestCommandsAndQueries(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	resp, err := client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 1, Side: bookpb.SideBid, Qty: 10, Price: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Seq)
	_, err = client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 2, Side: bookpb.SideBid, Qty: 5, Price: 99})
	require.NoError(t, err)
	_, err = client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 3, Side: bookpb.SideAsk, Qty: 2, Price: 103})
	require.NoError(t, err)

	resp, err = client.ExecuteOrder(ctx, &bookpb.ExecuteOrderRequest{OrderId: 1, Qty: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 4, resp.Seq)

	top, err := client.GetTopOfBook(ctx, &bookpb.TopOfBookRequest{})
	require.NoError(t, err)
	assert.Equal(t, &bookpb.TopOfBookResponse{
		Seq: 4,
		Bid: &bookpb.Level{Price: 100, Qty: 6, Orders: 1},
		Ask: &bookpb.Level{Price: 103, Qty: 2, Orders: 1},
	}, top)

	_, err = client.CancelOrder(ctx, &bookpb.CancelOrderRequest{OrderId: 3})
	require.NoError(t, err)
	top, err = client.GetTopOfBook(ctx, &bookpb.TopOfBookRequest{})
	require.NoError(t, err)
	assert.Nil(t, top.Ask)

	depth, err := client.GetDepth(ctx, &bookpb.DepthRequest{Side: bookpb.SideBid})
	require.NoError(t, err)
	assert.Equal(t, []*bookpb.Level{
		{Price: 100, Qty: 6, Orders: 1},
		{Price: 99, Qty: 5, Orders: 1},
	}, depth.Levels)

	depth, err = client.GetDepth(ctx, &bookpb.DepthRequest{Side: bookpb.SideBid, Levels: 1})
	require.NoError(t, err)
	assert.Len(t, depth.Levels, 1)
}

func TestErrorCodes(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	_, err := client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 1, Side: bookpb.SideAsk, Qty: 1, Price: 10})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"unknown cancel", func() error {
			_, err := client.CancelOrder(ctx, &bookpb.CancelOrderRequest{OrderId: 9})
			return err
		}, codes.NotFound},
		{"duplicate add", func() error {
			_, err := client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 1, Side: bookpb.SideAsk, Qty: 1, Price: 10})
			return err
		}, codes.AlreadyExists},
		{"zero quantity", func() error {
			_, err := client.AddOrder(ctx, &bookpb.AddOrderRequest{OrderId: 2, Side: bookpb.SideAsk, Price: 10})
			return err
		}, codes.InvalidArgument},
		{"over execution", func() error {
			_, err := client.ExecuteOrder(ctx, &bookpb.ExecuteOrderRequest{OrderId: 1, Qty: 2})
			return err
		}, codes.InvalidArgument},
		{"bad side", func() error {
			_, err := client.GetDepth(ctx, &bookpb.DepthRequest{Side: 7})
			return err
		}, codes.InvalidArgument},
		{"zero id", func() error {
			_, err := client.AddOrder(ctx, &bookpb.AddOrderRequest{Side: bookpb.SideBid, Qty: 1})
			return err
		}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(tt.call()))
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	client, logs := startServer(t)

	ctx := metadata.AppendToOutgoingContext(context.Background(), requestIDHeader, "req-42")
	var header metadata.MD
	_, err := client.GetTopOfBook(ctx, &bookpb.TopOfBookRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get(requestIDHeader))

	entries := logs.FilterMessage("grpc call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/lob.v1.OrderBook/GetTopOfBook", entries[0].ContextMap()["method"])

	_, err = client.GetTopOfBook(context.Background(), &bookpb.TopOfBookRequest{}, grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, header.Get(requestIDHeader), 1)
	assert.Len(t, header.Get(requestIDHeader)[0], 36, "generated ids are uuids")
}

func TestToStatusInternal(t *testing.T) {
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
