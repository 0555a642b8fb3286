package grpcserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"lob/api/bookpb"
	"lob/infra/logger"
)

const requestIDHeader = "x-request-id"

// RequestLogger tags every call with a request id, taken from the
// incoming metadata or freshly generated, echoes it in the response
// header and logs the outcome.
func RequestLogger(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = logger.WithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))

		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []logger.Field{
			logger.NewField("method", info.FullMethod),
			logger.NewField("code", status.Code(err).String()),
			logger.NewField("duration", time.Since(start).String()),
		}
		if err != nil {
			log.WarnContext(ctx, "grpc call failed", append(fields, logger.NewField("error", err.Error()))...)
		} else {
			log.InfoContext(ctx, "grpc call", fields...)
		}
		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(requestIDHeader); len(v) > 0 {
		return v[0]
	}
	return ""
}

// NewGRPCServer builds a grpc.Server with the book service registered.
func NewGRPCServer(srv *Server, log *logger.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(RequestLogger(log)))
	g := grpc.NewServer(opts...)
	bookpb.RegisterOrderBookServer(g, srv)
	return g
}
