package mw

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/wkalt/mohair/util/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*
mw contains gRPC server interceptors. They are chained in the order request
ID, logging, recovery, so that every log line for a request, including the
one reporting a recovered panic, carries the request ID.
*/

////////////////////////////////////////////////////////////////////////////////

// RequestIDKey is the metadata key used to propagate request IDs.
const RequestIDKey = "x-request-id"

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.New().String()
}

// WithRequestID tags the request context with a request ID, reusing one
// supplied by the client, and echoes it in the response header.
func WithRequestID(
	ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (any, error) {
	id := requestID(ctx)
	ctx = log.AddTags(ctx, "request_id", id, "method", info.FullMethod)
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))
	return handler(ctx, req)
}

// WithLogging logs the completion of each request with its status code and
// duration.
func WithLogging(
	ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	elapsed := time.Since(start)
	switch code {
	case codes.OK:
		log.Debugw(ctx, "request complete", "code", code.String(), "elapsed", elapsed)
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		log.Errorw(ctx, "request failed", "code", code.String(), "elapsed", elapsed, "error", err)
	default:
		log.Infow(ctx, "request rejected", "code", code.String(), "elapsed", elapsed, "error", err)
	}
	return resp, err
}

// WithRecovery converts handler panics into Internal errors.
func WithRecovery(
	ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw(ctx, "panic in handler", "panic", r, "stack", string(debug.Stack()))
			resp = nil
			err = status.Errorf(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

// StreamWithRequestID is the streaming counterpart of WithRequestID.
func StreamWithRequestID(
	srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler,
) error {
	ctx := ss.Context()
	id := requestID(ctx)
	ctx = log.AddTags(ctx, "request_id", id, "method", info.FullMethod)
	_ = ss.SetHeader(metadata.Pairs(RequestIDKey, id))
	return handler(srv, &taggedStream{ServerStream: ss, ctx: ctx})
}

type taggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *taggedStream) Context() context.Context {
	return s.ctx
}

// ServerOptions returns the interceptor chain for a mohair gRPC server.
func ServerOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(WithRequestID, WithLogging, WithRecovery),
		grpc.ChainStreamInterceptor(StreamWithRequestID),
	}
}
