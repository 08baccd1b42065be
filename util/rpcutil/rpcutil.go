package rpcutil

import (
	"context"
	"fmt"

	"github.com/wkalt/mohair/util/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

/*
rpcutil contains helpers for gRPC error responses. Any error returned from a
handler should go through one of these, to ensure we are logging and
responding to the client in a consistent way.
*/

////////////////////////////////////////////////////////////////////////////////

// NotFound logs the error and returns a NotFound status.
func NotFound(ctx context.Context, msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	log.Debugw(ctx, "Not found", "msg", err)
	return status.Error(codes.NotFound, err.Error())
}

// BadRequest logs the error and returns an InvalidArgument status.
func BadRequest(ctx context.Context, msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	log.Infow(ctx, "Bad request", "msg", err)
	return status.Error(codes.InvalidArgument, err.Error())
}

// DataLoss logs the error and returns a DataLoss status.
func DataLoss(ctx context.Context, msg string, args ...any) error {
	err := fmt.Errorf(msg, args...)
	log.Errorw(ctx, "Data loss", "msg", err)
	return status.Error(codes.DataLoss, err.Error())
}

// InternalServerError logs the error and returns an Internal status with a
// generic message.
func InternalServerError(ctx context.Context, msg string, args ...any) error {
	log.Errorw(ctx, "Internal server error", "msg", fmt.Errorf(msg, args...))
	return status.Error(codes.Internal, "internal server error")
}
