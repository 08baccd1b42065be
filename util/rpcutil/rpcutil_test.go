package rpcutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/util/rpcutil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		assertion string
		err       error
		code      codes.Code
		message   string
	}{
		{"not found", rpcutil.NotFound(ctx, "plan %s not found", "x"), codes.NotFound, "plan x not found"},
		{"bad request", rpcutil.BadRequest(ctx, "bad %d", 1), codes.InvalidArgument, "bad 1"},
		{"data loss", rpcutil.DataLoss(ctx, "lost"), codes.DataLoss, "lost"},
		{"internal hides detail", rpcutil.InternalServerError(ctx, "secret %s", "detail"), codes.Internal, "internal server error"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			st, ok := status.FromError(c.err)
			require.True(t, ok)
			require.Equal(t, c.code, st.Code())
			require.Equal(t, c.message, st.Message())
		})
	}
}
