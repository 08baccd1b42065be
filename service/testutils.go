package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// StartTestService serves a database service on a loopback port with a
// temporary data directory. The service is stopped, and its Serve error
// checked, when the test ends.
func StartTestService(t *testing.T, opts ...Option) *DatabaseService {
	t.Helper()
	svc, err := NewDatabaseService("grpc://127.0.0.1:0", t.TempDir(), opts...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()
	select {
	case <-svc.Ready():
	case err := <-done:
		cancel()
		require.FailNow(t, "service exited before becoming ready", "error: %v", err)
	case <-time.After(10 * time.Second):
		cancel()
		require.FailNow(t, "timed out waiting for service")
	}
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return svc
}
