package minioutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/madmin-go"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	minio "github.com/minio/minio/cmd"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/util/testutils"
)

/*
Package minioutil runs an in-process minio server for tests of the S3 storage
provider.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	testBucket    = "mohair-test"
	testAccessKey = "minioadmin"
	testSecretKey = "minioadmin"
)

// NewServer starts a minio server on a free port backed by a temporary
// directory and returns a client and the name of an existing bucket. The
// server is stopped after the test completes.
func NewServer(t *testing.T) (*mclient.Client, string) {
	t.Helper()
	ctx := context.Background()
	port, err := testutils.GetOpenPort()
	require.NoError(t, err)
	addr := fmt.Sprintf("localhost:%d", port)
	datadir, err := os.MkdirTemp("", "mohair-minio")
	require.NoError(t, err)

	madm, err := madmin.New(addr, testAccessKey, testSecretKey, false)
	require.NoError(t, err)

	go func() {
		minio.Main([]string{"minio", "server", "--quiet", "--address", addr, datadir})
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = 20 * time.Second
	err = backoff.Retry(func() error {
		_, err := madm.ServerInfo(ctx)
		return err
	}, backoff.WithContext(bo, ctx))
	require.NoError(t, err, "minio server did not start")

	mc, err := mclient.New(addr, &mclient.Options{
		Creds:  credentials.NewStaticV4(testAccessKey, testSecretKey, ""),
		Secure: false,
	})
	require.NoError(t, err)
	require.NoError(t, mc.MakeBucket(ctx, testBucket, mclient.MakeBucketOptions{}))

	// minio calls os.Exit when it stops, so the stop request is delayed until
	// the test binary is likely done with it.
	t.Cleanup(func() {
		_ = os.RemoveAll(datadir)
		go func() {
			time.Sleep(5 * time.Second)
			_ = madm.ServiceStop(ctx)
		}()
	})
	return mc, testBucket
}
