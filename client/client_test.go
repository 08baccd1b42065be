package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/client"
	"github.com/wkalt/mohair/location"
	"github.com/wkalt/mohair/planmgr"
	"github.com/wkalt/mohair/service"
	"github.com/wkalt/mohair/util/testutils"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDial(t *testing.T) {
	cases := []struct {
		assertion string
		location  string
		ok        bool
	}{
		{"tcp", "grpc://localhost:9999", true},
		{"wildcard", "grpc://0.0.0.0:9999", true},
		{"tls", "grpc+tls://example.com:443", true},
		{"unix", "grpc+unix:///tmp/mohair.sock", true},
		{"unsupported", "http://localhost:9999", false},
		{"empty", "", false},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			cl, err := client.Dial(c.location)
			if !c.ok {
				require.ErrorIs(t, err, location.InvalidLocationError{})
				return
			}
			require.NoError(t, err)
			require.Equal(t, location.MustParse(c.location), cl.Location())
			require.NoError(t, cl.Close())
		})
	}
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	svc := service.StartTestService(t)
	c, err := client.Dial(svc.BoundLocation().String())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.WaitForReady(ctx, 5*time.Second))

	msg := planmgr.ReadPlan("db", "t")
	info, err := c.Submit(ctx, "daily", msg)
	require.NoError(t, err)
	require.Equal(t, "daily", info.Name)

	translated, err := c.Translate(ctx, msg)
	require.NoError(t, err)
	require.Equal(t, info.Key, translated.Key)
	require.Equal(t, info.Root, translated.Root)

	got, err := c.Get(ctx, info.Key)
	require.NoError(t, err)
	require.JSONEq(t, string(msg), string(got.Message))

	plans, err := c.List(ctx, "dai*", time.Time{})
	require.NoError(t, err)
	require.Len(t, plans, 1)

	require.NoError(t, c.Delete(ctx, info.Key))
	_, err = c.Get(ctx, info.Key)
	require.Equal(t, codes.NotFound, status.Code(err))

	plans, err = c.List(ctx, "", time.Time{})
	require.NoError(t, err)
	require.Empty(t, plans)
}

func TestWaitForReady(t *testing.T) {
	port, err := testutils.GetOpenPort()
	require.NoError(t, err)
	loc := location.MustParse("grpc://127.0.0.1:0").WithPort(port)
	c, err := client.Dial(loc.String())
	require.NoError(t, err)
	defer c.Close()
	start := time.Now()
	require.Error(t, c.WaitForReady(context.Background(), 300*time.Millisecond))
	require.Less(t, time.Since(start), 10*time.Second)
}
