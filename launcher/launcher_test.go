package launcher_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/launcher"
)

type recorder struct {
	calls    []string
	location string
	dbPath   string
	newErr   error
	serveErr error
}

type recordingService struct {
	r *recorder
}

func (s recordingService) Serve(context.Context) error {
	s.r.calls = append(s.r.calls, "serve")
	return s.r.serveErr
}

func (r *recorder) factory(serviceLocation string, dbPath string) (launcher.Service, error) {
	r.calls = append(r.calls, "new")
	r.location = serviceLocation
	r.dbPath = dbPath
	if r.newErr != nil {
		return nil, r.newErr
	}
	return recordingService{r: r}, nil
}

func TestDefaultConfig(t *testing.T) {
	cfg := launcher.DefaultConfig()
	require.Equal(t, "grpc://0.0.0.0:9999", cfg.ServiceLocation)
	require.Equal(t, filepath.Join("resources", "data"), cfg.DBPath)
}

func TestLoadConfig(t *testing.T) {
	cases := []struct {
		assertion string
		env       map[string]string
		expected  launcher.Config
	}{
		{
			"defaults",
			map[string]string{},
			launcher.DefaultConfig(),
		},
		{
			"location override",
			map[string]string{"MOHAIR_SERVICE_LOCATION": "grpc://127.0.0.1:7000"},
			launcher.Config{ServiceLocation: "grpc://127.0.0.1:7000", DBPath: launcher.DefaultDBPath},
		},
		{
			"both overridden",
			map[string]string{
				"MOHAIR_SERVICE_LOCATION": "grpc+unix:///tmp/m.sock",
				"MOHAIR_DB_FPATH":         "/var/lib/mohair",
			},
			launcher.Config{ServiceLocation: "grpc+unix:///tmp/m.sock", DBPath: "/var/lib/mohair"},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			t.Setenv("MOHAIR_SERVICE_LOCATION", "")
			t.Setenv("MOHAIR_DB_FPATH", "")
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			cfg, err := launcher.LoadConfig()
			require.NoError(t, err)
			require.Equal(t, c.expected, cfg)
		})
	}
}

func TestLaunch(t *testing.T) {
	ctx := context.Background()
	t.Run("constructs with configured values then serves", func(t *testing.T) {
		r := &recorder{}
		require.NoError(t, launcher.Launch(ctx, launcher.DefaultConfig(), r.factory))
		require.Equal(t, []string{"new", "serve"}, r.calls)
		require.Equal(t, "grpc://0.0.0.0:9999", r.location)
		require.Equal(t, filepath.Join("resources", "data"), r.dbPath)
	})
	t.Run("constructor failure is returned and serve is not called", func(t *testing.T) {
		boom := errors.New("address in use")
		r := &recorder{newErr: boom}
		err := launcher.Launch(ctx, launcher.DefaultConfig(), r.factory)
		require.ErrorIs(t, err, boom)
		require.Equal(t, []string{"new"}, r.calls)
	})
	t.Run("serve failure is returned unchanged", func(t *testing.T) {
		boom := errors.New("serve failed")
		r := &recorder{serveErr: boom}
		err := launcher.Launch(ctx, launcher.DefaultConfig(), r.factory)
		require.Equal(t, boom, err)
		require.Equal(t, []string{"new", "serve"}, r.calls)
	})
	t.Run("no restart after serve returns", func(t *testing.T) {
		r := &recorder{}
		require.NoError(t, launcher.Launch(ctx, launcher.DefaultConfig(), r.factory))
		require.Len(t, r.calls, 2)
	})
	t.Run("nil factory", func(t *testing.T) {
		require.Error(t, launcher.Launch(ctx, launcher.DefaultConfig(), nil))
	})
	t.Run("nil service", func(t *testing.T) {
		factory := func(string, string) (launcher.Service, error) { return nil, nil }
		require.Error(t, launcher.Launch(ctx, launcher.DefaultConfig(), factory))
	})
}
