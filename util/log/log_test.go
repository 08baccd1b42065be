package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/util/log"
)

func capture(t *testing.T, level slog.Level, format log.Format, f func()) string {
	t.Helper()
	previous := slog.Default()
	defer slog.SetDefault(previous)
	buf := &bytes.Buffer{}
	require.NoError(t, log.Configure(buf, level, format))
	f()
	return buf.String()
}

func TestAddTags(t *testing.T) {
	ctx := context.Background()
	t.Run("infof", func(t *testing.T) {
		ctx := log.AddTags(ctx, "planet", "pluto")
		output := capture(t, slog.LevelInfo, log.FormatText, func() {
			log.Infof(ctx, "hello %s", "world")
		})
		require.Contains(t, output, `msg="hello world" planet=pluto`)
	})
	t.Run("infow", func(t *testing.T) {
		ctx := log.AddTags(ctx, "planet", "pluto")
		output := capture(t, slog.LevelInfo, log.FormatText, func() {
			log.Infow(ctx, "hello", "moon", "charon")
		})
		require.Contains(t, output, "msg=hello moon=charon planet=pluto")
	})
	t.Run("tags accumulate without aliasing", func(t *testing.T) {
		base := log.AddTags(ctx, "a", 1)
		left := log.AddTags(base, "b", 2)
		right := log.AddTags(base, "c", 3)
		output := capture(t, slog.LevelInfo, log.FormatText, func() {
			log.Infow(left, "left")
			log.Infow(right, "right")
		})
		require.Contains(t, output, "msg=left a=1 b=2")
		require.Contains(t, output, "msg=right a=1 c=3")
		require.NotContains(t, output, "b=2 c=3")
	})
	t.Run("odd number of tags panics", func(t *testing.T) {
		require.Panics(t, func() { log.AddTags(ctx, "a") })
	})
}

func TestLevels(t *testing.T) {
	ctx := context.Background()
	output := capture(t, slog.LevelWarn, log.FormatText, func() {
		log.Debugf(ctx, "debug")
		log.Infof(ctx, "info")
		log.Warnf(ctx, "warn")
		log.Errorw(ctx, "error")
	})
	require.NotContains(t, output, "msg=debug")
	require.NotContains(t, output, "msg=info")
	require.Contains(t, output, "msg=warn")
	require.Contains(t, output, "msg=error")
}

func TestJSONFormat(t *testing.T) {
	ctx := log.AddTags(context.Background(), "request_id", "abc")
	output := capture(t, slog.LevelInfo, log.FormatJSON, func() {
		log.Infow(ctx, "hello", "k", "v")
	})
	require.Contains(t, output, `"msg":"hello"`)
	require.Contains(t, output, `"request_id":"abc"`)
}

func TestConfigureRejectsUnknownFormat(t *testing.T) {
	require.Error(t, log.Configure(&bytes.Buffer{}, slog.LevelInfo, "xml"))
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
		expected  slog.Level
		err       bool
	}{
		{"debug", "debug", slog.LevelDebug, false},
		{"empty defaults to info", "", slog.LevelInfo, false},
		{"case insensitive", "WARN", slog.LevelWarn, false},
		{"warning alias", "warning", slog.LevelWarn, false},
		{"error", "error", slog.LevelError, false},
		{"invalid", "verbose", 0, true},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			level, err := log.ParseLevel(c.input)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, level)
		})
	}
}
