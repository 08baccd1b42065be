package location_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/location"
)

func TestParse(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
		network   string
		address   string
		target    string
		tls       bool
	}{
		{
			"default location",
			"grpc://0.0.0.0:9999",
			"tcp",
			"0.0.0.0:9999",
			"localhost:9999",
			false,
		},
		{
			"grpc+tcp",
			"grpc+tcp://db.internal:1234",
			"tcp",
			"db.internal:1234",
			"db.internal:1234",
			false,
		},
		{
			"tls",
			"grpc+tls://example.com:443",
			"tcp",
			"example.com:443",
			"example.com:443",
			true,
		},
		{
			"empty host listens on all interfaces",
			"grpc://:9999",
			"tcp",
			":9999",
			"localhost:9999",
			false,
		},
		{
			"ipv6 wildcard",
			"grpc://[::]:9999",
			"tcp",
			"[::]:9999",
			"localhost:9999",
			false,
		},
		{
			"port zero",
			"grpc://127.0.0.1:0",
			"tcp",
			"127.0.0.1:0",
			"127.0.0.1:0",
			false,
		},
		{
			"scheme is case insensitive",
			"GRPC://localhost:9999",
			"tcp",
			"localhost:9999",
			"localhost:9999",
			false,
		},
		{
			"unix socket",
			"grpc+unix:///tmp/mohair.sock",
			"unix",
			"/tmp/mohair.sock",
			"unix:///tmp/mohair.sock",
			false,
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			loc, err := location.Parse(c.input)
			require.NoError(t, err)
			require.Equal(t, c.network, loc.Network())
			require.Equal(t, c.address, loc.Address())
			require.Equal(t, c.target, loc.DialTarget())
			require.Equal(t, c.tls, loc.TLS())
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		assertion string
		input     string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"missing scheme", "0.0.0.0:9999"},
		{"unsupported scheme", "http://0.0.0.0:9999"},
		{"missing port", "grpc://0.0.0.0"},
		{"non-numeric port", "grpc://0.0.0.0:abc"},
		{"port out of range", "grpc://0.0.0.0:70000"},
		{"missing host and port", "grpc://"},
		{"unexpected path", "grpc://localhost:9999/db"},
		{"unix without path", "grpc+unix://"},
		{"unix with host", "grpc+unix://host/tmp/sock"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := location.Parse(c.input)
			require.ErrorIs(t, err, location.InvalidLocationError{})
		})
	}
}

func TestString(t *testing.T) {
	for _, s := range []string{
		"grpc://0.0.0.0:9999",
		"grpc+tls://example.com:443",
		"grpc+unix:///tmp/mohair.sock",
	} {
		require.Equal(t, s, location.MustParse(s).String())
	}
	require.Equal(t, "grpc://127.0.0.1:4321", location.MustParse("grpc://127.0.0.1:0").WithPort(4321).String())
}

func TestMustParsePanics(t *testing.T) {
	require.Panics(t, func() { location.MustParse("nope") })
}
