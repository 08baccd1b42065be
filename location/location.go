package location

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

/*
A service location is a URI naming the transport and endpoint a mohair server
binds to, for example grpc://0.0.0.0:9999 or grpc+unix:///tmp/mohair.sock. The
grpc and grpc+tcp schemes are plaintext TCP; grpc+tls is TCP with TLS.
*/

////////////////////////////////////////////////////////////////////////////////

// Scheme is a recognized location scheme.
type Scheme string

const (
	SchemeGRPC    Scheme = "grpc"
	SchemeGRPCTCP Scheme = "grpc+tcp"
	SchemeGRPCTLS Scheme = "grpc+tls"
	SchemeUnix    Scheme = "grpc+unix"
)

// Location is a parsed service location.
type Location struct {
	Scheme Scheme
	Host   string
	Port   int
	Path   string
}

// Parse parses a service location URI.
func Parse(s string) (Location, error) {
	if strings.TrimSpace(s) == "" {
		return Location{}, newInvalidLocationError(s, "empty location")
	}
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, newInvalidLocationError(s, "%v", err)
	}
	scheme := Scheme(strings.ToLower(u.Scheme))
	switch scheme {
	case SchemeGRPC, SchemeGRPCTCP, SchemeGRPCTLS:
		return parseTCP(s, scheme, u)
	case SchemeUnix:
		path := u.Path
		if u.Host != "" {
			return Location{}, newInvalidLocationError(s, "unix locations take no host")
		}
		if path == "" {
			return Location{}, newInvalidLocationError(s, "missing socket path")
		}
		return Location{Scheme: scheme, Path: path}, nil
	case "":
		return Location{}, newInvalidLocationError(s, "missing scheme")
	default:
		return Location{}, newInvalidLocationError(s, "unsupported scheme %s", u.Scheme)
	}
}

func parseTCP(s string, scheme Scheme, u *url.URL) (Location, error) {
	if u.Opaque != "" || u.Host == "" {
		return Location{}, newInvalidLocationError(s, "missing host and port")
	}
	if u.Path != "" && u.Path != "/" {
		return Location{}, newInvalidLocationError(s, "unexpected path %s", u.Path)
	}
	host, portstr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return Location{}, newInvalidLocationError(s, "%v", err)
	}
	port, err := strconv.Atoi(portstr)
	if err != nil || port < 0 || port > 65535 {
		return Location{}, newInvalidLocationError(s, "invalid port %q", portstr)
	}
	return Location{Scheme: scheme, Host: host, Port: port}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Location {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// Network returns the network name for net.Listen.
func (l Location) Network() string {
	if l.Scheme == SchemeUnix {
		return "unix"
	}
	return "tcp"
}

// Address returns the listen address.
func (l Location) Address() string {
	if l.Scheme == SchemeUnix {
		return l.Path
	}
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// TLS reports whether the location requires transport security.
func (l Location) TLS() bool {
	return l.Scheme == SchemeGRPCTLS
}

// DialTarget returns a target suitable for a gRPC client. Wildcard listen
// hosts are rewritten to localhost.
func (l Location) DialTarget() string {
	if l.Scheme == SchemeUnix {
		return "unix://" + l.Path
	}
	host := l.Host
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(l.Port))
}

// WithPort returns a copy of l bound to port. Used to report the actual port
// after listening on port 0.
func (l Location) WithPort(port int) Location {
	l.Port = port
	return l
}

func (l Location) String() string {
	if l.Scheme == SchemeUnix {
		return string(l.Scheme) + "://" + l.Path
	}
	return string(l.Scheme) + "://" + l.Address()
}
