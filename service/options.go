package service

import (
	"time"

	"github.com/wkalt/mohair/storage"
)

// Option is a functional option for the database service.
type Option func(*Options)

// Options contains options for the database service.
type Options struct {
	CacheSize       int64
	StorageProvider storage.Provider
	ShutdownTimeout time.Duration
	PprofAddr       string
	TLSCertFile     string
	TLSKeyFile      string
	VerifyOnStart   bool
	HealthInterval  time.Duration
}

// WithCacheSize sets the number of translated plans held in memory.
func WithCacheSize(entries int64) Option {
	return func(opts *Options) {
		opts.CacheSize = entries
	}
}

// WithStorageProvider sets the store for plan messages. By default messages
// are stored in an "objects" directory under the data path.
func WithStorageProvider(provider storage.Provider) Option {
	return func(opts *Options) {
		opts.StorageProvider = provider
	}
}

// WithShutdownTimeout bounds how long in-flight requests may take to drain
// before the server is stopped forcefully.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.ShutdownTimeout = timeout
	}
}

// WithPprofAddr serves net/http/pprof on addr. An empty address disables it.
func WithPprofAddr(addr string) Option {
	return func(opts *Options) {
		opts.PprofAddr = addr
	}
}

// WithTLS sets the certificate and key used for grpc+tls locations.
func WithTLS(certFile, keyFile string) Option {
	return func(opts *Options) {
		opts.TLSCertFile = certFile
		opts.TLSKeyFile = keyFile
	}
}

// WithVerifyOnStart checks every stored plan against its key before serving.
func WithVerifyOnStart(verify bool) Option {
	return func(opts *Options) {
		opts.VerifyOnStart = verify
	}
}

// WithHealthInterval sets how often the catalog is checked for the health
// service. A non-positive interval disables the check.
func WithHealthInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.HealthInterval = interval
	}
}

func readOpts(opts ...Option) *Options {
	options := Options{
		CacheSize:       1000,
		ShutdownTimeout: 10 * time.Second,
		HealthInterval:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &options
}
