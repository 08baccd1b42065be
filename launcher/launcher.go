package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/wkalt/mohair/util/log"
)

/*
launcher wires configuration into a database service and runs it. It
constructs the service exactly once and serves it exactly once. Failures from
either step are returned to the caller, which is expected to exit non-zero;
there is no retry and no restart.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	// EnvPrefix prefixes every environment variable mohair reads.
	EnvPrefix = "MOHAIR"

	// DefaultServiceLocation is the location served when none is configured.
	DefaultServiceLocation = "grpc://0.0.0.0:9999"
)

// DefaultDBPath is the data directory used when none is configured.
var DefaultDBPath = filepath.Join("resources", "data")

// Config holds the launcher's inputs.
type Config struct {
	// ServiceLocation is the URI the service binds to.
	ServiceLocation string `envconfig:"SERVICE_LOCATION"`
	// DBPath is the service's data directory.
	DBPath string `envconfig:"DB_FPATH"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ServiceLocation: DefaultServiceLocation,
		DBPath:          DefaultDBPath,
	}
}

// LoadConfig returns the built-in configuration overridden by
// MOHAIR_SERVICE_LOCATION and MOHAIR_DB_FPATH where they are set and
// non-empty.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	defaults := DefaultConfig()
	if cfg.ServiceLocation == "" {
		cfg.ServiceLocation = defaults.ServiceLocation
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaults.DBPath
	}
	return cfg, nil
}

// Service is a constructed service that blocks in Serve until it stops.
type Service interface {
	Serve(ctx context.Context) error
}

// Factory constructs a service for a location and data path.
type Factory func(serviceLocation string, dbPath string) (Service, error)

// Launch constructs a service from cfg and serves it, returning the serve
// result unchanged.
func Launch(ctx context.Context, cfg Config, factory Factory) error {
	if factory == nil {
		return errors.New("no service factory")
	}
	ctx = log.AddTags(ctx, "location", cfg.ServiceLocation, "data", cfg.DBPath)
	log.Infow(ctx, "Launching database service")
	svc, err := factory(cfg.ServiceLocation, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to construct database service: %w", err)
	}
	if svc == nil {
		return errors.New("service factory returned no service")
	}
	return svc.Serve(ctx)
}
