package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/wkalt/mohair/catalog"
	"github.com/wkalt/mohair/location"
	"github.com/wkalt/mohair/planmgr"
	"github.com/wkalt/mohair/routes"
	"github.com/wkalt/mohair/storage"
	"github.com/wkalt/mohair/util"
	"github.com/wkalt/mohair/util/log"
	"github.com/wkalt/mohair/util/mw"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
)

/*
This file is the main entrypoint for mohair server startup. A DatabaseService
owns the plan catalog, plan storage and the gRPC server fronting them, for the
lifetime of a single call to Serve.
*/

////////////////////////////////////////////////////////////////////////////////

const (
	catalogFile = "catalog.db"
	objectsDir  = "objects"
)

// ErrAlreadyServed is returned when Serve is called more than once.
var ErrAlreadyServed = errors.New("service has already been served")

// DatabaseService serves the planner API for a data directory at a location.
type DatabaseService struct {
	location location.Location
	dbPath   string
	opts     *Options

	once  sync.Once
	ready chan struct{}
	mtx   sync.Mutex
	addr  net.Addr
	bound location.Location
}

// NewDatabaseService validates the service location and data path and
// returns a service ready to Serve. Nothing is opened until Serve is called.
func NewDatabaseService(serviceLocation string, dbPath string, opts ...Option) (*DatabaseService, error) {
	loc, err := location.Parse(serviceLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service location: %w", err)
	}
	if dbPath == "" {
		return nil, errors.New("data path is required")
	}
	options := readOpts(opts...)
	if options.CacheSize < 0 {
		return nil, fmt.Errorf("cache size must not be negative: %d", options.CacheSize)
	}
	if loc.TLS() && (options.TLSCertFile == "" || options.TLSKeyFile == "") {
		return nil, fmt.Errorf("location %s requires a TLS certificate and key", loc)
	}
	return &DatabaseService{
		location: loc,
		dbPath:   dbPath,
		opts:     options,
		ready:    make(chan struct{}),
	}, nil
}

// Location returns the parsed service location.
func (s *DatabaseService) Location() location.Location {
	return s.location
}

// Ready returns a channel that is closed once the service is accepting
// connections.
func (s *DatabaseService) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or nil before the service is ready.
func (s *DatabaseService) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.addr
}

// BoundLocation returns the location clients can dial once the service is
// ready. It differs from Location when listening on port 0.
func (s *DatabaseService) BoundLocation() location.Location {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.bound
}

func (s *DatabaseService) String() string {
	return fmt.Sprintf("database service(%s, %s)", s.location, s.dbPath)
}

// Serve runs the service until ctx is canceled, the process receives SIGINT
// or SIGTERM, or the server fails. A shutdown by context or signal returns
// nil.
func (s *DatabaseService) Serve(ctx context.Context) (err error) {
	served := true
	s.once.Do(func() { served = false })
	if served {
		return ErrAlreadyServed
	}

	if err := util.EnsureDirectoryExists(s.dbPath); err != nil {
		return fmt.Errorf("failed to ensure data directory exists: %w", err)
	}
	dbpath := filepath.Join(s.dbPath, catalogFile)
	log.Infof(ctx, "Opening catalog at %s", dbpath)
	cat, err := catalog.Open(ctx, dbpath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if closeErr := cat.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("failed to close catalog: %w", closeErr)).ErrorOrNil()
		}
	}()

	store := s.opts.StorageProvider
	if store == nil {
		store, err = storage.NewDirectoryStore(filepath.Join(s.dbPath, objectsDir))
		if err != nil {
			return fmt.Errorf("failed to open object store: %w", err)
		}
	}
	mgr := planmgr.NewManager(store, cat, planmgr.WithCacheSize(s.opts.CacheSize))
	if s.opts.VerifyOnStart {
		corrupt, err := mgr.Verify(ctx)
		if err != nil {
			return fmt.Errorf("failed to verify stored plans: %w", err)
		}
		for _, key := range corrupt {
			log.Warnw(ctx, "Stored plan failed verification", "key", key)
		}
	}

	srvopts := mw.ServerOptions()
	if s.location.TLS() {
		creds, err := credentials.NewServerTLSFromFile(s.opts.TLSCertFile, s.opts.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		srvopts = append(srvopts, grpc.Creds(creds))
	}
	srv := grpc.NewServer(srvopts...)
	hs := routes.MakeRoutes(srv, mgr)

	lis, err := s.listen()
	if err != nil {
		return err
	}
	s.mtx.Lock()
	s.addr = lis.Addr()
	s.bound = s.location
	if tcp, ok := lis.Addr().(*net.TCPAddr); ok {
		s.bound = s.location.WithPort(tcp.Port)
	}
	s.mtx.Unlock()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow(ctx, "Starting server",
			"location", s.BoundLocation(), "addr", lis.Addr(), "cache", s.opts.CacheSize, "storage", store)
		close(s.ready)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	var debug *http.Server
	if s.opts.PprofAddr != "" {
		debug = pprofServer(s.opts.PprofAddr)
		g.Go(func() error {
			log.Infof(ctx, "Starting pprof server on %s", s.opts.PprofAddr)
			if err := debug.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf(ctx, "failed to start pprof server: %s", err)
			}
			return nil
		})
	}

	if s.opts.HealthInterval > 0 {
		g.Go(func() error {
			watchHealth(gctx, hs, mgr, s.opts.HealthInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(ctx, srv, hs, debug)
	})
	return g.Wait()
}

func (s *DatabaseService) listen() (net.Listener, error) {
	if s.location.Network() == "unix" {
		if err := os.Remove(s.location.Address()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}
	lis, err := net.Listen(s.location.Network(), s.location.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.location, err)
	}
	return lis, nil
}

// shutdown drains the gRPC server, stopping it forcefully once the shutdown
// timeout passes or on a second interrupt.
func (s *DatabaseService) shutdown(
	ctx context.Context, srv *grpc.Server, hs *health.Server, debug *http.Server,
) error {
	log.Infof(ctx, "Allowing %s for existing connections to close", s.opts.ShutdownTimeout)
	hs.Shutdown()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT)
	defer signal.Stop(sigint)

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(s.opts.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-stopped:
		log.Infof(ctx, "Server stopped")
	case <-timer.C:
		log.Warnf(ctx, "Shutdown timeout exceeded, stopping server")
		srv.Stop()
	case <-sigint:
		log.Warnf(ctx, "Forceful shutdown on second interrupt")
		srv.Stop()
	}

	if debug == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := debug.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop pprof server: %w", err)
	}
	return nil
}

func pprofServer(addr string) *http.Server {
	r := mux.NewRouter()
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
