package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/location"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

/*
client is a Go client for a mohair server. It wraps the planner RPCs in plain
method calls and adds health checking.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrNotServing is returned by WaitForReady when the server responds but does
// not report itself as serving.
var ErrNotServing = errors.New("server is not serving")

// Option is a functional option for Dial.
type Option func(*options)

type options struct {
	tlsConfig   *tls.Config
	dialOptions []grpc.DialOption
}

// WithTLSConfig sets the TLS configuration used for grpc+tls locations.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithDialOptions appends raw gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

// Client is a connection to a mohair server.
type Client struct {
	location location.Location
	conn     *grpc.ClientConn
	planner  *api.PlannerClient
	health   healthpb.HealthClient
}

// Dial creates a client for the server at loc. Connections are established
// lazily on the first call.
func Dial(loc string, opts ...Option) (*Client, error) {
	parsed, err := location.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse location: %w", err)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	creds := insecure.NewCredentials()
	if parsed.TLS() {
		cfg := o.tlsConfig
		if cfg == nil {
			cfg = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		creds = credentials.NewTLS(cfg)
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, o.dialOptions...)
	conn, err := grpc.NewClient(parsed.DialTarget(), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", parsed, err)
	}
	return New(parsed, conn), nil
}

// New wraps an existing connection.
func New(loc location.Location, conn *grpc.ClientConn) *Client {
	return &Client{
		location: loc,
		conn:     conn,
		planner:  api.NewPlannerClient(conn),
		health:   healthpb.NewHealthClient(conn),
	}
}

// Submit stores a plan under name and returns its catalog entry.
func (c *Client) Submit(ctx context.Context, name string, msg []byte) (api.PlanInfo, error) {
	resp, err := c.planner.SubmitPlan(ctx, &api.SubmitPlanRequest{Name: name, Plan: msg})
	if err != nil {
		return api.PlanInfo{}, fmt.Errorf("failed to submit plan: %w", err)
	}
	return resp.Plan, nil
}

// Get returns a stored plan and its original message.
func (c *Client) Get(ctx context.Context, key string) (*api.GetPlanResponse, error) {
	resp, err := c.planner.GetPlan(ctx, &api.GetPlanRequest{Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to get plan %s: %w", key, err)
	}
	return resp, nil
}

// List returns stored plans matching pattern created at or after since.
func (c *Client) List(ctx context.Context, pattern string, since time.Time) ([]api.PlanInfo, error) {
	resp, err := c.planner.ListPlans(ctx, &api.ListPlansRequest{Pattern: pattern, Since: since})
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return resp.Plans, nil
}

// Delete removes a stored plan.
func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.planner.DeletePlan(ctx, &api.DeletePlanRequest{Key: key}); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", key, err)
	}
	return nil
}

// Translate translates a plan on the server without storing it.
func (c *Client) Translate(ctx context.Context, msg []byte) (*api.TranslatePlanResponse, error) {
	resp, err := c.planner.TranslatePlan(ctx, &api.TranslatePlanRequest{Plan: msg})
	if err != nil {
		return nil, fmt.Errorf("failed to translate plan: %w", err)
	}
	return resp, nil
}

// Health returns the serving status of the planner service.
func (c *Client) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check failed: %w", err)
	}
	return resp.GetStatus(), nil
}

// WaitForReady polls the health service with exponential backoff until the
// planner reports SERVING, maxElapsed passes, or ctx is done.
func (c *Client) WaitForReady(ctx context.Context, maxElapsed time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = maxElapsed
	return backoff.Retry(func() error {
		status, err := c.Health(ctx)
		if err != nil {
			return err
		}
		if status != healthpb.HealthCheckResponse_SERVING {
			return fmt.Errorf("%w: %s", ErrNotServing, status)
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// Location returns the location the client was dialed with.
func (c *Client) Location() location.Location {
	return c.location
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
