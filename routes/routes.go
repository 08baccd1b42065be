package routes

import (
	"bytes"
	"context"
	"errors"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/catalog"
	"github.com/wkalt/mohair/plan"
	"github.com/wkalt/mohair/planmgr"
	"github.com/wkalt/mohair/util/rpcutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

/*
routes implements the planner gRPC service on top of the plan manager and
registers it, together with the standard health and reflection services, on a
gRPC server.
*/

////////////////////////////////////////////////////////////////////////////////

type plannerServer struct {
	mgr *planmgr.Manager
}

// NewPlannerServer returns a planner service backed by mgr.
func NewPlannerServer(mgr *planmgr.Manager) api.PlannerServer {
	return &plannerServer{mgr: mgr}
}

// MakeRoutes registers the planner, health and reflection services on srv and
// returns the health server so the caller can flip serving status during
// shutdown.
func MakeRoutes(srv *grpc.Server, mgr *planmgr.Manager) *health.Server {
	api.RegisterPlannerServer(srv, NewPlannerServer(mgr))
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return hs
}

// handleError maps manager errors onto gRPC statuses.
func handleError(ctx context.Context, err error, action string) error {
	switch {
	case errors.Is(err, plan.ErrInvalidPlan):
		return rpcutil.BadRequest(ctx, "%s", err)
	case errors.Is(err, planmgr.InvalidKeyError{}), errors.Is(err, planmgr.InvalidPatternError{}):
		return rpcutil.BadRequest(ctx, "%s", err)
	case errors.Is(err, catalog.PlanNotFoundError{}):
		return rpcutil.NotFound(ctx, "%s", err)
	case errors.Is(err, planmgr.CorruptObjectError{}):
		return rpcutil.DataLoss(ctx, "%s", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return rpcutil.InternalServerError(ctx, "error %s: %s", action, err)
	}
}

func planInfo(entry catalog.Entry) api.PlanInfo {
	sources := entry.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.PlanInfo{
		Key:       entry.Hash,
		Name:      entry.Name,
		Root:      entry.Root,
		Sources:   sources,
		Size:      entry.Size,
		CreatedAt: entry.CreatedAt,
	}
}

// missing reports whether a raw plan message is absent from a request.
func missing(msg []byte) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
