package service

import (
	"context"
	"time"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util/log"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// watchHealth reports the planner as not serving while p cannot be reached.
// It returns when ctx is canceled.
func watchHealth(ctx context.Context, hs *health.Server, p pinger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		serving = checkHealth(ctx, hs, p, serving)
	}
}

// checkHealth pings p once and updates the planner's status on a change. It
// returns whether the planner is serving.
func checkHealth(ctx context.Context, hs *health.Server, p pinger, serving bool) bool {
	err := p.Ping(ctx)
	if ctx.Err() != nil {
		return serving
	}
	switch {
	case err != nil && serving:
		log.Errorw(ctx, "Planner is not serving", "error", err)
		hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	case err == nil && !serving:
		log.Infow(ctx, "Planner is serving again")
		hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	}
	return err == nil
}
