package routes

import (
	"context"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util/log"
)

func (s *plannerServer) ListPlans(ctx context.Context, req *api.ListPlansRequest) (*api.ListPlansResponse, error) {
	log.Debugw(ctx, "list request", "pattern", req.Pattern, "since", req.Since)
	entries, err := s.mgr.List(ctx, req.Pattern, req.Since)
	if err != nil {
		return nil, handleError(ctx, err, "listing plans")
	}
	plans := make([]api.PlanInfo, 0, len(entries))
	for _, entry := range entries {
		plans = append(plans, planInfo(entry))
	}
	return &api.ListPlansResponse{Plans: plans}, nil
}
