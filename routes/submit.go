package routes

import (
	"context"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util/log"
	"github.com/wkalt/mohair/util/rpcutil"
)

func (s *plannerServer) SubmitPlan(ctx context.Context, req *api.SubmitPlanRequest) (*api.SubmitPlanResponse, error) {
	if missing(req.Plan) {
		return nil, rpcutil.BadRequest(ctx, "missing plan")
	}
	log.Infow(ctx, "submit request", "name", req.Name, "bytes", len(req.Plan))
	entry, _, err := s.mgr.Submit(ctx, req.Name, req.Plan)
	if err != nil {
		return nil, handleError(ctx, err, "submitting plan")
	}
	return &api.SubmitPlanResponse{Plan: planInfo(entry)}, nil
}
