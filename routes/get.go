package routes

import (
	"context"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util/log"
	"github.com/wkalt/mohair/util/rpcutil"
)

func (s *plannerServer) GetPlan(ctx context.Context, req *api.GetPlanRequest) (*api.GetPlanResponse, error) {
	if req.Key == "" {
		return nil, rpcutil.BadRequest(ctx, "missing key")
	}
	ctx = log.AddTags(ctx, "key", req.Key)
	entry, qp, err := s.mgr.Get(ctx, req.Key)
	if err != nil {
		return nil, handleError(ctx, err, "getting plan")
	}
	return &api.GetPlanResponse{
		Plan:    planInfo(entry),
		Message: qp.Message,
	}, nil
}
