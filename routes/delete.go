package routes

import (
	"context"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/util/log"
	"github.com/wkalt/mohair/util/rpcutil"
)

func (s *plannerServer) DeletePlan(ctx context.Context, req *api.DeletePlanRequest) (*api.DeletePlanResponse, error) {
	if req.Key == "" {
		return nil, rpcutil.BadRequest(ctx, "missing key")
	}
	ctx = log.AddTags(ctx, "key", req.Key)
	log.Infow(ctx, "delete request")
	if err := s.mgr.Delete(ctx, req.Key); err != nil {
		return nil, handleError(ctx, err, "deleting plan")
	}
	return &api.DeletePlanResponse{}, nil
}
