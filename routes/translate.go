package routes

import (
	"context"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/plan"
	"github.com/wkalt/mohair/util/rpcutil"
)

func (s *plannerServer) TranslatePlan(
	ctx context.Context, req *api.TranslatePlanRequest,
) (*api.TranslatePlanResponse, error) {
	if missing(req.Plan) {
		return nil, rpcutil.BadRequest(ctx, "missing plan")
	}
	qp, err := s.mgr.Translate(ctx, req.Plan)
	if err != nil {
		return nil, handleError(ctx, err, "translating plan")
	}
	return &api.TranslatePlanResponse{
		Key:         qp.Key(),
		Fingerprint: qp.FingerprintKey(),
		Root:        qp.String(),
		Sources:     plan.Sources(qp.Root),
		Depth:       plan.Depth(qp.Root),
	}, nil
}
