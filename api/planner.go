package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name of the planner service.
const ServiceName = "mohair.v1.Planner"

// PlannerServer is the server API for the planner service.
type PlannerServer interface {
	SubmitPlan(context.Context, *SubmitPlanRequest) (*SubmitPlanResponse, error)
	GetPlan(context.Context, *GetPlanRequest) (*GetPlanResponse, error)
	ListPlans(context.Context, *ListPlansRequest) (*ListPlansResponse, error)
	DeletePlan(context.Context, *DeletePlanRequest) (*DeletePlanResponse, error)
	TranslatePlan(context.Context, *TranslatePlanRequest) (*TranslatePlanResponse, error)
}

// FullMethod returns the full RPC path of a planner method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](
	method string,
	call func(PlannerServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlannerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PlannerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var plannerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitPlan",
			Handler:    unaryHandler("SubmitPlan", PlannerServer.SubmitPlan),
		},
		{
			MethodName: "GetPlan",
			Handler:    unaryHandler("GetPlan", PlannerServer.GetPlan),
		},
		{
			MethodName: "ListPlans",
			Handler:    unaryHandler("ListPlans", PlannerServer.ListPlans),
		},
		{
			MethodName: "DeletePlan",
			Handler:    unaryHandler("DeletePlan", PlannerServer.DeletePlan),
		},
		{
			MethodName: "TranslatePlan",
			Handler:    unaryHandler("TranslatePlan", PlannerServer.TranslatePlan),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mohair/v1/planner",
}

// RegisterPlannerServer registers srv with a gRPC server.
func RegisterPlannerServer(s grpc.ServiceRegistrar, srv PlannerServer) {
	s.RegisterService(&plannerServiceDesc, srv)
}

// PlannerClient is the client API for the planner service. Calls use the
// JSON codec.
type PlannerClient struct {
	cc grpc.ClientConnInterface
}

// NewPlannerClient returns a client over cc.
func NewPlannerClient(cc grpc.ClientConnInterface) *PlannerClient {
	return &PlannerClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PlannerClient) SubmitPlan(ctx context.Context, in *SubmitPlanRequest, opts ...grpc.CallOption) (*SubmitPlanResponse, error) {
	return invoke[SubmitPlanResponse](ctx, c.cc, "SubmitPlan", in, opts)
}

func (c *PlannerClient) GetPlan(ctx context.Context, in *GetPlanRequest, opts ...grpc.CallOption) (*GetPlanResponse, error) {
	return invoke[GetPlanResponse](ctx, c.cc, "GetPlan", in, opts)
}

func (c *PlannerClient) ListPlans(ctx context.Context, in *ListPlansRequest, opts ...grpc.CallOption) (*ListPlansResponse, error) {
	return invoke[ListPlansResponse](ctx, c.cc, "ListPlans", in, opts)
}

func (c *PlannerClient) DeletePlan(ctx context.Context, in *DeletePlanRequest, opts ...grpc.CallOption) (*DeletePlanResponse, error) {
	return invoke[DeletePlanResponse](ctx, c.cc, "DeletePlan", in, opts)
}

func (c *PlannerClient) TranslatePlan(
	ctx context.Context, in *TranslatePlanRequest, opts ...grpc.CallOption,
) (*TranslatePlanResponse, error) {
	return invoke[TranslatePlanResponse](ctx, c.cc, "TranslatePlan", in, opts)
}
