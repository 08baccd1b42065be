package routes

import (
	"testing"

	"github.com/wkalt/mohair/api"
	"github.com/wkalt/mohair/planmgr"
	"github.com/wkalt/mohair/storage"
	"github.com/wkalt/mohair/util/testutils"
	"google.golang.org/grpc"
)

// TestPlannerClient starts an in-memory planner server backed by a test
// manager and returns a client for it, along with the manager's store.
func TestPlannerClient(t *testing.T, opts ...planmgr.Option) (*api.PlannerClient, *storage.MemStore) {
	t.Helper()
	mgr, store := planmgr.TestManager(t, opts...)
	conn := testutils.BufconnServer(t, func(srv *grpc.Server) {
		MakeRoutes(srv, mgr)
	})
	return api.NewPlannerClient(conn), store
}
