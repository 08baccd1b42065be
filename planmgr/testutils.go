package planmgr

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/catalog"
	"github.com/wkalt/mohair/plan"
	"github.com/wkalt/mohair/storage"
)

// TestManager returns a manager backed by an in-memory store and a temporary
// catalog, along with the store for direct inspection.
func TestManager(t *testing.T, opts ...Option) (*Manager, *storage.MemStore) {
	t.Helper()
	ctx := context.Background()
	cat, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cat.Close()) })
	store := storage.NewMemStore()
	return NewManager(store, cat, opts...), store
}

// ReadPlan returns a plan message reading the named table.
func ReadPlan(names ...string) []byte {
	return encodePlan(readRel(names))
}

// FilterPlan returns a plan message filtering the named table on condition,
// which must be valid JSON.
func FilterPlan(condition string, names ...string) []byte {
	return encodePlan(&plan.Rel{
		Kind: plan.KindFilter,
		Filter: &plan.FilterRel{
			Input:     readRel(names),
			Condition: json.RawMessage(condition),
		},
	})
}

func readRel(names []string) *plan.Rel {
	return &plan.Rel{
		Kind: plan.KindRead,
		Read: &plan.ReadRel{NamedTable: &plan.NamedTable{Names: names}},
	}
}

func encodePlan(rel *plan.Rel) []byte {
	doc := plan.Document{Relations: []plan.PlanRel{{Root: &plan.RelRoot{Input: rel}}}}
	msg, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return msg
}
