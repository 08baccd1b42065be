package planmgr_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/mohair/catalog"
	"github.com/wkalt/mohair/plan"
	"github.com/wkalt/mohair/planmgr"
)

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	t.Run("submit stores and catalogs", func(t *testing.T) {
		mgr, store := planmgr.TestManager(t)
		msg := planmgr.ReadPlan("db", "t")
		entry, qp, err := mgr.Submit(ctx, "q1", msg)
		require.NoError(t, err)
		require.Equal(t, qp.Key(), entry.Hash)
		require.Equal(t, "q1", entry.Name)
		require.Equal(t, []string{"db/t"}, entry.Sources)
		require.Equal(t, int64(len(msg)), entry.Size)
		require.Equal(t, qp.String(), entry.Root)

		stored, err := store.Get(ctx, "plans/"+entry.Hash)
		require.NoError(t, err)
		require.Equal(t, msg, stored)
		require.Equal(t, 1, mgr.CacheLen())
	})
	t.Run("empty name defaults to plan name", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		entry, _, err := mgr.Submit(ctx, "", planmgr.ReadPlan("db", "t"))
		require.NoError(t, err)
		require.Equal(t, "db/t", entry.Name)
	})
	t.Run("resubmission is idempotent", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		first, _, err := mgr.Submit(ctx, "a", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		second, _, err := mgr.Submit(ctx, "b", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		require.Equal(t, first.Hash, second.Hash)
		require.Equal(t, first.CreatedAt, second.CreatedAt)
		require.Equal(t, "b", second.Name)
		entries, err := mgr.List(ctx, "", time.Time{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
	t.Run("plans differing only in expressions are stored separately", func(t *testing.T) {
		mgr, store := planmgr.TestManager(t, planmgr.WithCacheSize(0))
		gt := planmgr.FilterPlan(`{"gt": ["x", 1]}`, "t")
		lt := planmgr.FilterPlan(`{"lt": ["x", 0]}`, "t")
		first, firstPlan, err := mgr.Submit(ctx, "greater", gt)
		require.NoError(t, err)
		second, secondPlan, err := mgr.Submit(ctx, "less", lt)
		require.NoError(t, err)
		require.NotEqual(t, first.Hash, second.Hash)
		require.Equal(t, firstPlan.Fingerprint, secondPlan.Fingerprint)

		entries, err := mgr.List(ctx, "", time.Time{})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		for _, c := range []struct {
			key  string
			name string
			msg  []byte
		}{
			{first.Hash, "greater", gt},
			{second.Hash, "less", lt},
		} {
			entry, qp, err := mgr.Get(ctx, c.key)
			require.NoError(t, err)
			require.Equal(t, c.name, entry.Name)
			require.Equal(t, c.msg, qp.Message)
			stored, err := store.Get(ctx, "plans/"+c.key)
			require.NoError(t, err)
			require.Equal(t, c.msg, stored)
		}
	})
	t.Run("reformatted resubmission keeps the key", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		first, _, err := mgr.Submit(ctx, "compact", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		spaced := []byte(`{ "relations": [ { "root": { "input": { "read": { "named_table": { "names": [ "t" ] } } } } } ] }`)
		second, _, err := mgr.Submit(ctx, "spaced", spaced)
		require.NoError(t, err)
		require.Equal(t, first.Hash, second.Hash)
	})
	t.Run("invalid plans are not stored", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		_, _, err := mgr.Submit(ctx, "bad", []byte(`{"relations": []}`))
		require.ErrorIs(t, err, plan.MissingRootError{})
		entries, err := mgr.List(ctx, "", time.Time{})
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	t.Run("get from cache", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		entry, submitted, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		got, qp, err := mgr.Get(ctx, entry.Hash)
		require.NoError(t, err)
		require.Equal(t, entry, got)
		require.Same(t, submitted, qp)
	})
	t.Run("get reloads from storage on cache miss", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t, planmgr.WithCacheSize(1))
		entry, _, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		_, _, err = mgr.Submit(ctx, "other", planmgr.ReadPlan("u"))
		require.NoError(t, err)
		_, qp, err := mgr.Get(ctx, entry.Hash)
		require.NoError(t, err)
		require.Equal(t, entry.Hash, qp.Key())
		require.Equal(t, planmgr.ReadPlan("t"), qp.Message)
	})
	t.Run("invalid key", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		_, _, err := mgr.Get(ctx, "nope")
		require.ErrorIs(t, err, planmgr.InvalidKeyError{})
	})
	t.Run("upper case key is invalid", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		_, _, err := mgr.Get(ctx, "00000000DEADBEEF")
		require.ErrorIs(t, err, planmgr.InvalidKeyError{})
		require.ErrorIs(t, mgr.Delete(ctx, "00000000DEADBEEF"), planmgr.InvalidKeyError{})
	})
	t.Run("unknown key", func(t *testing.T) {
		mgr, _ := planmgr.TestManager(t)
		_, _, err := mgr.Get(ctx, plan.FormatKey(12345))
		require.ErrorIs(t, err, catalog.PlanNotFoundError{})
	})
	t.Run("missing object is corrupt", func(t *testing.T) {
		mgr, store := planmgr.TestManager(t, planmgr.WithCacheSize(1))
		entry, _, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		_, _, err = mgr.Submit(ctx, "evict", planmgr.ReadPlan("u"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "plans/"+entry.Hash))
		_, _, err = mgr.Get(ctx, entry.Hash)
		require.ErrorIs(t, err, planmgr.CorruptObjectError{})
	})
	t.Run("tampered object is corrupt", func(t *testing.T) {
		mgr, store := planmgr.TestManager(t, planmgr.WithCacheSize(1))
		entry, _, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
		require.NoError(t, err)
		_, _, err = mgr.Submit(ctx, "evict", planmgr.ReadPlan("u"))
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "plans/"+entry.Hash, planmgr.ReadPlan("v")))
		_, _, err = mgr.Get(ctx, entry.Hash)
		require.ErrorIs(t, err, planmgr.CorruptObjectError{})
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	mgr, _ := planmgr.TestManager(t)
	for _, name := range []string{"sales/daily", "sales/weekly", "ops/latency"} {
		_, _, err := mgr.Submit(ctx, name, planmgr.ReadPlan(name))
		require.NoError(t, err)
	}
	cases := []struct {
		assertion string
		pattern   string
		expected  []string
	}{
		{"empty pattern lists all", "", []string{"sales/daily", "sales/weekly", "ops/latency"}},
		{"prefix glob", "sales/*", []string{"sales/daily", "sales/weekly"}},
		{"doublestar", "**/latency", []string{"ops/latency"}},
		{"no match", "finance/*", []string{}},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			entries, err := mgr.List(ctx, c.pattern, time.Time{})
			require.NoError(t, err)
			names := []string{}
			for _, e := range entries {
				names = append(names, e.Name)
			}
			require.ElementsMatch(t, c.expected, names)
		})
	}
	t.Run("since in the future", func(t *testing.T) {
		entries, err := mgr.List(ctx, "", time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Empty(t, entries)
	})
	t.Run("invalid pattern", func(t *testing.T) {
		_, err := mgr.List(ctx, "[", time.Time{})
		require.ErrorIs(t, err, planmgr.InvalidPatternError{})
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	mgr, store := planmgr.TestManager(t)
	entry, _, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, entry.Hash))
	require.Equal(t, 0, mgr.CacheLen())

	_, _, err = mgr.Get(ctx, entry.Hash)
	require.ErrorIs(t, err, catalog.PlanNotFoundError{})
	_, err = store.Get(ctx, "plans/"+entry.Hash)
	require.Error(t, err)

	require.ErrorIs(t, mgr.Delete(ctx, entry.Hash), catalog.PlanNotFoundError{})
	require.ErrorIs(t, mgr.Delete(ctx, "bad"), planmgr.InvalidKeyError{})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	mgr, store := planmgr.TestManager(t, planmgr.WithVerifyWorkers(2))
	keys := []string{}
	for _, name := range []string{"a", "b", "c", "d"} {
		entry, _, err := mgr.Submit(ctx, name, planmgr.ReadPlan(name))
		require.NoError(t, err)
		keys = append(keys, entry.Hash)
	}
	bad, err := mgr.Verify(ctx)
	require.NoError(t, err)
	require.Empty(t, bad)

	require.NoError(t, store.Delete(ctx, "plans/"+keys[1]))
	require.NoError(t, store.Put(ctx, "plans/"+keys[3], []byte("garbage")))
	bad, err = mgr.Verify(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{keys[1], keys[3]}, bad)
}

func TestObjectPrefix(t *testing.T) {
	ctx := context.Background()
	mgr, store := planmgr.TestManager(t, planmgr.WithObjectPrefix(""))
	entry, _, err := mgr.Submit(ctx, "q", planmgr.ReadPlan("t"))
	require.NoError(t, err)
	_, err = store.Get(ctx, entry.Hash)
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	mgr, _ := planmgr.TestManager(t)
	require.NoError(t, mgr.Ping(context.Background()))
}
