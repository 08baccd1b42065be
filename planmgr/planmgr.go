package planmgr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wkalt/mohair/catalog"
	"github.com/wkalt/mohair/plan"
	"github.com/wkalt/mohair/storage"
	"github.com/wkalt/mohair/util"
	"github.com/wkalt/mohair/util/log"
	"golang.org/x/sync/errgroup"
)

/*
The plan manager owns the lifecycle of submitted plans. A submission is
translated, its message is written to the storage provider under the plan's
key, and a catalog entry is recorded. Translated plans are cached by key so
repeated lookups do not hit storage.

Plans are content addressed: submitting the same plan twice yields the same
key and updates the existing catalog entry.
*/

////////////////////////////////////////////////////////////////////////////////

// Manager coordinates plan translation, storage and cataloging.
type Manager struct {
	store   storage.Provider
	catalog *catalog.Catalog
	cache   *util.LRU[string, *plan.QueryPlan]

	objectPrefix  string
	verifyWorkers int
}

// NewManager returns a new Manager.
func NewManager(store storage.Provider, cat *catalog.Catalog, opts ...Option) *Manager {
	conf := config{
		cacheSize:     1000,
		objectPrefix:  "plans",
		verifyWorkers: 4,
	}
	for _, opt := range opts {
		opt(&conf)
	}
	return &Manager{
		store:         store,
		catalog:       cat,
		cache:         util.NewLRU[string, *plan.QueryPlan](conf.cacheSize),
		objectPrefix:  conf.objectPrefix,
		verifyWorkers: max(conf.verifyWorkers, 1),
	}
}

func (m *Manager) objectID(key string) string {
	if m.objectPrefix == "" {
		return key
	}
	return m.objectPrefix + "/" + key
}

// Translate translates a plan message without storing it.
func (m *Manager) Translate(ctx context.Context, msg []byte) (*plan.QueryPlan, error) {
	qp, err := plan.Translate(msg)
	if err != nil {
		return nil, err
	}
	log.Debugw(ctx, "translated plan", "key", qp.Key(), "depth", plan.Depth(qp.Root))
	return qp, nil
}

// Submit translates and stores a plan under name. If name is empty the plan's
// own name is used.
func (m *Manager) Submit(ctx context.Context, name string, msg []byte) (catalog.Entry, *plan.QueryPlan, error) {
	qp, err := m.Translate(ctx, msg)
	if err != nil {
		return catalog.Entry{}, nil, err
	}
	key := qp.Key()
	if name == "" {
		name = qp.Root.PlanName()
	}
	if err := m.store.Put(ctx, m.objectID(key), msg); err != nil {
		return catalog.Entry{}, nil, fmt.Errorf("failed to store plan %s: %w", key, err)
	}
	entry, err := m.catalog.Put(ctx, catalog.Entry{
		Hash:    key,
		Name:    name,
		Root:    qp.String(),
		Sources: plan.Sources(qp.Root),
		Size:    int64(len(msg)),
	})
	if err != nil {
		return catalog.Entry{}, nil, fmt.Errorf("failed to catalog plan %s: %w", key, err)
	}
	m.cache.Put(key, qp)
	log.Infow(ctx, "submitted plan", "key", key, "name", name, "bytes", len(msg))
	return entry, qp, nil
}

// Get returns the catalog entry and translated plan for key.
func (m *Manager) Get(ctx context.Context, key string) (catalog.Entry, *plan.QueryPlan, error) {
	if _, err := plan.ParseKey(key); err != nil {
		return catalog.Entry{}, nil, InvalidKeyError{Key: key}
	}
	entry, err := m.catalog.Get(ctx, key)
	if err != nil {
		return catalog.Entry{}, nil, err
	}
	if qp, ok := m.cache.Get(key); ok {
		return entry, qp, nil
	}
	qp, err := m.load(ctx, key)
	if err != nil {
		return catalog.Entry{}, nil, err
	}
	m.cache.Put(key, qp)
	return entry, qp, nil
}

func (m *Manager) load(ctx context.Context, key string) (*plan.QueryPlan, error) {
	msg, err := m.store.Get(ctx, m.objectID(key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, CorruptObjectError{Key: key, Reason: "plan message is missing from storage"}
		}
		return nil, fmt.Errorf("failed to load plan %s: %w", key, err)
	}
	qp, err := plan.Translate(msg)
	if err != nil {
		return nil, CorruptObjectError{Key: key, Reason: err.Error()}
	}
	if qp.Key() != key {
		return nil, CorruptObjectError{Key: key, Reason: "stored message hashes to " + qp.Key()}
	}
	return qp, nil
}

// List returns catalog entries created at or after since whose names match
// pattern. An empty pattern matches every name.
func (m *Manager) List(ctx context.Context, pattern string, since time.Time) ([]catalog.Entry, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, InvalidPatternError{Pattern: pattern}
	}
	entries, err := m.catalog.List(ctx, since)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return entries, nil
	}
	matched := entries[:0]
	for _, entry := range entries {
		ok, err := doublestar.Match(pattern, entry.Name)
		if err != nil {
			return nil, InvalidPatternError{Pattern: pattern}
		}
		if ok {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// Delete removes a plan from the catalog, storage and cache.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if _, err := plan.ParseKey(key); err != nil {
		return InvalidKeyError{Key: key}
	}
	if err := m.catalog.Delete(ctx, key); err != nil {
		return err
	}
	m.cache.Delete(key)
	if err := m.store.Delete(ctx, m.objectID(key)); err != nil {
		return fmt.Errorf("failed to delete plan %s from storage: %w", key, err)
	}
	log.Infow(ctx, "deleted plan", "key", key)
	return nil
}

// Verify checks that every cataloged plan can be loaded from storage and
// returns the keys of those that cannot.
func (m *Manager) Verify(ctx context.Context) ([]string, error) {
	entries, err := m.catalog.List(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	results := make([]bool, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.verifyWorkers)
	for i, entry := range entries {
		g.Go(func() error {
			_, err := m.load(gctx, entry.Hash)
			if err == nil {
				return nil
			}
			if errors.Is(err, CorruptObjectError{}) {
				log.Warnw(gctx, "plan failed verification", "key", entry.Hash, "error", err)
				results[i] = true
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to verify plans: %w", err)
	}
	bad := []string{}
	for i, failed := range results {
		if failed {
			bad = append(bad, entries[i].Hash)
		}
	}
	return bad, nil
}

// Ping checks that the catalog is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.catalog.Ping(ctx); err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	return nil
}

// CacheLen returns the number of cached plans.
func (m *Manager) CacheLen() int {
	return m.cache.Len()
}

func (m *Manager) String() string {
	return fmt.Sprintf("planmgr(%s, %s)", m.store, m.catalog)
}
