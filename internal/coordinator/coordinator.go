// Package coordinator keeps one collection's local working copy in step
// with the remote service and tracks the health of both sides.
package coordinator

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/health"
	"github.com/bunkbed-tech/fushigi-sub000/internal/remote"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store"
)

// DefaultPerPage is the page size used when Options.PerPage is unset.
const DefaultPerPage = 100

// Snapshot is what a view renders for one collection.
type Snapshot[T any] struct {
	Items []T
	State health.SystemState
}

// MergeResult counts what a merge did.
type MergeResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Changed reports whether the merge wrote anything.
func (r MergeResult) Changed() bool {
	return r.Inserted+r.Updated > 0
}

// Options configures a Coordinator.
type Options struct {
	PerPage int
	Logger  *slog.Logger
}

// Coordinator owns the published items of one record type.
//
// All mutation of the published items and of the durable cache happens
// while holding mu. Remote pages are fetched outside the lock.
type Coordinator[T domain.Record] struct {
	name    string
	cache   store.Cache[T]
	pager   remote.Pager[T]
	perPage int
	logger  *slog.Logger

	tracker health.Tracker

	mu    sync.Mutex
	items []T

	subMu       sync.RWMutex
	subscribers []func([]T)
}

var _ health.View = (*Coordinator[domain.Concept])(nil)

// New creates a Coordinator. It starts in the loading state with no items.
func New[T domain.Record](name string, cache store.Cache[T], pager remote.Pager[T], opts Options) *Coordinator[T] {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator[T]{
		name:    name,
		cache:   cache,
		pager:   pager,
		perPage: perPage,
		logger:  logger.With("collection", name),
	}
}

// Name returns the collection name.
func (c *Coordinator[T]) Name() string {
	return c.name
}

// OnPublish registers fn to receive a copy of the items every time they change.
func (c *Coordinator[T]) OnPublish(fn func([]T)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Coordinator[T]) publish(items []T) {
	c.subMu.RLock()
	subs := slices.Clone(c.subscribers)
	c.subMu.RUnlock()

	for _, fn := range subs {
		fn(append([]T(nil), items...))
	}
}

// LoadLocal replaces the published items with the durable cache contents.
// A local storage failure is reported through health, never returned.
func (c *Coordinator[T]) LoadLocal(ctx context.Context) {
	c.mu.Lock()
	recs, err := c.cache.FetchAll(ctx, nil)
	if err != nil {
		count := len(c.items)
		c.mu.Unlock()
		c.logger.Error("local load failed", "error", err)
		c.tracker.OnLocalLoadFailure(count)
		return
	}
	c.items = recs
	c.mu.Unlock()

	c.logger.Debug("local load complete", "records", len(recs))
	c.tracker.OnLocalLoadSuccess(len(recs))
	c.publish(recs)
}

// FetchAllRemote requests every page of the collection in order. The first
// failing page aborts the fetch and its error is returned.
func (c *Coordinator[T]) FetchAllRemote(ctx context.Context) ([]T, error) {
	return remote.FetchAll(ctx, c.pager, c.perPage)
}

// Merge applies remote records to the local working copy.
//
// A known record is replaced only when the remote copy is strictly newer.
// An unknown record is materialized with its remote id and appended.
// Records that fail validation are skipped one by one. All writes are
// committed in a single Save; the published items change only after that
// Save succeeds. A failed Save is reported as a local failure and returned.
func (c *Coordinator[T]) Merge(ctx context.Context, remoteItems []T) (MergeResult, error) {
	c.mu.Lock()

	var result MergeResult
	working := append([]T(nil), c.items...)
	index := make(map[string]int, len(working))
	for i, rec := range working {
		index[rec.RecordID()] = i
	}

	for _, incoming := range remoteItems {
		if err := incoming.Validate(); err != nil {
			c.logger.Warn("skipping invalid remote record", "id", incoming.RecordID(), "error", err)
			result.Skipped++
			continue
		}

		i, ok := index[incoming.RecordID()]
		if !ok {
			c.cache.Insert(incoming)
			index[incoming.RecordID()] = len(working)
			working = append(working, incoming)
			result.Inserted++
			continue
		}

		local := working[i]
		if !incoming.LastUpdated().After(local.LastUpdated()) {
			continue
		}
		if err := acceptsUpdate(local, incoming); err != nil {
			c.logger.Warn("skipping remote update", "id", incoming.RecordID(), "error", err)
			result.Skipped++
			continue
		}
		c.cache.Update(incoming)
		working[i] = incoming
		result.Updated++
	}

	if !result.Changed() {
		c.mu.Unlock()
		return result, nil
	}

	if err := c.cache.Save(ctx); err != nil {
		c.cache.Discard()
		count := len(c.items)
		c.mu.Unlock()
		c.logger.Error("merge save failed", "error", err, "inserted", result.Inserted, "updated", result.Updated)
		c.tracker.OnLocalLoadFailure(count)
		return MergeResult{Skipped: result.Skipped}, err
	}
	c.items = working
	c.mu.Unlock()

	c.tracker.OnItemsChanged(len(working))
	c.logger.Info("merge complete",
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	c.publish(working)
	return result, nil
}

// acceptsUpdate lets a record type veto a newer remote copy.
func acceptsUpdate[T any](local, next T) error {
	if v, ok := any(local).(interface{ AcceptsUpdate(T) error }); ok {
		return v.AcceptsUpdate(next)
	}
	return nil
}

// Refresh loads the local cache, fetches the remote collection, and merges
// it. Failures are folded into health; nothing is returned.
//
// Overlapping calls are not rejected. Each merge is idempotent, so the
// later one finds nothing newer to write.
func (c *Coordinator[T]) Refresh(ctx context.Context) {
	c.tracker.SetLoading()
	c.LoadLocal(ctx)

	items, err := c.FetchAllRemote(ctx)
	if err != nil {
		c.logger.Warn("remote sync failed", "error", err)
		c.tracker.OnRemoteSyncFailure(c.Len())
		return
	}

	// A failed save has already been reported as a local failure.
	_, _ = c.Merge(ctx, items)
	c.tracker.OnSyncSuccess(c.Len())
}

// Clear drops the published items and returns health to its empty, healthy
// default. The durable cache is not touched. Clear is idempotent.
func (c *Coordinator[T]) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.tracker.Reset()
	c.publish(nil)
}

// Items returns a copy of the published items.
func (c *Coordinator[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Len returns the number of published items.
func (c *Coordinator[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Snapshot returns the items together with the resolved state.
func (c *Coordinator[T]) Snapshot() Snapshot[T] {
	return Snapshot[T]{Items: c.Items(), State: c.State()}
}

// Availability implements health.View.
func (c *Coordinator[T]) Availability() health.Availability {
	return c.tracker.Availability()
}

// Health implements health.View.
func (c *Coordinator[T]) Health() health.Health {
	return c.tracker.Health()
}

// State implements health.View.
func (c *Coordinator[T]) State() health.SystemState {
	return c.tracker.State()
}
