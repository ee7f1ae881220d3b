// Package collection implements the dual-backend collection synchronizer:
// a named, ordered sequence of records mirrored to local storage on every
// mutation and reconciled against the remote store in the background.
//
// The in-memory sequence and local storage are the durable source of truth;
// the remote store is eventually consistent and best-effort. Remote failures
// are logged, never retried, and never roll back a mutation.
package collection

import (
	"context"
	"encoding/json"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/careerflow/internal/store"
	"github.com/jonathan/careerflow/internal/types"
)

// Record is any entity that can live in a collection. A record with an
// empty id is kept in memory and in local storage but is never written to
// the remote store (ids are the remote primary key).
type Record interface {
	RecordID() string
}

// RemoteStore is the slice of the remote client the synchronizer uses.
// *store.Remote satisfies it; tests substitute an in-memory fake.
type RemoteStore interface {
	SelectAll(ctx context.Context, table string) ([]store.Row, error)
	Upsert(ctx context.Context, table string, rows []store.Row) error
	DeleteNotIn(ctx context.Context, table string, keepIDs []string) error
}

// Collection owns the in-memory sequence for one collection key. It is the
// sole writer to both storage backends for that key.
type Collection[T Record] struct {
	key      string
	table    string
	local    *store.Local
	remote   RemoteStore // nil when the remote store is not configured
	defaults []T

	mu     sync.Mutex
	items  []T
	loaded bool

	loadGroup singleflight.Group

	rec *reconciler
}

// New builds a collection for the given key. Pass a nil remote to run
// local-only. The collection holds defaults until Load is called.
func New[T Record](key string, local *store.Local, remote RemoteStore, defaults []T) (*Collection[T], error) {
	table, err := store.TableFor(key)
	if err != nil {
		return nil, err
	}
	c := &Collection[T]{
		key:      key,
		table:    table,
		local:    local,
		remote:   remote,
		defaults: slices.Clone(defaults),
		items:    slices.Clone(defaults),
	}
	if remote != nil {
		c.rec = newReconciler(table, remote)
	}
	return c, nil
}

// Key returns the collection key.
func (c *Collection[T]) Key() string { return c.key }

// Load populates the collection exactly once, in priority order: remote
// store (if configured), then local storage, then the provided defaults.
// Repeated calls — including concurrent ones from re-mount cycles — are
// collapsed into a single load.
func (c *Collection[T]) Load(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.loadGroup.Do(c.key, func() (any, error) { //nolint:errcheck // load never fails
		c.doLoad(ctx)
		return nil, nil
	})
}

func (c *Collection[T]) doLoad(ctx context.Context) {
	if c.remote != nil {
		rows, err := c.remote.SelectAll(ctx, c.table)
		if err == nil {
			items := c.decodeRows(rows)
			c.finishLoad(items)
			log.Printf("[SYNC] loaded %d records from remote table %s", len(items), c.table)
			return
		}
		log.Printf("[SYNC] remote load for %s failed, falling back to local: %v", c.table, err)
	}

	if blob := c.local.Load(c.key); blob != nil {
		var items []T
		if err := json.Unmarshal(blob, &items); err != nil {
			log.Printf("[SYNC] malformed local data for %s, using defaults: %v", c.key, err)
		} else {
			c.finishLoad(items)
			return
		}
	}
	c.finishLoad(slices.Clone(c.defaults))
}

// decodeRows converts remote rows back into records. Rows that do not
// decode, fail validation, or disagree with their primary key are skipped
// and logged rather than propagated as invalid shapes.
func (c *Collection[T]) decodeRows(rows []store.Row) []T {
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal(row.Data, &rec); err != nil {
			log.Printf("[SYNC] skipping malformed row %s in %s: %v", row.ID, c.table, err)
			continue
		}
		if err := types.Validate(rec); err != nil {
			log.Printf("[SYNC] skipping invalid row %s in %s: %v", row.ID, c.table, err)
			continue
		}
		if rec.RecordID() != row.ID {
			log.Printf("[SYNC] skipping row %s in %s: document id %q disagrees with primary key", row.ID, c.table, rec.RecordID())
			continue
		}
		items = append(items, rec)
	}
	return items
}

func (c *Collection[T]) finishLoad(items []T) {
	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()
}

// Loaded reports whether the initial load has completed.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Items returns a copy of the current sequence.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Update is the single mutation entry point: fn maps the previous sequence
// to the next one (append, replace-by-id, and remove-by-id are all expressed
// this way). The next sequence is persisted to local storage synchronously
// before Update returns; remote reconciliation is scheduled in the
// background once the initial load has completed.
//
// The whole step runs under the collection mutex. Concurrent Updates must
// not interleave their local writes (torn files) or enqueue snapshots out
// of application order (the reconciler would push a stale sequence last).
func (c *Collection[T]) Update(fn func(prev []T) []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(slices.Clone(c.items))
	c.items = next
	snapshot := slices.Clone(next)

	c.saveLocal(snapshot)

	if c.rec != nil && c.loaded {
		c.rec.enqueue(encodeRows(snapshot))
	}
	return snapshot
}

// Replace swaps in a full replacement sequence.
func (c *Collection[T]) Replace(next []T) []T {
	return c.Update(func([]T) []T { return next })
}

// Flush blocks until every reconciliation scheduled so far has been
// attempted. It exists for tests and shutdown; callers never wait on
// reconciliation during normal operation.
func (c *Collection[T]) Flush() {
	if c.rec != nil {
		c.rec.flush()
	}
}

// Close stops the background reconciler. The collection remains usable
// locally afterwards.
func (c *Collection[T]) Close() {
	if c.rec != nil {
		c.rec.close()
	}
}

func (c *Collection[T]) saveLocal(items []T) {
	blob, err := json.Marshal(items)
	if err != nil {
		// Records are plain data structs; marshal failure means a
		// programming error, not a storage condition.
		log.Printf("[SYNC] failed to marshal %s: %v", c.key, err)
		return
	}
	c.local.Save(c.key, blob)
}

// encodeRows wraps records as remote rows. Records without ids are excluded
// from the payload and from the retained-id set.
func encodeRows[T Record](items []T) snapshot {
	snap := snapshot{keepIDs: make([]string, 0, len(items))}
	for _, item := range items {
		id := item.RecordID()
		if id == "" {
			continue
		}
		data, err := json.Marshal(item)
		if err != nil {
			log.Printf("[SYNC] failed to marshal record %s: %v", id, err)
			continue
		}
		snap.rows = append(snap.rows, store.Row{ID: id, Data: data})
		snap.keepIDs = append(snap.keepIDs, id)
	}
	return snap
}
