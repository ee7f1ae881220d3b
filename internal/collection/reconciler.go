package collection

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/careerflow/internal/store"
)

// reconcileTimeout bounds one reconciliation cycle against the remote store.
const reconcileTimeout = 30 * time.Second

// snapshot is one mutation's view of the collection, ready for the remote
// store: the rows to upsert and the ids to retain during pruning.
type snapshot struct {
	rows    []store.Row
	keepIDs []string
	seq     uint64
}

// reconciler is the per-collection background task queue. Rapid successive
// mutations coalesce into a single pending snapshot, so only the latest
// state reaches the remote store and earlier cycles cannot clobber later
// ones. Failures are logged and dropped: the remote store may lag or miss
// an update entirely, and the caller is never told.
type reconciler struct {
	table  string
	remote RemoteStore

	mu        sync.Mutex
	cond      *sync.Cond
	pending   *snapshot
	seq       uint64
	syncedSeq uint64
	closed    bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

func newReconciler(table string, remote RemoteStore) *reconciler {
	r := &reconciler{
		table:  table,
		remote: remote,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	r.wg.Add(1)
	go r.run()
	return r
}

// enqueue replaces the pending snapshot with the latest state and wakes the
// worker. It never blocks the mutating caller.
func (r *reconciler) enqueue(snap snapshot) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.seq++
	snap.seq = r.seq
	r.pending = &snap
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// flush blocks until every snapshot enqueued before the call has been
// attempted against the remote store.
func (r *reconciler) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := r.seq
	for r.syncedSeq < target && !r.closed {
		r.cond.Wait()
	}
}

func (r *reconciler) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
}

func (r *reconciler) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
			r.drain()
		}
	}
}

func (r *reconciler) drain() {
	for {
		r.mu.Lock()
		snap := r.pending
		r.pending = nil
		r.mu.Unlock()
		if snap == nil {
			return
		}

		r.reconcile(snap)

		r.mu.Lock()
		r.syncedSeq = snap.seq
		r.cond.Broadcast()
		r.mu.Unlock()
	}
}

// reconcile upserts the snapshot's rows and prunes everything else. There
// is no retry and no rollback; local storage already holds the new state.
func (r *reconciler) reconcile(snap *snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	now := time.Now().UTC()
	for i := range snap.rows {
		snap.rows[i].UpdatedAt = now
	}

	if len(snap.rows) > 0 {
		if err := r.remote.Upsert(ctx, r.table, snap.rows); err != nil {
			log.Printf("[SYNC] upsert to %s failed: %v", r.table, err)
		}
	}
	if err := r.remote.DeleteNotIn(ctx, r.table, snap.keepIDs); err != nil {
		log.Printf("[SYNC] prune of %s failed: %v", r.table, err)
	}
}
