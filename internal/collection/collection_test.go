package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/careerflow/internal/store"
	"github.com/jonathan/careerflow/internal/types"
)

// fakeRemote is an in-memory RemoteStore with injectable failures.
type fakeRemote struct {
	mu     sync.Mutex
	tables map[string]map[string]store.Row

	selectErr error
	upsertErr error
	deleteErr error

	selectCalls int
	upsertCalls int
	deleteCalls int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tables: make(map[string]map[string]store.Row)}
}

func (f *fakeRemote) SelectAll(_ context.Context, table string) ([]store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	rows := make([]store.Row, 0, len(f.tables[table]))
	for _, row := range f.tables[table] {
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeRemote) Upsert(_ context.Context, table string, rows []store.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.tables[table] == nil {
		f.tables[table] = make(map[string]store.Row)
	}
	for _, row := range rows {
		f.tables[table][row.ID] = row
	}
	return nil
}

func (f *fakeRemote) DeleteNotIn(_ context.Context, table string, keepIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	keep := make(map[string]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	for id := range f.tables[table] {
		if !keep[id] {
			delete(f.tables[table], id)
		}
	}
	return nil
}

func (f *fakeRemote) ids(table string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.tables[table]))
	for id := range f.tables[table] {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeRemote) seed(t *testing.T, table string, recs ...types.Experience) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[table] == nil {
		f.tables[table] = make(map[string]store.Row)
	}
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		f.tables[table][rec.ID] = store.Row{ID: rec.ID, Data: data}
	}
}

func newLocal(t *testing.T) *store.Local {
	t.Helper()
	local, err := store.NewLocal(t.TempDir())
	require.NoError(t, err)
	return local
}

func exp(id, title string) types.Experience {
	return types.Experience{ID: id, Title: title}
}

func TestLoad_RemoteWinsOverLocal(t *testing.T) {
	local := newLocal(t)
	localOnly, err := json.Marshal([]types.Experience{exp("9", "Stale Local")})
	require.NoError(t, err)
	local.Save(store.KeyExperiences, localOnly)

	remote := newFakeRemote()
	remote.seed(t, "experiences", exp("1", "Remote Engineer"))

	c, err := New(store.KeyExperiences, local, remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()

	c.Load(context.Background())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Remote Engineer", items[0].Title)
}

func TestLoad_FallsBackToLocalOnRemoteFailure(t *testing.T) {
	local := newLocal(t)
	blob, err := json.Marshal([]types.Experience{exp("1", "Local Engineer")})
	require.NoError(t, err)
	local.Save(store.KeyExperiences, blob)

	remote := newFakeRemote()
	remote.selectErr = errors.New("connection refused")

	c, err := New(store.KeyExperiences, local, remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()

	c.Load(context.Background())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Local Engineer", items[0].Title)
}

func TestLoad_DefaultsWhenBothEmpty(t *testing.T) {
	defaults := []types.Experience{exp("d1", "Default")}
	c, err := New(store.KeyExperiences, newLocal(t), nil, defaults)
	require.NoError(t, err)
	defer c.Close()

	c.Load(context.Background())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Default", items[0].Title)
}

func TestLoad_DefaultsOnMalformedLocal(t *testing.T) {
	local := newLocal(t)
	local.Save(store.KeyExperiences, []byte(`{not valid json`))

	c, err := New(store.KeyExperiences, local, nil, []types.Experience{exp("d1", "Default")})
	require.NoError(t, err)
	defer c.Close()

	c.Load(context.Background())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Default", items[0].Title)
}

func TestLoad_RunsOnce(t *testing.T) {
	remote := newFakeRemote()
	remote.seed(t, "experiences", exp("1", "Engineer"))

	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Load(context.Background())
		}()
	}
	wg.Wait()
	c.Load(context.Background())

	remote.mu.Lock()
	calls := remote.selectCalls
	remote.mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.True(t, c.Loaded())
}

func TestLoad_SkipsInvalidRemoteRows(t *testing.T) {
	remote := newFakeRemote()
	remote.seed(t, "experiences", exp("1", "Good"))
	remote.mu.Lock()
	// Malformed JSON document.
	remote.tables["experiences"]["2"] = store.Row{ID: "2", Data: []byte(`{broken`)}
	// Document id disagrees with the primary key.
	mismatched, _ := json.Marshal(exp("999", "Mismatch"))
	remote.tables["experiences"]["3"] = store.Row{ID: "3", Data: mismatched}
	// Document missing its id entirely.
	remote.tables["experiences"]["4"] = store.Row{ID: "4", Data: []byte(`{"title":"No ID"}`)}
	remote.mu.Unlock()

	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()

	c.Load(context.Background())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Good", items[0].Title)
}

func TestUpdate_PersistsLocallyBeforeReturning(t *testing.T) {
	local := newLocal(t)
	c, err := New(store.KeyExperiences, local, nil, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "Engineer"))
	})

	blob := local.Load(store.KeyExperiences)
	require.NotNil(t, blob)
	var saved []types.Experience
	require.NoError(t, json.Unmarshal(blob, &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "Engineer", saved[0].Title)
}

func TestUpdate_ReconcilesToRemote(t *testing.T) {
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "A"), exp("2", "B"), exp("3", "C"))
	})
	c.Flush()

	assert.ElementsMatch(t, []string{"1", "2", "3"}, remote.ids("experiences"))
}

func TestUpdate_DeletionPropagates(t *testing.T) {
	remote := newFakeRemote()
	remote.seed(t, "experiences", exp("1", "A"), exp("2", "B"), exp("3", "C"))

	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		next := make([]types.Experience, 0, len(prev))
		for _, e := range prev {
			if e.ID != "2" {
				next = append(next, e)
			}
		}
		return next
	})
	c.Flush()

	assert.ElementsMatch(t, []string{"1", "3"}, remote.ids("experiences"))
}

func TestReplace_EmptyClearsRemoteTable(t *testing.T) {
	remote := newFakeRemote()
	remote.seed(t, "experiences", exp("1", "A"), exp("2", "B"))

	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Replace([]types.Experience{})
	c.Flush()

	assert.Empty(t, remote.ids("experiences"))
}

func TestUpdate_IdempotentReconcile(t *testing.T) {
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	state := []types.Experience{exp("1", "A"), exp("2", "B")}
	c.Replace(state)
	c.Flush()
	first := remote.ids("experiences")

	c.Replace(state)
	c.Flush()

	assert.ElementsMatch(t, first, remote.ids("experiences"))
}

func TestUpdate_IDLessRecordsStayLocal(t *testing.T) {
	local := newLocal(t)
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, local, remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "Has ID"), exp("", "No ID"))
	})
	c.Flush()

	// Both records survive locally and in memory.
	assert.Len(t, c.Items(), 2)
	var saved []types.Experience
	require.NoError(t, json.Unmarshal(local.Load(store.KeyExperiences), &saved))
	assert.Len(t, saved, 2)

	// Only the identified record reaches the remote store.
	assert.ElementsMatch(t, []string{"1"}, remote.ids("experiences"))
}

func TestUpdate_RemoteFailureDoesNotRollBack(t *testing.T) {
	local := newLocal(t)
	remote := newFakeRemote()
	remote.upsertErr = errors.New("disk full")
	remote.deleteErr = errors.New("disk full")

	c, err := New(store.KeyExperiences, local, remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "Engineer"))
	})
	c.Flush()

	require.Len(t, c.Items(), 1)
	var saved []types.Experience
	require.NoError(t, json.Unmarshal(local.Load(store.KeyExperiences), &saved))
	assert.Len(t, saved, 1)
}

func TestUpdate_NoRemoteCallsWhenUnconfigured(t *testing.T) {
	c, err := New(store.KeyExperiences, newLocal(t), nil, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "Engineer"))
	})
	c.Flush()

	assert.Len(t, c.Items(), 1)
}

func TestUpdate_NoReconcileBeforeLoad(t *testing.T) {
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()

	// Mutating before Load must not push pre-load state over remote data.
	c.Update(func(prev []types.Experience) []types.Experience {
		return append(prev, exp("1", "Early"))
	})
	c.Flush()

	remote.mu.Lock()
	upserts, deletes := remote.upsertCalls, remote.deleteCalls
	remote.mu.Unlock()
	assert.Zero(t, upserts)
	assert.Zero(t, deletes)
}

func TestUpdate_RapidMutationsCoalesceToLatest(t *testing.T) {
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, newLocal(t), remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	for i := 0; i < 50; i++ {
		id := string(rune('a' + i%26))
		c.Replace([]types.Experience{exp(id, "Latest")})
	}
	final := c.Replace([]types.Experience{exp("final", "Latest")})
	c.Flush()

	require.Len(t, final, 1)
	assert.ElementsMatch(t, []string{"final"}, remote.ids("experiences"))
}

func TestUpdate_ConcurrentMutationsStayConsistent(t *testing.T) {
	local := newLocal(t)
	remote := newFakeRemote()
	c, err := New(store.KeyExperiences, local, remote, []types.Experience{})
	require.NoError(t, err)
	defer c.Close()
	c.Load(context.Background())

	const rounds, writers = 8, 16
	for round := 0; round < rounds; round++ {
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("%d-%d", round, n)
				c.Update(func(prev []types.Experience) []types.Experience {
					return append(prev, exp(id, "Engineer"))
				})
			}(i)
		}
		wg.Wait()

		// The local file must always hold one complete document, never
		// torn interleaved payloads, and must match the in-memory state.
		blob := local.Load(store.KeyExperiences)
		require.NotNil(t, blob)
		var saved []types.Experience
		require.NoError(t, json.Unmarshal(blob, &saved))
		assert.Len(t, saved, len(c.Items()))
	}

	// Snapshots are enqueued in application order, so after a flush the
	// remote store holds exactly the final sequence.
	c.Flush()
	items := c.Items()
	require.Len(t, items, rounds*writers)
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, ids, remote.ids("experiences"))
}

func TestNew_RejectsUnknownKey(t *testing.T) {
	_, err := New("not_a_collection", newLocal(t), nil, []types.Experience{})
	assert.Error(t, err)
}
