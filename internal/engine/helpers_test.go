package engine

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/internal/sqlite"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

const (
	alice = "alice"
	bob   = "bob"
)

var ctx = context.Background()

// setup returns an engine over a fresh store. Invariants are asserted when
// the test finishes.
func setup(t *testing.T) (*Engine, *sqlite.Backend) {
	t.Helper()
	b := attach(t)
	t.Cleanup(func() { assertInvariants(t, b) })
	return New(b), b
}

// setupUnchecked is setup for tests that corrupt the store on purpose.
func setupUnchecked(t *testing.T) (*Engine, *sqlite.Backend) {
	t.Helper()
	b := attach(t)
	return New(b), b
}

func attach(t testing.TB) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// assertInvariants fails the test if any forest invariant is broken.
func assertInvariants(t *testing.T, b *sqlite.Backend) {
	t.Helper()
	require.NoError(t, b.View(ctx, func(tx types.Tx) error {
		lists, err := tx.Lists().Fetch(nil)
		if err != nil {
			return err
		}
		tasks, err := tx.Tasks().Fetch(nil)
		if err != nil {
			return err
		}
		if v := forest.Validate(lists, tasks); len(v) > 0 {
			t.Errorf("forest invariants violated: %v", v)
		}
		return nil
	}))
}

// snapshot returns every task in the store ordered by id.
func snapshot(t *testing.T, b *sqlite.Backend) []types.Task {
	t.Helper()
	var out []types.Task
	require.NoError(t, b.View(ctx, func(tx types.Tx) error {
		tasks, err := tx.Tasks().Fetch(nil)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			out = append(out, *task)
		}
		return nil
	}))
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

func requireUnchanged(t *testing.T, before []types.Task, b *sqlite.Backend) {
	t.Helper()
	if diff := cmp.Diff(before, snapshot(t, b)); diff != "" {
		t.Fatalf("store changed after failed operation (-before +after):\n%s", diff)
	}
}

func mustList(t *testing.T, e *Engine, owner, name string) string {
	t.Helper()
	l, err := e.CreateList(ctx, owner, name)
	require.NoError(t, err)
	return l.ID
}

func mustTask(t *testing.T, e *Engine, owner, list, parent, title string) string {
	t.Helper()
	n, err := e.CreateTask(ctx, owner, list, parent, title)
	require.NoError(t, err)
	return n.ID
}

func mustGet(t *testing.T, e *Engine, owner, id string) *types.TaskNode {
	t.Helper()
	n, err := e.GetTask(ctx, owner, id)
	require.NoError(t, err)
	return n
}

// childOrder returns the ids of a sibling group in display order.
func childOrder(t *testing.T, e *Engine, owner, list, parent string) []string {
	t.Helper()
	var nodes []*types.TaskNode
	if parent == "" {
		v, err := e.GetList(ctx, owner, list)
		require.NoError(t, err)
		nodes = v.Tasks
	} else {
		nodes = mustGet(t, e, owner, parent).Children
	}
	ids := []string{}
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// rawSet writes a task straight to the store, bypassing the engine.
func rawSet(t *testing.T, b *sqlite.Backend, task *types.Task) {
	t.Helper()
	require.NoError(t, b.Update(ctx, func(tx types.Tx) error {
		_, err := tx.Tasks().Set(task.TaskID, task)
		return err
	}))
}

func rawGet(t *testing.T, b *sqlite.Backend, id string) *types.Task {
	t.Helper()
	var task *types.Task
	require.NoError(t, b.View(ctx, func(tx types.Tx) error {
		var err error
		task, err = tx.Tasks().Get(id)
		return err
	}))
	return task
}
