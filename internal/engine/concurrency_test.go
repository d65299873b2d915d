package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tasktree/internal/sqlite"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Two opposing moves race; serializable transactions let at most one of
// them succeed, so no cycle can form.
func TestConcurrentOpposingMoves(t *testing.T) {
	for i := 0; i < 10; i++ {
		e, b := setup(t)
		l := mustList(t, e, alice, "L")
		x := mustTask(t, e, alice, l, "", "x")
		y := mustTask(t, e, alice, l, "", "y")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for k, pair := range [][2]string{{x, y}, {y, x}} {
			wg.Add(1)
			go func(k int, task, parent string) {
				defer wg.Done()
				_, errs[k] = e.MoveTask(ctx, alice, task, types.MoveTarget{Parent: types.Parent(parent)})
			}(k, pair[0], pair[1])
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, types.ErrCycleDetected)
		}
		assert.Equal(t, 1, ok)
		assertInvariants(t, b)
	}
}

// The same race across two processes sharing a data directory.
func TestConcurrentMovesAcrossBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	open := func() *sqlite.Backend {
		b := sqlite.NewBackend()
		require.NoError(t, b.Attach(cfg))
		t.Cleanup(func() { b.Detach() })
		return b
	}
	b1, b2 := open(), open()
	e1, e2 := New(b1), New(b2)

	l := mustList(t, e1, alice, "L")
	x := mustTask(t, e1, alice, l, "", "x")
	y := mustTask(t, e1, alice, l, "", "y")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = e1.MoveTask(ctx, alice, x, types.MoveTarget{Parent: types.Parent(y)})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = e2.MoveTask(ctx, alice, y, types.MoveTarget{Parent: types.Parent(x)})
	}()
	wg.Wait()

	assert.True(t, errs[0] == nil || errs[1] == nil, "one move wins")
	assert.False(t, errs[0] == nil && errs[1] == nil, "both cannot win")
	assertInvariants(t, b1)
}
