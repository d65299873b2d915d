package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// update runs fn in a committed transaction and fails the test on error.
func update(t *testing.T, b *Backend, fn func(tx types.Tx)) {
	t.Helper()
	require.NoError(t, b.Update(context.Background(), func(tx types.Tx) error {
		fn(tx)
		return nil
	}))
}

func mustList(t *testing.T, tx types.Tx, owner, name string) string {
	t.Helper()
	id, err := tx.Lists().Set("", &types.List{Name: name, OwnerID: owner})
	require.NoError(t, err)
	return id
}

func mustTask(t *testing.T, tx types.Tx, list, parent, title string, pos int) string {
	t.Helper()
	id, err := tx.Tasks().Set("", &types.Task{Title: title, ListID: list, ParentID: parent, Position: pos})
	require.NoError(t, err)
	return id
}

func TestListsTable(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, tx types.Tx)
	}{
		{
			name: "Set generates id and created_at",
			check: func(t *testing.T, tx types.Tx) {
				l := &types.List{Name: "Inbox", OwnerID: "u1"}
				id, err := tx.Lists().Set("", l)
				require.NoError(t, err)
				assert.NotEmpty(t, id)
				assert.Equal(t, id, l.ListID)
				assert.False(t, l.CreatedAt.IsZero())

				got, err := tx.Lists().Get(id)
				require.NoError(t, err)
				assert.Equal(t, "Inbox", got.Name)
				assert.Equal(t, "u1", got.OwnerID)
				assert.True(t, l.CreatedAt.Equal(got.CreatedAt))
			},
		},
		{
			name: "Set with id updates",
			check: func(t *testing.T, tx types.Tx) {
				id := mustList(t, tx, "u1", "Old")
				l, err := tx.Lists().Get(id)
				require.NoError(t, err)
				l.Name = "New"
				_, err = tx.Lists().Set(id, l)
				require.NoError(t, err)

				got, err := tx.Lists().Get(id)
				require.NoError(t, err)
				assert.Equal(t, "New", got.Name)
			},
		},
		{
			name: "Set rejects nil and ownerless lists",
			check: func(t *testing.T, tx types.Tx) {
				_, err := tx.Lists().Set("", nil)
				assert.ErrorIs(t, err, types.ErrInvalidData)
				_, err = tx.Lists().Set("", &types.List{Name: "x"})
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "Get missing returns ErrNotFound",
			check: func(t *testing.T, tx types.Tx) {
				_, err := tx.Lists().Get("missing")
				assert.ErrorIs(t, err, types.ErrNotFound)
				_, err = tx.Lists().Get("")
				assert.ErrorIs(t, err, types.ErrInvalidID)
			},
		},
		{
			name: "Delete",
			check: func(t *testing.T, tx types.Tx) {
				id := mustList(t, tx, "u1", "Doomed")
				require.NoError(t, tx.Lists().Delete(id))
				assert.ErrorIs(t, tx.Lists().Delete(id), types.ErrNotFound)
			},
		},
		{
			name: "Fetch by owner in creation order",
			check: func(t *testing.T, tx types.Tx) {
				base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
				for i, name := range []string{"c", "a", "b"} {
					_, err := tx.Lists().Set("", &types.List{Name: name, OwnerID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
					require.NoError(t, err)
				}
				mustList(t, tx, "u2", "theirs")

				lists, err := tx.Lists().Fetch(types.Filter{types.FilterOwnerID: "u1"})
				require.NoError(t, err)
				var names []string
				for _, l := range lists {
					names = append(names, l.Name)
				}
				assert.Equal(t, []string{"c", "a", "b"}, names)

				all, err := tx.Lists().Fetch(nil)
				require.NoError(t, err)
				assert.Len(t, all, 4)
			},
		},
		{
			name: "Fetch rejects unknown filter keys",
			check: func(t *testing.T, tx types.Tx) {
				_, err := tx.Lists().Fetch(types.Filter{"name": "x"})
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				_, err = tx.Lists().Fetch(types.Filter{types.FilterOwnerID: 7})
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			update(t, b, func(tx types.Tx) { tt.check(t, tx) })
		})
	}
}

func TestTasksTable(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, tx types.Tx, listID string)
	}{
		{
			name: "Set and Get round trip",
			check: func(t *testing.T, tx types.Tx, listID string) {
				parent := mustTask(t, tx, listID, "", "parent", 0)
				task := &types.Task{Title: "child", ListID: listID, ParentID: parent, Position: 3, Completed: true, Collapsed: true}
				id, err := tx.Tasks().Set("", task)
				require.NoError(t, err)

				got, err := tx.Tasks().Get(id)
				require.NoError(t, err)
				assert.Equal(t, "child", got.Title)
				assert.Equal(t, parent, got.ParentID)
				assert.Equal(t, 3, got.Position)
				assert.True(t, got.Completed)
				assert.True(t, got.Collapsed)

				root, err := tx.Tasks().Get(parent)
				require.NoError(t, err)
				assert.Empty(t, root.ParentID)
			},
		},
		{
			name: "Set requires a list",
			check: func(t *testing.T, tx types.Tx, listID string) {
				_, err := tx.Tasks().Set("", &types.Task{Title: "x"})
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "Set rejects unknown list",
			check: func(t *testing.T, tx types.Tx, listID string) {
				_, err := tx.Tasks().Set("", &types.Task{Title: "x", ListID: "nope"})
				assert.Error(t, err)
			},
		},
		{
			name: "Fetch sibling group ordered by position then id",
			check: func(t *testing.T, tx types.Tx, listID string) {
				c := mustTask(t, tx, listID, "", "c", 2)
				a := mustTask(t, tx, listID, "", "a", 0)
				b1 := mustTask(t, tx, listID, "", "b1", 1)
				b2 := mustTask(t, tx, listID, "", "b2", 1)
				mustTask(t, tx, listID, a, "child", 0)

				roots, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: listID, types.FilterParentID: ""})
				require.NoError(t, err)
				var ids []string
				for _, r := range roots {
					ids = append(ids, r.TaskID)
				}
				assert.Equal(t, []string{a, b1, b2, c}, ids)

				kids, err := tx.Tasks().Fetch(types.Filter{types.FilterParentID: a})
				require.NoError(t, err)
				require.Len(t, kids, 1)
				assert.Equal(t, "child", kids[0].Title)

				all, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: listID})
				require.NoError(t, err)
				assert.Len(t, all, 5)
			},
		},
		{
			name: "Delete and DeleteBatch",
			check: func(t *testing.T, tx types.Tx, listID string) {
				var ids []string
				for i := 0; i < 3; i++ {
					ids = append(ids, mustTask(t, tx, listID, "", fmt.Sprintf("t%d", i), i))
				}
				require.NoError(t, tx.Tasks().Delete(ids[0]))
				assert.ErrorIs(t, tx.Tasks().Delete(ids[0]), types.ErrNotFound)

				n, err := tx.Tasks().DeleteBatch(append(ids[1:], "ghost"))
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				n, err = tx.Tasks().DeleteBatch(nil)
				require.NoError(t, err)
				assert.Zero(t, n)
			},
		},
		{
			name: "DeleteBatch spans chunks",
			check: func(t *testing.T, tx types.Tx, listID string) {
				var ids []string
				for i := 0; i < deleteChunk+20; i++ {
					ids = append(ids, mustTask(t, tx, listID, "", "t", i))
				}
				n, err := tx.Tasks().DeleteBatch(ids)
				require.NoError(t, err)
				assert.Equal(t, len(ids), n)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			update(t, b, func(tx types.Tx) {
				listID := mustList(t, tx, "u1", "L")
				tt.check(t, tx, listID)
			})
		})
	}
}
