package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

func TestCreateTaskPositions(t *testing.T) {
	e, _ := setup(t)
	l := mustList(t, e, alice, "L")

	first, err := e.CreateTask(ctx, alice, l, "", "first")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Nil(t, first.ParentID)

	second, err := e.CreateTask(ctx, alice, l, "", "second")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	child, err := e.CreateTask(ctx, alice, l, first.ID, "child")
	require.NoError(t, err)
	assert.Equal(t, 0, child.Position, "each sibling group numbers from zero")
	require.NotNil(t, child.ParentID)
	assert.Equal(t, first.ID, *child.ParentID)
	assert.Equal(t, l, child.ListID)
	assert.False(t, child.CreatedAt.IsZero())
}

func TestCreateTaskAppendsAfterGaps(t *testing.T) {
	e, b := setup(t)
	l := mustList(t, e, alice, "L")
	a := mustTask(t, e, alice, l, "", "a")
	task := rawGet(t, b, a)
	task.Position = 7
	rawSet(t, b, task)

	n, err := e.CreateTask(ctx, alice, l, "", "b")
	require.NoError(t, err)
	assert.Equal(t, 8, n.Position)
}

func TestCreateTaskValidation(t *testing.T) {
	e, b := setup(t)
	l := mustList(t, e, alice, "L")
	other := mustList(t, e, alice, "Other")
	foreign := mustList(t, e, bob, "Bob's")
	p := mustTask(t, e, alice, l, "", "parent")
	op := mustTask(t, e, alice, other, "", "other parent")

	tests := []struct {
		name    string
		listID  string
		parent  string
		title   string
		wantErr error
	}{
		{"missing list id", "", "", "x", types.ErrInvalidInput},
		{"missing list id wins over blank title", "", "", "", types.ErrInvalidInput},
		{"unknown list", "nope", "", "x", types.ErrNotFound},
		{"foreign list", foreign, "", "x", types.ErrForbidden},
		{"foreign list wins over blank title", foreign, "", " ", types.ErrForbidden},
		{"unknown parent", l, "ghost", "x", types.ErrNotFound},
		{"parent in another list", l, op, "x", types.ErrInvalidParent},
		{"parent check wins over blank title", l, op, "", types.ErrInvalidParent},
		{"blank title", l, p, "   ", types.ErrInvalidInput},
	}

	before := snapshot(t, b)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateTask(ctx, alice, tt.listID, tt.parent, tt.title)
			assert.ErrorIs(t, err, tt.wantErr)
			requireUnchanged(t, before, b)
		})
	}
}

func TestGetTask(t *testing.T) {
	e, _ := setup(t)
	l := mustList(t, e, alice, "L")
	a := mustTask(t, e, alice, l, "", "A")
	b1 := mustTask(t, e, alice, l, a, "B1")
	mustTask(t, e, alice, l, b1, "C")
	mustTask(t, e, alice, l, a, "B2")

	n := mustGet(t, e, alice, a)
	assert.Equal(t, 4, n.Size())
	require.Len(t, n.Children, 2)
	assert.Equal(t, "B1", n.Children[0].Title)
	assert.Equal(t, "B2", n.Children[1].Title)

	_, err := e.GetTask(ctx, bob, a)
	assert.ErrorIs(t, err, types.ErrForbidden)
	_, err = e.GetTask(ctx, alice, "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUpdateTask(t *testing.T) {
	e, b := setup(t)
	l := mustList(t, e, alice, "L")
	id := mustTask(t, e, alice, l, "", "Draft")
	mustTask(t, e, alice, l, id, "Child")
	title := func(s string) *string { return &s }
	flag := func(v bool) *bool { return &v }

	n, err := e.UpdateTask(ctx, alice, id, types.TaskPatch{Completed: flag(true)})
	require.NoError(t, err)
	assert.True(t, n.Completed)
	assert.Equal(t, "Draft", n.Title, "absent fields untouched")
	assert.Len(t, n.Children, 1)

	n, err = e.UpdateTask(ctx, alice, id, types.TaskPatch{Title: title(" Final "), Collapsed: flag(true)})
	require.NoError(t, err)
	assert.Equal(t, "Final", n.Title)
	assert.True(t, n.Completed)
	assert.True(t, n.Collapsed)

	before := snapshot(t, b)
	_, err = e.UpdateTask(ctx, alice, id, types.TaskPatch{Title: title(""), Completed: flag(false)})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = e.UpdateTask(ctx, bob, id, types.TaskPatch{Completed: flag(false)})
	assert.ErrorIs(t, err, types.ErrForbidden)
	_, err = e.UpdateTask(ctx, alice, "ghost", types.TaskPatch{Completed: flag(false)})
	assert.ErrorIs(t, err, types.ErrNotFound)
	requireUnchanged(t, before, b)

	// Retrying the same update is harmless.
	_, err = e.UpdateTask(ctx, alice, id, types.TaskPatch{Title: title("Final")})
	require.NoError(t, err)
	requireUnchanged(t, before, b)
}

func TestDeleteTaskRemovesSubtree(t *testing.T) {
	e, b := setup(t)
	l := mustList(t, e, alice, "L")
	root := mustTask(t, e, alice, l, "", "root")
	sibling := mustTask(t, e, alice, l, "", "sibling")
	x := mustTask(t, e, alice, l, root, "x")
	y := mustTask(t, e, alice, l, root, "y")
	mustTask(t, e, alice, l, x, "x1")
	mustTask(t, e, alice, l, x, "x2")
	mustTask(t, e, alice, l, y, "y1")

	_, err := e.DeleteTask(ctx, bob, root)
	assert.ErrorIs(t, err, types.ErrForbidden)

	n, err := e.DeleteTask(ctx, alice, x)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "x has two descendants")

	n, err = e.DeleteTask(ctx, alice, root)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "root, y, y1")

	_, err = e.DeleteTask(ctx, alice, root)
	assert.ErrorIs(t, err, types.ErrNotFound)

	remaining := snapshot(t, b)
	require.Len(t, remaining, 1)
	assert.Equal(t, sibling, remaining[0].TaskID)
}
