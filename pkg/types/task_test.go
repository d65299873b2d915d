package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTaskApply(t *testing.T) {
	tests := []struct {
		name    string
		patch   TaskPatch
		wantErr error
		check   func(t *testing.T, task *Task)
	}{
		{
			name:  "empty patch changes nothing",
			patch: TaskPatch{},
			check: func(t *testing.T, task *Task) {
				assert.Equal(t, "Write report", task.Title)
				assert.False(t, task.Completed)
				assert.False(t, task.Collapsed)
			},
		},
		{
			name:  "title is trimmed",
			patch: TaskPatch{Title: ptr("  Ship it  ")},
			check: func(t *testing.T, task *Task) {
				assert.Equal(t, "Ship it", task.Title)
			},
		},
		{
			name:    "blank title rejected",
			patch:   TaskPatch{Title: ptr("   "), Completed: ptr(true)},
			wantErr: ErrInvalidInput,
			check: func(t *testing.T, task *Task) {
				assert.Equal(t, "Write report", task.Title)
				assert.False(t, task.Completed)
			},
		},
		{
			name:  "flags only",
			patch: TaskPatch{Completed: ptr(true), Collapsed: ptr(true)},
			check: func(t *testing.T, task *Task) {
				assert.Equal(t, "Write report", task.Title)
				assert.True(t, task.Completed)
				assert.True(t, task.Collapsed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{TaskID: "t1", Title: "Write report"}
			err := task.Apply(tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			tt.check(t, task)
		})
	}
}

func TestTaskLess(t *testing.T) {
	a := &Task{TaskID: "a", Position: 1}
	b := &Task{TaskID: "b", Position: 1}
	c := &Task{TaskID: "c", Position: 0}

	assert.True(t, a.Less(b), "equal positions fall back to id")
	assert.False(t, b.Less(a))
	assert.True(t, c.Less(a))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, DirectionUp, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, d)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParentRef(t *testing.T) {
	assert.False(t, KeepParent().Set)
	assert.Equal(t, ParentRef{Set: true}, RootParent())
	assert.Equal(t, ParentRef{Set: true, ID: "p"}, Parent("p"))
	assert.Equal(t, "<keep>", KeepParent().String())
	assert.Equal(t, "<root>", RootParent().String())
	assert.Equal(t, "p", Parent("p").String())
}

func TestTaskNodeJSON(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	root := NewTaskNode(&Task{TaskID: "r", Title: "Root", ListID: "l", CreatedAt: created})
	child := NewTaskNode(&Task{TaskID: "c", Title: "Child", ListID: "l", ParentID: "r", Position: 0, CreatedAt: created})
	root.Children = append(root.Children, child)

	assert.Equal(t, 2, root.Size())

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["parent_id"], "root serializes parent_id as null")
	children := decoded["children"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, "r", children[0].(map[string]any)["parent_id"])
	assert.Equal(t, []any{}, children[0].(map[string]any)["children"], "leaves serialize an empty array")
}
