package forest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

func task(id, list, parent string, pos int) *types.Task {
	return &types.Task{TaskID: id, Title: id, ListID: list, ParentID: parent, Position: pos}
}

// shape reduces a forest to nested ids for comparison.
type shape struct {
	ID       string
	Children []shape
}

func shapeOf(nodes []*types.TaskNode) []shape {
	out := []shape{}
	for _, n := range nodes {
		out = append(out, shape{ID: n.ID, Children: shapeOf(n.Children)})
	}
	return out
}

func TestBuildOrdersSiblings(t *testing.T) {
	tasks := []*types.Task{
		task("c", "L", "", 2),
		task("a", "L", "", 0),
		task("b2", "L", "", 1),
		task("b1", "L", "", 1),
		task("a2", "L", "a", 5),
		task("a1", "L", "a", 3),
		task("a1x", "L", "a1", 0),
		task("other", "M", "", 0),
	}

	got := shapeOf(Build("L", tasks))
	want := []shape{
		{ID: "a", Children: []shape{
			{ID: "a1", Children: []shape{{ID: "a1x", Children: []shape{}}}},
			{ID: "a2", Children: []shape{}},
		}},
		{ID: "b1", Children: []shape{}},
		{ID: "b2", Children: []shape{}},
		{ID: "c", Children: []shape{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forest mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEmpty(t *testing.T) {
	got := Build("L", nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTreeTerminatesOnCycle(t *testing.T) {
	ix := NewIndex([]*types.Task{
		task("a", "L", "b", 0),
		task("b", "L", "a", 0),
	})
	n := ix.Tree("a")
	require.NotNil(t, n)
	require.Len(t, n.Children, 1)
	assert.Equal(t, "b", n.Children[0].ID)
	assert.Empty(t, n.Children[0].Children)
}

func TestTree(t *testing.T) {
	ix := NewIndex([]*types.Task{
		task("a", "L", "", 0),
		task("b", "L", "a", 1),
		task("c", "L", "a", 0),
	})

	n := ix.Tree("a")
	require.NotNil(t, n)
	assert.Nil(t, n.ParentID)
	require.Len(t, n.Children, 2)
	assert.Equal(t, "c", n.Children[0].ID)
	assert.Equal(t, "a", *n.Children[0].ParentID)
	assert.Equal(t, 3, n.Size())

	assert.Nil(t, ix.Tree("zzz"))
}

func TestValidate(t *testing.T) {
	lists := []*types.List{{ListID: "L"}, {ListID: "M"}}

	tests := []struct {
		name  string
		tasks []*types.Task
		want  []Violation
	}{
		{
			name: "valid forest",
			tasks: []*types.Task{
				task("a", "L", "", 0),
				task("b", "L", "a", 0),
				task("x", "M", "", 0),
			},
			want: nil,
		},
		{
			name:  "missing list",
			tasks: []*types.Task{task("a", "Z", "", 0)},
			want:  []Violation{{ViolationMissingList, "a", "list Z does not exist"}},
		},
		{
			name:  "missing parent",
			tasks: []*types.Task{task("a", "L", "ghost", 0)},
			want:  []Violation{{ViolationMissingParent, "a", "parent ghost does not exist"}},
		},
		{
			name: "list mismatch",
			tasks: []*types.Task{
				task("a", "L", "", 0),
				task("b", "M", "a", 0),
			},
			want: []Violation{{ViolationListMismatch, "b", "list M differs from parent a list L"}},
		},
		{
			name: "cycle",
			tasks: []*types.Task{
				task("a", "L", "c", 0),
				task("b", "L", "a", 0),
				task("c", "L", "b", 0),
				task("d", "L", "c", 0),
			},
			want: []Violation{
				{ViolationCycle, "a", "task is its own ancestor"},
				{ViolationCycle, "b", "task is its own ancestor"},
				{ViolationCycle, "c", "task is its own ancestor"},
			},
		},
		{
			name:  "self parent",
			tasks: []*types.Task{task("a", "L", "a", 0)},
			want:  []Violation{{ViolationCycle, "a", "task is its own ancestor"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(lists, tt.tasks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateNilListsSkipsListCheck(t *testing.T) {
	assert.Empty(t, Validate(nil, []*types.Task{task("a", "nowhere", "", 0)}))
}
