// Package forest provides pure functions over task sets: ordering sibling
// groups, building nested trees, collecting subtrees and validating the
// forest invariants. Nothing here touches the store.
package forest

import (
	"fmt"
	"sort"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// groupKey identifies a sibling group.
type groupKey struct {
	listID   string
	parentID string
}

// Index is an in-memory view over a set of tasks.
type Index struct {
	byID   map[string]*types.Task
	groups map[groupKey][]*types.Task
	kids   map[string][]*types.Task
}

// NewIndex indexes tasks by id, by sibling group and by parent. Every group
// is sorted by (Position, TaskID).
func NewIndex(tasks []*types.Task) *Index {
	ix := &Index{
		byID:   make(map[string]*types.Task, len(tasks)),
		groups: make(map[groupKey][]*types.Task),
		kids:   make(map[string][]*types.Task),
	}
	for _, t := range tasks {
		ix.byID[t.TaskID] = t
		k := groupKey{listID: t.ListID, parentID: t.ParentID}
		ix.groups[k] = append(ix.groups[k], t)
		if t.ParentID != "" {
			ix.kids[t.ParentID] = append(ix.kids[t.ParentID], t)
		}
	}
	for _, g := range ix.groups {
		SortSiblings(g)
	}
	for _, g := range ix.kids {
		SortSiblings(g)
	}
	return ix
}

// SortSiblings orders tasks by (Position, TaskID) in place.
func SortSiblings(tasks []*types.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Less(tasks[j]) })
}

// Tree returns the node for id with its ordered subtree, or nil if id is
// not indexed.
func (ix *Index) Tree(id string) *types.TaskNode {
	t := ix.byID[id]
	if t == nil {
		return nil
	}
	return ix.tree(t, map[string]bool{})
}

func (ix *Index) tree(t *types.Task, onPath map[string]bool) *types.TaskNode {
	n := types.NewTaskNode(t)
	onPath[t.TaskID] = true
	for _, c := range ix.kids[t.TaskID] {
		if onPath[c.TaskID] {
			continue
		}
		n.Children = append(n.Children, ix.tree(c, onPath))
	}
	delete(onPath, t.TaskID)
	return n
}

// Forest returns the ordered root nodes of a list with their subtrees.
func (ix *Index) Forest(listID string) []*types.TaskNode {
	roots := ix.groups[groupKey{listID: listID}]
	out := make([]*types.TaskNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, ix.tree(r, map[string]bool{}))
	}
	return out
}

// Build indexes tasks and returns the forest for listID.
func Build(listID string, tasks []*types.Task) []*types.TaskNode {
	return NewIndex(tasks).Forest(listID)
}

// Violation kinds reported by Validate.
const (
	ViolationMissingList   = "missing_list"
	ViolationMissingParent = "missing_parent"
	ViolationListMismatch  = "list_mismatch"
	ViolationCycle         = "cycle"
)

// Violation is one broken forest invariant.
type Violation struct {
	Kind   string `json:"kind"`
	TaskID string `json:"task_id"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: task %s: %s", v.Kind, v.TaskID, v.Detail)
}

// Validate checks tasks against the forest invariants: every task's list
// exists, every parent exists and shares the child's list, and no task is
// its own ancestor. Violations are returned ordered by task id. A nil
// lists argument skips the list existence check.
func Validate(lists []*types.List, tasks []*types.Task) []Violation {
	ix := NewIndex(tasks)
	var known map[string]bool
	if lists != nil {
		known = make(map[string]bool, len(lists))
		for _, l := range lists {
			known[l.ListID] = true
		}
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.TaskID)
	}
	sort.Strings(ids)

	var out []Violation
	for _, id := range ids {
		t := ix.byID[id]
		if known != nil && !known[t.ListID] {
			out = append(out, Violation{ViolationMissingList, id, fmt.Sprintf("list %s does not exist", t.ListID)})
		}
		if t.ParentID == "" {
			continue
		}
		p := ix.byID[t.ParentID]
		if p == nil {
			out = append(out, Violation{ViolationMissingParent, id, fmt.Sprintf("parent %s does not exist", t.ParentID)})
			continue
		}
		if p.ListID != t.ListID {
			out = append(out, Violation{ViolationListMismatch, id,
				fmt.Sprintf("list %s differs from parent %s list %s", t.ListID, p.TaskID, p.ListID)})
		}
	}
	for _, id := range cyclic(ix, ids) {
		out = append(out, Violation{ViolationCycle, id, "task is its own ancestor"})
	}
	return out
}

// cyclic returns the ids of tasks that lie on a parent cycle.
func cyclic(ix *Index, ids []string) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(ids))
	onCycle := map[string]bool{}

	for _, start := range ids {
		if state[start] != unvisited {
			continue
		}
		var path []string
		cur := start
		for cur != "" && ix.byID[cur] != nil && state[cur] == unvisited {
			state[cur] = visiting
			path = append(path, cur)
			cur = ix.byID[cur].ParentID
		}
		if cur != "" && state[cur] == visiting {
			for i := len(path) - 1; i >= 0; i-- {
				onCycle[path[i]] = true
				if path[i] == cur {
					break
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}

	out := make([]string, 0, len(onCycle))
	for id := range onCycle {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
