package engine

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// ReorderTask swaps the task with its previous (up) or next (down) sibling.
// At either end of the group it succeeds without changing anything. If the
// two neighbours share a position the group is renumbered 0..n-1 in its
// current order first, so the swap is visible.
func (e *Engine) ReorderTask(ctx context.Context, owner, taskID string, dir types.Direction) (*types.TaskNode, error) {
	var (
		node    *types.TaskNode
		swapped bool
	)
	err := e.update(ctx, "reorder task", owner, func(tx types.Tx) error {
		if _, err := types.ParseDirection(string(dir)); err != nil {
			return err
		}
		t, _, err := e.guard.Task(tx, owner, taskID)
		if err != nil {
			return err
		}
		group, err := siblings(tx, t.ListID, t.ParentID)
		if err != nil {
			return err
		}

		i := indexOf(group, t.TaskID)
		if i < 0 {
			return fmt.Errorf("task %s missing from its sibling group: %w", t.TaskID, types.ErrInternal)
		}
		j := i - 1
		if dir == types.DirectionDown {
			j = i + 1
		}
		if j < 0 || j >= len(group) {
			node, err = subtreeNode(tx, t)
			return err
		}

		a, b := group[i], group[j]
		if a.Position == b.Position {
			if _, err := renumber(tx, group); err != nil {
				return err
			}
		}
		a.Position, b.Position = b.Position, a.Position
		for _, s := range []*types.Task{a, b} {
			if _, err := tx.Tasks().Set(s.TaskID, s); err != nil {
				return internal(err)
			}
		}
		swapped = true
		node, err = subtreeNode(tx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("task reordered", "owner", owner, "task", taskID, "direction", string(dir), "swapped", swapped)
	return node, nil
}

func indexOf(group []*types.Task, id string) int {
	for i, t := range group {
		if t.TaskID == id {
			return i
		}
	}
	return -1
}

// renumber assigns positions 0..n-1 to an ordered group, writing only the
// tasks whose position changes, and returns how many were written.
func renumber(tx types.Tx, group []*types.Task) (int, error) {
	changed := 0
	for i, s := range group {
		if s.Position == i {
			continue
		}
		s.Position = i
		if _, err := tx.Tasks().Set(s.TaskID, s); err != nil {
			return changed, internal(err)
		}
		changed++
	}
	return changed, nil
}
