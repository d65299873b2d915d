package engine

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// MoveTask reparents and/or relists a task. The task is appended to the end
// of its new sibling group, and when the list changes every descendant
// follows it. The returned node carries the moved subtree.
//
// Validation order: the task, the target list (Forbidden across owners),
// the target parent (NotFound, then InvalidParent unless it is in the
// target list), then the cycle guard over the task's descendant set.
func (e *Engine) MoveTask(ctx context.Context, owner, taskID string, target types.MoveTarget) (*types.TaskNode, error) {
	var (
		node  *types.TaskNode
		moved int
	)
	err := e.update(ctx, "move task", owner, func(tx types.Tx) error {
		t, cur, err := e.guard.Task(tx, owner, taskID)
		if err != nil {
			return err
		}

		dst := cur
		if target.ListID != "" && target.ListID != cur.ListID {
			if dst, err = e.guard.List(tx, owner, target.ListID); err != nil {
				return err
			}
		}

		parentID := t.ParentID
		if target.Parent.Set {
			parentID = target.Parent.ID
		}
		if parentID != "" {
			parent, err := tx.Tasks().Get(parentID)
			if err != nil {
				return internal(err)
			}
			if parent.ListID != dst.ListID {
				return fmt.Errorf("parent %s is not in list %s: %w", parentID, dst.ListID, types.ErrInvalidParent)
			}
		}

		desc, err := descendants(tx, t.TaskID)
		if err != nil {
			return err
		}
		if parentID == t.TaskID {
			return fmt.Errorf("task %s cannot be its own parent: %w", t.TaskID, types.ErrCycleDetected)
		}
		for _, d := range desc {
			if d.TaskID == parentID {
				return fmt.Errorf("parent %s is a descendant of task %s: %w", parentID, t.TaskID, types.ErrCycleDetected)
			}
		}

		group, err := siblings(tx, dst.ListID, parentID)
		if err != nil {
			return err
		}
		t.ParentID = parentID
		t.Position = nextPosition(group, t.TaskID)

		if dst.ListID != t.ListID {
			t.ListID = dst.ListID
			for _, d := range desc {
				d.ListID = dst.ListID
			}
		}
		if _, err := tx.Tasks().Set(t.TaskID, t); err != nil {
			return internal(err)
		}
		if t.ListID != cur.ListID {
			for _, d := range desc {
				if _, err := tx.Tasks().Set(d.TaskID, d); err != nil {
					return internal(err)
				}
			}
			moved = len(desc)
		}

		node, err = subtreeNode(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("task moved", "owner", owner, "task", taskID,
		"list", node.ListID, "parent", target.Parent.String(), "position", node.Position, "relisted", moved)
	return node, nil
}
