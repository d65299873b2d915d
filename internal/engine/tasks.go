package engine

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// CreateTask appends a new task to the sibling group (listID, parentID).
// An empty parentID creates a root task.
func (e *Engine) CreateTask(ctx context.Context, owner, listID, parentID, title string) (*types.TaskNode, error) {
	var node *types.TaskNode
	err := e.update(ctx, "create task", owner, func(tx types.Tx) error {
		if listID == "" {
			return fmt.Errorf("list_id is required: %w", types.ErrInvalidInput)
		}
		l, err := e.guard.List(tx, owner, listID)
		if err != nil {
			return err
		}
		if parentID != "" {
			parent, err := tx.Tasks().Get(parentID)
			if err != nil {
				return internal(err)
			}
			if parent.ListID != l.ListID {
				return fmt.Errorf("parent %s is not in list %s: %w", parentID, l.ListID, types.ErrInvalidParent)
			}
		}
		group, err := siblings(tx, l.ListID, parentID)
		if err != nil {
			return err
		}
		t := &types.Task{
			ListID:    l.ListID,
			ParentID:  parentID,
			Position:  nextPosition(group, ""),
			CreatedAt: e.now(),
		}
		if err := t.SetTitle(title); err != nil {
			return fmt.Errorf("title must not be empty: %w", err)
		}
		if _, err := tx.Tasks().Set("", t); err != nil {
			return internal(err)
		}
		node = types.NewTaskNode(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("task created", "owner", owner, "list", listID, "task", node.ID, "position", node.Position)
	return node, nil
}

// GetTask returns the task with its ordered subtree.
func (e *Engine) GetTask(ctx context.Context, owner, taskID string) (*types.TaskNode, error) {
	var node *types.TaskNode
	err := e.view(ctx, "get task", owner, func(tx types.Tx) error {
		t, _, err := e.guard.Task(tx, owner, taskID)
		if err != nil {
			return err
		}
		node, err = subtreeNode(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateTask applies the present fields of patch and returns the task with
// its subtree. Structure and ordering are untouched.
func (e *Engine) UpdateTask(ctx context.Context, owner, taskID string, patch types.TaskPatch) (*types.TaskNode, error) {
	var node *types.TaskNode
	err := e.update(ctx, "update task", owner, func(tx types.Tx) error {
		t, _, err := e.guard.Task(tx, owner, taskID)
		if err != nil {
			return err
		}
		if err := t.Apply(patch); err != nil {
			return fmt.Errorf("title must not be empty: %w", err)
		}
		if !patch.Empty() {
			if _, err := tx.Tasks().Set(t.TaskID, t); err != nil {
				return internal(err)
			}
		}
		node, err = subtreeNode(tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("task updated", "owner", owner, "task", taskID)
	return node, nil
}

// DeleteTask removes the task and its whole subtree in one batch and
// returns the number of tasks removed.
func (e *Engine) DeleteTask(ctx context.Context, owner, taskID string) (int, error) {
	removed := 0
	err := e.update(ctx, "delete task", owner, func(tx types.Tx) error {
		t, _, err := e.guard.Task(tx, owner, taskID)
		if err != nil {
			return err
		}
		desc, err := descendants(tx, t.TaskID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(desc)+1)
		ids = append(ids, t.TaskID)
		for _, d := range desc {
			ids = append(ids, d.TaskID)
		}
		removed, err = tx.Tasks().DeleteBatch(ids)
		return internal(err)
	})
	if err != nil {
		return 0, err
	}
	e.log.Debug("task deleted", "owner", owner, "task", taskID, "removed", removed)
	return removed, nil
}
