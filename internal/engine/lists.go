package engine

import (
	"context"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// CreateList creates an empty list owned by owner.
func (e *Engine) CreateList(ctx context.Context, owner, name string) (*types.ListView, error) {
	var view *types.ListView
	err := e.update(ctx, "create list", owner, func(tx types.Tx) error {
		n, err := trimmed("name", name)
		if err != nil {
			return err
		}
		l := &types.List{Name: n, OwnerID: owner, CreatedAt: e.now()}
		if _, err := tx.Lists().Set("", l); err != nil {
			return internal(err)
		}
		view = types.NewListView(l, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("list created", "owner", owner, "list", view.ID)
	return view, nil
}

// RenameList changes a list's name and returns the list with its tasks.
func (e *Engine) RenameList(ctx context.Context, owner, listID, name string) (*types.ListView, error) {
	var view *types.ListView
	err := e.update(ctx, "rename list", owner, func(tx types.Tx) error {
		l, err := e.guard.List(tx, owner, listID)
		if err != nil {
			return err
		}
		if err := l.SetName(name); err != nil {
			return err
		}
		if _, err := tx.Lists().Set(l.ListID, l); err != nil {
			return internal(err)
		}
		view, err = listView(tx, l)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("list renamed", "owner", owner, "list", listID)
	return view, nil
}

// ListLists returns owner's lists in creation order, each with its ordered
// forest.
func (e *Engine) ListLists(ctx context.Context, owner string) ([]*types.ListView, error) {
	views := []*types.ListView{}
	err := e.view(ctx, "list lists", owner, func(tx types.Tx) error {
		lists, err := tx.Lists().Fetch(types.Filter{types.FilterOwnerID: owner})
		if err != nil {
			return internal(err)
		}
		for _, l := range lists {
			v, err := listView(tx, l)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// GetList returns one list with its ordered forest.
func (e *Engine) GetList(ctx context.Context, owner, listID string) (*types.ListView, error) {
	var view *types.ListView
	err := e.view(ctx, "get list", owner, func(tx types.Tx) error {
		l, err := e.guard.List(tx, owner, listID)
		if err != nil {
			return err
		}
		view, err = listView(tx, l)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteList removes every task in the list, then the list. It returns the
// number of tasks removed.
func (e *Engine) DeleteList(ctx context.Context, owner, listID string) (int, error) {
	removed := 0
	err := e.update(ctx, "delete list", owner, func(tx types.Tx) error {
		l, err := e.guard.List(tx, owner, listID)
		if err != nil {
			return err
		}
		tasks, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: l.ListID})
		if err != nil {
			return internal(err)
		}
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.TaskID
		}
		if removed, err = tx.Tasks().DeleteBatch(ids); err != nil {
			return internal(err)
		}
		return internal(tx.Lists().Delete(l.ListID))
	})
	if err != nil {
		return 0, err
	}
	e.log.Debug("list deleted", "owner", owner, "list", listID, "tasks", removed)
	return removed, nil
}
