package engine

import (
	"context"

	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// CompactPositions renumbers every sibling group of the list to 0..n-1,
// keeping the current order. It returns how many tasks changed position.
func (e *Engine) CompactPositions(ctx context.Context, owner, listID string) (int, error) {
	changed := 0
	err := e.update(ctx, "compact positions", owner, func(tx types.Tx) error {
		l, err := e.guard.List(tx, owner, listID)
		if err != nil {
			return err
		}
		tasks, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: l.ListID})
		if err != nil {
			return internal(err)
		}
		groups := map[string][]*types.Task{}
		var order []string
		for _, t := range tasks {
			if _, ok := groups[t.ParentID]; !ok {
				order = append(order, t.ParentID)
			}
			groups[t.ParentID] = append(groups[t.ParentID], t)
		}
		for _, pid := range order {
			g := groups[pid]
			forest.SortSiblings(g)
			n, err := renumber(tx, g)
			if err != nil {
				return err
			}
			changed += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.log.Debug("positions compacted", "owner", owner, "list", listID, "changed", changed)
	return changed, nil
}

// Check validates the forest invariants across all of owner's lists and
// returns the violations found. A clean store yields an empty slice.
func (e *Engine) Check(ctx context.Context, owner string) ([]forest.Violation, error) {
	out := []forest.Violation{}
	err := e.view(ctx, "check", owner, func(tx types.Tx) error {
		lists, err := tx.Lists().Fetch(types.Filter{types.FilterOwnerID: owner})
		if err != nil {
			return internal(err)
		}
		var tasks []*types.Task
		for _, l := range lists {
			ts, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: l.ListID})
			if err != nil {
				return internal(err)
			}
			tasks = append(tasks, ts...)
		}
		out = append(out, forest.Validate(lists, tasks)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
