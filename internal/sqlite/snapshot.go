package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

var _ types.Snapshotter = (*Backend)(nil)

// Export writes the store (or one owner's part of it) to lists.jsonl and
// tasks.jsonl in dir. Lists appear in creation order; tasks are grouped by
// list in sibling order, parents before children.
func (b *Backend) Export(ctx context.Context, dir, ownerID string) (types.SnapshotStats, error) {
	var stats types.SnapshotStats

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("creating export dir %s: %w", dir, err)
	}
	unlock, err := b.lockDataDir(ctx)
	if err != nil {
		return stats, err
	}
	defer unlock()

	var (
		lists []listJSON
		tasks []taskJSON
	)
	err = b.View(ctx, func(tx types.Tx) error {
		filter := types.Filter{}
		if ownerID != "" {
			filter[types.FilterOwnerID] = ownerID
		}
		ls, err := tx.Lists().Fetch(filter)
		if err != nil {
			return err
		}
		for _, l := range ls {
			lists = append(lists, listToJSON(l))
			ts, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: l.ListID})
			if err != nil {
				return err
			}
			for _, t := range parentsFirst(ts) {
				tasks = append(tasks, taskToJSON(t))
			}
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("reading store for export: %w", err)
	}

	if err := writeJSONL(filepath.Join(dir, listsJSONL), lists); err != nil {
		return stats, fmt.Errorf("writing %s: %w", listsJSONL, err)
	}
	if err := writeJSONL(filepath.Join(dir, tasksJSONL), tasks); err != nil {
		return stats, fmt.Errorf("writing %s: %w", tasksJSONL, err)
	}
	stats.Lists = len(lists)
	stats.Tasks = len(tasks)
	return stats, nil
}

// parentsFirst orders one list's tasks breadth first from the roots, each
// sibling group in (position, id) order. Tasks unreachable from a root
// (dangling or cyclic parents) follow at the end in their fetched order.
func parentsFirst(tasks []*types.Task) []*types.Task {
	kids := make(map[string][]*types.Task)
	for _, t := range tasks {
		kids[t.ParentID] = append(kids[t.ParentID], t)
	}
	out := make([]*types.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	queue := []string{""}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		for _, t := range kids[pid] {
			if seen[t.TaskID] {
				continue
			}
			seen[t.TaskID] = true
			out = append(out, t)
			queue = append(queue, t.TaskID)
		}
	}
	for _, t := range tasks {
		if !seen[t.TaskID] {
			out = append(out, t)
		}
	}
	return out
}

// lockDataDir takes the cross-process data-dir lock.
func (b *Backend) lockDataDir(ctx context.Context) (func(), error) {
	b.mu.RLock()
	lock, attached := b.lock, b.attached
	b.mu.RUnlock()
	if !attached {
		return nil, types.ErrCupboardDetached
	}
	return acquire(ctx, lock)
}
