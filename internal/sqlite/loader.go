package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// maxReportedViolations bounds how many violations an import error names.
const maxReportedViolations = 3

// Import loads lists.jsonl then tasks.jsonl from dir into the store in one
// transaction, upserting by id. Unknown JSON fields are ignored. These
// records are skipped and counted:
//   - malformed lines and records missing required fields
//   - a list whose id exists under another owner
//   - a task whose target list is absent
//   - a task whose existing list belongs to another owner than the target
//
// Afterwards every list the import touched is validated with
// forest.Validate. Any violation rolls the whole import back and returns an
// error wrapping types.ErrInvalidInput.
func (b *Backend) Import(ctx context.Context, dir string) (types.SnapshotStats, error) {
	var stats types.SnapshotStats

	listRecs, skippedLists, err := readJSONL(filepath.Join(dir, listsJSONL))
	if err != nil {
		return stats, err
	}
	taskRecs, skippedTasks, err := readJSONL(filepath.Join(dir, tasksJSONL))
	if err != nil {
		return stats, err
	}

	unlock, err := b.lockDataDir(ctx)
	if err != nil {
		return stats, err
	}
	defer unlock()

	err = b.Update(ctx, func(tx types.Tx) error {
		stats = types.SnapshotStats{Skipped: skippedLists + skippedTasks}
		touched := map[string]bool{}

		for _, raw := range listRecs {
			l, ok, err := importList(tx, raw)
			if err != nil {
				return err
			}
			if !ok {
				stats.Skipped++
				continue
			}
			touched[l.ListID] = true
			stats.Lists++
		}
		for _, raw := range taskRecs {
			t, prevList, ok, err := importTask(tx, raw)
			if err != nil {
				return err
			}
			if !ok {
				stats.Skipped++
				continue
			}
			touched[t.ListID] = true
			if prevList != "" {
				touched[prevList] = true
			}
			stats.Tasks++
		}
		return validateLists(tx, touched)
	})
	if err != nil {
		return types.SnapshotStats{}, fmt.Errorf("importing %s: %w", dir, err)
	}
	return stats, nil
}

// importList upserts one list record. It reports false when the record is
// malformed or the id already belongs to another owner.
func importList(tx types.Tx, raw json.RawMessage) (*types.List, bool, error) {
	var rec listJSON
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, nil
	}
	l, err := rec.toList()
	if err != nil {
		return nil, false, nil
	}
	existing, err := tx.Lists().Get(l.ListID)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return nil, false, err
	case existing.OwnerID != l.OwnerID:
		return nil, false, nil
	}
	if _, err := tx.Lists().Set(l.ListID, l); err != nil {
		return nil, false, err
	}
	return l, true, nil
}

// importTask upserts one task record and returns the list the task was in
// before, if it existed. It reports false when the record is malformed, its
// list is absent, or it would move an existing task to another owner.
func importTask(tx types.Tx, raw json.RawMessage) (*types.Task, string, bool, error) {
	var rec taskJSON
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, "", false, nil
	}
	t, err := rec.toTask()
	if err != nil {
		return nil, "", false, nil
	}
	target, err := tx.Lists().Get(t.ListID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, err
	}

	prevList := ""
	existing, err := tx.Tasks().Get(t.TaskID)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return nil, "", false, err
	default:
		prevList = existing.ListID
		if prevList != target.ListID {
			prev, err := tx.Lists().Get(prevList)
			if err != nil && !errors.Is(err, types.ErrNotFound) {
				return nil, "", false, err
			}
			if err == nil && prev.OwnerID != target.OwnerID {
				return nil, "", false, nil
			}
		}
	}
	if _, err := tx.Tasks().Set(t.TaskID, t); err != nil {
		return nil, "", false, err
	}
	return t, prevList, true, nil
}

// validateLists checks the forest invariants over every task of the given
// lists. Parents outside those lists count as missing.
func validateLists(tx types.Tx, ids map[string]bool) error {
	var (
		lists []*types.List
		tasks []*types.Task
	)
	for id := range ids {
		l, err := tx.Lists().Get(id)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		lists = append(lists, l)
		ts, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: id})
		if err != nil {
			return err
		}
		tasks = append(tasks, ts...)
	}
	vs := forest.Validate(lists, tasks)
	if len(vs) == 0 {
		return nil
	}
	shown := vs[:min(len(vs), maxReportedViolations)]
	return fmt.Errorf("%d forest violation(s), first %v: %w", len(vs), shown, types.ErrInvalidInput)
}
