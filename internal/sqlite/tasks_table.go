package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

var _ types.TaskTable = (*tasksTable)(nil)

var taskColumns = []string{
	"task_id", "title", "completed", "collapsed", "list_id", "parent_id", "position", "created_at",
}

var taskFilterColumns = map[string]string{
	types.FilterListID:   "list_id",
	types.FilterParentID: "parent_id",
}

// deleteChunk bounds the number of ids bound into one DELETE statement.
const deleteChunk = 500

// tasksTable implements types.TaskTable inside a transaction.
type tasksTable struct {
	t *txn
}

func (tt *tasksTable) Get(id string) (*types.Task, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	query, args, err := tt.t.sb.selectFrom(types.TasksTable, taskColumns).
		Where(squirrel.Eq{"task_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building task query: %w", err)
	}
	task, err := scanTask(tt.t.queryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return task, nil
}

func (tt *tasksTable) Set(id string, task *types.Task) (string, error) {
	if task == nil || task.ListID == "" {
		return "", types.ErrInvalidData
	}
	if id == "" {
		newID, err := generateUUID()
		if err != nil {
			return "", err
		}
		id = newID
	}
	task.TaskID = id
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	var parent any
	if task.ParentID != "" {
		parent = task.ParentID
	}
	query, args, err := tt.t.sb.upsert(types.TasksTable, "task_id", taskColumns, []any{
		task.TaskID, task.Title, task.Completed, task.Collapsed,
		task.ListID, parent, task.Position, formatTime(task.CreatedAt),
	})
	if err != nil {
		return "", fmt.Errorf("building task upsert: %w", err)
	}
	if _, err := tt.t.exec(query, args...); err != nil {
		return "", fmt.Errorf("persisting task %s: %w", id, err)
	}
	return id, nil
}

func (tt *tasksTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	n, err := tt.DeleteBatch([]string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (tt *tasksTable) DeleteBatch(ids []string) (int, error) {
	total := 0
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))
		query, args, err := tt.t.sb.deleteWhere(types.TasksTable, squirrel.Eq{"task_id": ids[start:end]})
		if err != nil {
			return total, fmt.Errorf("building task delete: %w", err)
		}
		res, err := tt.t.exec(query, args...)
		if err != nil {
			return total, fmt.Errorf("deleting tasks: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("deleting tasks: %w", err)
		}
		total += int(n)
	}
	return total, nil
}

func (tt *tasksTable) Fetch(filter types.Filter) ([]*types.Task, error) {
	where, err := buildWhere(filter, taskFilterColumns)
	if err != nil {
		return nil, err
	}
	query, args, err := tt.t.sb.selectFrom(types.TasksTable, taskColumns).
		Where(where).OrderBy("position", "task_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building task query: %w", err)
	}
	rows, err := tt.t.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	defer rows.Close()

	out := []*types.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func scanTask(s rowScanner) (*types.Task, error) {
	var (
		task    types.Task
		parent  sql.NullString
		created string
	)
	if err := s.Scan(&task.TaskID, &task.Title, &task.Completed, &task.Collapsed,
		&task.ListID, &parent, &task.Position, &created); err != nil {
		return nil, err
	}
	task.ParentID = parent.String
	ts, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of task %s: %w", task.TaskID, err)
	}
	task.CreatedAt = ts
	return &task, nil
}
