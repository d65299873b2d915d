package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// JSONL snapshot file names.
const (
	listsJSONL = "lists.jsonl"
	tasksJSONL = "tasks.jsonl"
)

// listJSON is one line of lists.jsonl.
type listJSON struct {
	ListID    string `json:"list_id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

// taskJSON is one line of tasks.jsonl. Roots carry a null parent_id.
type taskJSON struct {
	TaskID    string  `json:"task_id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Collapsed bool    `json:"collapsed"`
	ListID    string  `json:"list_id"`
	ParentID  *string `json:"parent_id"`
	Position  int     `json:"position"`
	CreatedAt string  `json:"created_at"`
}

func listToJSON(l *types.List) listJSON {
	return listJSON{
		ListID:    l.ListID,
		Name:      l.Name,
		OwnerID:   l.OwnerID,
		CreatedAt: formatTime(l.CreatedAt),
	}
}

func (r listJSON) toList() (*types.List, error) {
	if r.ListID == "" || r.OwnerID == "" {
		return nil, types.ErrInvalidData
	}
	ts, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("list %s created_at: %w", r.ListID, err)
	}
	return &types.List{ListID: r.ListID, Name: r.Name, OwnerID: r.OwnerID, CreatedAt: ts}, nil
}

func taskToJSON(t *types.Task) taskJSON {
	r := taskJSON{
		TaskID:    t.TaskID,
		Title:     t.Title,
		Completed: t.Completed,
		Collapsed: t.Collapsed,
		ListID:    t.ListID,
		Position:  t.Position,
		CreatedAt: formatTime(t.CreatedAt),
	}
	if t.ParentID != "" {
		pid := t.ParentID
		r.ParentID = &pid
	}
	return r
}

func (r taskJSON) toTask() (*types.Task, error) {
	if r.TaskID == "" || r.ListID == "" {
		return nil, types.ErrInvalidData
	}
	ts, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s created_at: %w", r.TaskID, err)
	}
	t := &types.Task{
		TaskID:    r.TaskID,
		Title:     r.Title,
		Completed: r.Completed,
		Collapsed: r.Collapsed,
		ListID:    r.ListID,
		Position:  r.Position,
		CreatedAt: ts,
	}
	if r.ParentID != nil {
		t.ParentID = *r.ParentID
	}
	return t, nil
}
