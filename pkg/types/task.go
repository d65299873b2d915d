package types

import (
	"strings"
	"time"
)

// Task is one node in a list's forest. ParentID is empty for root tasks.
// Tasks sharing (ListID, ParentID) form a sibling group ordered by
// (Position, TaskID).
type Task struct {
	TaskID    string
	Title     string
	Completed bool
	Collapsed bool
	ListID    string
	ParentID  string
	Position  int
	CreatedAt time.Time
}

// SetTitle trims and assigns the title. Returns ErrInvalidInput if the
// trimmed title is empty.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidInput
	}
	t.Title = title
	return nil
}

// Apply copies the fields present in p onto the task.
func (t *Task) Apply(p TaskPatch) error {
	if p.Title != nil {
		if err := t.SetTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Collapsed != nil {
		t.Collapsed = *p.Collapsed
	}
	return nil
}

// Less orders siblings by position, then id.
func (t *Task) Less(o *Task) bool {
	if t.Position != o.Position {
		return t.Position < o.Position
	}
	return t.TaskID < o.TaskID
}
