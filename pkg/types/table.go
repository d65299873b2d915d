package types

import "errors"

// Filter restricts Fetch results. Keys are column names; values are matched
// by equality. An empty filter matches every row.
type Filter map[string]any

// Filter keys understood by the tables.
const (
	FilterOwnerID  = "owner_id"
	FilterListID   = "list_id"
	FilterParentID = "parent_id" // "" selects root tasks
)

// ListTable provides CRUD for lists. Fetch orders by (CreatedAt, ListID).
type ListTable interface {
	// Get returns the list with the given ID, or ErrNotFound.
	Get(id string) (*List, error)

	// Set creates or updates a list. An empty id generates a UUID v7 and
	// stamps CreatedAt when it is zero. Returns the id used.
	Set(id string, l *List) (string, error)

	// Delete removes the list. Returns ErrNotFound if it does not exist.
	Delete(id string) error

	// Fetch returns the lists matching filter.
	Fetch(filter Filter) ([]*List, error)
}

// TaskTable provides CRUD for tasks. Fetch orders by (Position, TaskID).
type TaskTable interface {
	// Get returns the task with the given ID, or ErrNotFound.
	Get(id string) (*Task, error)

	// Set creates or updates a task. An empty id generates a UUID v7 and
	// stamps CreatedAt when it is zero. Returns the id used.
	Set(id string, t *Task) (string, error)

	// Delete removes a single task. Returns ErrNotFound if it does not exist.
	Delete(id string) error

	// DeleteBatch removes all given tasks and returns how many rows went away.
	DeleteBatch(ids []string) (int, error)

	// Fetch returns the tasks matching filter.
	Fetch(filter Filter) ([]*Task, error)
}

// Table operation errors.
var (
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter")
)
