package types

import "fmt"

// TaskPatch carries the optional fields of an update. Nil fields are left
// untouched.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Collapsed *bool   `json:"collapsed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil && p.Collapsed == nil
}

// ParentRef distinguishes an omitted parent (keep the current one) from an
// explicit root (ID empty) or an explicit parent id.
type ParentRef struct {
	Set bool
	ID  string
}

// KeepParent leaves the current parent in place.
func KeepParent() ParentRef { return ParentRef{} }

// RootParent makes the task a root.
func RootParent() ParentRef { return ParentRef{Set: true} }

// Parent selects the task with the given id as parent.
func Parent(id string) ParentRef { return ParentRef{Set: true, ID: id} }

// String renders the reference for logs.
func (r ParentRef) String() string {
	switch {
	case !r.Set:
		return "<keep>"
	case r.ID == "":
		return "<root>"
	default:
		return r.ID
	}
}

// MoveTarget describes where a task goes. An empty ListID keeps the current
// list.
type MoveTarget struct {
	ListID string
	Parent ParentRef
}

// Direction is a reorder step within a sibling group.
type Direction string

// Reorder directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection validates a direction name. Returns ErrInvalidInput for
// anything other than "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUp, DirectionDown:
		return d, nil
	default:
		return "", fmt.Errorf("direction %q: %w", s, ErrInvalidInput)
	}
}
