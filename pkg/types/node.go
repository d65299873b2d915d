package types

import "time"

// TaskNode is the serialized shape of a task together with its ordered
// subtree.
type TaskNode struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Completed bool        `json:"completed"`
	Collapsed bool        `json:"collapsed"`
	ListID    string      `json:"list_id"`
	ParentID  *string     `json:"parent_id"`
	Position  int         `json:"position"`
	CreatedAt time.Time   `json:"created_at"`
	Children  []*TaskNode `json:"children"`
}

// NewTaskNode converts a task into a node with no children.
func NewTaskNode(t *Task) *TaskNode {
	n := &TaskNode{
		ID:        t.TaskID,
		Title:     t.Title,
		Completed: t.Completed,
		Collapsed: t.Collapsed,
		ListID:    t.ListID,
		Position:  t.Position,
		CreatedAt: t.CreatedAt,
		Children:  []*TaskNode{},
	}
	if t.ParentID != "" {
		pid := t.ParentID
		n.ParentID = &pid
	}
	return n
}

// Size returns the number of tasks in the node's subtree, itself included.
func (n *TaskNode) Size() int {
	count := 1
	for _, c := range n.Children {
		count += c.Size()
	}
	return count
}

// ListView is the serialized shape of a list with its ordered root tasks.
type ListView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	OwnerID   string      `json:"owner_id"`
	CreatedAt time.Time   `json:"created_at"`
	Tasks     []*TaskNode `json:"tasks"`
}

// NewListView converts a list and its root nodes into a view.
func NewListView(l *List, roots []*TaskNode) *ListView {
	if roots == nil {
		roots = []*TaskNode{}
	}
	return &ListView{
		ID:        l.ListID,
		Name:      l.Name,
		OwnerID:   l.OwnerID,
		CreatedAt: l.CreatedAt,
		Tasks:     roots,
	}
}
