package types

// Table names as stored in the database and in JSONL snapshots.
const (
	ListsTable = "lists"
	TasksTable = "tasks"
)

