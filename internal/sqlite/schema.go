package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Tasks reference their list; the parent relation is a plain
// column so subtree deletes are explicit and never cascade.
const (
	createLists = `CREATE TABLE IF NOT EXISTS lists (
    list_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    task_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    collapsed INTEGER NOT NULL DEFAULT 0,
    list_id TEXT NOT NULL,
    parent_id TEXT,
    position INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    FOREIGN KEY (list_id) REFERENCES lists(list_id)
);`
)

// Index DDL.
const (
	indexListsOwner    = `CREATE INDEX IF NOT EXISTS idx_lists_owner ON lists(owner_id, created_at);`
	indexTasksParent   = `CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`
	indexTasksSiblings = `CREATE INDEX IF NOT EXISTS idx_tasks_siblings ON tasks(list_id, parent_id, position);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createLists,
	createTasks,
	indexListsOwner,
	indexTasksParent,
	indexTasksSiblings,
}

// applySchema creates tables and indexes that do not exist yet.
func applySchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
