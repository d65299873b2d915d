// Package sqlite provides the public factory for the SQLite Entity Store
// while keeping its implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/tasktree/internal/sqlite"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Store is a Cupboard that can also export and import JSONL snapshots.
type Store interface {
	types.Cupboard
	types.Snapshotter
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/tasktree",
//	})
//	defer backend.Detach()
func NewBackend() Store {
	return sqlite.NewBackend()
}
