package types

import (
	"context"
	"errors"
)

// Cupboard is the transactional Entity Store. Callers attach to a backend,
// run work inside Update or View, and detach when done.
type Cupboard interface {
	// Attach connects the Cupboard to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Update and View return ErrCupboardDetached.
	Detach() error

	// Update runs fn inside a write transaction. The transaction commits
	// when fn returns nil and rolls back otherwise; fn's error is returned
	// unchanged.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn inside a read transaction that is always rolled back.
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the tables visible inside one transaction. A Tx must not be
// used after the callback that received it returns.
type Tx interface {
	Lists() ListTable
	Tasks() TaskTable
}

// Cupboard lifecycle errors.
var (
	ErrCupboardDetached = errors.New("cupboard is detached")
	ErrAlreadyAttached  = errors.New("cupboard is already attached")
)

// Snapshotter is implemented by stores that can dump and reload their
// contents as JSONL files in a directory.
type Snapshotter interface {
	// Export writes lists.jsonl and tasks.jsonl into dir. A non-empty
	// ownerID limits the export to that owner's lists and their tasks.
	Export(ctx context.Context, dir, ownerID string) (SnapshotStats, error)

	// Import upserts every record found in dir's JSONL files in one
	// transaction. Malformed or unloadable records are skipped and counted.
	Import(ctx context.Context, dir string) (SnapshotStats, error)
}

// SnapshotStats reports what an export or import touched.
type SnapshotStats struct {
	Lists   int `json:"lists"`
	Tasks   int `json:"tasks"`
	Skipped int `json:"skipped"`
}
