// Package sqlite implements the Entity Store on SQLite.
//
// Every Update or View call runs in one database transaction. The pool holds
// a single connection, so transactions inside a process are serialized, and
// write transactions begin IMMEDIATE so that a second process waits on the
// database write lock before it reads anything it will validate. A flock on
// the data directory guards schema setup and snapshot export/import.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// File names inside the data directory.
const (
	dbFileName   = "tasktree.db"
	lockFileName = "tasktree.lock"
)

// lockRetryInterval is how often a blocked data-dir lock is retried.
const lockRetryInterval = 50 * time.Millisecond

// Compile-time interface check.
var _ types.Cupboard = (*Backend)(nil)

// Backend implements types.Cupboard using SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	lock     *flock.Flock
	sb       statementBuilder
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{sb: newStatementBuilder()}
}

// Attach opens (or creates) the database in config.DataDir and applies the
// schema. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}

	lock := flock.New(filepath.Join(dataDir, lockFileName))
	unlock, err := acquire(context.Background(), lock)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := sql.Open("sqlite", dsn(filepath.Join(dataDir, dbFileName), config.GetBusyTimeoutMS()))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.lock = lock
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	return nil
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// Update runs fn in a write transaction and commits if fn returns nil.
func (b *Backend) Update(ctx context.Context, fn func(tx types.Tx) error) error {
	return b.run(ctx, true, fn)
}

// View runs fn in a transaction that is always rolled back.
func (b *Backend) View(ctx context.Context, fn func(tx types.Tx) error) error {
	return b.run(ctx, false, fn)
}

func (b *Backend) run(ctx context.Context, write bool, fn func(tx types.Tx) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrCupboardDetached
	}

	sqlTx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(newTxn(ctx, sqlTx, b.sb)); err != nil {
		return err
	}
	if !write {
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dsn builds the modernc connection string. Transactions begin IMMEDIATE and
// every connection gets the busy timeout, foreign keys and WAL pragmas.
func dsn(path string, busyTimeoutMS int) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// acquire takes the data-dir lock, waiting until ctx is done.
func acquire(ctx context.Context, lock *flock.Flock) (func(), error) {
	ok, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("locking %s: %w", lock.Path(), errLockUnavailable)
	}
	return func() { _ = lock.Unlock() }, nil
}

var errLockUnavailable = errors.New("lock unavailable")

// generateUUID returns a new UUID v7 string for entity ids.
func generateUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}
