package cli

import (
	"fmt"

	"github.com/mesh-intelligence/tasktree/internal/engine"
	"github.com/mesh-intelligence/tasktree/pkg/sqlite"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// attach opens the configured store.
func (a *app) attach() (sqlite.Store, error) {
	cfg := types.Config{Backend: a.settings.Backend, DataDir: a.settings.DataDir}
	if err := cfg.Validate(); err != nil {
		return nil, userError("invalid configuration: %w", err)
	}
	store := sqlite.NewBackend()
	if err := store.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach storage: %w", err))
	}
	return store, nil
}

// withEngine attaches the store, runs fn as owner, and detaches.
func (a *app) withEngine(fn func(e *engine.Engine, owner string) error) (err error) {
	owner, err := a.requireOwner()
	if err != nil {
		return err
	}
	store, err := a.attach()
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = sysError(fmt.Errorf("detach storage: %w", derr))
		}
	}()
	return fn(engine.New(store, engine.WithLogger(a.log)), owner)
}
