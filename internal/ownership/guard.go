// Package ownership resolves lists and tasks on behalf of an owner.
package ownership

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Guard confirms that an entity exists and belongs to an owner. It reads
// through the transaction it is given and never writes.
type Guard struct{}

// New returns a Guard.
func New() *Guard { return &Guard{} }

// List returns the list if it exists and is owned by owner.
func (g *Guard) List(tx types.Tx, owner, listID string) (*types.List, error) {
	if listID == "" {
		return nil, fmt.Errorf("list id: %w", types.ErrInvalidInput)
	}
	l, err := tx.Lists().Get(listID)
	if err != nil {
		return nil, classify(err)
	}
	if l.OwnerID != owner {
		return nil, fmt.Errorf("list %s: %w", listID, types.ErrForbidden)
	}
	return l, nil
}

// Task returns the task and its list if the list is owned by owner.
// Ownership is inherited from the list.
func (g *Guard) Task(tx types.Tx, owner, taskID string) (*types.Task, *types.List, error) {
	if taskID == "" {
		return nil, nil, fmt.Errorf("task id: %w", types.ErrInvalidInput)
	}
	t, err := tx.Tasks().Get(taskID)
	if err != nil {
		return nil, nil, classify(err)
	}
	l, err := tx.Lists().Get(t.ListID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil, fmt.Errorf("task %s: list %s missing: %w", taskID, t.ListID, types.ErrInternal)
		}
		return nil, nil, classify(err)
	}
	if l.OwnerID != owner {
		return nil, nil, fmt.Errorf("task %s: %w", taskID, types.ErrForbidden)
	}
	return t, l, nil
}

// classify passes NotFound through and marks everything else internal.
func classify(err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrInternal, err)
}
