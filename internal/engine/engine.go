// Package engine implements the tree mutation engine: owner-scoped create,
// update, move, reorder and cascading delete over per-list task forests.
//
// Each exported operation runs in exactly one store transaction. All
// validation reads happen inside that transaction, so a failed precondition
// leaves the store untouched and concurrent callers cannot interleave
// between a check and the write it guards.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mesh-intelligence/tasktree/internal/forest"
	"github.com/mesh-intelligence/tasktree/internal/ownership"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Engine applies tree mutations through an injected store.
type Engine struct {
	store types.Cupboard
	guard *ownership.Guard
	log   *slog.Logger
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine over an attached store.
func New(store types.Cupboard, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		guard: ownership.New(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// update runs fn in a write transaction and normalizes its error.
func (e *Engine) update(ctx context.Context, op, owner string, fn func(tx types.Tx) error) error {
	if owner == "" {
		return fmt.Errorf("%s: owner: %w", op, types.ErrInvalidInput)
	}
	return e.wrap(op, owner, e.store.Update(ctx, fn))
}

// view runs fn in a read transaction and normalizes its error.
func (e *Engine) view(ctx context.Context, op, owner string, fn func(tx types.Tx) error) error {
	if owner == "" {
		return fmt.Errorf("%s: owner: %w", op, types.ErrInvalidInput)
	}
	return e.wrap(op, owner, e.store.View(ctx, fn))
}

// wrap prefixes err with op. Errors carrying no taxonomy sentinel are
// marked ErrInternal and logged.
func (e *Engine) wrap(op, owner string, err error) error {
	if err == nil {
		return nil
	}
	if types.IsUserError(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !errors.Is(err, types.ErrInternal) {
		err = fmt.Errorf("%w: %w", types.ErrInternal, err)
	}
	e.log.Error("operation failed", "op", op, "owner", owner, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// internal marks a store failure inside a transaction callback.
func internal(err error) error {
	if err == nil || types.IsUserError(err) || errors.Is(err, types.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrInternal, err)
}

func trimmed(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s must not be empty: %w", field, types.ErrInvalidInput)
	}
	return s, nil
}

// siblings returns the ordered sibling group (listID, parentID).
func siblings(tx types.Tx, listID, parentID string) ([]*types.Task, error) {
	group, err := tx.Tasks().Fetch(types.Filter{
		types.FilterListID:   listID,
		types.FilterParentID: parentID,
	})
	if err != nil {
		return nil, internal(err)
	}
	forest.SortSiblings(group)
	return group, nil
}

// nextPosition is 1 + the highest position in the group, ignoring
// excludeID, or 0 for an empty group.
func nextPosition(group []*types.Task, excludeID string) int {
	next := 0
	for _, t := range group {
		if t.TaskID == excludeID {
			continue
		}
		if t.Position+1 > next {
			next = t.Position + 1
		}
	}
	return next
}

// descendants collects every transitive child of root by work-list
// traversal over the parent index. root itself is excluded.
func descendants(tx types.Tx, rootID string) ([]*types.Task, error) {
	var out []*types.Task
	seen := map[string]bool{rootID: true}
	work := []string{rootID}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		kids, err := tx.Tasks().Fetch(types.Filter{types.FilterParentID: id})
		if err != nil {
			return nil, internal(err)
		}
		for _, k := range kids {
			if seen[k.TaskID] {
				continue
			}
			seen[k.TaskID] = true
			out = append(out, k)
			work = append(work, k.TaskID)
		}
	}
	return out, nil
}

// subtreeNode loads root's subtree and returns it as a nested node.
func subtreeNode(tx types.Tx, root *types.Task) (*types.TaskNode, error) {
	desc, err := descendants(tx, root.TaskID)
	if err != nil {
		return nil, err
	}
	return forest.NewIndex(append([]*types.Task{root}, desc...)).Tree(root.TaskID), nil
}

// listView loads every task of l and returns the nested view.
func listView(tx types.Tx, l *types.List) (*types.ListView, error) {
	tasks, err := tx.Tasks().Fetch(types.Filter{types.FilterListID: l.ListID})
	if err != nil {
		return nil, internal(err)
	}
	return types.NewListView(l, forest.Build(l.ListID, tasks)), nil
}
