package types

import (
	"strings"
	"time"
)

// List is a named, owner-scoped container for a forest of tasks.
type List struct {
	ListID    string    // UUID v7, generated on creation.
	Name      string    // Display name (required, non-empty after trimming).
	OwnerID   string    // Opaque owner identity; fixed at creation.
	CreatedAt time.Time // Creation timestamp (UTC).
}

// SetName trims and assigns the list name. Returns ErrInvalidInput if the
// trimmed name is empty.
func (l *List) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidInput
	}
	l.Name = name
	return nil
}
