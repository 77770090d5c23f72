package menu

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested item or group does not exist.
var ErrNotFound = errors.New("menu entry not found")

// Store manages the editable catalog behind the read-only [Menu] snapshots
// that resolution works on.
//
// Snapshot is the only method the order pipeline uses; the mutating methods
// exist for the menu-editing boundary. Concurrent edits do not invalidate
// snapshots already handed out: a resolution in flight keeps the catalog it
// started with.
//
// All implementations must be safe for concurrent use.
type Store interface {
	// Snapshot returns a deep copy of the current menu.
	Snapshot(ctx context.Context) (*Menu, error)

	// Replace swaps the whole catalog. The menu is validated first.
	Replace(ctx context.Context, m *Menu) error

	// UpsertItem creates or overwrites an item by ID.
	UpsertItem(ctx context.Context, item Item) error

	// RemoveItem deletes an item by ID.
	// Returns [ErrNotFound] when no item with that ID exists.
	RemoveItem(ctx context.Context, id string) error

	// UpsertGroup creates or overwrites a modifier group by ID.
	UpsertGroup(ctx context.Context, group ModifierGroup) error

	// RemoveGroup deletes a modifier group by ID.
	// Returns [ErrNotFound] when no group with that ID exists.
	RemoveGroup(ctx context.Context, id string) error
}
