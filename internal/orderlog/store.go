// Package orderlog records the outcome of every order submission.
//
// The history that a voice-ordering deployment wants for support calls
// ("did my order go through?") is kept here as an explicitly injected
// [Store] rather than ambient process state: the order service takes a
// Store (or nil to disable logging), and nothing in the resolution pipeline
// touches it.
//
// All store implementations are safe for concurrent use.
package orderlog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no entry with the given ID exists.
var ErrNotFound = errors.New("order log entry not found")

// Entry is one recorded submission outcome.
type Entry struct {
	// ID is the log entry's own identifier, assigned by the store.
	ID string `json:"id"`

	// OrderID is the upstream order identifier; empty when submission
	// failed before one was assigned.
	OrderID string `json:"orderId,omitempty"`

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`

	OrderType string `json:"orderType"`

	// Success reports whether the order was accepted upstream.
	Success bool `json:"success"`

	// Total is the order's net total; zero when the build failed.
	Total float64 `json:"total"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// CreatedAt is assigned by the store at record time.
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions narrows the result set of [Store.List].
type ListOptions struct {
	// Limit caps how many entries are returned, newest first.
	// Zero means no limit.
	Limit int

	// Phone restricts results to entries for one customer phone number.
	Phone string
}

// Store persists submission outcomes.
type Store interface {
	// Record stores entry, assigning its ID and CreatedAt, and returns
	// the stored entry.
	Record(ctx context.Context, entry Entry) (Entry, error)

	// Get retrieves an entry by its log ID.
	// Returns [ErrNotFound] when no entry with that ID exists.
	Get(ctx context.Context, id string) (Entry, error)

	// List returns entries newest-first, filtered by opts.
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
