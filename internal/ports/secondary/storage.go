// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/finq/internal/core/mutation"
)

// KeyValueStore defines the secondary port for durable local key/value
// persistence. Values survive process restarts; no atomicity is promised
// across different keys.
type KeyValueStore interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Update atomically replaces the value of one key with fn's result.
	// fn receives the current value (ok is false if the key is missing) and
	// returns the next value, or remove=true to delete the key.
	// An error from fn aborts the update and is returned unchanged.
	Update(ctx context.Context, key string, fn func(current string, ok bool) (next string, remove bool, err error)) error
}

// MutationLog defines the secondary port for the durable, ordered log of
// pending write intents.
type MutationLog interface {
	// Append adds one mutation to the end of the log and returns its sequence number.
	Append(ctx context.Context, m mutation.Mutation) (int64, error)

	// ReadAll returns every pending entry in insertion order. A missing or
	// unreadable log yields an empty slice.
	ReadAll(ctx context.Context) ([]mutation.Entry, error)

	// Clear deletes the whole log.
	Clear(ctx context.Context) error

	// Settle removes every entry with Seq <= through, except the retained
	// entries, which are written back in place. Entries appended after
	// through are untouched.
	Settle(ctx context.Context, through int64, retained []mutation.Entry) error
}
