package secondary

import (
	"context"

	"github.com/example/finq/internal/core/mutation"
)

// CollectionKey identifies one cached collection: an entity type scoped to
// its owning identity.
type CollectionKey struct {
	Entity  mutation.Entity
	OwnerID string
}

func (k CollectionKey) String() string {
	return string(k.Entity) + ":" + k.OwnerID
}

// CollectionCache defines the secondary port for the optimistic read cache.
type CollectionCache[T any] interface {
	// Get returns the collection, refetching it first if it is missing or stale.
	Get(ctx context.Context, key CollectionKey) ([]T, error)

	// Peek returns the cached collection without refetching.
	Peek(key CollectionKey) ([]T, bool)

	// Patch replaces the cached collection with fn applied to it (or to an
	// empty collection when nothing is cached).
	Patch(key CollectionKey, fn mutation.Patch[T])

	// Invalidate marks the collection stale so the next Get refetches it.
	Invalidate(key CollectionKey)

	// IsStale reports whether the next Get will refetch.
	IsStale(key CollectionKey) bool
}
