// Package cache implements the optimistic read cache of per-owner collections.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/ports/secondary"
)

// Loader fetches the authoritative copy of a collection.
type Loader[T any] func(ctx context.Context, key secondary.CollectionKey) ([]T, error)

type entry[T any] struct {
	items []T
	stale bool
}

// Store implements secondary.CollectionCache in memory. When a
// KeyValueStore is attached, collections are mirrored to it so a later
// process starts from the last known (stale) copy.
type Store[T any] struct {
	load   Loader[T]
	kv     secondary.KeyValueStore
	logger *slog.Logger

	mu      sync.Mutex
	entries map[secondary.CollectionKey]*entry[T]
	// gens counts Patch and Invalidate calls per key, so a refetch that
	// raced with either does not overwrite the newer state.
	gens    map[secondary.CollectionKey]uint64
}

// NewStore creates a cache that refetches through load.
func NewStore[T any](load Loader[T], logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		load:    load,
		logger:  logger,
		entries: make(map[secondary.CollectionKey]*entry[T]),
		gens:    make(map[secondary.CollectionKey]uint64),
	}
}

// WithPersistence mirrors collections to kv.
func (s *Store[T]) WithPersistence(kv secondary.KeyValueStore) *Store[T] {
	s.kv = kv
	return s
}

// Get returns the collection, refetching it when missing or stale. When the
// refetch fails and a copy is cached, the error is returned with the copy.
// A collection patched or invalidated while the refetch was in flight keeps
// its cached copy and stays stale.
func (s *Store[T]) Get(ctx context.Context, key secondary.CollectionKey) ([]T, error) {
	s.mu.Lock()
	e := s.lookup(ctx, key)
	if e != nil && !e.stale {
		items := clone(e.items)
		s.mu.Unlock()
		return items, nil
	}
	gen := s.gens[key]
	s.mu.Unlock()

	items, err := s.load(ctx, key)
	if err != nil {
		cached, _ := s.Peek(key)
		return cached, fmt.Errorf("failed to refetch %s: %w", key, err)
	}

	s.mu.Lock()
	if s.gens[key] != gen {
		defer s.mu.Unlock()
		current, ok := s.entries[key]
		if !ok {
			return items, nil
		}
		current.stale = true
		return clone(current.items), nil
	}
	s.entries[key] = &entry[T]{items: clone(items)}
	s.mu.Unlock()
	s.persist(ctx, key, items)

	return items, nil
}

// Peek returns the cached collection without refetching.
func (s *Store[T]) Peek(key secondary.CollectionKey) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(context.Background(), key)
	if e == nil {
		return nil, false
	}
	return clone(e.items), true
}

// Patch replaces the cached collection with fn applied to it. A collection
// created by a patch is stale, since it only holds the optimistic records.
func (s *Store[T]) Patch(key secondary.CollectionKey, fn mutation.Patch[T]) {
	s.mu.Lock()
	s.gens[key]++
	e := s.lookup(context.Background(), key)
	if e == nil {
		e = &entry[T]{stale: true}
		s.entries[key] = e
	}
	e.items = fn(e.items)
	items := clone(e.items)
	s.mu.Unlock()

	s.persist(context.Background(), key, items)
}

// Invalidate marks the collection stale.
func (s *Store[T]) Invalidate(key secondary.CollectionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[key]++
	if e := s.lookup(context.Background(), key); e != nil {
		e.stale = true
	}
}

// IsStale reports whether the next Get refetches.
func (s *Store[T]) IsStale(key secondary.CollectionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(context.Background(), key)
	return e == nil || e.stale
}

// lookup returns the in-memory entry, restoring it from the mirror on first
// use. Restored entries are always stale. Callers hold s.mu.
func (s *Store[T]) lookup(ctx context.Context, key secondary.CollectionKey) *entry[T] {
	if e, ok := s.entries[key]; ok {
		return e
	}
	if s.kv == nil {
		return nil
	}

	raw, ok, err := s.kv.GetItem(ctx, storageKey(key))
	if err != nil {
		s.logger.Warn("failed to restore cached collection", "key", key.String(), "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding unreadable cached collection", "key", key.String(), "error", err)
		return nil
	}
	e := &entry[T]{items: items, stale: true}
	s.entries[key] = e
	return e
}

func (s *Store[T]) persist(ctx context.Context, key secondary.CollectionKey, items []T) {
	if s.kv == nil {
		return
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("failed to encode cached collection", "key", key.String(), "error", err)
		return
	}
	if err := s.kv.SetItem(ctx, storageKey(key), string(data)); err != nil {
		s.logger.Warn("failed to persist cached collection", "key", key.String(), "error", err)
	}
}

func storageKey(key secondary.CollectionKey) string {
	return "cache:" + key.String()
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

var _ secondary.CollectionCache[struct{}] = (*Store[struct{}])(nil)
