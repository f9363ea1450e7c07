package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/finq/internal/adapters/sqlite"
	"github.com/example/finq/internal/ports/secondary"
)

func TestKeyValueStore_GetItem(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewKeyValueStore(db)
	ctx := context.Background()

	seedItem(t, db, "offline_mutation_queue", "[]")

	value, ok, err := store.GetItem(ctx, "offline_mutation_queue")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !ok || value != "[]" {
		t.Errorf("GetItem = (%q, %v), want ([], true)", value, ok)
	}

	_, ok, err = store.GetItem(ctx, "missing")
	if err != nil {
		t.Fatalf("GetItem on missing key failed: %v", err)
	}
	if ok {
		t.Error("expected missing key to report ok=false")
	}
}

func TestKeyValueStore_SetItem(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewKeyValueStore(db)
	ctx := context.Background()

	if err := store.SetItem(ctx, "k", "first"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if err := store.SetItem(ctx, "k", "second"); err != nil {
		t.Fatalf("SetItem overwrite failed: %v", err)
	}

	value, _, _ := store.GetItem(ctx, "k")
	if value != "second" {
		t.Errorf("value = %q, want second", value)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
}

func TestKeyValueStore_RemoveItem(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewKeyValueStore(db)
	ctx := context.Background()

	seedItem(t, db, "k", "v")

	if err := store.RemoveItem(ctx, "k"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := store.GetItem(ctx, "k"); ok {
		t.Error("key still present after RemoveItem")
	}
	if err := store.RemoveItem(ctx, "k"); err != nil {
		t.Errorf("removing a missing key should not fail: %v", err)
	}
}

func TestKeyValueStore_Update(t *testing.T) {
	tests := []struct {
		name      string
		seed      *string
		fn        func(current string, ok bool) (string, bool, error)
		wantValue string
		wantOK    bool
		wantErr   bool
	}{
		{
			name: "creates missing key",
			fn: func(current string, ok bool) (string, bool, error) {
				if ok {
					return "", false, errors.New("expected missing key")
				}
				return "created", false, nil
			},
			wantValue: "created",
			wantOK:    true,
		},
		{
			name: "transforms existing value",
			seed: strPtr("a"),
			fn: func(current string, ok bool) (string, bool, error) {
				return current + "b", false, nil
			},
			wantValue: "ab",
			wantOK:    true,
		},
		{
			name: "removes key",
			seed: strPtr("a"),
			fn: func(current string, ok bool) (string, bool, error) {
				return "", true, nil
			},
			wantOK: false,
		},
		{
			name: "callback error leaves value untouched",
			seed: strPtr("a"),
			fn: func(current string, ok bool) (string, bool, error) {
				return "changed", false, errors.New("abort")
			},
			wantValue: "a",
			wantOK:    true,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			store := sqlite.NewKeyValueStore(db)
			ctx := context.Background()

			if tt.seed != nil {
				seedItem(t, db, "k", *tt.seed)
			}

			err := store.Update(ctx, "k", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Update error = %v, wantErr %v", err, tt.wantErr)
			}

			value, ok, err := store.GetItem(ctx, "k")
			if err != nil {
				t.Fatalf("GetItem failed: %v", err)
			}
			if ok != tt.wantOK || value != tt.wantValue {
				t.Errorf("after Update got (%q, %v), want (%q, %v)", value, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestKeyValueStore_ClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewKeyValueStore(db)
	db.Close()

	err := store.SetItem(context.Background(), "k", "v")

	var storageErr *secondary.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *secondary.StorageError, got %T (%v)", err, err)
	}
	if storageErr.Op != "set" || storageErr.Key != "k" {
		t.Errorf("unexpected error fields: %+v", storageErr)
	}
}

func strPtr(s string) *string { return &s }
