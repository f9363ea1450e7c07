package devbackend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/db"
	"github.com/example/finq/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := NewStore(database)
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	next := 0
	store.newID = func() string {
		next++
		return fmt.Sprintf("id-%03d", next)
	}
	return store
}

func strPtr(s string) *string { return &s }

func TestStore_InsertDebt_Defaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	d, err := store.InsertDebt(ctx, "user-1", models.NewDebt{
		Title:    "Loan",
		Creditor: "Bank",
		Amount:   decimal.RequireFromString("500.25"),
	})
	if err != nil {
		t.Fatalf("InsertDebt failed: %v", err)
	}

	if d.Currency != models.CurrencyUSD || d.Status != models.DebtStatusPending || d.Type != models.DebtTermShort {
		t.Errorf("defaults not applied: %+v", d)
	}
	if !d.Amount.Equal(decimal.RequireFromString("500.25")) {
		t.Errorf("Amount = %s, want 500.25", d.Amount)
	}
	if d.UserID != "user-1" || d.DueDate != nil {
		t.Errorf("unexpected record %+v", d)
	}
	if d.History == nil || len(d.History) != 0 {
		t.Errorf("expected empty history, got %v", d.History)
	}
}

func TestStore_ListDebts_OrderAndOwner(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	insert := func(owner, title string, due *string) {
		t.Helper()
		_, err := store.InsertDebt(ctx, owner, models.NewDebt{Title: title, Creditor: "c", Amount: decimal.NewFromInt(1), DueDate: due})
		if err != nil {
			t.Fatalf("InsertDebt failed: %v", err)
		}
	}
	insert("user-1", "undated", nil)
	insert("user-1", "later", strPtr("2027-01-01"))
	insert("user-2", "other", strPtr("2026-01-01"))
	insert("user-1", "sooner", strPtr("2026-11-01"))

	debts, err := store.ListDebts(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}

	var titles []string
	for _, d := range debts {
		titles = append(titles, d.Title)
	}
	want := []string{"sooner", "later", "undated"}
	if fmt.Sprint(titles) != fmt.Sprint(want) {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestStore_SetDebtAmount_RecordsHistory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	d, _ := store.InsertDebt(ctx, "user-1", models.NewDebt{Title: "Loan", Creditor: "Bank", Amount: decimal.NewFromInt(500)})

	if err := store.SetDebtAmount(ctx, d.ID, decimal.NewFromInt(300), "Payment recorded"); err != nil {
		t.Fatalf("SetDebtAmount failed: %v", err)
	}

	got, err := store.GetDebt(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDebt failed: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Amount = %s, want 300", got.Amount)
	}
	if len(got.History) != 1 || got.History[0].Note != "Payment recorded" || got.History[0].UserID != "user-1" {
		t.Errorf("unexpected history %+v", got.History)
	}

	if err := store.SetDebtAmount(ctx, "missing", decimal.NewFromInt(1), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PatchDebt(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	d, _ := store.InsertDebt(ctx, "user-1", models.NewDebt{Title: "Loan", Creditor: "Bank", Amount: decimal.NewFromInt(500), DueDate: strPtr("2026-12-01")})

	tests := []struct {
		name    string
		id      string
		fields  map[string]any
		wantErr bool
		check   func(t *testing.T, d *models.Debt)
	}{
		{
			name:   "updates columns and clears due date",
			id:     d.ID,
			fields: map[string]any{"status": "paid", "due_date": nil},
			check: func(t *testing.T, d *models.Debt) {
				if d.Status != models.DebtStatusPaid || d.DueDate != nil {
					t.Errorf("unexpected record %+v", d)
				}
			},
		},
		{
			name:    "rejects amount column",
			id:      d.ID,
			fields:  map[string]any{"amount": "1"},
			wantErr: true,
		},
		{
			name:    "rejects invalid currency",
			id:      d.ID,
			fields:  map[string]any{"currency": "XYZ"},
			wantErr: true,
		},
		{
			name:    "missing row",
			id:      "missing",
			fields:  map[string]any{"title": "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.PatchDebt(ctx, tt.id, tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PatchDebt error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestStore_DeleteDebt_CascadesHistory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	d, _ := store.InsertDebt(ctx, "user-1", models.NewDebt{Title: "Loan", Creditor: "Bank", Amount: decimal.NewFromInt(500)})
	_ = store.SetDebtAmount(ctx, d.ID, decimal.NewFromInt(400), "x")

	if err := store.DeleteDebt(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDebt failed: %v", err)
	}
	if _, err := store.GetDebt(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var rows int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM debt_amount_history").Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("history rows left behind: %d", rows)
	}
}

func TestStore_Assets(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, err := store.InsertAsset(ctx, "user-1", models.NewAsset{Name: "Coins", Type: models.AssetTypeGold, Amount: decimal.NewFromInt(3)})
	if err != nil {
		t.Fatalf("InsertAsset failed: %v", err)
	}
	second, _ := store.InsertAsset(ctx, "user-1", models.NewAsset{Name: "BTC", Type: models.AssetTypeCrypto, Amount: decimal.RequireFromString("0.5")})

	assets, err := store.ListAssets(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) != 2 || assets[0].ID != second.ID || assets[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", assets)
	}

	renamed, err := store.PatchAsset(ctx, first.ID, map[string]any{"name": "Bars"})
	if err != nil || renamed.Name != "Bars" {
		t.Fatalf("PatchAsset = %+v, %v", renamed, err)
	}

	if err := store.SetAssetAmount(ctx, first.ID, decimal.NewFromInt(5), "Updated amount"); err != nil {
		t.Fatalf("SetAssetAmount failed: %v", err)
	}
	got, _ := store.GetAsset(ctx, first.ID)
	if !got.Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Amount = %s, want 5", got.Amount)
	}

	if _, err := store.InsertAsset(ctx, "user-1", models.NewAsset{Name: "House", Type: "property", Amount: decimal.NewFromInt(1)}); err == nil {
		t.Error("expected constraint failure for unknown asset type")
	}
}
