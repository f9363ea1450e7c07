package mutation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

func strPtr(s string) *string { return &s }

func validDebt() models.NewDebt {
	return NormalizeNewDebt(models.NewDebt{
		Title:    "Loan",
		Creditor: "Bank",
		Amount:   decimal.NewFromInt(500),
	})
}

func TestNormalizeNewDebt(t *testing.T) {
	d := NormalizeNewDebt(models.NewDebt{Title: "Loan", DueDate: strPtr("")})

	if d.Currency != models.CurrencyUSD {
		t.Errorf("Currency = %q, want USD", d.Currency)
	}
	if d.Status != models.DebtStatusPending {
		t.Errorf("Status = %q, want pending", d.Status)
	}
	if d.Type != models.DebtTermShort {
		t.Errorf("Type = %q, want short", d.Type)
	}
	if d.DueDate != nil {
		t.Errorf("DueDate = %q, want nil", *d.DueDate)
	}
}

func TestCanCreateDebt(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(d *models.NewDebt)
		wantAllowed bool
		wantField   string
	}{
		{
			name:        "valid debt",
			mutate:      func(d *models.NewDebt) {},
			wantAllowed: true,
		},
		{
			name:        "valid debt with due date",
			mutate:      func(d *models.NewDebt) { d.DueDate = strPtr("2026-12-01") },
			wantAllowed: true,
		},
		{
			name:      "missing title",
			mutate:    func(d *models.NewDebt) { d.Title = "" },
			wantField: "title",
		},
		{
			name:      "missing creditor",
			mutate:    func(d *models.NewDebt) { d.Creditor = "" },
			wantField: "creditor",
		},
		{
			name:      "zero amount",
			mutate:    func(d *models.NewDebt) { d.Amount = decimal.Zero },
			wantField: "amount",
		},
		{
			name:      "unsupported currency",
			mutate:    func(d *models.NewDebt) { d.Currency = "CHF" },
			wantField: "currency",
		},
		{
			name:      "unknown status",
			mutate:    func(d *models.NewDebt) { d.Status = "overdue" },
			wantField: "status",
		},
		{
			name:      "unknown type",
			mutate:    func(d *models.NewDebt) { d.Type = "medium" },
			wantField: "type",
		},
		{
			name:      "malformed due date",
			mutate:    func(d *models.NewDebt) { d.DueDate = strPtr("next week") },
			wantField: "due_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDebt()
			tt.mutate(&d)
			result := CanCreateDebt(d)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", result.Field, tt.wantField)
			}
		})
	}
}

func TestCanUpdateDebt(t *testing.T) {
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)
	paid := models.DebtStatusPaid
	bogus := models.Currency("XYZ")

	tests := []struct {
		name        string
		update      models.DebtUpdate
		wantAllowed bool
		wantField   string
	}{
		{
			name:        "amount only",
			update:      models.DebtUpdate{ID: "d1", Amount: &zero},
			wantAllowed: true,
		},
		{
			name:        "status and cleared due date",
			update:      models.DebtUpdate{ID: "d1", Status: &paid, DueDate: strPtr("")},
			wantAllowed: true,
		},
		{
			name:      "missing id",
			update:    models.DebtUpdate{Amount: &zero},
			wantField: "id",
		},
		{
			name:      "negative amount",
			update:    models.DebtUpdate{ID: "d1", Amount: &negative},
			wantField: "amount",
		},
		{
			name:      "empty title",
			update:    models.DebtUpdate{ID: "d1", Title: strPtr("")},
			wantField: "title",
		},
		{
			name:      "bad currency",
			update:    models.DebtUpdate{ID: "d1", Currency: &bogus},
			wantField: "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanUpdateDebt(tt.update)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", result.Field, tt.wantField)
			}
		})
	}
}

func TestCanCreateAsset(t *testing.T) {
	tests := []struct {
		name        string
		asset       models.NewAsset
		wantAllowed bool
		wantField   string
	}{
		{
			name:        "valid gold",
			asset:       models.NewAsset{Name: "Coins", Type: models.AssetTypeGold, Amount: decimal.NewFromInt(3)},
			wantAllowed: true,
		},
		{
			name:      "missing name",
			asset:     models.NewAsset{Type: models.AssetTypeGold, Amount: decimal.NewFromInt(3)},
			wantField: "name",
		},
		{
			name:      "negative amount",
			asset:     models.NewAsset{Name: "BTC", Type: models.AssetTypeCrypto, Amount: decimal.NewFromInt(-3)},
			wantField: "amount",
		},
		{
			name:      "unknown type",
			asset:     models.NewAsset{Name: "House", Type: "property", Amount: decimal.NewFromInt(1)},
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreateAsset(tt.asset)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", result.Field, tt.wantField)
			}
		})
	}
}

func TestCanUpdateAsset(t *testing.T) {
	silver := models.AssetTypeSilver
	if r := CanUpdateAsset(models.AssetUpdate{ID: "a1", Type: &silver}); !r.Allowed {
		t.Errorf("expected update allowed, got %q", r.Reason)
	}
	if r := CanUpdateAsset(models.AssetUpdate{}); r.Allowed || r.Field != "id" {
		t.Errorf("expected id rejection, got %+v", r)
	}
}

func TestCanRecordPayment(t *testing.T) {
	if r := CanRecordPayment("d1", decimal.Zero); !r.Allowed {
		t.Errorf("paying off a debt should be allowed, got %q", r.Reason)
	}
	if r := CanRecordPayment("d1", decimal.NewFromInt(-5)); r.Allowed {
		t.Error("negative remaining amount should be rejected")
	}
}

func TestGuardResult_Error(t *testing.T) {
	if err := allow().Error(); err != nil {
		t.Errorf("allowed result should have nil error, got %v", err)
	}

	err := deny("title", "title is required").Error()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "title" {
		t.Errorf("Field = %q, want title", verr.Field)
	}
	if err.Error() != "invalid title: title is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}
