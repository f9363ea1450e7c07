package mutation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

// ValidationError reports a payload field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Field   string
	Reason  string
}

// Error converts the guard result to a *ValidationError if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return &ValidationError{Field: r.Field, Reason: r.Reason}
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(field, reason string) GuardResult {
	return GuardResult{Allowed: false, Field: field, Reason: reason}
}

// NormalizeNewDebt fills in the defaults the entry form applies.
func NormalizeNewDebt(d models.NewDebt) models.NewDebt {
	if d.Currency == "" {
		d.Currency = models.CurrencyUSD
	}
	if d.Status == "" {
		d.Status = models.DebtStatusPending
	}
	if d.Type == "" {
		d.Type = models.DebtTermShort
	}
	if d.DueDate != nil && *d.DueDate == "" {
		d.DueDate = nil
	}
	return d
}

// CanCreateDebt evaluates whether a (normalized) debt may be created.
// Rules:
// - Title and creditor are required
// - Amount must be positive
// - Currency, status and type must be known values
// - Due date, if set, must be YYYY-MM-DD
func CanCreateDebt(d models.NewDebt) GuardResult {
	if d.Title == "" {
		return deny("title", "title is required")
	}
	if d.Creditor == "" {
		return deny("creditor", "creditor is required")
	}
	if !d.Amount.IsPositive() {
		return deny("amount", "amount must be a positive number")
	}
	if r := checkDebtEnums(&d.Currency, &d.Status, &d.Type); !r.Allowed {
		return r
	}
	return checkDueDate(d.DueDate)
}

// CanUpdateDebt evaluates whether a partial debt update may be applied.
// Rules:
// - ID is required
// - Present fields follow the create rules, except amount may be zero
func CanUpdateDebt(u models.DebtUpdate) GuardResult {
	if u.ID == "" {
		return deny("id", "id is required")
	}
	if u.Title != nil && *u.Title == "" {
		return deny("title", "title is required")
	}
	if u.Creditor != nil && *u.Creditor == "" {
		return deny("creditor", "creditor is required")
	}
	if u.Amount != nil && u.Amount.IsNegative() {
		return deny("amount", "amount cannot be negative")
	}
	if r := checkDebtEnums(u.Currency, u.Status, nil); !r.Allowed {
		return r
	}
	if u.DueDate != nil && *u.DueDate != "" {
		return checkDueDate(u.DueDate)
	}
	return allow()
}

// CanCreateAsset evaluates whether an asset may be created.
// Rules:
// - Name is required
// - Amount must be positive
// - Type must be gold, silver or crypto
func CanCreateAsset(a models.NewAsset) GuardResult {
	if a.Name == "" {
		return deny("name", "name is required")
	}
	if !a.Amount.IsPositive() {
		return deny("amount", "amount must be a positive number")
	}
	if !validAssetType(a.Type) {
		return deny("type", fmt.Sprintf("unknown asset type %q", a.Type))
	}
	return allow()
}

// CanUpdateAsset evaluates whether a partial asset update may be applied.
func CanUpdateAsset(u models.AssetUpdate) GuardResult {
	if u.ID == "" {
		return deny("id", "id is required")
	}
	if u.Name != nil && *u.Name == "" {
		return deny("name", "name is required")
	}
	if u.Amount != nil && u.Amount.IsNegative() {
		return deny("amount", "amount cannot be negative")
	}
	if u.Type != nil && !validAssetType(*u.Type) {
		return deny("type", fmt.Sprintf("unknown asset type %q", *u.Type))
	}
	return allow()
}

// CanDelete evaluates whether a delete targets a record.
func CanDelete(id string) GuardResult {
	if id == "" {
		return deny("id", "id is required")
	}
	return allow()
}

// CanRecordPayment evaluates a payment that sets a debt's remaining amount.
func CanRecordPayment(debtID string, remaining decimal.Decimal) GuardResult {
	if debtID == "" {
		return deny("id", "id is required")
	}
	if remaining.IsNegative() {
		return deny("amount", "amount cannot be negative")
	}
	return allow()
}

func checkDebtEnums(currency *models.Currency, status *models.DebtStatus, term *models.DebtTerm) GuardResult {
	if currency != nil && !validCurrency(*currency) {
		return deny("currency", fmt.Sprintf("unsupported currency %q", *currency))
	}
	if status != nil && *status != models.DebtStatusPending && *status != models.DebtStatusPaid {
		return deny("status", fmt.Sprintf("unknown status %q", *status))
	}
	if term != nil && *term != models.DebtTermShort && *term != models.DebtTermLong {
		return deny("type", fmt.Sprintf("unknown debt type %q", *term))
	}
	return allow()
}

func checkDueDate(due *string) GuardResult {
	if due == nil {
		return allow()
	}
	if _, err := time.Parse(time.DateOnly, *due); err != nil {
		return deny("due_date", fmt.Sprintf("%q is not a YYYY-MM-DD date", *due))
	}
	return allow()
}

func validCurrency(c models.Currency) bool {
	for _, known := range models.Currencies {
		if c == known {
			return true
		}
	}
	return false
}

func validAssetType(t models.AssetType) bool {
	switch t {
	case models.AssetTypeGold, models.AssetTypeSilver, models.AssetTypeCrypto:
		return true
	}
	return false
}
