package mutation

import (
	"github.com/example/finq/internal/models"
)

// Patch is a pure transformation of a cached collection. It must not modify
// its input slice.
type Patch[T any] func(current []T) []T

// record is satisfied by every cached entity type.
type record interface {
	RecordID() string
}

// Insert returns a patch appending r to the collection.
func Insert[T record](r T) Patch[T] {
	return func(current []T) []T {
		next := make([]T, 0, len(current)+1)
		next = append(next, current...)
		return append(next, r)
	}
}

// Remove returns a patch dropping every record with the given id.
func Remove[T record](id string) Patch[T] {
	return func(current []T) []T {
		next := make([]T, 0, len(current))
		for _, r := range current {
			if r.RecordID() != id {
				next = append(next, r)
			}
		}
		return next
	}
}

// replace returns a patch applying merge to the record with the given id.
// Collections without that record are returned unchanged.
func replace[T record](id string, merge func(T) T) Patch[T] {
	return func(current []T) []T {
		next := make([]T, len(current))
		for i, r := range current {
			if r.RecordID() == id {
				r = merge(r)
			}
			next[i] = r
		}
		return next
	}
}

// MergeDebt returns a patch overlaying the present fields of u onto the
// cached debt it targets.
func MergeDebt(u models.DebtUpdate) Patch[models.Debt] {
	return replace(u.ID, func(d models.Debt) models.Debt {
		if u.Title != nil {
			d.Title = *u.Title
		}
		if u.Creditor != nil {
			d.Creditor = *u.Creditor
		}
		if u.DueDate != nil {
			if *u.DueDate == "" {
				d.DueDate = nil
			} else {
				due := *u.DueDate
				d.DueDate = &due
			}
		}
		if u.Status != nil {
			d.Status = *u.Status
		}
		if u.Currency != nil {
			d.Currency = *u.Currency
		}
		if u.Amount != nil {
			d.Amount = *u.Amount
		}
		return d
	})
}

// MergeAsset returns a patch overlaying the present fields of u onto the
// cached asset it targets.
func MergeAsset(u models.AssetUpdate) Patch[models.Asset] {
	return replace(u.ID, func(a models.Asset) models.Asset {
		if u.Name != nil {
			a.Name = *u.Name
		}
		if u.Type != nil {
			a.Type = *u.Type
		}
		if u.Amount != nil {
			a.Amount = *u.Amount
		}
		return a
	})
}

// DebtFromNew builds the record an offline create shows until the next
// refetch replaces it with the server's copy.
func DebtFromNew(d models.NewDebt, id, ownerID, createdAt string) models.Debt {
	return models.Debt{
		ID:        id,
		UserID:    ownerID,
		Title:     d.Title,
		Creditor:  d.Creditor,
		Amount:    d.Amount,
		Currency:  d.Currency,
		DueDate:   d.DueDate,
		Status:    d.Status,
		Type:      d.Type,
		CreatedAt: createdAt,
		History:   []models.DebtAmountHistory{},
	}
}

// AssetFromNew builds the record an offline asset create shows.
func AssetFromNew(a models.NewAsset, id, ownerID, createdAt string) models.Asset {
	return models.Asset{
		ID:        id,
		UserID:    ownerID,
		Name:      a.Name,
		Type:      a.Type,
		Amount:    a.Amount,
		CreatedAt: createdAt,
	}
}

// NewDebtFromRecord recovers the create fields from a queued debt record.
func NewDebtFromRecord(d models.Debt) models.NewDebt {
	return models.NewDebt{
		Title:    d.Title,
		Creditor: d.Creditor,
		Amount:   d.Amount,
		Currency: d.Currency,
		DueDate:  d.DueDate,
		Status:   d.Status,
		Type:     d.Type,
	}
}

// NewAssetFromRecord recovers the create fields from a queued asset record.
func NewAssetFromRecord(a models.Asset) models.NewAsset {
	return models.NewAsset{Name: a.Name, Type: a.Type, Amount: a.Amount}
}
