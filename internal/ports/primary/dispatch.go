// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

// DispatchService defines the primary port for debt and asset writes.
// Each call goes straight to the remote store when online and is queued
// locally, with an optimistic cache patch, when offline.
type DispatchService interface {
	// CreateDebt creates a debt for the signed-in user.
	CreateDebt(ctx context.Context, debt models.NewDebt) (*DebtResponse, error)

	// UpdateDebt applies a partial update to a debt.
	UpdateDebt(ctx context.Context, update models.DebtUpdate) (*WriteResponse, error)

	// DeleteDebt deletes a debt.
	DeleteDebt(ctx context.Context, debtID string) (*WriteResponse, error)

	// RecordPayment sets a debt's remaining amount after a payment.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*WriteResponse, error)

	// CreateAsset creates an asset for the signed-in user.
	CreateAsset(ctx context.Context, asset models.NewAsset) (*AssetResponse, error)

	// UpdateAsset applies a partial update to an asset.
	UpdateAsset(ctx context.Context, update models.AssetUpdate) (*WriteResponse, error)

	// DeleteAsset deletes an asset.
	DeleteAsset(ctx context.Context, assetID string) (*WriteResponse, error)

	// ListDebts returns the signed-in user's debts, from the cache when offline.
	ListDebts(ctx context.Context) ([]models.Debt, error)

	// ListAssets returns the signed-in user's assets, from the cache when offline.
	ListAssets(ctx context.Context) ([]models.Asset, error)
}

// RecordPaymentRequest contains parameters for recording a debt payment.
type RecordPaymentRequest struct {
	DebtID    string
	Remaining decimal.Decimal
	Note      string
}

// DebtResponse contains the result of creating a debt.
// Queued responses carry the optimistic record with a placeholder ID.
type DebtResponse struct {
	Debt   models.Debt
	Queued bool
}

// AssetResponse contains the result of creating an asset.
type AssetResponse struct {
	Asset  models.Asset
	Queued bool
}

// WriteResponse contains the result of an update or delete.
type WriteResponse struct {
	ID     string
	Queued bool
}
