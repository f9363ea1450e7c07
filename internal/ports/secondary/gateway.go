package secondary

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/example/finq/internal/models"
)

// RemoteGateway defines the secondary port for the hosted data store.
// Rejections are reported as *GatewayError.
type RemoteGateway interface {
	// ListDebts retrieves the owner's debts with their amount history.
	ListDebts(ctx context.Context, ownerID string) ([]models.Debt, error)

	// CreateDebt inserts a debt for ownerID and returns the stored record.
	CreateDebt(ctx context.Context, debt models.NewDebt, ownerID string) (*models.Debt, error)

	// UpdateDebt writes the given columns of one debt.
	UpdateDebt(ctx context.Context, id string, fields map[string]any) (*models.Debt, error)

	// DeleteDebt removes a debt and returns its id.
	DeleteDebt(ctx context.Context, id string) (string, error)

	// UpdateDebtAmount sets the debt's amount and appends a history row atomically.
	UpdateDebtAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error

	// ListAssets retrieves the owner's assets, newest first.
	ListAssets(ctx context.Context, ownerID string) ([]models.Asset, error)

	// CreateAsset inserts an asset for ownerID and returns the stored record.
	CreateAsset(ctx context.Context, asset models.NewAsset, ownerID string) (*models.Asset, error)

	// UpdateAsset writes the given columns of one asset.
	UpdateAsset(ctx context.Context, id string, fields map[string]any) (*models.Asset, error)

	// DeleteAsset removes an asset and returns its id.
	DeleteAsset(ctx context.Context, id string) (string, error)

	// UpdateAssetAmount sets the asset's amount and appends a history row atomically.
	UpdateAssetAmount(ctx context.Context, id string, amount decimal.Decimal, note string) error
}
