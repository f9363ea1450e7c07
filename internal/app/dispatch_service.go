package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/primary"
	"github.com/example/finq/internal/ports/secondary"
)

// DispatchServiceImpl implements the DispatchService interface.
type DispatchServiceImpl struct {
	identity secondary.IdentityProvider
	monitor  secondary.ConnectivityMonitor
	gateway  secondary.RemoteGateway
	log      secondary.MutationLog
	debts    secondary.CollectionCache[models.Debt]
	assets   secondary.CollectionCache[models.Asset]
	logger   *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewDispatchService creates a new DispatchService with injected dependencies.
func NewDispatchService(
	identity secondary.IdentityProvider,
	monitor secondary.ConnectivityMonitor,
	gateway secondary.RemoteGateway,
	log secondary.MutationLog,
	debts secondary.CollectionCache[models.Debt],
	assets secondary.CollectionCache[models.Asset],
	logger *slog.Logger,
) *DispatchServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchServiceImpl{
		identity: identity,
		monitor:  monitor,
		gateway:  gateway,
		log:      log,
		debts:    debts,
		assets:   assets,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.New,
	}
}

func debtsKey(ownerID string) secondary.CollectionKey {
	return secondary.CollectionKey{Entity: mutation.EntityDebts, OwnerID: ownerID}
}

func assetsKey(ownerID string) secondary.CollectionKey {
	return secondary.CollectionKey{Entity: mutation.EntityAssets, OwnerID: ownerID}
}

// owner resolves the signed-in user.
func (s *DispatchServiceImpl) owner(ctx context.Context) (string, error) {
	identity, err := s.identity.GetCurrentIdentity(ctx)
	if err != nil {
		return "", err
	}
	return identity.UserID, nil
}

// enqueue appends a mutation to the log. The caller patches the cache only
// after this succeeds.
func (s *DispatchServiceImpl) enqueue(ctx context.Context, kind mutation.Kind, ownerID string, payload any) error {
	m, err := mutation.New(kind, ownerID, payload, s.now())
	if err != nil {
		return err
	}
	if _, err := s.log.Append(ctx, m); err != nil {
		return fmt.Errorf("failed to queue %s: %w", kind, err)
	}
	s.logger.InfoContext(ctx, "queued offline change", "kind", kind, "id", m.TargetID())
	return nil
}

// CreateDebt creates a debt for the signed-in user.
func (s *DispatchServiceImpl) CreateDebt(ctx context.Context, debt models.NewDebt) (*primary.DebtResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	debt = mutation.NormalizeNewDebt(debt)
	if result := mutation.CanCreateDebt(debt); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		created, err := s.gateway.CreateDebt(ctx, debt, ownerID)
		if err != nil {
			return nil, err
		}
		s.debts.Invalidate(debtsKey(ownerID))
		return &primary.DebtResponse{Debt: *created}, nil
	}

	record := mutation.DebtFromNew(debt, mutation.GeneratePlaceholderID(s.newID()), ownerID, s.now().UTC().Format(time.RFC3339))
	if err := s.enqueue(ctx, mutation.KindCreateDebt, ownerID, record); err != nil {
		return nil, err
	}
	s.debts.Patch(debtsKey(ownerID), mutation.Insert(record))

	return &primary.DebtResponse{Debt: record, Queued: true}, nil
}

// UpdateDebt applies a partial update to a debt.
func (s *DispatchServiceImpl) UpdateDebt(ctx context.Context, update models.DebtUpdate) (*primary.WriteResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if result := mutation.CanUpdateDebt(update); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		if err := applyDebtUpdate(ctx, s.gateway, update); err != nil {
			return nil, err
		}
		s.debts.Invalidate(debtsKey(ownerID))
		return &primary.WriteResponse{ID: update.ID}, nil
	}

	if err := s.enqueue(ctx, mutation.KindUpdateDebt, ownerID, update); err != nil {
		return nil, err
	}
	s.debts.Patch(debtsKey(ownerID), mutation.MergeDebt(update))

	return &primary.WriteResponse{ID: update.ID, Queued: true}, nil
}

// DeleteDebt deletes a debt.
func (s *DispatchServiceImpl) DeleteDebt(ctx context.Context, debtID string) (*primary.WriteResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if result := mutation.CanDelete(debtID); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		id, err := s.gateway.DeleteDebt(ctx, debtID)
		if err != nil {
			return nil, err
		}
		s.debts.Invalidate(debtsKey(ownerID))
		return &primary.WriteResponse{ID: id}, nil
	}

	if err := s.enqueue(ctx, mutation.KindDeleteDebt, ownerID, mutation.DeletePayload{ID: debtID}); err != nil {
		return nil, err
	}
	s.debts.Patch(debtsKey(ownerID), mutation.Remove[models.Debt](debtID))

	return &primary.WriteResponse{ID: debtID, Queued: true}, nil
}

// RecordPayment sets a debt's remaining amount after a payment.
func (s *DispatchServiceImpl) RecordPayment(ctx context.Context, req primary.RecordPaymentRequest) (*primary.WriteResponse, error) {
	if result := mutation.CanRecordPayment(req.DebtID, req.Remaining); !result.Allowed {
		return nil, result.Error()
	}

	remaining := req.Remaining
	return s.UpdateDebt(ctx, models.DebtUpdate{
		ID:     req.DebtID,
		Amount: &remaining,
		Note:   noteOrDefault(req.Note, defaultPaymentNote),
	})
}

// CreateAsset creates an asset for the signed-in user.
func (s *DispatchServiceImpl) CreateAsset(ctx context.Context, asset models.NewAsset) (*primary.AssetResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if result := mutation.CanCreateAsset(asset); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		created, err := s.gateway.CreateAsset(ctx, asset, ownerID)
		if err != nil {
			return nil, err
		}
		s.assets.Invalidate(assetsKey(ownerID))
		return &primary.AssetResponse{Asset: *created}, nil
	}

	record := mutation.AssetFromNew(asset, mutation.GeneratePlaceholderID(s.newID()), ownerID, s.now().UTC().Format(time.RFC3339))
	if err := s.enqueue(ctx, mutation.KindCreateAsset, ownerID, record); err != nil {
		return nil, err
	}
	s.assets.Patch(assetsKey(ownerID), mutation.Insert(record))

	return &primary.AssetResponse{Asset: record, Queued: true}, nil
}

// UpdateAsset applies a partial update to an asset.
func (s *DispatchServiceImpl) UpdateAsset(ctx context.Context, update models.AssetUpdate) (*primary.WriteResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if result := mutation.CanUpdateAsset(update); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		if err := applyAssetUpdate(ctx, s.gateway, update); err != nil {
			return nil, err
		}
		s.assets.Invalidate(assetsKey(ownerID))
		return &primary.WriteResponse{ID: update.ID}, nil
	}

	if err := s.enqueue(ctx, mutation.KindUpdateAsset, ownerID, update); err != nil {
		return nil, err
	}
	s.assets.Patch(assetsKey(ownerID), mutation.MergeAsset(update))

	return &primary.WriteResponse{ID: update.ID, Queued: true}, nil
}

// DeleteAsset deletes an asset.
func (s *DispatchServiceImpl) DeleteAsset(ctx context.Context, assetID string) (*primary.WriteResponse, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	if result := mutation.CanDelete(assetID); !result.Allowed {
		return nil, result.Error()
	}

	if !s.monitor.Offline() {
		id, err := s.gateway.DeleteAsset(ctx, assetID)
		if err != nil {
			return nil, err
		}
		s.assets.Invalidate(assetsKey(ownerID))
		return &primary.WriteResponse{ID: id}, nil
	}

	if err := s.enqueue(ctx, mutation.KindDeleteAsset, ownerID, mutation.DeletePayload{ID: assetID}); err != nil {
		return nil, err
	}
	s.assets.Patch(assetsKey(ownerID), mutation.Remove[models.Asset](assetID))

	return &primary.WriteResponse{ID: assetID, Queued: true}, nil
}

// ListDebts returns the signed-in user's debts. Offline, the cached copy
// (including optimistic records) is returned without a refetch.
func (s *DispatchServiceImpl) ListDebts(ctx context.Context) ([]models.Debt, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if s.monitor.Offline() {
		debts, _ := s.debts.Peek(debtsKey(ownerID))
		return debts, nil
	}
	return s.debts.Get(ctx, debtsKey(ownerID))
}

// ListAssets returns the signed-in user's assets.
func (s *DispatchServiceImpl) ListAssets(ctx context.Context) ([]models.Asset, error) {
	ownerID, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if s.monitor.Offline() {
		assets, _ := s.assets.Peek(assetsKey(ownerID))
		return assets, nil
	}
	return s.assets.Get(ctx, assetsKey(ownerID))
}

// Ensure DispatchServiceImpl implements the interface
var _ primary.DispatchService = (*DispatchServiceImpl)(nil)
