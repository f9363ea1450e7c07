package app

import (
	"context"
	"fmt"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/secondary"
)

const (
	defaultUpdateNote  = "Updated amount"
	defaultPaymentNote = "Payment recorded"
)

// applyDebtUpdate sends the non-amount columns as a record update, then
// sets the amount through the history-recording procedure.
func applyDebtUpdate(ctx context.Context, gateway secondary.RemoteGateway, u models.DebtUpdate) error {
	if details := u.Details(); len(details) > 0 {
		if _, err := gateway.UpdateDebt(ctx, u.ID, details); err != nil {
			return err
		}
	}
	if u.Amount != nil {
		if err := gateway.UpdateDebtAmount(ctx, u.ID, *u.Amount, noteOrDefault(u.Note, defaultUpdateNote)); err != nil {
			return err
		}
	}
	return nil
}

// applyAssetUpdate is applyDebtUpdate for assets.
func applyAssetUpdate(ctx context.Context, gateway secondary.RemoteGateway, u models.AssetUpdate) error {
	if details := u.Details(); len(details) > 0 {
		if _, err := gateway.UpdateAsset(ctx, u.ID, details); err != nil {
			return err
		}
	}
	if u.Amount != nil {
		if err := gateway.UpdateAssetAmount(ctx, u.ID, *u.Amount, noteOrDefault(u.Note, defaultUpdateNote)); err != nil {
			return err
		}
	}
	return nil
}

// applyMutation sends one queued mutation to the gateway and returns the
// server identifier of the record it wrote. Creates without a recorded
// owner are written for ownerID.
func applyMutation(ctx context.Context, gateway secondary.RemoteGateway, m mutation.Mutation, ownerID string) (string, error) {
	if owner := m.Owner(); owner != "" {
		ownerID = owner
	}
	switch m.Kind {
	case mutation.KindCreateDebt:
		rec, err := mutation.Decode[models.Debt](m)
		if err != nil {
			return "", err
		}
		created, err := gateway.CreateDebt(ctx, mutation.NewDebtFromRecord(rec), ownerID)
		if err != nil {
			return "", err
		}
		return created.ID, nil

	case mutation.KindUpdateDebt:
		u, err := mutation.Decode[models.DebtUpdate](m)
		if err != nil {
			return "", err
		}
		return u.ID, applyDebtUpdate(ctx, gateway, u)

	case mutation.KindDeleteDebt:
		p, err := mutation.Decode[mutation.DeletePayload](m)
		if err != nil {
			return "", err
		}
		return gateway.DeleteDebt(ctx, p.ID)

	case mutation.KindCreateAsset:
		rec, err := mutation.Decode[models.Asset](m)
		if err != nil {
			return "", err
		}
		created, err := gateway.CreateAsset(ctx, mutation.NewAssetFromRecord(rec), ownerID)
		if err != nil {
			return "", err
		}
		return created.ID, nil

	case mutation.KindUpdateAsset:
		u, err := mutation.Decode[models.AssetUpdate](m)
		if err != nil {
			return "", err
		}
		return u.ID, applyAssetUpdate(ctx, gateway, u)

	case mutation.KindDeleteAsset:
		p, err := mutation.Decode[mutation.DeletePayload](m)
		if err != nil {
			return "", err
		}
		return gateway.DeleteAsset(ctx, p.ID)
	}
	return "", fmt.Errorf("%w: %q", mutation.ErrUnknownKind, m.Kind)
}

func noteOrDefault(note, def string) string {
	if note == "" {
		return def
	}
	return note
}
