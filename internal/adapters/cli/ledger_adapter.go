package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/primary"
)

// LedgerAdapter is a thin adapter that translates CLI operations to DispatchService calls.
// Writes made offline are reported as queued rather than saved.
type LedgerAdapter struct {
	service primary.DispatchService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter with the given service.
func NewLedgerAdapter(service primary.DispatchService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{
		service: service,
		out:     out,
	}
}

// ListDebts prints the signed-in user's debts.
func (a *LedgerAdapter) ListDebts(ctx context.Context) ([]models.Debt, error) {
	debts, err := a.service.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}

	if len(debts) == 0 {
		fmt.Fprintln(a.out, "No debts found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Record your first debt:")
		fmt.Fprintln(a.out, "  finq debt add \"Car loan\" --creditor Bank --amount 5000")
		return debts, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREDITOR\tAMOUNT\tDUE\tSTATUS\tTYPE")
	fmt.Fprintln(w, "--\t-----\t--------\t------\t---\t------\t----")

	for _, d := range debts {
		due := "-"
		if d.DueDate != nil {
			due = *d.DueDate
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\t%s\n",
			d.ID,
			d.Title,
			d.Creditor,
			d.Amount.StringFixed(2),
			d.Currency,
			due,
			d.Status,
			d.Type,
		)
	}

	w.Flush()
	return debts, nil
}

// ListAssets prints the signed-in user's assets.
func (a *LedgerAdapter) ListAssets(ctx context.Context) ([]models.Asset, error) {
	assets, err := a.service.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	if len(assets) == 0 {
		fmt.Fprintln(a.out, "No assets found.")
		return assets, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tAMOUNT")
	fmt.Fprintln(w, "--\t----\t----\t------")

	for _, as := range assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", as.ID, as.Name, as.Type, as.Amount.String())
	}

	w.Flush()
	return assets, nil
}

// AddDebt creates a debt.
func (a *LedgerAdapter) AddDebt(ctx context.Context, debt models.NewDebt) (*primary.DebtResponse, error) {
	resp, err := a.service.CreateDebt(ctx, debt)
	if err != nil {
		return nil, err
	}
	a.report("debt", "Created", resp.Debt.ID+": "+resp.Debt.Title, resp.Queued)
	return resp, nil
}

// UpdateDebt applies a partial debt update.
func (a *LedgerAdapter) UpdateDebt(ctx context.Context, update models.DebtUpdate) (*primary.WriteResponse, error) {
	resp, err := a.service.UpdateDebt(ctx, update)
	if err != nil {
		return nil, err
	}
	a.report("debt", "Updated", resp.ID, resp.Queued)
	return resp, nil
}

// RecordPayment sets a debt's remaining amount.
func (a *LedgerAdapter) RecordPayment(ctx context.Context, req primary.RecordPaymentRequest) (*primary.WriteResponse, error) {
	resp, err := a.service.RecordPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	a.report("payment for debt", "Recorded", resp.ID+" (remaining "+req.Remaining.String()+")", resp.Queued)
	return resp, nil
}

// DeleteDebt deletes a debt.
func (a *LedgerAdapter) DeleteDebt(ctx context.Context, debtID string) (*primary.WriteResponse, error) {
	resp, err := a.service.DeleteDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	a.report("debt", "Deleted", resp.ID, resp.Queued)
	return resp, nil
}

// AddAsset creates an asset.
func (a *LedgerAdapter) AddAsset(ctx context.Context, asset models.NewAsset) (*primary.AssetResponse, error) {
	resp, err := a.service.CreateAsset(ctx, asset)
	if err != nil {
		return nil, err
	}
	a.report("asset", "Created", resp.Asset.ID+": "+resp.Asset.Name, resp.Queued)
	return resp, nil
}

// UpdateAsset applies a partial asset update.
func (a *LedgerAdapter) UpdateAsset(ctx context.Context, update models.AssetUpdate) (*primary.WriteResponse, error) {
	resp, err := a.service.UpdateAsset(ctx, update)
	if err != nil {
		return nil, err
	}
	a.report("asset", "Updated", resp.ID, resp.Queued)
	return resp, nil
}

// DeleteAsset deletes an asset.
func (a *LedgerAdapter) DeleteAsset(ctx context.Context, assetID string) (*primary.WriteResponse, error) {
	resp, err := a.service.DeleteAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	a.report("asset", "Deleted", resp.ID, resp.Queued)
	return resp, nil
}

func (a *LedgerAdapter) report(noun, verb, subject string, queued bool) {
	if queued {
		fmt.Fprintf(a.out, "⏸ %s %s %s offline, queued for sync\n", verb, noun, subject)
		return
	}
	fmt.Fprintf(a.out, "✓ %s %s %s\n", verb, noun, subject)
}
