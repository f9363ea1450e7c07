package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/ports/primary"
)

// QueueAdapter is a thin adapter that translates CLI operations to ReplayService calls.
type QueueAdapter struct {
	service primary.ReplayService
	out     io.Writer
}

// NewQueueAdapter creates a new QueueAdapter with the given service.
func NewQueueAdapter(service primary.ReplayService, out io.Writer) *QueueAdapter {
	return &QueueAdapter{
		service: service,
		out:     out,
	}
}

// List prints the pending offline changes in replay order.
func (a *QueueAdapter) List(ctx context.Context) ([]mutation.Entry, error) {
	entries, err := a.service.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No queued changes.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SEQ\tKIND\tTARGET\tOWNER\tQUEUED\tATTEMPTS")
	fmt.Fprintln(w, "---\t----\t------\t-----\t------\t--------")

	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			e.Seq,
			e.Mutation.Kind,
			orDash(e.Mutation.TargetID()),
			orDash(e.Mutation.Owner()),
			formatQueuedAt(e.Mutation.QueuedAt),
			e.Mutation.Attempts,
		)
	}

	w.Flush()
	return entries, nil
}

// Clear discards every pending change and reports how many were dropped.
func (a *QueueAdapter) Clear(ctx context.Context) (int, error) {
	entries, err := a.service.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read queue: %w", err)
	}
	if err := a.service.Discard(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear queue: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Discarded %d queued change(s)\n", len(entries))
	return len(entries), nil
}

// Sync runs one drain cycle and prints its result.
func (a *QueueAdapter) Sync(ctx context.Context) (*primary.DrainResult, error) {
	result, err := a.service.Drain(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync: %w", err)
	}

	if result.Skipped != primary.SkipNone {
		fmt.Fprintf(a.out, "Sync skipped: %s\n", result.Skipped)
		return result, nil
	}

	s := result.Summary
	fmt.Fprintf(a.out, "✓ Replayed %d change(s): %d applied, %d failed", s.Replayed, s.Applied, s.Failed)
	if s.Unknown > 0 {
		fmt.Fprintf(a.out, ", %d unrecognised", s.Unknown)
	}
	fmt.Fprintln(a.out)
	if s.Retained > 0 {
		fmt.Fprintf(a.out, "  %d change(s) kept for retry\n", s.Retained)
	}
	return result, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatQueuedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
