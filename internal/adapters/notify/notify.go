// Package notify implements SyncNotifier adapters: a structured log sink and
// a console sink that prints the user-facing sync messages.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/core/replay"
	"github.com/example/finq/internal/ports/secondary"
)

// LogNotifier records sync progress in the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier writing to logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SyncStarted(ctx context.Context, ownerID string, count int) {
	n.logger.InfoContext(ctx, "sync started", "owner", ownerID, "count", count)
}

func (n *LogNotifier) MutationFailed(ctx context.Context, kind mutation.Kind, err error) {
	n.logger.ErrorContext(ctx, "failed to sync mutation", "kind", kind, "error", err)
}

func (n *LogNotifier) SyncCompleted(ctx context.Context, s replay.Summary) {
	n.logger.InfoContext(ctx, "sync completed",
		"replayed", s.Replayed,
		"applied", s.Applied,
		"failed", s.Failed,
		"unknown", s.Unknown,
		"retained", s.Retained,
		"discarded", s.Discarded,
	)
}

// ConsoleNotifier prints the user-facing sync messages.
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier creates a notifier printing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) SyncStarted(ctx context.Context, ownerID string, count int) {
	fmt.Fprintf(n.out, "%s Syncing your offline changes... (%d queued)\n", color.New(color.FgCyan).Sprint("↻"), count)
}

func (n *ConsoleNotifier) MutationFailed(ctx context.Context, kind mutation.Kind, err error) {
	fmt.Fprintf(n.out, "%s Failed to sync a change\n", color.New(color.FgRed).Sprint("✗"))
	fmt.Fprintf(n.out, "  Could not process: %s (%v)\n", kind, err)
}

func (n *ConsoleNotifier) SyncCompleted(ctx context.Context, s replay.Summary) {
	if s.Retained > 0 {
		fmt.Fprintf(n.out, "%s %d change(s) will be retried\n", color.New(color.FgYellow).Sprint("!"), s.Retained)
	}
	if s.Discarded > 0 {
		fmt.Fprintf(n.out, "%s %d change(s) could not be synced and were discarded\n", color.New(color.FgRed).Sprint("✗"), s.Discarded)
	}
	if s.Failed == 0 && s.Discarded == 0 {
		fmt.Fprintf(n.out, "%s Your data is now up to date!\n", color.New(color.FgGreen).Sprint("✓"))
	}
}

// Multi forwards every notification to each notifier in order.
type Multi []secondary.SyncNotifier

func (m Multi) SyncStarted(ctx context.Context, ownerID string, count int) {
	for _, n := range m {
		n.SyncStarted(ctx, ownerID, count)
	}
}

func (m Multi) MutationFailed(ctx context.Context, kind mutation.Kind, err error) {
	for _, n := range m {
		n.MutationFailed(ctx, kind, err)
	}
}

func (m Multi) SyncCompleted(ctx context.Context, s replay.Summary) {
	for _, n := range m {
		n.SyncCompleted(ctx, s)
	}
}

var (
	_ secondary.SyncNotifier = (*LogNotifier)(nil)
	_ secondary.SyncNotifier = (*ConsoleNotifier)(nil)
	_ secondary.SyncNotifier = Multi(nil)
)
