package primary

import (
	"context"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/core/replay"
)

// ReplayService defines the primary port for draining the offline queue.
type ReplayService interface {
	// Drain runs one drain cycle, or skips it when offline, signed out or
	// already draining.
	Drain(ctx context.Context) (*DrainResult, error)

	// Run drains on start, on every tick and whenever connectivity returns,
	// until ctx is done.
	Run(ctx context.Context) error

	// Pending returns the entries currently in the log.
	Pending(ctx context.Context) ([]mutation.Entry, error)

	// Discard deletes every pending entry without replaying it.
	Discard(ctx context.Context) error
}

// SkipReason explains why a drain cycle did not run.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipOffline   SkipReason = "offline"
	SkipSignedOut SkipReason = "signed out"
	SkipBusy      SkipReason = "drain in progress"
	SkipEmpty     SkipReason = "nothing queued"
)

// DrainResult contains the result of one drain cycle.
type DrainResult struct {
	Skipped  SkipReason
	Summary  replay.Summary
	Outcomes []replay.Outcome
}
