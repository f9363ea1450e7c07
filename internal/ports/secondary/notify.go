package secondary

import (
	"context"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/core/replay"
)

// SyncNotifier defines the secondary port for surfacing replay progress.
// Replay errors never reach the caller that queued the mutation; this is
// the only channel they are reported on.
type SyncNotifier interface {
	// SyncStarted is called before a cycle replays count entries.
	SyncStarted(ctx context.Context, ownerID string, count int)

	// MutationFailed is called once per entry the gateway rejected.
	MutationFailed(ctx context.Context, kind mutation.Kind, err error)

	// SyncCompleted is called after the log has been settled.
	SyncCompleted(ctx context.Context, summary replay.Summary)
}
