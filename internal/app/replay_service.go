package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/finq/internal/core/mutation"
	"github.com/example/finq/internal/core/replay"
	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/primary"
	"github.com/example/finq/internal/ports/secondary"
)

const defaultReplayInterval = 10 * time.Second

// ReplayOptions tunes the replay loop.
type ReplayOptions struct {
	// Interval between timer-driven drains.
	Interval time.Duration
	// MaxAttempts bounds how often a failing entry is tried before it is
	// discarded. Values below 1 mean a single attempt.
	MaxAttempts int
}

// ReplayServiceImpl implements the ReplayService interface.
type ReplayServiceImpl struct {
	identity secondary.IdentityProvider
	monitor  secondary.ConnectivityMonitor
	gateway  secondary.RemoteGateway
	log      secondary.MutationLog
	debts    secondary.CollectionCache[models.Debt]
	assets   secondary.CollectionCache[models.Asset]
	notifier secondary.SyncNotifier
	logger   *slog.Logger
	opts     ReplayOptions

	// draining is held for the whole of a drain cycle and only ever acquired
	// with TryLock.
	draining sync.Mutex
}

// NewReplayService creates a new ReplayService with injected dependencies.
func NewReplayService(
	identity secondary.IdentityProvider,
	monitor secondary.ConnectivityMonitor,
	gateway secondary.RemoteGateway,
	log secondary.MutationLog,
	debts secondary.CollectionCache[models.Debt],
	assets secondary.CollectionCache[models.Asset],
	notifier secondary.SyncNotifier,
	opts ReplayOptions,
	logger *slog.Logger,
) *ReplayServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultReplayInterval
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &ReplayServiceImpl{
		identity: identity,
		monitor:  monitor,
		gateway:  gateway,
		log:      log,
		debts:    debts,
		assets:   assets,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Drain runs one drain cycle.
func (s *ReplayServiceImpl) Drain(ctx context.Context) (*primary.DrainResult, error) {
	if s.monitor.Offline() {
		return &primary.DrainResult{Skipped: primary.SkipOffline}, nil
	}

	identity, err := s.identity.GetCurrentIdentity(ctx)
	if errors.Is(err, secondary.ErrAuthRequired) {
		return &primary.DrainResult{Skipped: primary.SkipSignedOut}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if !s.draining.TryLock() {
		return &primary.DrainResult{Skipped: primary.SkipBusy}, nil
	}
	defer s.draining.Unlock()

	snapshot, err := s.log.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read mutation log: %w", err)
	}

	if len(snapshot) == 0 {
		return &primary.DrainResult{Skipped: primary.SkipEmpty}, nil
	}

	ownerID := identity.UserID
	sel := replay.Select(snapshot, ownerID)
	if len(sel.Owned) > 0 {
		s.notifier.SyncStarted(ctx, ownerID, len(sel.Owned))
	}
	s.logger.InfoContext(ctx, "draining mutation log", "owner", ownerID, "entries", len(sel.Owned), "foreign", sel.Foreign)

	ids := replay.IDMap{}
	cursor := sel.Cursor
	outcomes := make([]replay.Outcome, 0, len(sel.Owned))
	for _, e := range sel.Owned {
		if ctx.Err() != nil {
			cursor = e.Seq - 1
			break
		}
		outcome := s.replayEntry(ctx, e, ownerID, ids)
		if outcome.Status == replay.StatusFailed && ctx.Err() != nil {
			// Cancelled mid-request: leave this entry and the rest for the next cycle.
			cursor = e.Seq - 1
			break
		}
		outcomes = append(outcomes, outcome)
	}

	retained := replay.PlanSettle(outcomes, s.opts.MaxAttempts)
	settleErr := s.log.Settle(context.WithoutCancel(ctx), cursor, retained)
	if settleErr != nil {
		s.logger.ErrorContext(ctx, "failed to settle mutation log", "through", cursor, "error", settleErr)
	}

	summary := replay.Summarize(outcomes, retained, sel.Foreign)
	s.notifier.SyncCompleted(ctx, summary)

	s.debts.Invalidate(debtsKey(ownerID))
	s.assets.Invalidate(assetsKey(ownerID))

	result := &primary.DrainResult{Summary: summary, Outcomes: outcomes}
	if settleErr != nil {
		return result, fmt.Errorf("failed to settle mutation log: %w", settleErr)
	}
	return result, nil
}

// replayEntry sends one entry, rewriting placeholder references created
// earlier in the cycle. The returned outcome carries the rewritten entry.
func (s *ReplayServiceImpl) replayEntry(ctx context.Context, e mutation.Entry, ownerID string, ids replay.IDMap) replay.Outcome {
	if !e.Mutation.Kind.Valid() {
		s.logger.WarnContext(ctx, "skipping mutation of unknown kind", "seq", e.Seq, "kind", e.Mutation.Kind)
		return replay.Outcome{Entry: e, Status: replay.StatusUnknownKind, Err: mutation.ErrUnknownKind}
	}

	m, err := ids.Rewrite(e.Mutation)
	if err != nil {
		return s.failed(ctx, e, err)
	}
	e.Mutation = m

	serverID, err := applyMutation(ctx, s.gateway, m, ownerID)
	if err != nil && ctx.Err() != nil {
		return replay.Outcome{Entry: e, Status: replay.StatusFailed, Err: err}
	}
	if err != nil {
		return s.failed(ctx, e, err)
	}
	if m.Kind.IsCreate() {
		ids.Record(m.TargetID(), serverID)
	}

	s.logger.DebugContext(ctx, "replayed mutation", "seq", e.Seq, "kind", m.Kind, "id", serverID)
	return replay.Outcome{Entry: e, Status: replay.StatusApplied}
}

func (s *ReplayServiceImpl) failed(ctx context.Context, e mutation.Entry, err error) replay.Outcome {
	s.logger.ErrorContext(ctx, "failed to process queued mutation", "seq", e.Seq, "kind", e.Mutation.Kind, "error", err)
	s.notifier.MutationFailed(ctx, e.Mutation.Kind, err)
	return replay.Outcome{Entry: e, Status: replay.StatusFailed, Err: err}
}

// Run drains on start, on every tick and whenever connectivity returns,
// until ctx is done.
func (s *ReplayServiceImpl) Run(ctx context.Context) error {
	wake := make(chan struct{}, 1)
	unsubscribe := s.monitor.Subscribe(func(offline bool) {
		if offline {
			return
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.Drain(ctx); err != nil {
			s.logger.ErrorContext(ctx, "drain failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}

// Pending returns the entries currently in the log.
func (s *ReplayServiceImpl) Pending(ctx context.Context) ([]mutation.Entry, error) {
	return s.log.ReadAll(ctx)
}

// Discard deletes every pending entry without replaying it.
func (s *ReplayServiceImpl) Discard(ctx context.Context) error {
	return s.log.Clear(ctx)
}

// Ensure ReplayServiceImpl implements the interface
var _ primary.ReplayService = (*ReplayServiceImpl)(nil)
