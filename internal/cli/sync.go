package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/finq/internal/wire"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes against the backend",
		Long: `Replay queued changes in the order they were made.

Without --once, sync keeps running: it replays on start, every replay
interval, and whenever the backend becomes reachable again, until
interrupted.

Examples:
  finq sync --once
  finq sync -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if once {
				wire.CheckConnectivity(cmd.Context())
				_, err := wire.QueueAdapter().Sync(cmd.Context())
				return err
			}
			return runSyncLoop(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single replay cycle and exit")

	return cmd
}

func runSyncLoop(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wire.Logger().Info("sync loop started", "backend", wire.Config().BackendURL)
	wire.WatchConnectivity(ctx)
	return wire.ReplayService().Run(ctx)
}
