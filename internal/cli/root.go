// Package cli contains the cobra command tree of the finq binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/finq/internal/adapters/cli"
	"github.com/example/finq/internal/ctxutil"
	"github.com/example/finq/internal/version"
	"github.com/example/finq/internal/wire"
)

// RootCmd returns the finq root command with every subcommand registered.
func RootCmd() *cobra.Command {
	var opts wire.Options
	var user string

	cmd := &cobra.Command{
		Use:     "finq",
		Short:   "finq - offline-first debt and asset tracker",
		Version: version.String(),
		Long: `finq records debts and assets against a hosted backend.
Changes made while the backend is unreachable are queued locally and
replayed, in order, once it is reachable again.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.Configure(opts)
			if user != "" {
				cmd.SetContext(ctxutil.WithOwnerID(cmd.Context(), user))
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $FINQ_CONFIG or ~/.config/finq/config.toml)")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "treat the backend as unreachable and queue every change")
	cmd.PersistentFlags().StringVar(&user, "user", "", "act as this user id instead of user_id from config")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(DebtCmd())
	cmd.AddCommand(AssetCmd())
	cmd.AddCommand(QueueCmd())
	cmd.AddCommand(SyncCmd())
	cmd.AddCommand(StatusCmd())

	// Developer tools
	cmd.AddCommand(DevServerCmd())

	return cmd
}

// ledger takes a connectivity reading and, when online, replays anything
// still queued so the new change lands after it.
func ledger(ctx context.Context) *cliadapter.LedgerAdapter {
	if offline := wire.CheckConnectivity(ctx); !offline {
		if _, err := wire.ReplayService().Drain(ctx); err != nil {
			wire.Logger().Warn("replay before write failed", "error", err)
		}
	}
	return wire.LedgerAdapter()
}
