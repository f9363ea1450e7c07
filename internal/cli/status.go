package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/finq/internal/ctxutil"
	"github.com/example/finq/internal/version"
	"github.com/example/finq/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, session and queue state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := wire.Config()

			build := version.Get()

			fmt.Println("finq Status")
			fmt.Printf("  Version: %s\n", build.Version)
			fmt.Printf("  Commit:  %s (built %s)\n", build.ShortCommit(), build.BuildTime)
			fmt.Printf("  Backend: %s\n", cfg.BackendURL)

			if wire.CheckConnectivity(ctx) {
				fmt.Printf("  Network: %s\n", color.New(color.FgYellow).Sprint("offline"))
			} else {
				fmt.Printf("  Network: %s\n", color.New(color.FgGreen).Sprint("online"))
			}

			user := ctxutil.OwnerFromContext(ctx)
			if user == "" {
				user = cfg.UserID
			}
			if user == "" {
				fmt.Printf("  User:    %s\n", color.New(color.FgRed).Sprint("signed out"))
			} else {
				fmt.Printf("  User:    %s\n", user)
			}
			fmt.Printf("  DB:      %s\n", cfg.DBPath)

			pending, err := wire.ReplayService().Pending(ctx)
			if err != nil {
				return fmt.Errorf("failed to read queue: %w", err)
			}
			fmt.Printf("  Queued:  %d change(s)\n", len(pending))
			if len(pending) > 0 {
				fmt.Println()
				fmt.Println("Run `finq sync --once` to replay them.")
			}
			return nil
		},
	}
}
