package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/finq/internal/wire"
)

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the offline change queue",
		Long:  `List or discard the changes waiting to be replayed against the backend.`,
	}

	cmd.AddCommand(queueListCmd())
	cmd.AddCommand(queueClearCmd())

	return cmd
}

func queueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued changes in replay order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.QueueAdapter().List(cmd.Context())
			return err
		},
	}
}

func queueClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard every queued change without replaying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to discard queued changes without --force")
			}
			_, err := wire.QueueAdapter().Clear(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "confirm discarding the queue")

	return cmd
}
