package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/finq/internal/models"
)

// AssetCmd returns the asset command
func AssetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage assets",
		Long:  `Create, update and list gold, silver and crypto holdings. Changes made offline are queued.`,
	}

	cmd.AddCommand(assetAddCmd())
	cmd.AddCommand(assetUpdateCmd())
	cmd.AddCommand(assetDeleteCmd())
	cmd.AddCommand(assetListCmd())

	return cmd
}

func assetAddCmd() *cobra.Command {
	var assetType, amount string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Record a new asset",
		Long: `Record a new asset.

Examples:
  finq asset add "Gold coins" --type gold --amount 12.5
  finq asset add BTC --type crypto --amount 0.3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}

			_, err = ledger(cmd.Context()).AddAsset(cmd.Context(), models.NewAsset{
				Name:   args[0],
				Type:   models.AssetType(assetType),
				Amount: value,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&assetType, "type", "", "gold, silver or crypto (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "quantity held (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func assetUpdateCmd() *cobra.Command {
	var name, assetType, amount, note string

	cmd := &cobra.Command{
		Use:   "update [asset-id]",
		Short: "Update fields of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := models.AssetUpdate{ID: args[0], Note: note}
			flags := cmd.Flags()

			if flags.Changed("name") {
				update.Name = &name
			}
			if flags.Changed("type") {
				t := models.AssetType(assetType)
				update.Type = &t
			}
			if flags.Changed("amount") {
				value, err := parseAmount(amount)
				if err != nil {
					return err
				}
				update.Amount = &value
			}

			_, err := ledger(cmd.Context()).UpdateAsset(cmd.Context(), update)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&assetType, "type", "", "gold, silver or crypto")
	cmd.Flags().StringVar(&amount, "amount", "", "new quantity held")
	cmd.Flags().StringVar(&note, "note", "", "note stored with the amount change")

	return cmd
}

func assetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [asset-id]",
		Short: "Delete an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ledger(cmd.Context()).DeleteAsset(cmd.Context(), args[0])
			return err
		},
	}
}

func assetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ledger(cmd.Context()).ListAssets(cmd.Context())
			return err
		},
	}
}
