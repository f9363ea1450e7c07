package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/primary"
)

// DebtCmd returns the debt command
func DebtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Manage debts",
		Long:  `Create, update, pay off and list debts. Changes made offline are queued.`,
	}

	cmd.AddCommand(debtAddCmd())
	cmd.AddCommand(debtUpdateCmd())
	cmd.AddCommand(debtPayCmd())
	cmd.AddCommand(debtDeleteCmd())
	cmd.AddCommand(debtListCmd())

	return cmd
}

func debtAddCmd() *cobra.Command {
	var creditor, amount, currency, dueDate, status, term string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Record a new debt",
		Long: `Record a new debt.

Examples:
  finq debt add "Car loan" --creditor Bank --amount 5000
  finq debt add Rent --creditor Landlord --amount 1200 --currency EUR --due 2026-11-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}

			debt := models.NewDebt{
				Title:    args[0],
				Creditor: creditor,
				Amount:   value,
				Currency: models.Currency(currency),
				Status:   models.DebtStatus(status),
				Type:     models.DebtTerm(term),
			}
			if dueDate != "" {
				debt.DueDate = &dueDate
			}

			_, err = ledger(cmd.Context()).AddDebt(cmd.Context(), debt)
			return err
		},
	}

	cmd.Flags().StringVar(&creditor, "creditor", "", "who the debt is owed to (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount owed (required)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (default USD)")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "pending or paid (default pending)")
	cmd.Flags().StringVar(&term, "type", "", "short or long (default short)")
	_ = cmd.MarkFlagRequired("creditor")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func debtUpdateCmd() *cobra.Command {
	var title, creditor, amount, currency, dueDate, status, note string

	cmd := &cobra.Command{
		Use:   "update [debt-id]",
		Short: "Update fields of a debt",
		Long: `Update one or more fields of a debt. Only the flags given are changed.
Pass --due "" to clear the due date.

Examples:
  finq debt update 3f2c... --amount 4200 --note "Refinanced"
  finq debt update offline_9a1e... --status paid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := models.DebtUpdate{ID: args[0], Note: note}
			flags := cmd.Flags()

			if flags.Changed("title") {
				update.Title = &title
			}
			if flags.Changed("creditor") {
				update.Creditor = &creditor
			}
			if flags.Changed("due") {
				update.DueDate = &dueDate
			}
			if flags.Changed("status") {
				s := models.DebtStatus(status)
				update.Status = &s
			}
			if flags.Changed("currency") {
				c := models.Currency(currency)
				update.Currency = &c
			}
			if flags.Changed("amount") {
				value, err := parseAmount(amount)
				if err != nil {
					return err
				}
				update.Amount = &value
			}

			_, err := ledger(cmd.Context()).UpdateDebt(cmd.Context(), update)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&creditor, "creditor", "", "new creditor")
	cmd.Flags().StringVar(&amount, "amount", "", "new remaining amount")
	cmd.Flags().StringVar(&currency, "currency", "", "new currency code")
	cmd.Flags().StringVar(&dueDate, "due", "", "new due date, YYYY-MM-DD (empty clears it)")
	cmd.Flags().StringVar(&status, "status", "", "pending or paid")
	cmd.Flags().StringVar(&note, "note", "", "note stored with the amount change")

	return cmd
}

func debtPayCmd() *cobra.Command {
	var remaining, note string

	cmd := &cobra.Command{
		Use:   "pay [debt-id]",
		Short: "Record a payment against a debt",
		Long: `Record a payment by setting the amount still owed.

Examples:
  finq debt pay 3f2c... --remaining 250
  finq debt pay 3f2c... --remaining 0 --note "Paid in full"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(remaining)
			if err != nil {
				return err
			}

			_, err = ledger(cmd.Context()).RecordPayment(cmd.Context(), primary.RecordPaymentRequest{
				DebtID:    args[0],
				Remaining: value,
				Note:      note,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&remaining, "remaining", "", "amount still owed after the payment (required)")
	cmd.Flags().StringVar(&note, "note", "", "payment note")
	_ = cmd.MarkFlagRequired("remaining")

	return cmd
}

func debtDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [debt-id]",
		Short: "Delete a debt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ledger(cmd.Context()).DeleteDebt(cmd.Context(), args[0])
			return err
		},
	}
}

func debtListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List debts",
		Long:  `List debts, soonest due first. Offline, the last cached list is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := ledger(cmd.Context()).ListDebts(cmd.Context())
			return err
		},
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return value, nil
}
