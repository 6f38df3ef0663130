package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// newAccountCmd creates the account command with the given options.
func newAccountCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "View accounts and orders",
		Long: `View your linked accounts and their orders. Requires tokens; not available with --public.

Examples:
  tdam account                                # List all accounts
  tdam account orders 123456789 --status WORKING`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(cmd, opts)
		},
	}

	cmd.SilenceUsage = true
	cmd.AddCommand(newAccountOrdersCmd(opts))

	return cmd
}

func runAccountList(cmd *cobra.Command, opts *clientOptions) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		accounts, err := client.GetAccounts(ctx)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(accounts)
		}
		if len(accounts) == 0 {
			return f.Print("No accounts found")
		}

		rows := make([][]string, 0, len(accounts))
		for _, acc := range accounts {
			rows = append(rows, []string{acc.AccountID(), acc.Type(), output.Price(liquidationValue(acc))})
		}
		return f.Table([]string{"Account ID", "Type", "Liquidation Value"}, rows)
	})
}

// liquidationValue digs the current liquidation value out of an account.
func liquidationValue(acc tdam.Account) decimal.Decimal {
	sec, ok := acc.Object("securitiesAccount")
	if !ok {
		return decimal.Zero
	}
	bal, ok := sec.Object("currentBalances")
	if !ok {
		return decimal.Zero
	}
	return bal.Decimal("liquidationValue")
}

func newAccountOrdersCmd(opts *clientOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "orders ACCOUNT_ID",
		Short: "List the orders of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountOrders(cmd, opts, args[0], status)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only orders with this status (e.g. WORKING, FILLED)")
	cmd.SilenceUsage = true

	return cmd
}

func runAccountOrders(cmd *cobra.Command, opts *clientOptions, accountID, status string) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		orders, err := client.GetOrders(ctx, accountID, status)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(orders)
		}
		if len(orders) == 0 {
			return f.Print(fmt.Sprintf("No orders for account %s", accountID))
		}

		rows := make([][]string, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, []string{fmt.Sprint(o.OrderID()), o.Status(), o.OrderType(), o.EnteredTime()})
		}
		return f.Table([]string{"Order ID", "Status", "Type", "Entered"}, rows)
	})
}

func init() {
	var opts clientOptions
	accountCmd := newAccountCmd(&opts)
	accountCmd.PersistentPreRunE = loadOptions(&opts)
	rootCmd.AddCommand(accountCmd)
}
