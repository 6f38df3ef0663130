package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/pkg/tdam"
)

// newOrderCmd creates the parent order command.
func newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Place equity orders",
		Long: `Place buy and sell orders for stocks and ETFs. Requires tokens; not available with --public.

Examples:
  tdam order buy AAPL --account 123456789 --quantity 10 --yes
  tdam order sell AAPL --account 123456789 --quantity 5 --limit 180.00 --yes`,
	}
}

// orderParams holds the flags shared by buy and sell.
type orderParams struct {
	accountID   string
	quantity    string
	limitPrice  string
	stopPrice   string
	duration    string
	session     string
	skipConfirm bool
}

const orderTypesHelp = `Order types are determined by the flags used:
  - No price flags: MARKET order
  - --limit: LIMIT order
  - --stop: STOP order
  - --limit and --stop: STOP_LIMIT order`

func newOrderSideCmd(opts *clientOptions, instruction string) *cobra.Command {
	var params orderParams
	verb := strings.ToLower(instruction)

	cmd := &cobra.Command{
		Use:   verb + " SYMBOL",
		Short: fmt.Sprintf("%s shares of a stock", strings.ToUpper(verb[:1])+verb[1:]),
		Long: fmt.Sprintf(`Place a %s order for shares of a stock.

%s

Examples:
  tdam order %s AAPL -a 123456789 -q 10 --yes
  tdam order %s AAPL -a 123456789 -q 10 --limit 175.00 --duration GTC --yes`, verb, orderTypesHelp, verb, verb),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd, opts, args[0], instruction, params)
		},
	}

	cmd.Flags().StringVarP(&params.accountID, "account", "a", "", "Account ID (required)")
	cmd.Flags().StringVarP(&params.quantity, "quantity", "q", "", "Number of shares (required)")
	cmd.Flags().StringVarP(&params.limitPrice, "limit", "l", "", "Limit price for LIMIT or STOP_LIMIT orders")
	cmd.Flags().StringVarP(&params.stopPrice, "stop", "s", "", "Stop price for STOP or STOP_LIMIT orders")
	cmd.Flags().StringVarP(&params.duration, "duration", "d", "DAY", "DAY or GTC")
	cmd.Flags().StringVar(&params.session, "session", "NORMAL", "NORMAL, AM, PM or SEAMLESS")
	cmd.Flags().BoolVarP(&params.skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.SilenceUsage = true

	return cmd
}

// determineOrderType determines the order type based on the provided prices.
func determineOrderType(limitPrice, stopPrice string) string {
	hasLimit := limitPrice != ""
	hasStop := stopPrice != ""

	switch {
	case hasLimit && hasStop:
		return "STOP_LIMIT"
	case hasLimit:
		return "LIMIT"
	case hasStop:
		return "STOP"
	default:
		return "MARKET"
	}
}

// parsePrice accepts any positive decimal. Tick size rules are left to the
// API.
func parsePrice(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s price %q", flag, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("--%s price must be positive", flag)
	}
	return d, nil
}

var durations = map[string]string{
	"DAY":              "DAY",
	"GTC":              "GOOD_TILL_CANCEL",
	"GOOD_TILL_CANCEL": "GOOD_TILL_CANCEL",
	"FOK":              "FILL_OR_KILL",
	"FILL_OR_KILL":     "FILL_OR_KILL",
}

var sessions = map[string]bool{"NORMAL": true, "AM": true, "PM": true, "SEAMLESS": true}

// buildOrder validates the flags and returns the order payload.
func buildOrder(symbol, instruction string, params orderParams) (map[string]any, error) {
	if params.accountID == "" {
		return nil, fmt.Errorf("account ID is required (use --account flag)")
	}
	if params.quantity == "" {
		return nil, fmt.Errorf("quantity is required (use --quantity flag)")
	}
	qty, err := strconv.ParseInt(params.quantity, 10, 64)
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("quantity must be a positive whole number of shares")
	}

	duration, ok := durations[strings.ToUpper(params.duration)]
	if !ok {
		return nil, fmt.Errorf("invalid duration: %s (use DAY or GTC)", params.duration)
	}
	session := strings.ToUpper(params.session)
	if !sessions[session] {
		return nil, fmt.Errorf("invalid session: %s (use NORMAL, AM, PM or SEAMLESS)", params.session)
	}

	orderType := determineOrderType(params.limitPrice, params.stopPrice)
	order := map[string]any{
		"orderType":         orderType,
		"session":           session,
		"duration":          duration,
		"orderStrategyType": "SINGLE",
		"orderLegCollection": []map[string]any{{
			"instruction": instruction,
			"quantity":    qty,
			"instrument": map[string]any{
				"symbol":    strings.ToUpper(symbol),
				"assetType": "EQUITY",
			},
		}},
	}

	if params.limitPrice != "" {
		price, err := parsePrice("limit", params.limitPrice)
		if err != nil {
			return nil, err
		}
		order["price"] = json.Number(price.String())
	}
	if params.stopPrice != "" {
		stop, err := parsePrice("stop", params.stopPrice)
		if err != nil {
			return nil, err
		}
		order["stopPrice"] = json.Number(stop.String())
	}
	return order, nil
}

func runOrder(cmd *cobra.Command, opts *clientOptions, symbol, instruction string, params orderParams) error {
	order, err := buildOrder(symbol, instruction, params)
	if err != nil {
		return err
	}
	symbol = strings.ToUpper(symbol)
	out := cmd.OutOrStdout()

	if !opts.jsonMode {
		_, _ = fmt.Fprintf(out, "\nOrder Preview:\n")
		_, _ = fmt.Fprintf(out, "  Account:  %s\n", params.accountID)
		_, _ = fmt.Fprintf(out, "  Action:   %s\n", instruction)
		_, _ = fmt.Fprintf(out, "  Symbol:   %s\n", symbol)
		_, _ = fmt.Fprintf(out, "  Quantity: %s shares\n", params.quantity)
		_, _ = fmt.Fprintf(out, "  Type:     %s\n", order["orderType"])
		if p, ok := order["price"]; ok {
			_, _ = fmt.Fprintf(out, "  Limit:    $%s\n", p)
		}
		if p, ok := order["stopPrice"]; ok {
			_, _ = fmt.Fprintf(out, "  Stop:     $%s\n", p)
		}
		_, _ = fmt.Fprintf(out, "  Duration: %s\n\n", order["duration"])
	}

	if !params.skipConfirm {
		return fmt.Errorf("order requires confirmation (use --yes to confirm)")
	}

	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		if err := client.PlaceOrder(ctx, params.accountID, order); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}

		if opts.jsonMode {
			return opts.formatter(cmd).Print(map[string]any{
				"status":    "placed",
				"accountId": params.accountID,
				"order":     order,
			})
		}
		_, _ = fmt.Fprintf(out, "Order placed successfully!\n")
		_, _ = fmt.Fprintf(out, "  %s %s shares of %s (%s)\n", instruction, params.quantity, symbol, order["orderType"])
		_, _ = fmt.Fprintf(out, "\nUse 'tdam account orders %s' to check execution status.\n", params.accountID)
		return nil
	})
}

func init() {
	var opts clientOptions

	orderCmd := newOrderCmd()
	orderCmd.PersistentPreRunE = loadOptions(&opts)
	orderCmd.AddCommand(newOrderSideCmd(&opts, "BUY"))
	orderCmd.AddCommand(newOrderSideCmd(&opts, "SELL"))
	rootCmd.AddCommand(orderCmd)
}
