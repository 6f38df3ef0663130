package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get stock quotes",
		Long: `Get quotes for one or more symbols in a single request.

Examples:
  tdam quote AAPL              # Get quote for Apple
  tdam quote AAPL MSFT SPY     # Get quotes for multiple symbols
  tdam quote AAPL --json       # Output the raw quote fields as JSON`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts, args)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runQuote(cmd *cobra.Command, opts *clientOptions, args []string) error {
	symbols := make([]string, len(args))
	for i, s := range args {
		symbols[i] = strings.ToUpper(s)
	}

	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		quotes, err := client.Quotes(ctx, symbols)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(quotes)
		}

		headers := []string{"Symbol", "Last", "Bid", "Ask", "Change", "Volume"}
		rows := make([][]string, 0, len(symbols))
		for _, sym := range symbols {
			q, ok := quotes[sym]
			if !ok {
				rows = append(rows, []string{sym, "NOT FOUND", "-", "-", "-", "-"})
				continue
			}
			rows = append(rows, []string{
				sym,
				output.Price(q.LastPrice()),
				output.Price(q.BidPrice()),
				output.Price(q.AskPrice()),
				q.NetChange().StringFixed(2),
				output.Volume(q.TotalVolume()),
			})
		}
		return f.Table(headers, rows)
	})
}

func init() {
	var opts clientOptions
	quoteCmd := newQuoteCmd(&opts)
	quoteCmd.PreRunE = loadOptions(&opts)
	rootCmd.AddCommand(quoteCmd)
}
