package cmd

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/pkg/tdam"
)

// newInstrumentCmd creates the instrument command group.
func newInstrumentCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instrument",
		Short: "Search instruments and view fundamentals",
	}

	cmd.AddCommand(newInstrumentSearchCmd(opts))
	cmd.AddCommand(newInstrumentFundamentalsCmd(opts))

	return cmd
}

func newInstrumentSearchCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search PATTERN",
		Short: "Find instruments whose symbol matches a regular expression",
		Long: `Find instruments whose symbol matches a regular expression.

Examples:
  tdam instrument search 'LYF.*'        # LYFT, LYFE, ...
  tdam instrument search 'AAPL' --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumentSearch(cmd, opts, args[0])
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runInstrumentSearch(cmd *cobra.Command, opts *clientOptions, pattern string) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		found, err := client.FindInstrument(ctx, pattern)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(found)
		}
		if len(found) == 0 {
			return f.Print("No instruments found")
		}

		symbols := make([]string, 0, len(found))
		for s := range found {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)

		rows := make([][]string, 0, len(symbols))
		for _, s := range symbols {
			inst := found[s]
			rows = append(rows, []string{s, inst.AssetType(), inst.Exchange(), inst.Description()})
		}
		return f.Table([]string{"Symbol", "Type", "Exchange", "Description"}, rows)
	})
}

func newInstrumentFundamentalsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fundamentals SYMBOL",
		Short: "Show fundamental data for a symbol",
		Long: `Show the fundamental data (P/E, market cap, dividend yield, ...) of a symbol.

Examples:
  tdam instrument fundamentals AAPL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstrumentFundamentals(cmd, opts, strings.ToUpper(args[0]))
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runInstrumentFundamentals(cmd *cobra.Command, opts *clientOptions, symbol string) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		f, err := client.GetFundamentals(ctx, symbol)
		if err != nil {
			return err
		}
		return opts.formatter(cmd).Record(f.Data())
	})
}

func init() {
	var opts clientOptions
	instrumentCmd := newInstrumentCmd(&opts)
	instrumentCmd.PersistentPreRunE = loadOptions(&opts)
	rootCmd.AddCommand(instrumentCmd)
}
