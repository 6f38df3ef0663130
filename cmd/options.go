package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// chainFilter holds filtering options for the options chain command.
type chainFilter struct {
	minStrike float64
	maxStrike float64
	minOI     int64
	minVolume int64
	callsOnly bool
	putsOnly  bool
	strikes   int // N strikes around ATM (requires underlying price)
}

// keep reports whether a contract passes the strike, open interest and
// volume filters.
func (f chainFilter) keep(strike float64, opt *tdam.Option) bool {
	if f.minStrike > 0 && strike < f.minStrike {
		return false
	}
	if f.maxStrike > 0 && strike > f.maxStrike {
		return false
	}
	if opt == nil {
		return f.minOI == 0 && f.minVolume == 0
	}
	if f.minOI > 0 && opt.OpenInterest() < f.minOI {
		return false
	}
	if f.minVolume > 0 && opt.TotalVolume() < f.minVolume {
		return false
	}
	return true
}

// strikesAroundATM returns the n strikes of a sorted slice centered on the
// strike closest to underlying.
func strikesAroundATM(strikes []float64, n int, underlying float64) []float64 {
	if len(strikes) == 0 || n <= 0 || n >= len(strikes) {
		return strikes
	}

	closest := 0
	for i, s := range strikes {
		if math.Abs(s-underlying) < math.Abs(strikes[closest]-underlying) {
			closest = i
		}
	}

	start := closest - n/2
	if start < 0 {
		start = 0
	}
	if start+n > len(strikes) {
		start = len(strikes) - n
	}
	return strikes[start : start+n]
}

// parseStrike parses a strike argument.
func parseStrike(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid strike %q", s)
	}
	return f, nil
}

// validateExpiry checks an expiration date argument.
func validateExpiry(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid expiration %q: use YYYY-MM-DD", s)
	}
	return nil
}

// newOptionsCmd creates the options command group.
func newOptionsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Option chains, contracts and spreads",
		Long:  `Commands for listing expirations, viewing chains and resolving multi-leg positions.`,
	}

	cmd.AddCommand(newOptionsExpirationsCmd(opts))
	cmd.AddCommand(newOptionsChainCmd(opts))
	cmd.AddCommand(newOptionsGetCmd(opts))
	cmd.AddCommand(newOptionsVerticalCmd(opts))
	cmd.AddCommand(newOptionsStraddleCmd(opts))
	cmd.AddCommand(newOptionsStrangleCmd(opts))

	return cmd
}

// newOptionsExpirationsCmd creates the options expirations command with the given options.
func newOptionsExpirationsCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expirations SYMBOL",
		Short: "List option expiration dates",
		Long: `List available option expiration dates for an underlying symbol.

Examples:
  tdam options expirations AAPL           # List expirations for Apple
  tdam options expirations AAPL --json    # Output in JSON format`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptionsExpirations(cmd, opts, strings.ToUpper(args[0]))
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runOptionsExpirations(cmd *cobra.Command, opts *clientOptions, symbol string) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		expirations, err := client.GetExpirations(ctx, symbol)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(map[string]any{"symbol": symbol, "expirations": expirations})
		}
		if len(expirations) == 0 {
			return f.Print(fmt.Sprintf("No expirations available for %s", symbol))
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Option Expirations for %s\n\n", symbol)
		for _, exp := range expirations {
			_, _ = fmt.Fprintf(out, "  %s\n", exp)
		}
		return nil
	})
}

// newOptionsChainCmd creates the options chain command with the given options.
func newOptionsChainCmd(opts *clientOptions) *cobra.Command {
	var filter chainFilter

	cmd := &cobra.Command{
		Use:   "chain SYMBOL EXPIRATION",
		Short: "Display option chain",
		Long: `Display the calls and puts of one expiration side by side, one row per strike.

Examples:
  tdam options chain AAPL 2019-08-23                         # Full chain
  tdam options chain AAPL 2019-08-23 --strikes 10            # 10 strikes around the money
  tdam options chain AAPL 2019-08-23 --min-strike 190 --max-strike 210 --calls
  tdam options chain AAPL 2019-08-23 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.callsOnly && filter.putsOnly {
				return fmt.Errorf("--calls and --puts are mutually exclusive")
			}
			if err := validateExpiry(args[1]); err != nil {
				return err
			}
			return runOptionsChain(cmd, opts, strings.ToUpper(args[0]), args[1], filter)
		},
	}

	cmd.Flags().Float64Var(&filter.minStrike, "min-strike", 0, "Minimum strike price")
	cmd.Flags().Float64Var(&filter.maxStrike, "max-strike", 0, "Maximum strike price")
	cmd.Flags().Int64Var(&filter.minOI, "min-oi", 0, "Minimum open interest")
	cmd.Flags().Int64Var(&filter.minVolume, "min-volume", 0, "Minimum volume")
	cmd.Flags().BoolVar(&filter.callsOnly, "calls", false, "Show calls only")
	cmd.Flags().BoolVar(&filter.putsOnly, "puts", false, "Show puts only")
	cmd.Flags().IntVar(&filter.strikes, "strikes", 0, "Number of strikes around the underlying price")
	cmd.SilenceUsage = true

	return cmd
}

// chainRow is one strike of a rendered chain.
type chainRow struct {
	Strike float64      `json:"strike"`
	Call   *tdam.Option `json:"call,omitempty"`
	Put    *tdam.Option `json:"put,omitempty"`
}

func runOptionsChain(cmd *cobra.Command, opts *clientOptions, symbol, expiry string, filter chainFilter) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		chain, err := client.GetOptionChain(ctx, symbol, expiry)
		if err != nil {
			return err
		}

		strikes, err := unionStrikes(chain)
		if err != nil {
			return err
		}

		if filter.strikes > 0 {
			q, err := client.Quote(ctx, symbol)
			if err != nil {
				return fmt.Errorf("failed to get underlying price for ATM filtering: %w", err)
			}
			last, _ := q.LastPrice().Float64()
			strikes = strikesAroundATM(strikes, filter.strikes, last)
		}

		rows := make([]chainRow, 0, len(strikes))
		for _, strike := range strikes {
			row := chainRow{Strike: strike}
			if !filter.putsOnly {
				if row.Call, err = chain.Get(strike, string(tdam.Call)); err != nil {
					return err
				}
				if !filter.keep(strike, row.Call) {
					row.Call = nil
				}
			}
			if !filter.callsOnly {
				if row.Put, err = chain.Get(strike, string(tdam.Put)); err != nil {
					return err
				}
				if !filter.keep(strike, row.Put) {
					row.Put = nil
				}
			}
			if row.Call != nil || row.Put != nil {
				rows = append(rows, row)
			}
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(map[string]any{"symbol": symbol, "expiration": expiry, "strikes": rows})
		}
		if len(rows) == 0 {
			return f.Print(fmt.Sprintf("No options available for %s expiring %s", symbol, expiry))
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Option Chain for %s - Expiration: %s\n\n", symbol, expiry)
		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, append(append(contractCells(r.Call), tdam.CanonicalStrike(r.Strike)), contractCells(r.Put)...))
		}
		return f.Table([]string{"Call Bid", "Call Ask", "Call OI", "Strike", "Put Bid", "Put Ask", "Put OI"}, table)
	})
}

// unionStrikes returns every strike listed on either side, ascending.
func unionStrikes(chain *tdam.OptionChain) ([]float64, error) {
	calls, err := chain.Strikes(string(tdam.Call))
	if err != nil {
		return nil, err
	}
	puts, err := chain.Strikes(string(tdam.Put))
	if err != nil {
		return nil, err
	}

	merged := make([]float64, 0, len(calls)+len(puts))
	i, j := 0, 0
	for i < len(calls) || j < len(puts) {
		switch {
		case j >= len(puts) || (i < len(calls) && calls[i] < puts[j]):
			merged = append(merged, calls[i])
			i++
		case i >= len(calls) || puts[j] < calls[i]:
			merged = append(merged, puts[j])
			j++
		default:
			merged = append(merged, calls[i])
			i++
			j++
		}
	}
	return merged, nil
}

func contractCells(opt *tdam.Option) []string {
	if opt == nil {
		return []string{"-", "-", "-"}
	}
	return []string{output.Price(opt.Bid()), output.Price(opt.Ask()), output.Volume(opt.OpenInterest())}
}

// newOptionsGetCmd creates the options get command with the given options.
func newOptionsGetCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get SYMBOL EXPIRATION RIGHT STRIKE",
		Short: "Show a single option contract",
		Long: `Show a single option contract. RIGHT is C, CALL, P or PUT.

Examples:
  tdam options get AAPL 2019-08-23 C 200
  tdam options get AAPL 2019-08-23 put 202.5 --json`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExpiry(args[1]); err != nil {
				return err
			}
			strike, err := parseStrike(args[3])
			if err != nil {
				return err
			}
			return runOptionsGet(cmd, opts, strings.ToUpper(args[0]), args[1], args[2], strike)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runOptionsGet(cmd *cobra.Command, opts *clientOptions, symbol, expiry, right string, strike float64) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		opt, err := client.GetOption(ctx, symbol, expiry, right, strike)
		if err != nil {
			return err
		}
		return opts.formatter(cmd).Record(opt.Data())
	})
}

// legsTable renders the legs of a position with their mark prices.
func legsTable(cmd *cobra.Command, opts *clientOptions, names []string, legs []tdam.Option, summary string) error {
	f := opts.formatter(cmd)
	if opts.jsonMode {
		out := make(map[string]tdam.Option, len(legs))
		for i, leg := range legs {
			out[strings.ToLower(names[i])] = leg
		}
		return f.Print(out)
	}

	rows := make([][]string, 0, len(legs))
	for i, leg := range legs {
		rows = append(rows, []string{
			names[i],
			leg.Symbol(),
			tdam.CanonicalStrike(leg.StrikePrice()),
			output.Price(leg.Bid()),
			output.Price(leg.Ask()),
			output.Price(leg.Mark()),
			strconv.FormatFloat(leg.Delta(), 'f', 3, 64),
		})
	}
	if err := f.Table([]string{"Leg", "Symbol", "Strike", "Bid", "Ask", "Mark", "Delta"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", summary)
	return err
}

// newOptionsVerticalCmd creates the options vertical command with the given options.
func newOptionsVerticalCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertical SYMBOL EXPIRATION RIGHT LONG_STRIKE SHORT_STRIKE",
		Short: "Resolve the legs of a vertical spread",
		Long: `Resolve the long and short legs of a vertical spread and show the net mark.

Examples:
  tdam options vertical AAPL 2019-08-23 C 145 150    # Bull call spread
  tdam options vertical AAPL 2019-08-23 P 150 145    # Bear put spread`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExpiry(args[1]); err != nil {
				return err
			}
			long, err := parseStrike(args[3])
			if err != nil {
				return err
			}
			short, err := parseStrike(args[4])
			if err != nil {
				return err
			}
			return withChain(opts, strings.ToUpper(args[0]), args[1], func(chain *tdam.OptionChain) error {
				v, err := chain.GetVertical(args[2], long, short)
				if err != nil {
					return err
				}
				net := v.Long.Mark().Sub(v.Short.Mark())
				return legsTable(cmd, opts, []string{"Long", "Short"}, []tdam.Option{v.Long, v.Short},
					fmt.Sprintf("Net mark: %s", net.StringFixed(2)))
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

// newOptionsStraddleCmd creates the options straddle command with the given options.
func newOptionsStraddleCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "straddle SYMBOL EXPIRATION STRIKE",
		Short: "Resolve the call and put of a straddle",
		Long: `Resolve the call and put at one strike and show the combined mark.

Examples:
  tdam options straddle AAPL 2019-08-23 200`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExpiry(args[1]); err != nil {
				return err
			}
			strike, err := parseStrike(args[2])
			if err != nil {
				return err
			}
			return withChain(opts, strings.ToUpper(args[0]), args[1], func(chain *tdam.OptionChain) error {
				s, err := chain.GetStraddle(strike)
				if err != nil {
					return err
				}
				total := s.Call.Mark().Add(s.Put.Mark())
				return legsTable(cmd, opts, []string{"Call", "Put"}, []tdam.Option{s.Call, s.Put},
					fmt.Sprintf("Total mark: %s", total.StringFixed(2)))
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

// newOptionsStrangleCmd creates the options strangle command with the given options.
func newOptionsStrangleCmd(opts *clientOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strangle SYMBOL EXPIRATION CALL_STRIKE PUT_STRIKE",
		Short: "Resolve the call and put of a strangle",
		Long: `Resolve a call and a put at independent strikes and show the combined mark.

Examples:
  tdam options strangle AAPL 2019-08-23 202.5 200`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExpiry(args[1]); err != nil {
				return err
			}
			callStrike, err := parseStrike(args[2])
			if err != nil {
				return err
			}
			putStrike, err := parseStrike(args[3])
			if err != nil {
				return err
			}
			return withChain(opts, strings.ToUpper(args[0]), args[1], func(chain *tdam.OptionChain) error {
				s, err := chain.GetStrangle(callStrike, putStrike)
				if err != nil {
					return err
				}
				total := s.Call.Mark().Add(s.Put.Mark())
				return legsTable(cmd, opts, []string{"Call", "Put"}, []tdam.Option{s.Call, s.Put},
					fmt.Sprintf("Total mark: %s", total.StringFixed(2)))
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

// withChain fetches one expiration of symbol and hands the chain to fn.
func withChain(opts *clientOptions, symbol, expiry string, fn func(chain *tdam.OptionChain) error) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		chain, err := client.GetOptionChain(ctx, symbol, expiry)
		if err != nil {
			return err
		}
		return fn(chain)
	})
}

func init() {
	var opts clientOptions
	optionsCmd := newOptionsCmd(&opts)
	optionsCmd.PersistentPreRunE = loadOptions(&opts)
	rootCmd.AddCommand(optionsCmd)
}
