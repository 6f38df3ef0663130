package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

const dateLayout = "2006-01-02"

// historyParams holds the flags of the history command.
type historyParams struct {
	from       string
	to         string
	frequency  string
	outsideRTH bool
}

// newHistoryCmd creates the history command with the given options.
func newHistoryCmd(opts *clientOptions) *cobra.Command {
	var params historyParams

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Get price history bars",
		Long: fmt.Sprintf(`Get OHLCV price bars for a symbol between two dates.

Frequencies: %s
Intraday frequencies only reach back 30 days.

Examples:
  tdam history AAPL --from 2019-01-01 --to 2019-01-31
  tdam history AAPL --from 2019-08-01 --to 2019-08-16 --freq 5min --extended`, joinFrequencies()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, strings.ToUpper(args[0]), params)
		},
	}

	cmd.Flags().StringVar(&params.from, "from", "", "Start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&params.to, "to", "", "End date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&params.frequency, "freq", "f", string(tdam.FrequencyDaily), "Bar frequency")
	cmd.Flags().BoolVar(&params.outsideRTH, "extended", false, "Include extended-hours bars")
	cmd.SilenceUsage = true

	return cmd
}

func joinFrequencies() string {
	freqs := tdam.Frequencies()
	names := make([]string, len(freqs))
	for i, f := range freqs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func runHistory(cmd *cobra.Command, opts *clientOptions, symbol string, params historyParams) error {
	if params.from == "" {
		return fmt.Errorf("start date is required (use --from)")
	}
	start, err := time.Parse(dateLayout, params.from)
	if err != nil {
		return fmt.Errorf("invalid --from date %q: use YYYY-MM-DD", params.from)
	}

	now := time.Now
	if opts.now != nil {
		now = opts.now
	}
	end := now().UTC()
	if params.to != "" {
		if end, err = time.Parse(dateLayout, params.to); err != nil {
			return fmt.Errorf("invalid --to date %q: use YYYY-MM-DD", params.to)
		}
	}

	freq, err := tdam.ParseFrequency(params.frequency)
	if err != nil {
		return err
	}

	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		candles, err := client.GetHistory(ctx, symbol, start, end, freq, params.outsideRTH)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if candles == nil {
			if opts.jsonMode {
				return f.Print([]tdam.Candle{})
			}
			return f.Print(fmt.Sprintf("No price history for %s", symbol))
		}
		if opts.jsonMode {
			return f.Print(candles)
		}

		layout := dateLayout
		if freq.Intraday() {
			layout = "2006-01-02 15:04"
		}
		rows := make([][]string, 0, len(candles))
		for _, c := range candles {
			rows = append(rows, []string{
				output.Millis(c.Datetime(), layout),
				c.Open().StringFixed(2),
				c.High().StringFixed(2),
				c.Low().StringFixed(2),
				c.Close().StringFixed(2),
				output.Volume(c.Volume()),
			})
		}
		return f.Table([]string{"Date", "Open", "High", "Low", "Close", "Volume"}, rows)
	})
}

func init() {
	var opts clientOptions
	historyCmd := newHistoryCmd(&opts)
	historyCmd.PreRunE = loadOptions(&opts)
	rootCmd.AddCommand(historyCmd)
}
