package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// newHoursCmd creates the hours command with the given options.
func newHoursCmd(opts *clientOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "hours MARKET [MARKET...]",
		Short: "Show market hours",
		Long: `Show whether markets are open on a date. Markets: EQUITY, OPTION, FUTURE, BOND, FOREX.

Examples:
  tdam hours equity option
  tdam hours EQUITY --date 2019-08-23`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day time.Time
			if date != "" {
				var err error
				if day, err = time.Parse(dateLayout, date); err != nil {
					return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", date)
				}
			}
			return runHours(cmd, opts, args, day)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date YYYY-MM-DD (default today)")
	cmd.SilenceUsage = true

	return cmd
}

func runHours(cmd *cobra.Command, opts *clientOptions, markets []string, day time.Time) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		hours, err := client.GetMarketHours(ctx, markets, day)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(hours)
		}

		var rows [][]string
		for _, market := range sortedKeys(hours) {
			products := hours[market]
			for _, product := range sortedKeys(products) {
				h := products[product]
				rows = append(rows, []string{h.MarketType(), product, h.ProductName(), h.Date(), strconv.FormatBool(h.IsOpen())})
			}
		}
		if len(rows) == 0 {
			return f.Print("No market hours returned")
		}
		return f.Table([]string{"Market", "Product", "Name", "Date", "Open"}, rows)
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// newMoversCmd creates the movers command with the given options.
func newMoversCmd(opts *clientOptions) *cobra.Command {
	var direction, change string

	cmd := &cobra.Command{
		Use:   "movers INDEX",
		Short: "Show the top movers of an index",
		Long: `Show the top movers of $COMPX, $DJI or $SPX.X.

Examples:
  tdam movers '$SPX.X'
  tdam movers '$DJI' --direction down --change value`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMovers(cmd, opts, strings.ToUpper(args[0]), direction, change)
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "", "up or down (default both)")
	cmd.Flags().StringVar(&change, "change", "", "percent or value (default percent)")
	cmd.SilenceUsage = true

	return cmd
}

func runMovers(cmd *cobra.Command, opts *clientOptions, index, direction, change string) error {
	return withClient(opts, func(ctx context.Context, client *tdam.Client) error {
		movers, err := client.GetMovers(ctx, index, direction, change)
		if err != nil {
			return err
		}

		f := opts.formatter(cmd)
		if opts.jsonMode {
			return f.Print(movers)
		}
		if len(movers) == 0 {
			return f.Print(fmt.Sprintf("No movers for %s", index))
		}

		rows := make([][]string, 0, len(movers))
		for _, m := range movers {
			rows = append(rows, []string{
				m.Symbol(),
				m.Direction(),
				strconv.FormatFloat(m.Change(), 'f', 4, 64),
				output.Price(m.Last()),
				output.Volume(m.TotalVolume()),
			})
		}
		return f.Table([]string{"Symbol", "Direction", "Change", "Last", "Volume"}, rows)
	})
}

func init() {
	var hoursOpts, moversOpts clientOptions

	hoursCmd := newHoursCmd(&hoursOpts)
	hoursCmd.PreRunE = loadOptions(&hoursOpts)
	rootCmd.AddCommand(hoursCmd)

	moversCmd := newMoversCmd(&moversOpts)
	moversCmd.PreRunE = loadOptions(&moversOpts)
	rootCmd.AddCommand(moversCmd)
}
