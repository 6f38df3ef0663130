package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is reported by --version. main overrides it before Execute.
var Version = "dev"

var (
	// jsonOutput controls whether output is formatted as JSON
	jsonOutput bool
	// publicMode forces API-key-only requests
	publicMode bool
	// logLevel overrides the configured log level when set
	logLevel string
)

// logCloser releases the log file opened by loadClientOptions.
var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "tdam",
	Short: "TD Ameritrade market data CLI",
	Long: `A CLI for quotes, instruments, price history and option chains via the
TD Ameritrade REST API.

Run 'tdam configure' once to store your app id and tokens in the system keyring.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("tdam version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&publicMode, "public", false, "Use API-key-only requests (no tokens)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.Version = Version
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
