package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonandersen/tdam/internal/config"
	"github.com/jonandersen/tdam/internal/keyring"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// passwordReader abstracts terminal password input for testing.
type passwordReader interface {
	ReadPassword() (string, error)
	IsTerminal() bool
}

// terminalReader reads passwords from the terminal using golang.org/x/term.
type terminalReader struct {
	fd int
}

func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) ReadPassword() (string, error) {
	password, err := term.ReadPassword(r.fd)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts interactive menu selection for testing.
type prompter interface {
	SelectOption(options []string) (int, error)
	ReadLine(prompt string) (string, error)
}

// terminalPrompter implements prompter on top of a shared line scanner.
type terminalPrompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{scanner: bufio.NewScanner(r), writer: w}
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	for {
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no input")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(p.scanner.Text()))
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil
	}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	if !p.scanner.Scan() {
		return "", p.scanner.Err()
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	configPath     string
	baseURL        string
	store          keyring.Store
	passwordReader passwordReader
	prompt         prompter
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts configureOptions) *cobra.Command {
	var public, clearCreds bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure CLI credentials",
		Long: `Configure the CLI with your TD Ameritrade application id and OAuth tokens.

Tokens are stored in the system keyring. If you only have a refresh token,
leave the access token empty and one is obtained for you.

With --public only the application id is stored and every command runs in
API-key mode (market data only).

Examples:
  tdam configure
  tdam configure --public
  tdam configure --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCreds {
				return runClearCredentials(cmd, opts)
			}
			return runConfigure(cmd, opts, public)
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "Store only the application id and use API-key mode")
	cmd.Flags().BoolVar(&clearCreds, "clear", false, "Remove stored credentials")
	cmd.SilenceUsage = true

	return cmd
}

var reconfigureMenuOptions = []string{
	"Configure new credentials",
	"View current configuration",
	"Clear credentials",
}

func runConfigure(cmd *cobra.Command, opts configureOptions, public bool) error {
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nSet TDAM_APP_ID, TDAM_ACCESS_TOKEN and TDAM_REFRESH_TOKEN for non-interactive use")
	}

	creds, err := keyring.LoadCredentials(opts.store)
	if err != nil {
		return err
	}
	if creds.AppID != "" && !public {
		return runReconfigureMenu(cmd, opts)
	}
	return runInitialSetup(cmd, opts, public)
}

func runReconfigureMenu(cmd *cobra.Command, opts configureOptions) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "CLI is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(out)
	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0:
		return runInitialSetup(cmd, opts, false)
	case 1:
		return runViewConfiguration(cmd, opts)
	case 2:
		return runClearCredentials(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

// runInitialSetup prompts for credentials, stores them and records the mode
// in the config file.
func runInitialSetup(cmd *cobra.Command, opts configureOptions, public bool) error {
	out := cmd.OutOrStdout()

	appID, err := opts.prompt.ReadLine("Application id (client id): ")
	if err != nil {
		return fmt.Errorf("failed to read application id: %w", err)
	}
	if appID == "" {
		return fmt.Errorf("application id cannot be empty")
	}
	creds := keyring.Credentials{AppID: appID}

	if !public {
		_, _ = fmt.Fprint(out, "Refresh token: ")
		creds.RefreshToken, err = opts.passwordReader.ReadPassword()
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read refresh token: %w", err)
		}
		if creds.RefreshToken == "" {
			return fmt.Errorf("refresh token cannot be empty")
		}

		_, _ = fmt.Fprint(out, "Access token (leave empty to obtain one): ")
		creds.AccessToken, err = opts.passwordReader.ReadPassword()
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}

		if creds.AccessToken == "" {
			ctx, cancel := context.WithTimeout(context.Background(), config.DefaultTimeoutSeconds*time.Second)
			defer cancel()

			creds.AccessToken, err = tdam.ObtainAccessToken(ctx, tdam.ClientOpts{
				RefreshToken: creds.RefreshToken,
				AppID:        creds.AppID,
				BaseURL:      opts.baseURL,
			})
			if err != nil {
				return fmt.Errorf("failed to validate refresh token: %w", err)
			}
		}
	}

	if err := keyring.SaveCredentials(opts.store, creds); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg.Public = public
	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Configuration saved successfully!")
	return nil
}

func runViewConfiguration(cmd *cobra.Command, opts configureOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	creds, err := keyring.LoadCredentials(opts.store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Current Configuration:")
	_, _ = fmt.Fprintln(out, "----------------------")
	_, _ = fmt.Fprintf(out, "Application id: %s\n", orNotSet(creds.AppID))
	_, _ = fmt.Fprintf(out, "Access token: %s\n", configured(creds.AccessToken))
	_, _ = fmt.Fprintf(out, "Refresh token: %s\n", configured(creds.RefreshToken))
	_, _ = fmt.Fprintf(out, "Public mode: %t\n", cfg.Public)
	_, _ = fmt.Fprintf(out, "API base URL: %s\n", cfg.APIBaseURL)
	_, _ = fmt.Fprintf(out, "Timeout: %ds\n", cfg.TimeoutSeconds)
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func configured(secret string) string {
	if secret == "" {
		return "Not configured"
	}
	return "Configured"
}

func runClearCredentials(cmd *cobra.Command, opts configureOptions) error {
	if err := keyring.ClearCredentials(opts.store); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials cleared successfully.")
	return nil
}

func init() {
	configureCmd := newConfigureCmd(configureOptions{
		configPath:     config.ConfigPath(),
		baseURL:        config.DefaultAPIBaseURL,
		store:          keyring.NewSystemStore(),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
	})
	rootCmd.AddCommand(configureCmd)
}
