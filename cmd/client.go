package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonandersen/tdam/internal/config"
	"github.com/jonandersen/tdam/internal/keyring"
	"github.com/jonandersen/tdam/internal/logging"
	"github.com/jonandersen/tdam/internal/output"
	"github.com/jonandersen/tdam/pkg/tdam"
)

// clientOptions holds what every API command needs to build a client.
// Tests fill it directly; the real commands load it in PreRunE.
type clientOptions struct {
	baseURL      string
	accessToken  string
	refreshToken string
	appID        string
	public       bool
	timeout      time.Duration
	jsonMode     bool
	logger       *zerolog.Logger
	now          func() time.Time
}

// newClient builds a client from the options. Empty credentials fall back to
// the TDAM_* environment variables.
func (o *clientOptions) newClient() (*tdam.Client, error) {
	client, err := tdam.NewClient(tdam.ClientOpts{
		AccessToken:  o.accessToken,
		RefreshToken: o.refreshToken,
		AppID:        o.appID,
		Public:       o.public,
		BaseURL:      o.baseURL,
		Logger:       o.logger,
		Now:          o.now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w\nRun 'tdam configure' or use --public with TDAM_APP_ID set", err)
	}
	return client, nil
}

// context returns a context bounded by the configured timeout.
func (o *clientOptions) context() (context.Context, context.CancelFunc) {
	timeout := o.timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (o *clientOptions) formatter(cmd *cobra.Command) *output.Formatter {
	return output.New(cmd.OutOrStdout(), o.jsonMode)
}

// loadClientOptions fills opts from the config file, the keyring and the
// global flags.
func loadClientOptions(opts *clientOptions, store keyring.Store) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := keyring.LoadCredentials(store)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = level
	logCfg.FilePath = cfg.LogFile
	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	logCloser = closer

	opts.baseURL = cfg.APIBaseURL
	opts.accessToken = creds.AccessToken
	opts.refreshToken = creds.RefreshToken
	opts.appID = creds.AppID
	opts.public = cfg.Public || publicMode
	opts.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	opts.jsonMode = GetJSONMode()
	opts.logger = &logger
	return nil
}

// loadOptions is the PreRunE shared by the API commands.
func loadOptions(opts *clientOptions) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return loadClientOptions(opts, keyring.NewSystemStore())
	}
}

// withClient runs fn with a fresh client and a timeout-bound context.
func withClient(opts *clientOptions, fn func(ctx context.Context, client *tdam.Client) error) error {
	client, err := opts.newClient()
	if err != nil {
		return err
	}
	ctx, cancel := opts.context()
	defer cancel()
	return fn(ctx, client)
}
