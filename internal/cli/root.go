package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"marketplace/internal/client"
	"marketplace/internal/config"
	"marketplace/internal/logger"
	"marketplace/internal/pkg/clock"
	"marketplace/internal/seed"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Mode        string // "remote" | "local"
	BaseURL     string
	Token       string
	SessionFile string

	config *config.ClientConfig
	fs     afero.Fs
	store  *client.Store
}

var (
	ValidFormats = []string{"text", "json"}
	ValidModes   = []string{"remote", "local"}
)

// NewRootCommand creates the catalogctl root command. Flags default to the
// values in cfg; fs holds the session cache.
func NewRootCommand(cfg *config.ClientConfig, fs afero.Fs) *cobra.Command {
	opts := &RootOptions{config: cfg, fs: fs}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Manage the marketplace catalog",
		Long:  "Browse and edit the products and affiliates served by the catalog API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidModes, opts.Mode) {
				return fmt.Errorf("invalid mode %q: must be one of %v", opts.Mode, ValidModes)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Mode, "mode", cfg.Mode, "data source (remote|local)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "api-url", cfg.BaseURL, "catalog API base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", cfg.Token, "bearer token for mutating requests")
	cmd.PersistentFlags().StringVar(&opts.SessionFile, "session-file", cfg.SessionFile, "where the owner login flag is kept")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewAffiliatesCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func (o *RootOptions) logger(errOut io.Writer) *zap.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logger.NewWithWriter(errOut, level)
}

// Store builds the client store once per invocation.
func (o *RootOptions) Store(ctx context.Context, cmd *cobra.Command) (*client.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	log := o.logger(cmd.ErrOrStderr())

	var backend client.Backend
	switch o.Mode {
	case "local":
		local, err := client.NewLocalBackend(ctx, seed.NewLoader(log, clock.NewRealClock()).Load, log)
		if err != nil {
			return nil, err
		}
		backend = local
	default:
		backend = o.remote(log)
	}

	o.store = client.NewStore(
		backend,
		client.NewSessionCache(o.fs, o.SessionFile),
		client.Credentials{Username: o.config.OwnerUsername, Password: o.config.OwnerPassword},
		log,
	)
	return o.store, nil
}

func (o *RootOptions) remote(log *zap.Logger) *client.RemoteBackend {
	return client.NewRemoteBackend(o.BaseURL, log,
		client.WithToken(o.Token),
		client.WithRetries(o.config.Retries, 200*time.Millisecond),
		client.WithHTTPClient(newHTTPClient(o.config.Timeout)),
	)
}

// loadedStore returns the store after LoadInitialData succeeded.
func (o *RootOptions) loadedStore(cmd *cobra.Command) (*client.Store, error) {
	store, err := o.Store(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	if err := store.LoadInitialData(cmd.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

// ownerStore is loadedStore for mutating commands, which need an owner login.
func (o *RootOptions) ownerStore(cmd *cobra.Command) (*client.Store, error) {
	store, err := o.Store(cmd.Context(), cmd)
	if err != nil {
		return nil, err
	}
	if !store.OwnerLoggedIn() {
		return nil, ErrOwnerLoginRequired
	}
	return o.loadedStore(cmd)
}
