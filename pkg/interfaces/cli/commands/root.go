package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/config"
	"github.com/vsinha/skudiag/pkg/infrastructure/logging"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/httpapi"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/sqlite"
)

// GlobalOptions holds the persistent flags shared by every subcommand
type GlobalOptions struct {
	ConfigFile string
	BaseURL    string
	Verbosity  int
	NoCache    bool
}

// NewRootCommand builds the skudiag command tree
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:           "skudiag",
		Short:         "Diagnose a SKU's inventory health against the simulation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Path to a config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&opts.BaseURL, "api-base", "", "Backend base URL, overrides api.baseURL")
	root.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	root.PersistentFlags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the local trend cache")

	root.AddCommand(
		newViewCobraCommand(opts),
		newBrowseCobraCommand(opts),
		newServeFixturesCobraCommand(opts),
	)
	return root
}

// load resolves configuration and builds the logger, writing logs to stderr
func (g *GlobalOptions) load(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	if g.BaseURL != "" {
		cfg.API.BaseURL = g.BaseURL
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if g.NoCache {
		cfg.Cache.Enabled = false
	}

	level := logging.LevelFromVerbosity(logging.LevelFromString(cfg.Logging.Level), g.Verbosity)
	return cfg, logging.NewLogger(stderr, cfg.Logging.Format, level), nil
}

// OpenBackend connects to the configured backend, wrapping it with the
// trend cache when enabled. The returned close function releases the cache.
func OpenBackend(cfg *config.Config, logger *slog.Logger) (repositories.Backend, func() error, error) {
	client, err := httpapi.NewClient(httpapi.Options{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout(),
		UserAgent:    cfg.API.UserAgent,
		Headers:      cfg.API.Headers,
		MaxBodyBytes: cfg.API.MaxBodyBytes,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	noop := func() error { return nil }
	if !cfg.Cache.Enabled {
		return client, noop, nil
	}

	cache, err := sqlite.OpenTrendCache(cfg.Cache.Path, cfg.API.BaseURL, cfg.Cache.TrendTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trend cache: %w", err)
	}
	logger.Debug("trend cache enabled", "path", cfg.Cache.Path, "ttl", cfg.Cache.TrendTTL())
	return sqlite.NewBackend(client, cache, logger), cache.Close, nil
}

