package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/scenario"
	"github.com/vsinha/skudiag/pkg/interfaces/httpserver"
)

// ServeFixturesConfig holds configuration for the fixture server
type ServeFixturesConfig struct {
	ScenarioDir string
	Addr        string
}

// ServeFixturesCommand serves a scenario directory over the backend's HTTP API
type ServeFixturesCommand struct {
	config ServeFixturesConfig
	logger *slog.Logger
}

// NewServeFixturesCommand creates a new fixture server command
func NewServeFixturesCommand(config ServeFixturesConfig, logger *slog.Logger) *ServeFixturesCommand {
	return &ServeFixturesCommand{config: config, logger: logger}
}

// Execute serves until ctx is cancelled
func (c *ServeFixturesCommand) Execute(ctx context.Context) error {
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: scenario directory is required")
	}

	sc, err := scenario.Load(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}
	c.logger.Info("scenario loaded", "name", sc.Name, "dir", c.config.ScenarioDir, "skus", sc.SKUs())

	server := httpserver.NewServer(sc.Backend, sc, c.logger)
	return server.ListenAndServe(ctx, c.config.Addr)
}

func newServeFixturesCobraCommand(opts *GlobalOptions) *cobra.Command {
	var config ServeFixturesConfig

	cmd := &cobra.Command{
		Use:   "serve-fixtures",
		Short: "Serve a fixture scenario over the backend HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if config.ScenarioDir == "" {
				config.ScenarioDir = cfg.Fixtures.ScenarioDir
			}
			if config.Addr == "" {
				config.Addr = cfg.Fixtures.Addr
			}
			return NewServeFixturesCommand(config, logger).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&config.ScenarioDir, "scenario", "", "Scenario directory (default: fixtures.scenarioDir)")
	cmd.Flags().StringVar(&config.Addr, "addr", "", "Listen address (default: fixtures.addr)")
	return cmd
}
