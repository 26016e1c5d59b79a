package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/skudiag/pkg/application/dto"
	"github.com/vsinha/skudiag/pkg/application/services/orchestration"
	"github.com/vsinha/skudiag/pkg/application/services/presentation"
	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/events"
	"github.com/vsinha/skudiag/pkg/interfaces/cli/output"
)

// ViewConfig holds configuration for the view command
type ViewConfig struct {
	SKU           entities.SKU
	Start         int
	End           int
	Format        string
	OutputFile    string
	Timeout       time.Duration
	AssistantName string
}

// ViewCommand loads every dataset for one SKU and renders the detail view
type ViewCommand struct {
	config  ViewConfig
	backend repositories.Backend
	logger  *slog.Logger
	out     io.Writer
}

// NewViewCommand creates a new view command with the given configuration
func NewViewCommand(config ViewConfig, backend repositories.Backend, logger *slog.Logger, out io.Writer) *ViewCommand {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &ViewCommand{
		config:  config,
		backend: backend,
		logger:  logger,
		out:     out,
	}
}

// Execute runs the view command
func (c *ViewCommand) Execute(ctx context.Context) error {
	if c.config.SKU.IsZero() {
		return fmt.Errorf("validation error: SKU is required")
	}

	view, err := c.Load(ctx)
	if err != nil {
		return err
	}

	out := c.out
	if c.config.OutputFile != "" {
		file, err := os.Create(c.config.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := output.Generate(view, output.Config{Format: c.config.Format, Writer: out}); err != nil {
		return err
	}
	if c.config.OutputFile != "" {
		c.logger.Info("view written", "sku", c.config.SKU, "format", c.config.Format, "path", c.config.OutputFile)
	}
	return nil
}

// Load drives the orchestrator until every source has settled and returns
// the resulting view
func (c *ViewCommand) Load(ctx context.Context) (dto.SkuDetailView, error) {
	store := events.NewInMemoryEventStore(c.logger)
	subscription, err := store.Subscribe(events.AllViewEvents, events.HandlerFunc(func(event events.Event) error {
		c.logger.Debug("view event", "type", event.Type(), "stream", event.StreamID())
		return nil
	}))
	if err != nil {
		return dto.SkuDetailView{}, fmt.Errorf("failed to subscribe to view events: %w", err)
	}
	defer func() { _ = store.Unsubscribe(subscription) }()

	orchestrator := orchestration.NewSourceOrchestrator(c.backend, nil, store, c.logger)
	defer orchestrator.Close()

	orchestrator.Select(ctx, c.config.SKU)

	waitCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()
	if err := orchestrator.Wait(waitCtx); err != nil {
		return dto.SkuDetailView{}, fmt.Errorf("timed out loading SKU %s: %w", c.config.SKU, err)
	}

	if c.config.Start != 0 || c.config.End != 0 {
		window := orchestrator.Snapshot().Window
		if c.config.Start != 0 {
			window.Start = c.config.Start
		}
		if c.config.End != 0 {
			window.End = c.config.End
		}
		if err := orchestrator.SetWindow(window); err != nil {
			return dto.SkuDetailView{}, fmt.Errorf("invalid window: %w", err)
		}
	}

	state := orchestrator.Snapshot()
	for _, failure := range []struct {
		source string
		err    error
	}{
		{"root cause", state.RootCause.Err},
		{"vendor performance", state.Vendor.Err},
		{"inventory trend", state.Trend.Err},
	} {
		if failure.err != nil {
			c.logger.Warn("source failed", "sku", c.config.SKU, "source", failure.source, "error", failure.err)
		}
	}

	return presentation.NewAdapter(c.config.AssistantName).Build(state), nil
}

func newViewCobraCommand(opts *GlobalOptions) *cobra.Command {
	var config ViewConfig

	cmd := &cobra.Command{
		Use:   "view SKU",
		Short: "Show the diagnostic view for one SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := entities.ParseSKU(args[0])
			if err != nil {
				return err
			}
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			backend, closeBackend, err := OpenBackend(cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			config.SKU = sku
			config.AssistantName = cfg.Display.AssistantName
			return NewViewCommand(config, backend, logger, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&config.Start, "start", 0, "First day of the analysis window (default: resolved from the backend)")
	cmd.Flags().IntVar(&config.End, "end", 0, "Last day of the analysis window (default: the simulation day)")
	cmd.Flags().StringVarP(&config.Format, "format", "f", "text", "Output format: "+strings.Join(output.Formats, ", "))
	cmd.Flags().StringVarP(&config.OutputFile, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().DurationVar(&config.Timeout, "timeout", 30*time.Second, "How long to wait for every source to settle")
	return cmd
}
