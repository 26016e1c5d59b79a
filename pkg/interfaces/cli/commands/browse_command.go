package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vsinha/skudiag/pkg/application/services/orchestration"
	"github.com/vsinha/skudiag/pkg/application/services/presentation"
	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/events"
	"github.com/vsinha/skudiag/pkg/interfaces/cli/output"
)

const browseChromeHeight = 5

var (
	browseTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	browseStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	browseErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// stateChangedMsg tells the model to take a fresh snapshot
type stateChangedMsg struct{}

type browseKeyMap struct {
	Select     key.Binding
	Focus      key.Binding
	ShiftLeft  key.Binding
	ShiftRight key.Binding
	Widen      key.Binding
	Narrow     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.ShiftLeft, k.ShiftRight, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Focus, k.Quit},
		{k.ShiftLeft, k.ShiftRight, k.Widen, k.Narrow, k.Help},
	}
}

var browseKeys = browseKeyMap{
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "load SKU"),
	),
	Focus: key.NewBinding(
		key.WithKeys("/", "tab", "esc"),
		key.WithHelp("/", "edit SKU"),
	),
	ShiftLeft: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "window back"),
	),
	ShiftRight: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "window forward"),
	),
	Widen: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "widen window"),
	),
	Narrow: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "narrow window"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowseModel is the interactive SKU view
type BrowseModel struct {
	ctx          context.Context
	orchestrator *orchestration.SourceOrchestrator
	adapter      *presentation.Adapter
	store        events.EventStore
	subscription string
	updates      <-chan struct{}

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     browseKeyMap

	state   orchestration.ViewState
	initial entities.SKU
	err     error
	ready   bool
	width   int
	height  int
}

// NewBrowseModel wires a model to orchestrator. Every event published to
// store triggers a redraw.
func NewBrowseModel(
	ctx context.Context,
	orchestrator *orchestration.SourceOrchestrator,
	store events.EventStore,
	adapter *presentation.Adapter,
	initial entities.SKU,
) (BrowseModel, error) {
	updates := make(chan struct{}, 1)
	subscription, err := store.Subscribe(events.AllViewEvents, events.HandlerFunc(func(events.Event) error {
		select {
		case updates <- struct{}{}:
		default:
		}
		return nil
	}))
	if err != nil {
		return BrowseModel{}, fmt.Errorf("failed to subscribe to view events: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "SKU"
	input.Prompt = "SKU › "
	input.CharLimit = 64
	input.SetValue(string(initial))
	if initial.IsZero() {
		input.Focus()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return BrowseModel{
		ctx:          ctx,
		orchestrator: orchestrator,
		adapter:      adapter,
		store:        store,
		subscription: subscription,
		updates:      updates,
		input:        input,
		spinner:      s,
		help:         help.New(),
		keys:         browseKeys,
		state:        orchestrator.Snapshot(),
		initial:      initial,
	}, nil
}

// Close stops redraws on view events
func (m BrowseModel) Close() error {
	return m.store.Unsubscribe(m.subscription)
}

func waitForStateChange(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return stateChangedMsg{}
	}
}

func (m BrowseModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForStateChange(m.updates)}
	if !m.initial.IsZero() {
		initial := m.initial
		cmds = append(cmds, func() tea.Msg {
			m.orchestrator.Select(m.ctx, initial)
			return nil
		})
	} else {
		m.orchestrator.Mount(m.ctx)
	}
	return tea.Batch(cmds...)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-browseChromeHeight, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-browseChromeHeight, 1)
		}
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case stateChangedMsg:
		m.state = m.orchestrator.Snapshot()
		m.refresh()
		return m, waitForStateChange(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m BrowseModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		sku, err := entities.ParseSKU(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.Blur()
		m.orchestrator.Select(m.ctx, sku)
		m.state = m.orchestrator.Snapshot()
		m.refresh()
		return m, nil
	case msg.String() == "esc" || msg.String() == "tab":
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowseModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	window := m.state.Window
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ShiftLeft):
		window.Start--
		window.End--
	case key.Matches(msg, m.keys.ShiftRight):
		window.Start++
		window.End++
	case key.Matches(msg, m.keys.Widen):
		window.Start--
	case key.Matches(msg, m.keys.Narrow):
		window.Start++
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.applyWindow(window)
	return m, nil
}

// applyWindow sets window when it stays inside the simulated days
func (m *BrowseModel) applyWindow(window entities.AnalysisWindow) {
	if window.Start < 1 || (m.state.DayKnown() && window.End > m.state.SimulationDay) {
		return
	}
	if err := m.orchestrator.SetWindow(window); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.state = m.orchestrator.Snapshot()
	m.refresh()
}

func (m *BrowseModel) refresh() {
	if !m.ready {
		return
	}
	if m.state.SKU.IsZero() {
		m.viewport.SetContent("Type a SKU and press enter.")
		return
	}
	m.viewport.SetContent(output.RenderText(m.adapter.Build(m.state)))
}

func (m BrowseModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center, browseTitleStyle.Render("skudiag"), m.input.View())

	status := ""
	switch {
	case m.err != nil:
		status = browseErrorStyle.Render(m.err.Error())
	case !m.state.SKU.IsZero() && !m.state.Settled():
		status = browseStatusStyle.Render(m.spinner.View() + " loading " + string(m.state.SKU))
	case m.state.RangeFallback:
		status = browseStatusStyle.Render("simulation range unavailable, using defaults")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, status, m.viewport.View(), m.help.View(m.keys))
}

// BrowseConfig holds configuration for the browse command
type BrowseConfig struct {
	SKU           entities.SKU
	AssistantName string
}

// BrowseCommand runs the interactive view
type BrowseCommand struct {
	config  BrowseConfig
	backend repositories.Backend
	logger  *slog.Logger
}

// NewBrowseCommand creates a new browse command
func NewBrowseCommand(config BrowseConfig, backend repositories.Backend, logger *slog.Logger) *BrowseCommand {
	return &BrowseCommand{config: config, backend: backend, logger: logger}
}

// Execute runs the program until the user quits or ctx is cancelled
func (c *BrowseCommand) Execute(ctx context.Context) error {
	store := events.NewInMemoryEventStore(c.logger)
	orchestrator := orchestration.NewSourceOrchestrator(c.backend, nil, store, c.logger)
	defer orchestrator.Close()

	model, err := NewBrowseModel(ctx, orchestrator, store, presentation.NewAdapter(c.config.AssistantName), c.config.SKU)
	if err != nil {
		return err
	}
	defer func() { _ = model.Close() }()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

func newBrowseCobraCommand(opts *GlobalOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse [SKU]",
		Short: "Explore SKUs interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var config BrowseConfig
			if len(args) == 1 {
				sku, err := entities.ParseSKU(args[0])
				if err != nil {
					return err
				}
				config.SKU = sku
			}

			// the program owns the terminal
			var logs io.Writer = io.Discard
			if logFile != "" {
				file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer file.Close()
				logs = file
			}

			cfg, logger, err := opts.load(logs)
			if err != nil {
				return err
			}
			backend, closeBackend, err := OpenBackend(cfg, logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			config.AssistantName = cfg.Display.AssistantName
			return NewBrowseCommand(config, backend, logger).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file")
	return cmd
}
