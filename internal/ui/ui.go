package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voicestart/voicestart/internal/backend"
	"github.com/voicestart/voicestart/internal/reconcile"
	"github.com/voicestart/voicestart/internal/state"
)

// Options configures the session watch UI.
type Options struct {
	Context  context.Context
	Store    *state.Store
	PollTick time.Duration

	// Reload triggers an immediate fetch outside the poll cadence. The
	// store carries the result; the UI just re-reads the snapshot.
	Reload func(ctx context.Context) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	store    *state.Store
	reload   func(ctx context.Context) error
	pollTick time.Duration

	theme   Theme
	spin    spinner.Model
	width   int
	height  int
	ready   bool
	loading bool

	snapshot    state.Snapshot
	lastUpdated time.Time

	// fatal carries the error the program should exit with; set when the
	// token stops working and watching cannot continue.
	fatal error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	theme := defaultTheme()
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.SlotColors[reconcile.SlotUploading]))

	return Model{
		ctx:      ctx,
		store:    opts.Store,
		reload:   opts.Reload,
		pollTick: pollTick,
		theme:    theme,
		spin:     sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spin.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		if m.store == nil {
			return m, tickCmd(m.pollTick)
		}
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		// A dead token cannot recover inside the watch; exit with a hint
		// instead of polling 401s forever.
		if backend.IsUnauthorized(m.snapshot.LastError) {
			m.fatal = m.snapshot.LastError
			return m, tea.Quit
		}
		return m, nil

	case reloadedMsg:
		m.loading = false
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "r":
		if m.reload == nil || m.loading {
			return m, nil
		}
		m.loading = true
		return m, reloadCmd(m.ctx, m.reload)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderMain()
}

// FatalErr returns the error the program should report after exit, if
// any.
func (m Model) FatalErr() error {
	return m.fatal
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type reloadedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func reloadCmd(ctx context.Context, reload func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return reloadedMsg{err: reload(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.FatalErr() != nil {
		return fm.FatalErr()
	}
	return nil
}
