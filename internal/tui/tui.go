// Package tui provides a Bubble Tea terminal user interface for gemini-extractor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/handiism/gemini-extractor/internal/config"
	"github.com/handiism/gemini-extractor/internal/unlock"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00B4D8"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is how many leveled events stay on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateExtracting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   unlock.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *zap.Logger
	logs      []LogEntry
	err       error

	// Extraction context
	ctx    context.Context
	cancel context.CancelFunc

	// newManager builds the manager for one run; tests replace it.
	newManager func(onProgress func(unlock.ProgressEvent)) *unlock.Manager

	// msgs carries events from the running extraction, then a DoneMsg.
	msgs chan tea.Msg

	// Extraction progress
	archive    string
	stage      string
	status     string
	percent    float64
	hasPercent bool
	result     unlock.Result

	width  int
	height int
}

// NewModel creates a new TUI model. If path is empty the user is asked
// for one.
func NewModel(settings *config.Settings, logger *zap.Logger, path string) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "C:\\Downloads\\archive.rar"
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		archive:   path,
	}
	m.newManager = func(onProgress func(unlock.ProgressEvent)) *unlock.Manager {
		return unlock.NewManager(m.settings, m.logger, onProgress)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.archive != "" {
		return StartMsgCmd(m.archive)
	}
	return textinput.Blink
}

// Message types
type (
	// StartMsg begins extracting Path.
	StartMsg struct {
		Path string
	}

	// ProgressMsg is sent for every manager event.
	ProgressMsg struct {
		Event unlock.ProgressEvent
	}

	// DoneMsg is sent once the manager returns.
	DoneMsg struct {
		Result unlock.Result
		Err    error
	}
)

// StartMsgCmd returns a command that starts extracting path.
func StartMsgCmd(path string) tea.Cmd {
	return func() tea.Msg { return StartMsg{Path: path} }
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateExtracting:
				m.cancel()
				m.stage = "Cancelling..."
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				if path := strings.TrimSpace(m.textInput.Value()); path != "" {
					return m, StartMsgCmd(path)
				}
			}

		case "tab":
			if m.state == StateInput {
				m.settings.Verbose = !m.settings.Verbose
				return m, nil
			}
		}

		// Any key quits once the run is over.
		if m.state == StateComplete || m.state == StateError {
			return m, tea.Quit
		}

	case StartMsg:
		m.archive = msg.Path
		m.state = StateExtracting
		m.stage = fmt.Sprintf("Extracting %s", filepath.Base(msg.Path))
		m.msgs = make(chan tea.Msg, 64)
		cmds = append(cmds, m.startExtraction(msg.Path), m.waitForMsg(), m.spinner.Tick)

	case spinner.TickMsg:
		if m.state == StateExtracting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case ProgressMsg:
		cmds = append(cmds, m.handleEvent(msg.Event), m.waitForMsg())

	case DoneMsg:
		m.result = msg.Result
		m.err = msg.Err
		if msg.Err != nil {
			m.state = StateError
		} else {
			m.state = StateComplete
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleEvent applies one manager event to the model.
func (m *Model) handleEvent(event unlock.ProgressEvent) tea.Cmd {
	switch event.Level {
	case unlock.LevelOutput:
		m.status = event.Message
		if event.HasPercent {
			m.hasPercent = true
			m.percent = event.Percent
			return m.progress.SetPercent(event.Percent)
		}
		return nil
	case unlock.LevelVerbose:
		if !m.settings.Verbose {
			return nil
		}
	case unlock.LevelInfo:
		m.stage = event.Message
	}

	m.logs = append(m.logs, LogEntry{
		Message: event.Message,
		Level:   event.Level,
	})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🔑 Gemini Extractor"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Unlock archives with the password from their comment"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateExtracting:
		b.WriteString(m.viewExtracting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Archive to extract (.zip or .rar):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.settings.Verbose {
		verboseCheck = "[×]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (tab)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Model: %s", m.settings.Model)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewExtracting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.stage))
	b.WriteString("\n\n")

	if m.hasPercent {
		b.WriteString(m.progress.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(truncate(m.status, m.width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	r := m.result
	var headline string
	switch r.Outcome {
	case unlock.OutcomeDone:
		headline = successStyle.Render("✨ Extraction complete")
	case unlock.OutcomeFailed:
		switch {
		case r.Cancelled:
			headline = warningStyle.Render("Extraction cancelled")
		case r.WrongPassword:
			headline = errorStyle.Render("Extraction failed: password rejected")
		default:
			headline = errorStyle.Render("Extraction failed")
		}
	case unlock.OutcomeSkipped:
		headline = warningStyle.Render("Skipped: no password detected")
	default:
		headline = errorStyle.Render("Aborted")
	}

	lines := []string{headline, ""}
	if r.Archive != nil {
		lines = append(lines, fmt.Sprintf("Archive: %s", r.Archive.Name))
		if r.Outcome == unlock.OutcomeDone {
			lines = append(lines, fmt.Sprintf("Output: %s", r.Archive.OutputFolder))
		}
	}
	if r.Protected {
		lines = append(lines, "Password protected: yes")
	}
	if r.Password != "" {
		lines = append(lines, fmt.Sprintf("Password: %s", r.Password))
	}
	if r.Err != nil {
		lines = append(lines, dimStyle.Render(r.Err.Error()))
	}

	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case unlock.LevelError:
			style = errorStyle
			prefix = "✗"
		case unlock.LevelWarning:
			style = warningStyle
			prefix = "!"
		case unlock.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case unlock.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: verbose • esc: quit"
	case StateExtracting:
		return "esc: cancel • ctrl+c: quit"
	case StateComplete, StateError:
		return "any key: exit"
	}
	return ""
}

// truncate shortens s to fit width columns. A width of zero means unknown.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width > len(r) {
		width = len(r)
	}
	return string(r[:width-1]) + "…"
}

// startExtraction runs the manager in the background. Its events and the
// final DoneMsg are delivered in order through m.msgs.
func (m Model) startExtraction(path string) tea.Cmd {
	ctx, msgs := m.ctx, m.msgs
	manager := m.newManager(func(event unlock.ProgressEvent) {
		select {
		case msgs <- ProgressMsg{Event: event}:
		case <-ctx.Done():
		}
	})

	return func() tea.Msg {
		go func() {
			defer close(msgs)
			result, err := manager.Extract(ctx, path)
			if err != nil && errors.Is(err, context.Canceled) {
				err = fmt.Errorf("cancelled by user")
			}
			msgs <- DoneMsg{Result: result, Err: err}
		}()
		return nil
	}
}

// waitForMsg delivers the next message from the running extraction.
func (m Model) waitForMsg() tea.Cmd {
	msgs := m.msgs
	return func() tea.Msg {
		msg, ok := <-msgs
		if !ok {
			return nil
		}
		return msg
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *zap.Logger, path string) error {
	p := tea.NewProgram(NewModel(settings, logger, path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
