package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

// checkRunner is the part of the scene check service the browser drives
type checkRunner interface {
	Run(ctx context.Context, name string) (domain.CheckReport, error)
	RunAll(ctx context.Context) (*services.SceneCheckResult, error)
}

type checkKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Run    key.Binding
	RunAll key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k checkKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Run, k.RunAll, k.Quit}
}

func (k checkKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Run, k.RunAll},
		{k.Help, k.Quit},
	}
}

var checkKeys = checkKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Run: key.NewBinding(
		key.WithKeys("enter", "r"),
		key.WithHelp("enter", "run check"),
	),
	RunAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "run all"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// checkDoneMsg carries the reports of a finished run
type checkDoneMsg struct {
	reports []domain.CheckReport
	err     error
}

type checkModel struct {
	ctx      context.Context
	runner   checkRunner
	checks   []string
	cursor   int
	reports  map[string]domain.CheckReport
	running  bool
	err      error
	details  viewport.Model
	help     help.Model
	keys     checkKeyMap
	width    int
	height   int
	showHelp bool
}

func newCheckModel(ctx context.Context, runner checkRunner) checkModel {
	return checkModel{
		ctx:     ctx,
		runner:  runner,
		checks:  services.CheckNames(),
		reports: make(map[string]domain.CheckReport),
		details: viewport.New(60, 12),
		help:    help.New(),
		keys:    checkKeys,
	}
}

func (m checkModel) Init() tea.Cmd {
	return m.runAll()
}

func (m checkModel) runAll() tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		result, err := runner.RunAll(ctx)
		if err != nil {
			return checkDoneMsg{err: err}
		}
		return checkDoneMsg{reports: result.Reports}
	}
}

func (m checkModel) runOne(name string) tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		rep, err := runner.Run(ctx, name)
		if err != nil {
			return checkDoneMsg{err: err}
		}
		return checkDoneMsg{reports: []domain.CheckReport{rep}}
	}
}

func (m checkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.details.Width = msg.Width - 4
		m.details.Height = msg.Height - len(m.checks) - 8
		if m.details.Height < 3 {
			m.details.Height = 3
		}
		m.refreshDetails()
		return m, nil

	case checkDoneMsg:
		m.running = false
		m.err = msg.err
		for _, rep := range msg.reports {
			m.reports[rep.Check] = rep
		}
		m.refreshDetails()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refreshDetails()
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.checks)-1 {
				m.cursor++
				m.refreshDetails()
			}
		case key.Matches(msg, m.keys.Run):
			if !m.running {
				m.running = true
				return m, m.runOne(m.checks[m.cursor])
			}
		case key.Matches(msg, m.keys.RunAll):
			if !m.running {
				m.running = true
				return m, m.runAll()
			}
		default:
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// refreshDetails shows the failures of the check under the cursor
func (m *checkModel) refreshDetails() {
	rep, ok := m.reports[m.checks[m.cursor]]
	switch {
	case !ok:
		m.details.SetContent(ui.FormatMuted("not run yet"))
	case rep.Passed:
		m.details.SetContent(ui.StyleSuccess.Render("passed"))
	default:
		var b strings.Builder
		b.WriteString(ui.StyleWarning.Render(rep.Message+":") + "\n")
		for _, name := range rep.Failures {
			b.WriteString("  " + name + "\n")
		}
		m.details.SetContent(b.String())
	}
	m.details.GotoTop()
}

func (m checkModel) View() string {
	var b strings.Builder

	b.WriteString(ui.FormatTitle("Scene Check") + "\n\n")

	for i, name := range m.checks {
		cursor := "  "
		if i == m.cursor {
			cursor = ui.StylePrimary.Render("> ")
		}
		status := ui.StyleMuted.Render(ui.IconPending)
		if rep, ok := m.reports[name]; ok {
			if rep.Passed {
				status = ui.StyleSuccess.Render(ui.IconSuccess)
			} else {
				status = ui.StyleError.Render(fmt.Sprintf("%s %d", ui.IconError, len(rep.Failures)))
			}
		}
		b.WriteString(fmt.Sprintf("%s%-14s %s\n", cursor, checkTitle(name), status))
	}
	b.WriteString("\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)
	b.WriteString(box.Render(m.details.View()) + "\n")

	switch {
	case m.running:
		b.WriteString(ui.FormatMuted("running...") + "\n")
	case m.err != nil:
		b.WriteString(ui.FormatError(m.err.Error()) + "\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
