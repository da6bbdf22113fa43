package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tminus/internal/app"
	"github.com/dori/tminus/internal/ui/theme"
	"github.com/dori/tminus/internal/ui/views"
)

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView   View
	countdownView views.CountdownView
	historyView   views.HistoryView
	helpVisible   bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:           application,
		keys:          DefaultKeyMap(),
		help:          h,
		currentView:   ViewCountdown,
		countdownView: views.NewCountdownView(application.Controller),
		historyView:   views.NewHistoryView(application.DB),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		views.WaitForEvent(m.app.Engine.Events()),
		m.countdownView.Init(),
	)
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Header takes one line, footer up to three
		contentHeight := m.height - 4
		m.countdownView = m.countdownView.SetSize(m.width, contentHeight)
		m.historyView = m.historyView.SetSize(m.width, contentHeight)
		return m, nil

	case views.CountdownEventMsg:
		// Ticks go to the countdown view whichever view is showing
		newView, cmd := m.countdownView.Update(msg)
		m.countdownView = newView.(views.CountdownView)
		if msg.Event.State.Expired {
			log.Printf("ui: run %d expired", msg.Event.Run)
		}
		return m, tea.Batch(cmd, views.WaitForEvent(m.app.Engine.Events()))

	case views.CompletionRecordedMsg:
		newView, cmd := m.countdownView.Update(msg)
		m.countdownView = newView.(views.CountdownView)
		if msg.Err != nil {
			err := msg.Err
			return m, tea.Batch(cmd, func() tea.Msg { return ErrorMsg{Err: err} })
		}
		// The completion is stored now, so history can show it
		return m, tea.Batch(cmd, m.historyView.Init())

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := false
		switch m.currentView {
		case ViewCountdown:
			isInputMode = m.countdownView.IsInputMode()
		case ViewHistory:
			isInputMode = m.historyView.IsInputMode()
		}

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			t := theme.Toggle()
			return m, func() tea.Msg { return ThemeChangedMsg{ThemeName: t.Name} }

		case key.Matches(msg, m.keys.Reset):
			m.countdownView = m.countdownView.Reset()
			m.statusMsg = "Countdown reset"
			return m, nil
		}

		if m.helpVisible && msg.String() == "esc" {
			m.helpVisible = false
			m.help.ShowAll = false
			return m, nil
		}

		if isInputMode {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		case key.Matches(msg, m.keys.CountdownView):
			m.currentView = ViewCountdown
			return m, m.countdownView.Init()
		case key.Matches(msg, m.keys.HistoryView):
			m.currentView = ViewHistory
			return m, m.historyView.Init()
		}

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	// Non-key messages from async commands go to both views; each ignores
	// what it does not own
	if _, ok := msg.(tea.KeyMsg); !ok {
		newCountdown, cmd := m.countdownView.Update(msg)
		m.countdownView = newCountdown.(views.CountdownView)
		cmds = append(cmds, cmd)

		newHistory, cmd := m.historyView.Update(msg)
		m.historyView = newHistory.(views.HistoryView)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	switch m.currentView {
	case ViewCountdown:
		newView, cmd := m.countdownView.Update(msg)
		m.countdownView = newView.(views.CountdownView)
		cmds = append(cmds, cmd)
	case ViewHistory:
		newView, cmd := m.historyView.Update(msg)
		m.historyView = newView.(views.HistoryView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewCountdown:
			content = m.countdownView.View()
		case ViewHistory:
			content = m.historyView.View()
		default:
			content = styles.Panel.Render("View not implemented")
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("tminus")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	var running string
	if m.countdownView.IsRunning() {
		running = lipgloss.NewStyle().Foreground(t.Success).Padding(0, 1).Render("● " + m.app.Controller.Label())
	}

	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator, running)
	rightSide := themeIndicator

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string

	switch m.currentView {
	case ViewCountdown:
		if m.countdownView.IsInputMode() {
			line1 = key("enter", "start") + sep +
				key("tab", "next field") + sep +
				key("esc", "leave form")
		} else {
			line1 = key("j/k", "navigate") + sep +
				key("enter", "load") + sep +
				key("s", "start") + sep +
				key("d", "delete") + sep +
				key("tab", "form")
		}
		line2 = key("C-r", "reset") + sep +
			key("C-t", "theme") + sep +
			key("1-2", "views") + sep +
			key("?", "help")

	case ViewHistory:
		line1 = key("j/k", "navigate") + sep +
			key("r", "refresh") + sep +
			key("X", "clear")
		line2 = key("1-2", "views") + sep +
			key("C-t", "theme") + sep +
			key("?", "help")

	default:
		line1 = key("1-2", "views") + sep + key("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	sections := []struct {
		title string
		keys  [][]string
	}{
		{"Countdown form", [][]string{
			{"enter", "Start the countdown (saves it when named)"},
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"esc", "Leave the form"},
		}},
		{"Saved timers", [][]string{
			{"↑/k ↓/j", "Navigate up/down"},
			{"enter", "Load into the form"},
			{"s", "Load and start"},
			{"d", "Delete"},
		}},
		{"History", [][]string{
			{"r", "Refresh"},
			{"X", "Clear all"},
		}},
		{"System", [][]string{
			{"ctrl+r", "Reset countdown"},
			{"ctrl+t", "Toggle theme"},
			{"1 / 2", "Countdown / history"},
			{"q / ctrl+c", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("tminus Help"))
	b.WriteString("\n")

	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kv := range s.keys {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}
