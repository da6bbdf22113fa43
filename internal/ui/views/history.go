package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tminus/internal/model"
	"github.com/dori/tminus/internal/ui/theme"
	"github.com/dustin/go-humanize"
)

// historyLimit is how many completions the view loads
const historyLimit = 50

// HistorySource is where finished countdowns are read from
type HistorySource interface {
	GetCompletions(limit int) ([]model.Completion, error)
	ClearCompletions() (int64, error)
}

// Local message types for history view
type historyLoadedMsg struct {
	completions []model.Completion
	err         error
}

type historyClearedMsg struct {
	n   int64
	err error
}

// HistoryView lists countdowns that ran to zero
type HistoryView struct {
	source HistorySource
	width  int
	height int

	completions []model.Completion
	cursor      int
	offset      int

	confirmClear bool
	statusMsg    string
}

// NewHistoryView creates a new history view
func NewHistoryView(source HistorySource) HistoryView {
	return HistoryView{source: source}
}

// Init initializes the history view
func (v HistoryView) Init() tea.Cmd {
	return v.load()
}

// SetSize sets the view dimensions
func (v HistoryView) SetSize(width, height int) HistoryView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode returns false; the history view has no text fields
func (v HistoryView) IsInputMode() bool {
	return false
}

// Completions returns the loaded completions
func (v HistoryView) Completions() []model.Completion {
	return v.completions
}

func (v HistoryView) load() tea.Cmd {
	source := v.source
	return func() tea.Msg {
		completions, err := source.GetCompletions(historyLimit)
		return historyLoadedMsg{completions: completions, err: err}
	}
}

func (v HistoryView) clear() tea.Cmd {
	source := v.source
	return func() tea.Msg {
		n, err := source.ClearCompletions()
		return historyClearedMsg{n: n, err: err}
	}
}

// Update handles messages
func (v HistoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			v.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return v, nil
		}
		v.completions = msg.completions
		if v.cursor >= len(v.completions) {
			v.cursor = max(len(v.completions)-1, 0)
		}
		v.ensureVisible()
		return v, nil

	case historyClearedMsg:
		if msg.err != nil {
			v.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return v, nil
		}
		v.statusMsg = fmt.Sprintf("Cleared %d entries", msg.n)
		v.cursor = 0
		v.offset = 0
		return v, v.load()

	case tea.KeyMsg:
		if v.confirmClear {
			v.confirmClear = false
			if msg.String() == "y" || msg.String() == "Y" {
				return v, v.clear()
			}
			v.statusMsg = ""
			return v, nil
		}

		switch msg.String() {
		case "j", "down":
			if v.cursor < len(v.completions)-1 {
				v.cursor++
				v.ensureVisible()
			}
		case "k", "up":
			if v.cursor > 0 {
				v.cursor--
				v.ensureVisible()
			}
		case "g":
			v.cursor = 0
			v.offset = 0
		case "G":
			if len(v.completions) > 0 {
				v.cursor = len(v.completions) - 1
				v.ensureVisible()
			}
		case "r":
			v.statusMsg = ""
			return v, v.load()
		case "X":
			if len(v.completions) == 0 {
				return v, nil
			}
			v.confirmClear = true
			v.statusMsg = "Clear all history? (y/n)"
		}
	}

	return v, nil
}

func (v HistoryView) visibleRows() int {
	rows := v.height - 6
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (v *HistoryView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+rows {
		v.offset = v.cursor - rows + 1
	}
}

// View renders the history view
func (v HistoryView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	var b strings.Builder

	b.WriteString(styles.Title.Render("Finished Countdowns"))
	b.WriteString("\n")

	if len(v.completions) == 0 {
		b.WriteString(styles.ItemMeta.Render("Nothing has finished yet."))
	}

	end := min(v.offset+v.visibleRows(), len(v.completions))
	for i := v.offset; i < end; i++ {
		c := v.completions[i]

		cursor := "  "
		if i == v.cursor {
			cursor = "> "
		}

		meta := fmt.Sprintf("%s · %s", c.CompletedAt.Local().Format("Jan 2 15:04"), humanize.Time(c.CompletedAt))
		if late := c.Late(); late >= 2*time.Second {
			meta += fmt.Sprintf(" · seen %s late", late.Round(time.Second))
		}
		line := cursor + c.Label() + "  " + styles.ItemMeta.Render(meta)

		if i == v.cursor {
			b.WriteString(styles.ItemSelected.Render(line))
		} else {
			b.WriteString(styles.Item.Render(line))
		}
		b.WriteString("\n")
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(v.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
