package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tminus/internal/controller"
	"github.com/dori/tminus/internal/countdown"
	"github.com/dori/tminus/internal/model"
	"github.com/dori/tminus/internal/ui/theme"
	"github.com/dustin/go-humanize"
)

// pulseInterval is how fast the label flashes once time is up
const pulseInterval = 500 * time.Millisecond

// Focus targets, in tab order
type field int

const (
	fieldDate field = iota
	fieldTime
	fieldName
	fieldSaved
)

// CountdownEventMsg carries one engine event into the UI
type CountdownEventMsg struct {
	Event countdown.Event
}

type savedLoadedMsg struct {
	timers []model.Timer
	err    error
}

// CompletionRecordedMsg reports the end of a run's expiry handling. Err is
// set if the completion could not be stored.
type CompletionRecordedMsg struct {
	Err error
}

type pulseMsg struct{ run uint64 }

// WaitForEvent blocks on the engine event channel and delivers the next
// event as a message. It must be re-issued after every CountdownEventMsg.
func WaitForEvent(events <-chan countdown.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return CountdownEventMsg{Event: ev}
	}
}

// CountdownView is the main screen: the ticking display, the input form
// and the saved timers
type CountdownView struct {
	ctrl   *controller.Controller
	width  int
	height int

	inputs [3]textinput.Model
	focus  field

	saved  []model.Timer
	cursor int

	// Display state
	label     string
	remaining countdown.Remaining
	running   bool
	expired   bool
	pulse     bool
	run       uint64

	message    string
	messageErr bool
}

// NewCountdownView creates the countdown view
func NewCountdownView(ctrl *controller.Controller) CountdownView {
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.Width = 12

	clock := textinput.New()
	clock.Placeholder = "HH:MM"
	clock.CharLimit = 5
	clock.Width = 7

	name := textinput.New()
	name.Placeholder = "Event name (optional)"
	name.CharLimit = 64
	name.Width = 28

	date.Focus()

	return CountdownView{
		ctrl:   ctrl,
		inputs: [3]textinput.Model{date, clock, name},
		focus:  fieldDate,
	}
}

// Init initializes the countdown view
func (v CountdownView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.loadSaved())
}

// SetSize sets the view dimensions
func (v CountdownView) SetSize(width, height int) CountdownView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode returns whether keys are going to a text field
func (v CountdownView) IsInputMode() bool {
	return v.focus != fieldSaved
}

// IsRunning returns whether the display is ticking
func (v CountdownView) IsRunning() bool {
	return v.running
}

// IsExpired returns whether the last countdown reached zero
func (v CountdownView) IsExpired() bool {
	return v.expired
}

// Remaining returns the values currently displayed
func (v CountdownView) Remaining() countdown.Remaining {
	return v.remaining
}

// Message returns the status line and whether it is an error
func (v CountdownView) Message() (string, bool) {
	return v.message, v.messageErr
}

// Saved returns the saved timers as last loaded
func (v CountdownView) Saved() []model.Timer {
	return v.saved
}

func (v CountdownView) loadSaved() tea.Cmd {
	ctrl := v.ctrl
	return func() tea.Msg {
		timers, err := ctrl.Saved()
		return savedLoadedMsg{timers: timers, err: err}
	}
}

func pulseCmd(run uint64) tea.Cmd {
	return tea.Tick(pulseInterval, func(time.Time) tea.Msg {
		return pulseMsg{run: run}
	})
}

// Update handles messages
func (v CountdownView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedLoadedMsg:
		if msg.err != nil {
			v.setError(msg.err)
			return v, nil
		}
		v.saved = msg.timers
		if v.cursor >= len(v.saved) {
			v.cursor = max(len(v.saved)-1, 0)
		}
		return v, nil

	case CountdownEventMsg:
		return v.handleEvent(msg.Event)

	case CompletionRecordedMsg:
		if msg.Err != nil {
			v.setError(msg.Err)
		}
		return v, nil

	case pulseMsg:
		if v.expired && msg.run == v.run {
			v.pulse = !v.pulse
			return v, pulseCmd(msg.run)
		}
		return v, nil

	case tea.KeyMsg:
		if v.focus == fieldSaved {
			return v.updateSaved(msg)
		}
		return v.updateForm(msg)
	}

	return v, nil
}

func (v CountdownView) handleEvent(ev countdown.Event) (tea.Model, tea.Cmd) {
	if !v.ctrl.Accept(ev) {
		return v, nil
	}

	if ev.State.Expired {
		v.running = false
		v.expired = true
		v.pulse = true
		v.run = ev.Run
		v.remaining = countdown.Remaining{}
		v.setStatus("Time's up!")

		ctrl := v.ctrl
		expire := func() tea.Msg {
			return CompletionRecordedMsg{Err: ctrl.Expire(ev)}
		}
		return v, tea.Batch(expire, pulseCmd(ev.Run), v.loadSaved())
	}

	v.running = true
	v.remaining = ev.State.Remaining
	return v, nil
}

func (v CountdownView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return v.start()

	case "tab", "down":
		return v, v.setFocus(v.nextFocus(1))

	case "shift+tab", "up":
		return v, v.setFocus(v.nextFocus(-1))

	case "esc":
		// Leave the form so global keys work again
		return v, v.setFocus(fieldSaved)
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v CountdownView) updateSaved(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.saved)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g":
		v.cursor = 0
	case "G":
		if len(v.saved) > 0 {
			v.cursor = len(v.saved) - 1
		}

	case "enter", "l":
		// Load into the form for editing
		if len(v.saved) == 0 {
			return v, nil
		}
		timer, ok := v.ctrl.Load(v.saved[v.cursor].Name)
		if !ok {
			return v, v.loadSaved()
		}
		v.inputs[fieldDate].SetValue(timer.Date)
		v.inputs[fieldTime].SetValue(timer.Time)
		v.inputs[fieldName].SetValue(timer.Name)
		return v, v.setFocus(fieldDate)

	case "s":
		// Load and start straight away
		if len(v.saved) == 0 {
			return v, nil
		}
		timer := v.saved[v.cursor]
		v.inputs[fieldDate].SetValue(timer.Date)
		v.inputs[fieldTime].SetValue(timer.Time)
		v.inputs[fieldName].SetValue(timer.Name)
		return v.start()

	case "d", "delete":
		if len(v.saved) == 0 {
			return v, nil
		}
		name := v.saved[v.cursor].Name
		if err := v.ctrl.Delete(name); err != nil {
			v.setError(err)
			return v, nil
		}
		v.setStatus(fmt.Sprintf("Deleted %s", name))
		return v, v.loadSaved()

	case "tab":
		return v, v.setFocus(fieldDate)
	case "shift+tab":
		return v, v.setFocus(fieldName)
	}

	return v, nil
}

// start validates the form and starts the countdown
func (v CountdownView) start() (tea.Model, tea.Cmd) {
	timer, err := v.ctrl.Start(
		v.inputs[fieldName].Value(),
		v.inputs[fieldDate].Value(),
		v.inputs[fieldTime].Value(),
	)
	if err != nil && timer.Target == 0 {
		v.setError(err)
		return v, nil
	}

	v.label = timer.DisplayName()
	v.expired = false
	v.pulse = false
	v.run = 0
	v.remaining = countdown.Decompose(timer.Target - v.ctrl.Engine().Now().UnixMilli())
	v.running = true

	if err != nil {
		// Started, but the save failed
		v.setError(err)
	} else {
		v.setStatus("Countdown started!")
	}
	return v, v.loadSaved()
}

// Reset stops the countdown and clears the display
func (v CountdownView) Reset() CountdownView {
	v.ctrl.Reset()
	v.label = ""
	v.remaining = countdown.Remaining{}
	v.running = false
	v.expired = false
	v.pulse = false
	v.run = 0
	v.message = ""
	v.messageErr = false
	return v
}

func (v *CountdownView) setStatus(s string) {
	v.message = s
	v.messageErr = false
}

func (v *CountdownView) setError(err error) {
	v.message = err.Error()
	v.messageErr = true
}

func (v CountdownView) nextFocus(step int) field {
	n := int(fieldSaved)
	if len(v.saved) > 0 {
		n++
	}
	return field(((int(v.focus)+step)%n + n) % n)
}

func (v *CountdownView) setFocus(f field) tea.Cmd {
	v.focus = f
	var cmd tea.Cmd
	for i := range v.inputs {
		if field(i) == f {
			cmd = v.inputs[i].Focus()
		} else {
			v.inputs[i].Blur()
		}
	}
	return cmd
}

// View renders the countdown view
func (v CountdownView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, v.renderLabel())
	sections = append(sections, v.renderDigits())

	if v.message != "" {
		style := theme.Current.Styles.StatusOK
		if v.messageErr {
			style = theme.Current.Styles.StatusError
		}
		sections = append(sections, style.MarginTop(1).Render(v.message))
	}

	sections = append(sections, v.renderForm())

	if len(v.saved) > 0 {
		sections = append(sections, v.renderSaved())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n"))
}

func (v CountdownView) renderLabel() string {
	styles := theme.Current.Styles

	if v.label == "" {
		return styles.EventName.Render(" ")
	}
	if v.expired && v.pulse {
		return styles.EventPulse.Render(v.label)
	}
	return styles.EventName.Render(v.label)
}

func (v CountdownView) renderDigits() string {
	styles := theme.Current.Styles

	digitStyle := styles.Digits
	if v.expired {
		digitStyle = styles.DigitsExpired
	}

	captions := [4]string{"Days", "Hours", "Minutes", "Seconds"}
	values := v.remaining.Fields()

	var boxes []string
	for i := range values {
		box := digitStyle.Render(values[i])
		caption := styles.DigitsCaption.Width(lipgloss.Width(box)).Render(captions[i])
		boxes = append(boxes, lipgloss.JoinVertical(lipgloss.Center, box, caption), "  ")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (v CountdownView) renderForm() string {
	styles := theme.Current.Styles

	labels := [3]string{"Date", "Time", "Name"}
	var cols []string
	for i, in := range v.inputs {
		style := styles.Input
		if v.focus == field(i) {
			style = styles.InputFocused
		}
		col := lipgloss.JoinVertical(lipgloss.Left,
			styles.Label.Render(labels[i]),
			style.Render(in.View()),
		)
		cols = append(cols, col, " ")
	}

	form := lipgloss.JoinHorizontal(lipgloss.Bottom, cols...)
	return lipgloss.NewStyle().MarginTop(1).Render(form)
}

func (v CountdownView) renderSaved() string {
	styles := theme.Current.Styles

	var lines []string
	lines = append(lines, styles.PanelTitle.Render("Saved Timers"))

	maxShow := v.height - 16
	if maxShow < 3 {
		maxShow = 3
	}

	for i, timer := range v.saved {
		if i >= maxShow {
			lines = append(lines, styles.ItemMeta.Render(fmt.Sprintf("  ... +%d more", len(v.saved)-maxShow)))
			break
		}

		isSelected := v.focus == fieldSaved && i == v.cursor

		cursor := "  "
		if isSelected {
			cursor = "> "
		}

		meta := fmt.Sprintf("%s at %s · %s", timer.FormatDate(), timer.Time, humanize.Time(timer.TargetTime()))
		line := cursor + timer.Name + "  " + styles.ItemMeta.Render(meta)

		if isSelected {
			lines = append(lines, styles.ItemSelected.Render(line))
		} else {
			lines = append(lines, styles.Item.Render(line))
		}
	}

	return styles.Panel.MarginTop(1).Render(strings.Join(lines, "\n"))
}
