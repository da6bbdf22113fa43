package ui

// View represents the current active view
type View int

const (
	ViewCountdown View = iota
	ViewHistory
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewCountdown:
		return "Countdown"
	case ViewHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
