package theme

import "github.com/charmbracelet/lipgloss"

// Light theme - Gruvbox light palette
// https://github.com/morhetz/gruvbox
var Light = Theme{
	Name: "light",
	Dark: false,

	Background: lipgloss.Color("#FBF1C7"),
	Foreground: lipgloss.Color("#3C3836"),
	Subtle:     lipgloss.Color("#928374"),
	Highlight:  lipgloss.Color("#EBDBB2"),
	Border:     lipgloss.Color("#BDAE93"),

	Primary:   lipgloss.Color("#076678"), // Blue
	Secondary: lipgloss.Color("#427B58"), // Aqua
	Info:      lipgloss.Color("#076678"),

	Success: lipgloss.Color("#79740E"), // Green
	Warning: lipgloss.Color("#B57614"), // Yellow
	Error:   lipgloss.Color("#9D0006"), // Red
	Accent:  lipgloss.Color("#AF3A03"), // Orange
}
