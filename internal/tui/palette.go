package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#ECEFF4")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#D08770")
	ColorAccentAlt = lipgloss.Color("#B48EAD")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

// ActionColor is used by the plan listing for each page action.
func ActionColor(action string) lipgloss.Color {
	switch action {
	case "split":
		return ColorAccent
	case "rotate":
		return ColorAccentAlt
	case "unreadable":
		return ColorError
	default:
		return ColorDim
	}
}
