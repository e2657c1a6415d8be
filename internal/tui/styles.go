package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colors matching existing output/colors.go scheme
var (
	colorCyan    = lipgloss.Color("6")  // Cyan - routes
	colorYellow  = lipgloss.Color("3")  // Yellow - low capacity
	colorRed     = lipgloss.Color("1")  // Red - sold out, failures
	colorGreen   = lipgloss.Color("2")  // Green - capacity available
	colorMagenta = lipgloss.Color("5")  // Magenta - ships
	colorWhite   = lipgloss.Color("15") // White - times, text
	colorGray    = lipgloss.Color("8")  // Gray - muted text
)

// Text styles
var (
	styleTime    = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleFree    = lipgloss.NewStyle().Foreground(colorGreen)
	styleLow     = lipgloss.NewStyle().Foreground(colorYellow)
	styleSoldOut = lipgloss.NewStyle().Foreground(colorRed)
	styleShip    = lipgloss.NewStyle().Foreground(colorMagenta)
	styleRoute   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleFound   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// Panel border around the active step
var stylePanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorCyan)

// Selected item in a list
var styleSelected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray).
	Background(lipgloss.Color("0"))

// Loading indicator
var styleLoading = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)

// Error text
var styleError = lipgloss.NewStyle().Foreground(colorRed)

// Logo/brand style
var styleLogo = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

// formatCapacity returns a styled small-vehicle count (4-char width).
func formatCapacity(count int) string {
	switch {
	case count <= 0:
		return styleSoldOut.Render(fmt.Sprintf("%4s", "-"))
	case count < 5:
		return styleLow.Render(fmt.Sprintf("%4d", count))
	default:
		return styleFree.Render(fmt.Sprintf("%4d", count))
	}
}
