package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// Colors holds the color functions for different output types
type Colors struct {
	Time    func(format string, a ...interface{}) string
	Free    func(format string, a ...interface{}) string
	Low     func(format string, a ...interface{}) string
	SoldOut func(format string, a ...interface{}) string
	Ship    func(format string, a ...interface{}) string
	Route   func(format string, a ...interface{}) string
	Found   func(format string, a ...interface{}) string
	Failed  func(format string, a ...interface{}) string
	Header  func(format string, a ...interface{}) string
	Muted   func(format string, a ...interface{}) string
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false // Force colors on
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		// Return no-op color functions
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return color.New().Sprintf(format, a...)
		}
		return &Colors{
			Time:    noColor,
			Free:    noColor,
			Low:     noColor,
			SoldOut: noColor,
			Ship:    noColor,
			Route:   noColor,
			Found:   noColor,
			Failed:  noColor,
			Header:  noColor,
			Muted:   noColor,
		}
	}

	return &Colors{
		Time:    color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Free:    color.New(color.FgGreen).SprintfFunc(),
		Low:     color.New(color.FgYellow).SprintfFunc(),
		SoldOut: color.New(color.FgRed).SprintfFunc(),
		Ship:    color.New(color.FgMagenta).SprintfFunc(),
		Route:   color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Found:   color.New(color.FgGreen, color.Bold).SprintfFunc(),
		Failed:  color.New(color.FgRed, color.Bold).SprintfFunc(),
		Header:  color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Muted:   color.New(color.FgHiBlack).SprintfFunc(),
	}
}

// lowCapacityThreshold marks counts worth hurrying for.
const lowCapacityThreshold = 5

// FormatCapacity formats a small-vehicle count with appropriate color
// (fixed 4-char width). Negative provider sentinels render as sold out.
func (c *Colors) FormatCapacity(count int) string {
	switch {
	case count <= 0:
		return c.SoldOut("%4s", "-")
	case count < lowCapacityThreshold:
		return c.Low("%4d", count)
	default:
		return c.Free("%4d", count)
	}
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}
