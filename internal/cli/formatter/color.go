package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// Score bands used for coloring.
const (
	HighScore   = 40
	MediumScore = 20
)

// ScoreStyle colors a priority score by band.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= HighScore:
		return StyleRed
	case score >= MediumScore:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// Score renders a score right-aligned in a three-column field.
func Score(score int) string {
	return ScoreStyle(score).Render(fmt.Sprintf("%3d", score))
}

// SeverityPill colors a tracker severity such as "1 - Critical".
func SeverityPill(severity string, level int) string {
	if severity == "" {
		return Dim("--")
	}
	switch {
	case level <= 1:
		return StyleRed.Render(severity)
	case level == 2:
		return StyleYellow.Render(severity)
	default:
		return StyleFg.Render(severity)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
