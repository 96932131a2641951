package color

import (
	"os"

	"devstack/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

var (
	successColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#4ADE80"}
	warnColor    = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FACC15"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F87171"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#9CA3AF"}
	accentColor  = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#A78BFA"}
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)
	WarnStyle    = lipgloss.NewStyle().Foreground(warnColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	HeaderStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1)
	CellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Initialize sets the background mode and honours NO_COLOR.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// StatusStyle picks the style for a lifecycle classification.
func StatusStyle(k service.StatusKind) lipgloss.Style {
	switch k {
	case service.KindRunning, service.KindAlreadyRunning:
		return SuccessStyle
	case service.KindStarting:
		return WarnStyle
	case service.KindStartFailed, service.KindUnreachable:
		return ErrorStyle
	default:
		return MutedStyle
	}
}

// Status renders a status kind name in its style.
func Status(k service.StatusKind) string {
	return StatusStyle(k).Render(k.String())
}

// Table renders rows under headers with rounded borders.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}
