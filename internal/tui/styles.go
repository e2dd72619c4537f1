package tui

import (
	"github.com/charmbracelet/lipgloss"

	"fiberwatch.sh/internal/faults"
)

var (
	// Colors
	primary = lipgloss.Color("#7D56F4")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	info    = lipgloss.Color("#3B82F6")
	muted   = lipgloss.Color("#9CA3AF")
	text    = lipgloss.Color("#F8F8F2")

	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1)

	// Card styles
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 2).
			MarginBottom(1)

	// Banner base, coloured per tone by BannerStyle
	bannerBase = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(muted)

	ValueStyle = lipgloss.NewStyle().
			Foreground(text).
			Bold(true)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)
)

// ToneLipgloss returns the colour of a fault tone.
func ToneLipgloss(t faults.Tone) lipgloss.Color {
	switch t {
	case faults.ToneSuccess:
		return success
	case faults.ToneDanger:
		return danger
	case faults.ToneWarning:
		return warning
	case faults.ToneInfo:
		return info
	default:
		return muted
	}
}

// BannerStyle returns the result banner style for a tone.
func BannerStyle(t faults.Tone) lipgloss.Style {
	c := ToneLipgloss(t)
	return bannerBase.BorderForeground(c).Foreground(c)
}

// ToneText colours s by tone.
func ToneText(s string, t faults.Tone) string {
	return lipgloss.NewStyle().Foreground(ToneLipgloss(t)).Render(s)
}
