package tui

import (
	ui "github.com/gizak/termui/v3"

	"fiberwatch.sh/internal/faults"
)

// ToneColor maps a fault tone to a terminal colour.
func ToneColor(t faults.Tone) ui.Color {
	switch t {
	case faults.ToneSuccess:
		return ui.ColorGreen
	case faults.ToneDanger:
		return ui.ColorRed
	case faults.ToneWarning:
		return ui.ColorYellow
	case faults.ToneInfo:
		return ui.ColorBlue
	default:
		return ui.ColorWhite
	}
}

// toneMarkup is the colour name used in termui style markup.
func toneMarkup(t faults.Tone) string {
	switch t {
	case faults.ToneSuccess:
		return "green"
	case faults.ToneDanger:
		return "red"
	case faults.ToneWarning:
		return "yellow"
	case faults.ToneInfo:
		return "blue"
	default:
		return ""
	}
}

// styled wraps text in termui markup for tone. Neutral text is left plain.
func styled(text string, t faults.Tone) string {
	name := toneMarkup(t)
	if name == "" || text == "" {
		return text
	}
	return "[" + text + "](fg:" + name + ")"
}
