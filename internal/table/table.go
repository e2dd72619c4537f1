// Package table renders recent measurements as table rows.
package table

import (
	"strconv"
	"time"

	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
)

const (
	// Columns is the width of the measurements table.
	Columns = 7

	EmptyClass    = "empty-table"
	EmptyMessage  = "No measurements recorded yet."
	UnknownDevice = "Unknown"

	TimestampLayout = "2006-01-02 15:04:05"
)

// Headers returns the column titles.
func Headers() []string {
	return []string{"Timestamp", "Device", "Signal Power", "Attenuation", "Distance", "Fault Type", "Confidence"}
}

// Renderer turns measurements into rows.
type Renderer struct {
	loc *time.Location
}

// New returns a Renderer formatting timestamps in loc (time.Local if nil).
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// Rows returns one row per measurement in input order, or a single
// placeholder row when ms is empty.
func (r *Renderer) Rows(ms []models.Measurement) []surface.Row {
	if len(ms) == 0 {
		return []surface.Row{{
			Cells: []surface.Cell{{Text: EmptyMessage, Class: EmptyClass, ColSpan: Columns}},
		}}
	}

	rows := make([]surface.Row, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, r.row(m))
	}
	return rows
}

// Render writes the rows for ms to the measurements table.
func (r *Renderer) Render(s surface.Surface, ms []models.Measurement) {
	s.SetRows(surface.RecentMeasurements, r.Rows(ms))
}

func (r *Renderer) row(m models.Measurement) surface.Row {
	device := m.Device()
	if device == "" {
		device = UnknownDevice
	}
	profile := faults.Lookup(m.FaultType)

	return surface.Row{Cells: []surface.Cell{
		{Text: m.Timestamp.In(r.loc).Format(TimestampLayout)},
		{Text: device},
		{Text: number(m.SignalPower) + " dB"},
		{Text: number(m.Attenuation) + " dB/km"},
		{Text: number(m.Distance) + " m"},
		{Text: string(m.FaultType), Class: profile.TextClass, Tone: profile.Tone},
		{Text: strconv.FormatFloat(m.Confidence*100, 'f', 1, 64) + "%"},
	}}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
