package tui

import (
	"fmt"
	"math"
	"strconv"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/faults"
)

const noData = "No data yet"

// pieWidget draws a fault distribution. termui cannot draw an empty pie, so
// a zero total falls back to a paragraph.
func pieWidget(spec chart.PieSpec) ui.Drawable {
	if spec.Total() == 0 {
		return placeholder("Fault Distribution")
	}

	pie := widgets.NewPieChart()
	pie.Title = "Fault Distribution"
	pie.Data = make([]float64, len(spec.Values))
	pie.Colors = make([]ui.Color, len(spec.Labels))
	for i, v := range spec.Values {
		pie.Data[i] = float64(v)
		pie.Colors[i] = ToneColor(faults.Lookup(spec.Labels[i]).Tone)
	}
	pie.LabelFormatter = func(i int, _ float64) string {
		return spec.Tooltip(i)
	}
	return pie
}

// seriesWidget draws signal power over time. Plot heights start at zero, so
// values are lifted by the axis offset reported in the title.
func seriesWidget(spec chart.SeriesSpec) ui.Drawable {
	if len(spec.Values) < 2 {
		p := placeholder(spec.DatasetLabel)
		if len(spec.Values) == 1 {
			p.Text = fmt.Sprintf("%s  %s dB", spec.Labels[0], strconv.FormatFloat(spec.Values[0], 'f', -1, 64))
		}
		return p
	}

	shifted, offset := liftValues(spec.Values)
	plot := widgets.NewPlot()
	plot.Title = spec.DatasetLabel
	if offset != 0 {
		plot.Title = fmt.Sprintf("%s, axis +%g", spec.DatasetLabel, offset)
	}
	plot.Data = [][]float64{shifted}
	plot.DataLabels = spec.Labels
	plot.AxesColor = ui.ColorWhite
	plot.LineColors = []ui.Color{ui.ColorBlue}
	plot.Marker = widgets.MarkerBraille
	return plot
}

// liftValues shifts vs so the smallest value sits at or above zero.
// The offset is a multiple of 10.
func liftValues(vs []float64) ([]float64, float64) {
	lowest := 0.0
	for _, v := range vs {
		lowest = math.Min(lowest, v)
	}
	offset := -math.Floor(lowest/10) * 10
	if offset == 0 {
		offset = 0 // normalise -0
	}
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v + offset
	}
	return out, offset
}

// barWidget draws prediction probabilities on a fixed 0-100% axis.
func barWidget(spec chart.BarSpec) ui.Drawable {
	if len(spec.Values) == 0 {
		return placeholder(spec.DatasetLabel)
	}

	bc := widgets.NewBarChart()
	bc.Title = spec.DatasetLabel
	bc.Data = make([]float64, len(spec.Values))
	bc.Labels = make([]string, len(spec.Labels))
	bc.BarColors = make([]ui.Color, len(spec.Labels))
	bc.LabelStyles = []ui.Style{ui.NewStyle(ui.ColorWhite)}
	bc.NumStyles = []ui.Style{ui.NewStyle(ui.ColorBlack)}
	for i, v := range spec.Values {
		bc.Data[i] = v * 100
		bc.Labels[i] = string(spec.Labels[i])
		bc.BarColors[i] = ToneColor(faults.Lookup(spec.Labels[i]).Tone)
	}
	bc.MaxVal = spec.YMax * 100
	bc.NumFormatter = func(v float64) string {
		return spec.Tick(v / 100)
	}
	return bc
}

func placeholder(title string) *widgets.Paragraph {
	p := widgets.NewParagraph()
	p.Title = title
	p.Text = noData
	p.TextStyle = ui.NewStyle(ui.ColorWhite)
	return p
}

// buildWidget turns a spec into a fresh termui widget.
func buildWidget(spec chart.Spec) (ui.Drawable, error) {
	switch s := spec.(type) {
	case chart.PieSpec:
		return pieWidget(s), nil
	case chart.SeriesSpec:
		return seriesWidget(s), nil
	case chart.BarSpec:
		return barWidget(s), nil
	default:
		return nil, fmt.Errorf("unsupported chart spec %T", spec)
	}
}
