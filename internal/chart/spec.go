package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/models"
)

// Kind is the type of chart a spec describes.
type Kind int

const (
	KindPie Kind = iota + 1
	KindLine
	KindBar
)

func (k Kind) String() string {
	switch k {
	case KindPie:
		return "pie"
	case KindLine:
		return "line"
	case KindBar:
		return "bar"
	default:
		return "unknown"
	}
}

// Spec is a backend-independent chart description.
type Spec interface {
	Kind() Kind
	Validate() error
}

// LegendPosition places a chart legend.
type LegendPosition int

const (
	LegendHidden LegendPosition = iota
	LegendTop
	LegendRight
)

// Axis titles and dataset labels.
const (
	SignalPowerLabel = "Signal Power (dB)"
	TimeLabel        = "Time"
	ProbabilityLabel = "Probability"
)

// PieSpec describes the fault distribution pie.
type PieSpec struct {
	Labels []faults.FaultType
	Values []int
	Colors []faults.Color
	Legend LegendPosition
}

func (PieSpec) Kind() Kind { return KindPie }

func (p PieSpec) Validate() error {
	if len(p.Values) != len(p.Labels) || len(p.Colors) != len(p.Labels) {
		return fmt.Errorf("pie: %d labels, %d values, %d colors: %w",
			len(p.Labels), len(p.Values), len(p.Colors), ferrors.ErrInvalidData)
	}
	for i, v := range p.Values {
		if v < 0 {
			return fmt.Errorf("pie: negative count %d for %q: %w", v, p.Labels[i], ferrors.ErrInvalidData)
		}
	}
	return nil
}

// Total sums the rendered values.
func (p PieSpec) Total() int {
	total := 0
	for _, v := range p.Values {
		total += v
	}
	return total
}

// Percent returns the rounded share of slice i, 0 when the total is 0.
func (p PieSpec) Percent(i int) int {
	total := p.Total()
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Values[i]) / float64(total) * 100))
}

// Tooltip returns "label: count (pct%)" for slice i.
func (p PieSpec) Tooltip(i int) string {
	return fmt.Sprintf("%s: %d (%d%%)", p.Labels[i], p.Values[i], p.Percent(i))
}

// SeriesSpec describes the signal power time series.
type SeriesSpec struct {
	Times        []time.Time
	Labels       []string
	Values       []float64
	DatasetLabel string
	XTitle       string
	YTitle       string
	Line         faults.Color
	Fill         faults.Color
	Tension      float64
	Location     *time.Location
}

func (SeriesSpec) Kind() Kind { return KindLine }

func (s SeriesSpec) Validate() error {
	if len(s.Times) != len(s.Values) || len(s.Labels) != len(s.Values) {
		return fmt.Errorf("series: %d times, %d labels, %d values: %w",
			len(s.Times), len(s.Labels), len(s.Values), ferrors.ErrInvalidData)
	}
	for i := 1; i < len(s.Times); i++ {
		if s.Times[i].Before(s.Times[i-1]) {
			return fmt.Errorf("series: point %d out of order: %w", i, ferrors.ErrInvalidData)
		}
	}
	return nil
}

// BarSpec describes the prediction probability bars.
type BarSpec struct {
	Labels       []faults.FaultType
	Values       []float64
	Fills        []faults.Color
	Borders      []faults.Color
	DatasetLabel string
	YMin, YMax   float64
	Legend       LegendPosition
}

func (BarSpec) Kind() Kind { return KindBar }

func (b BarSpec) Validate() error {
	n := len(b.Labels)
	if len(b.Values) != n || len(b.Fills) != n || len(b.Borders) != n {
		return fmt.Errorf("bar: %d labels, %d values, %d fills, %d borders: %w",
			n, len(b.Values), len(b.Fills), len(b.Borders), ferrors.ErrInvalidData)
	}
	if b.YMax <= b.YMin {
		return fmt.Errorf("bar: empty y range [%g, %g]: %w", b.YMin, b.YMax, ferrors.ErrInvalidData)
	}
	for i, v := range b.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bar: value for %q is not finite: %w", b.Labels[i], ferrors.ErrInvalidData)
		}
	}
	return nil
}

// Tick formats a y-axis value in [0,1] as a whole percentage.
func (BarSpec) Tick(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
}

// Tooltip returns "Probability: NN.N%" for bar i.
func (b BarSpec) Tooltip(i int) string {
	return "Probability: " + Percent(b.Values[i])
}

// Percent formats a fraction in [0,1] as a percentage with one decimal.
func Percent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// FaultDistributionPie builds the pie for a stats distribution.
func FaultDistributionPie(dist map[faults.FaultType]int) PieSpec {
	labels := faults.Keys(dist)
	spec := PieSpec{
		Labels: labels,
		Values: make([]int, len(labels)),
		Colors: make([]faults.Color, len(labels)),
		Legend: LegendRight,
	}
	for i, ft := range labels {
		spec.Values[i] = dist[ft]
		spec.Colors[i] = faults.Lookup(ft).Fill
	}
	return spec
}

var (
	seriesLine = faults.Color{R: 59, G: 130, B: 246, A: 1}
	seriesFill = faults.Color{R: 59, G: 130, B: 246, A: 0.1}
)

// SignalPower builds the time series for ms. The input is copied and sorted
// by timestamp; ms itself is left untouched.
func SignalPower(ms []models.Measurement, loc *time.Location) SeriesSpec {
	if loc == nil {
		loc = time.Local
	}
	sorted := make([]models.Measurement, len(ms))
	copy(sorted, ms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp.Time)
	})

	spec := SeriesSpec{
		Times:        make([]time.Time, len(sorted)),
		Labels:       make([]string, len(sorted)),
		Values:       make([]float64, len(sorted)),
		DatasetLabel: SignalPowerLabel,
		XTitle:       TimeLabel,
		YTitle:       SignalPowerLabel,
		Line:         seriesLine,
		Fill:         seriesFill,
		Tension:      0.4,
		Location:     loc,
	}
	for i, m := range sorted {
		spec.Times[i] = m.Timestamp.Time
		spec.Labels[i] = m.Timestamp.In(loc).Format("15:04:05")
		spec.Values[i] = m.SignalPower
	}
	return spec
}

// Probability builds the bars for a prediction's probabilities.
func Probability(p map[faults.FaultType]float64) BarSpec {
	labels := faults.Keys(p)
	spec := BarSpec{
		Labels:       labels,
		Values:       make([]float64, len(labels)),
		Fills:        make([]faults.Color, len(labels)),
		Borders:      make([]faults.Color, len(labels)),
		DatasetLabel: ProbabilityLabel,
		YMin:         0,
		YMax:         1,
		Legend:       LegendHidden,
	}
	for i, ft := range labels {
		profile := faults.Lookup(ft)
		spec.Values[i] = p[ft]
		spec.Fills[i] = profile.Fill
		spec.Borders[i] = profile.Border
	}
	return spec
}
