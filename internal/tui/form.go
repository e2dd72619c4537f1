package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fiberwatch.sh/internal/models"
)

// Range bounds one form input.
type Range struct {
	Min, Max, Step, Initial float64
}

// FormConfig holds the ranges of the three readings.
type FormConfig struct {
	SignalPower Range
	Attenuation Range
	Distance    Range
}

// DefaultFormConfig mirrors the sliders of the web dashboard.
func DefaultFormConfig() FormConfig {
	return FormConfig{
		SignalPower: Range{Min: -60, Max: 0, Step: 0.5, Initial: -20},
		Attenuation: Range{Min: 0, Max: 3, Step: 0.05, Initial: 0.5},
		Distance:    Range{Min: 0, Max: 10000, Step: 50, Initial: 1000},
	}
}

type field struct {
	label string
	unit  string
	rng   Range
	value float64
}

func (f *field) adjust(steps int) {
	n := math.Round((f.value - f.rng.Min) / f.rng.Step)
	n += float64(steps)
	v := f.rng.Min + n*f.rng.Step
	v = math.Max(f.rng.Min, math.Min(f.rng.Max, v))
	// drop float noise from repeated steps
	f.value = math.Round(v*1e6) / 1e6
}

func (f *field) display() string {
	return strconv.FormatFloat(f.value, 'f', -1, 64) + " " + f.unit
}

// Form is the prediction input panel.
type Form struct {
	fields   []*field
	selected int
}

// NewForm builds a form from cfg.
func NewForm(cfg FormConfig) *Form {
	mk := func(label, unit string, r Range) *field {
		f := &field{label: label, unit: unit, rng: r, value: r.Initial}
		f.adjust(0)
		return f
	}
	return &Form{fields: []*field{
		mk("Signal Power", "dB", cfg.SignalPower),
		mk("Attenuation", "dB/km", cfg.Attenuation),
		mk("Distance", "m", cfg.Distance),
	}}
}

// Next selects the following field.
func (f *Form) Next() { f.selected = (f.selected + 1) % len(f.fields) }

// Prev selects the preceding field.
func (f *Form) Prev() { f.selected = (f.selected + len(f.fields) - 1) % len(f.fields) }

// Adjust moves the selected field by steps.
func (f *Form) Adjust(steps int) { f.fields[f.selected].adjust(steps) }

// Selected returns the index of the selected field.
func (f *Form) Selected() int { return f.selected }

// Request returns the current readings.
func (f *Form) Request() models.PredictRequest {
	return models.PredictRequest{
		SignalPower: f.fields[0].value,
		Attenuation: f.fields[1].value,
		Distance:    f.fields[2].value,
	}
}

// Text renders the form for a paragraph widget.
func (f *Form) Text(busy bool) string {
	var b strings.Builder
	for i, fl := range f.fields {
		marker := " "
		if i == f.selected {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %-13s %s\n", marker, fl.label, fl.display())
	}
	if busy {
		b.WriteString("\n  [Analyzing...](fg:yellow)")
	} else {
		b.WriteString("\n  [ Analyze ](fg:black,bg:cyan)  enter")
	}
	return b.String()
}
