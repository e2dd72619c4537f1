// Package faults holds the fault-type catalogue and the single lookup table
// every renderer uses to style a fault label.
package faults

import (
	"fmt"
	"math"
	"sort"
)

// FaultType is a diagnosis label as reported by the backend. The set is open:
// any label outside the known constants is treated as Unknown.
type FaultType string

const (
	NoFault    FaultType = "No Fault"
	FiberBreak FaultType = "Fiber Break"
	HighLoss   FaultType = "High Loss"
	SpliceLoss FaultType = "Splice Loss"
)

// Tone is the semantic style family of a fault type.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneDanger
	ToneWarning
	ToneInfo
)

func (t Tone) String() string {
	switch t {
	case ToneSuccess:
		return "success"
	case ToneDanger:
		return "danger"
	case ToneWarning:
		return "warning"
	case ToneInfo:
		return "info"
	default:
		return "neutral"
	}
}

// Color is an RGBA colour with a CSS-style alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// CSS returns the colour in rgba() notation.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, c.A)
}

// Alpha8 returns the alpha channel scaled to 0-255.
func (c Color) Alpha8() uint8 {
	if c.A <= 0 {
		return 0
	}
	if c.A >= 1 {
		return 255
	}
	return uint8(math.Round(c.A * 255))
}

// Profile is one row of the lookup table.
type Profile struct {
	Tone           Tone
	TextClass      string
	AlertClass     string
	Icon           string
	Fill           Color
	Border         Color
	Interpretation string
}

var (
	fallbackFill   = Color{R: 156, G: 163, B: 175, A: 0.7}
	fallbackBorder = Color{R: 156, G: 163, B: 175, A: 1}
)

// Fallback is the profile for labels outside the catalogue.
var Fallback = Profile{
	Tone:   ToneNeutral,
	Fill:   fallbackFill,
	Border: fallbackBorder,
}

// catalogue order is the display order for charts.
var catalogue = []FaultType{NoFault, FiberBreak, HighLoss, SpliceLoss}

var profiles = map[FaultType]Profile{
	NoFault: {
		Tone:           ToneSuccess,
		TextClass:      "text-success",
		AlertClass:     "success",
		Icon:           "fa-check-circle",
		Fill:           Color{R: 34, G: 197, B: 94, A: 0.7},
		Border:         Color{R: 34, G: 197, B: 94, A: 1},
		Interpretation: "The fiber appears to be functioning normally.",
	},
	FiberBreak: {
		Tone:           ToneDanger,
		TextClass:      "text-danger",
		AlertClass:     "danger",
		Icon:           "fa-exclamation-circle",
		Fill:           Color{R: 239, G: 68, B: 68, A: 0.7},
		Border:         Color{R: 239, G: 68, B: 68, A: 1},
		Interpretation: "The signal power is very low and attenuation is high, indicating a possible fiber break.",
	},
	HighLoss: {
		Tone:           ToneWarning,
		TextClass:      "text-warning",
		AlertClass:     "warning",
		Icon:           "fa-exclamation-triangle",
		Fill:           Color{R: 245, G: 158, B: 11, A: 0.7},
		Border:         Color{R: 245, G: 158, B: 11, A: 1},
		Interpretation: "The fiber is experiencing higher than normal attenuation, which could indicate degradation.",
	},
	SpliceLoss: {
		Tone:           ToneInfo,
		TextClass:      "text-info",
		AlertClass:     "info",
		Icon:           "fa-info-circle",
		Fill:           Color{R: 59, G: 130, B: 246, A: 0.7},
		Border:         Color{R: 59, G: 130, B: 246, A: 1},
		Interpretation: "There appears to be loss at connection points in the fiber.",
	},
}

// Known reports whether ft is one of the catalogue labels.
func (ft FaultType) Known() bool {
	_, ok := profiles[ft]
	return ok
}

func (ft FaultType) String() string {
	return string(ft)
}

// Lookup returns the profile for ft. It never fails: unknown labels get Fallback.
func Lookup(ft FaultType) Profile {
	if p, ok := profiles[ft]; ok {
		return p
	}
	return Fallback
}

// Catalogue returns the known fault types in display order.
func Catalogue() []FaultType {
	out := make([]FaultType, len(catalogue))
	copy(out, catalogue)
	return out
}

// Order sorts labels for display: known types in catalogue order first,
// then unknown labels alphabetically. Go map iteration is random, so every
// chart built from a map goes through here to stay idempotent.
func Order(labels []FaultType) []FaultType {
	rank := func(ft FaultType) int {
		for i, k := range catalogue {
			if k == ft {
				return i
			}
		}
		return len(catalogue)
	}
	out := make([]FaultType, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// Keys returns the ordered keys of a fault-keyed map.
func Keys[V any](m map[FaultType]V) []FaultType {
	keys := make([]FaultType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return Order(keys)
}
