package chart

import "fiberwatch.sh/internal/surface"

// Slot is a logical chart position. Each slot holds at most one live instance.
type Slot int

const (
	FaultDistribution Slot = iota
	SignalPowerSeries
	ProbabilityBars
)

// Slots returns every slot.
func Slots() []Slot {
	return []Slot{FaultDistribution, SignalPowerSeries, ProbabilityBars}
}

func (s Slot) String() string {
	switch s {
	case FaultDistribution:
		return "fault_distribution"
	case SignalPowerSeries:
		return "signal_power"
	case ProbabilityBars:
		return "probability"
	default:
		return "unknown"
	}
}

// Anchor returns the surface anchor the slot draws on.
func (s Slot) Anchor() surface.Anchor {
	switch s {
	case FaultDistribution:
		return surface.FaultDistributionChart
	case SignalPowerSeries:
		return surface.SignalPowerChart
	case ProbabilityBars:
		return surface.ProbabilityChart
	default:
		return ""
	}
}

// Kind returns the chart kind the slot accepts.
func (s Slot) Kind() Kind {
	switch s {
	case FaultDistribution:
		return KindPie
	case SignalPowerSeries:
		return KindLine
	case ProbabilityBars:
		return KindBar
	default:
		return 0
	}
}

func (s Slot) valid() bool {
	return s >= FaultDistribution && s <= ProbabilityBars
}
