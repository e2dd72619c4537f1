// Package aggregate derives the display metrics shown in the stats cards.
package aggregate

import (
	"strconv"
	"sync"
	"time"

	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
)

// ClockLayout is the time-of-day format used for "last updated" and chart labels.
const ClockLayout = "15:04:05"

// FaultCount sums every fault type except No Fault.
func FaultCount(stats models.StatsSnapshot) int {
	total := 0
	for ft, n := range stats.FaultDistribution {
		if ft == faults.NoFault {
			continue
		}
		total += n
	}
	return total
}

// ComputeFaultRate returns the share of faulty measurements as a percentage
// with one decimal, e.g. "20.0%". It returns "0%" when there are no
// measurements.
func ComputeFaultRate(stats models.StatsSnapshot) string {
	if stats.MeasurementCount <= 0 {
		return "0%"
	}
	rate := float64(FaultCount(stats)) / float64(stats.MeasurementCount) * 100
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}

// Summary is what the stats cards display.
type Summary struct {
	DeviceCount       int
	MeasurementCount  int
	FaultRate         string
	LastUpdated       time.Time
	NotificationCount *int
	RecentAlerts      *int
}

// Aggregator tracks the last successful stats render.
type Aggregator struct {
	mu   sync.Mutex
	loc  *time.Location
	now  func() time.Time
	last time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New returns an Aggregator that renders times in loc (time.Local if nil).
func New(loc *time.Location, opts ...Option) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	a := &Aggregator{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize computes the summary for stats and marks it as the latest update.
func (a *Aggregator) Summarize(stats models.StatsSnapshot) Summary {
	a.mu.Lock()
	a.last = a.now()
	last := a.last
	a.mu.Unlock()

	return Summary{
		DeviceCount:       stats.DeviceCount,
		MeasurementCount:  stats.MeasurementCount,
		FaultRate:         ComputeFaultRate(stats),
		LastUpdated:       last,
		NotificationCount: stats.NotificationCount,
		RecentAlerts:      stats.RecentAlerts,
	}
}

// LastUpdated returns the time of the last Summarize call, zero if none.
func (a *Aggregator) LastUpdated() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Clock formats t as a local time of day.
func (a *Aggregator) Clock(t time.Time) string {
	return t.In(a.loc).Format(ClockLayout)
}

// Render summarizes stats and writes the stats anchors.
func (a *Aggregator) Render(s surface.Surface, stats models.StatsSnapshot) Summary {
	sum := a.Summarize(stats)

	s.SetText(surface.DeviceCount, strconv.Itoa(sum.DeviceCount))
	s.SetText(surface.MeasurementCount, strconv.Itoa(sum.MeasurementCount))
	s.SetText(surface.FaultRate, sum.FaultRate)
	s.SetText(surface.LastUpdate, a.Clock(sum.LastUpdated))
	if sum.NotificationCount != nil {
		s.SetText(surface.NotificationCount, strconv.Itoa(*sum.NotificationCount))
	}
	if sum.RecentAlerts != nil {
		s.SetText(surface.RecentAlerts, strconv.Itoa(*sum.RecentAlerts))
	}
	return sum
}
