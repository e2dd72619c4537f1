package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
)

func TestComputeFaultRate(t *testing.T) {
	tests := []struct {
		name  string
		stats models.StatsSnapshot
		want  string
	}{
		{
			name: "twenty percent",
			stats: models.StatsSnapshot{
				MeasurementCount:  10,
				FaultDistribution: map[faults.FaultType]int{faults.NoFault: 8, faults.FiberBreak: 2},
			},
			want: "20.0%",
		},
		{
			name:  "no measurements",
			stats: models.StatsSnapshot{FaultDistribution: map[faults.FaultType]int{}},
			want:  "0%",
		},
		{
			name: "unknown labels count as faults",
			stats: models.StatsSnapshot{
				MeasurementCount:  3,
				FaultDistribution: map[faults.FaultType]int{faults.NoFault: 2, "Bend Loss": 1},
			},
			want: "33.3%",
		},
		{
			name: "all healthy",
			stats: models.StatsSnapshot{
				MeasurementCount:  5,
				FaultDistribution: map[faults.FaultType]int{faults.NoFault: 5},
			},
			want: "0.0%",
		},
		{
			name: "rounds to one decimal",
			stats: models.StatsSnapshot{
				MeasurementCount:  7,
				FaultDistribution: map[faults.FaultType]int{faults.HighLoss: 1, faults.SpliceLoss: 1},
			},
			want: "28.6%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeFaultRate(tt.stats))
		})
	}
}

func TestRender(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 14, 3, 9, 0, time.UTC)
	agg := New(time.UTC, WithClock(func() time.Time { return fixed }))
	assert.True(t, agg.LastUpdated().IsZero())

	mem := surface.NewMemory()
	alerts := 4
	sum := agg.Render(mem, models.StatsSnapshot{
		DeviceCount:       3,
		MeasurementCount:  10,
		FaultDistribution: map[faults.FaultType]int{faults.NoFault: 8, faults.FiberBreak: 2},
		RecentAlerts:      &alerts,
	})

	assert.Equal(t, "20.0%", sum.FaultRate)
	assert.Equal(t, fixed, agg.LastUpdated())
	assert.Equal(t, "3", mem.Text(surface.DeviceCount))
	assert.Equal(t, "10", mem.Text(surface.MeasurementCount))
	assert.Equal(t, "20.0%", mem.Text(surface.FaultRate))
	assert.Equal(t, "14:03:09", mem.Text(surface.LastUpdate))
	assert.Equal(t, "4", mem.Text(surface.RecentAlerts))
	assert.False(t, mem.HasText(surface.NotificationCount))
}

func TestClockUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	agg := New(loc)
	assert.Equal(t, "12:00:00", agg.Clock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
}
