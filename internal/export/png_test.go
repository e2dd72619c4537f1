package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
)

func decode(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRenderCharts(t *testing.T) {
	b := NewBackend(400, 300)
	m := chart.NewManager(b, nil)

	require.NoError(t, m.Render(chart.FaultDistribution, chart.FaultDistributionPie(map[faults.FaultType]int{
		faults.NoFault: 8, faults.FiberBreak: 2,
	})))
	require.NoError(t, m.Render(chart.SignalPowerSeries, chart.SignalPower([]models.Measurement{
		{Timestamp: models.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}, SignalPower: -12},
		{Timestamp: models.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC)}, SignalPower: -14},
		{Timestamp: models.Timestamp{Time: time.Date(2024, 5, 1, 10, 1, 0, 0, time.UTC)}, SignalPower: -31},
	}, time.UTC)))
	require.NoError(t, m.Render(chart.ProbabilityBars, chart.Probability(map[faults.FaultType]float64{
		faults.NoFault: 0.1, faults.HighLoss: 0.9,
	})))

	for _, a := range []surface.Anchor{surface.FaultDistributionChart, surface.SignalPowerChart, surface.ProbabilityChart} {
		img := b.Image(a)
		require.NotNil(t, img, a)
		w, h := decode(t, img.Bytes())
		assert.Equal(t, 400, w)
		assert.Equal(t, 300, h)
	}
}

func TestPlaceholders(t *testing.T) {
	b := NewBackend(200, 100)

	inst, err := b.Create(surface.FaultDistributionChart, chart.FaultDistributionPie(map[faults.FaultType]int{}))
	require.NoError(t, err)
	w, _ := decode(t, inst.(*Image).Bytes())
	assert.Equal(t, 200, w)

	inst, err = b.Create(surface.SignalPowerChart, chart.SignalPower([]models.Measurement{{SignalPower: -3}}, time.UTC))
	require.NoError(t, err)
	assert.NotEmpty(t, inst.(*Image).Bytes())
}

func TestDestroyDetaches(t *testing.T) {
	b := NewBackend(200, 100)
	m := chart.NewManager(b, nil)
	pie := chart.FaultDistributionPie(map[faults.FaultType]int{faults.NoFault: 3, faults.HighLoss: 1})

	require.NoError(t, m.Render(chart.FaultDistribution, pie))
	first := b.Image(surface.FaultDistributionChart)
	require.NoError(t, m.Render(chart.FaultDistribution, pie))

	assert.Nil(t, first.Bytes())
	assert.NotSame(t, first, b.Image(surface.FaultDistributionChart))

	m.Close()
	assert.Nil(t, b.Image(surface.FaultDistributionChart))
}

func TestWriteDir(t *testing.T) {
	b := NewBackend(200, 100)
	m := chart.NewManager(b, nil)
	require.NoError(t, m.Render(chart.FaultDistribution, chart.FaultDistributionPie(map[faults.FaultType]int{faults.NoFault: 1, faults.SpliceLoss: 1})))
	require.NoError(t, m.Render(chart.SignalPowerSeries, chart.SignalPower(nil, time.UTC)))

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := b.WriteDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "faultDistributionChart.png"),
		filepath.Join(dir, "signalPowerChart.png"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	decode(t, data)
}
