package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/client"
	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/table"
	"fiberwatch.sh/internal/testutil"
)

type fakeSource struct {
	mu        sync.Mutex
	stats     func(call int) (models.StatsSnapshot, error)
	recent    func(call int) ([]models.Measurement, error)
	statCalls int
	recCalls  int
	limits    []int
}

func (f *fakeSource) Stats(ctx context.Context) (models.StatsSnapshot, error) {
	f.mu.Lock()
	f.statCalls++
	call := f.statCalls
	fn := f.stats
	f.mu.Unlock()
	return fn(call)
}

func (f *fakeSource) Recent(ctx context.Context, limit int) ([]models.Measurement, error) {
	f.mu.Lock()
	f.recCalls++
	call := f.recCalls
	f.limits = append(f.limits, limit)
	fn := f.recent
	f.mu.Unlock()
	return fn(call)
}

func statsOf(n int) models.StatsSnapshot {
	return models.StatsSnapshot{
		DeviceCount:       n,
		MeasurementCount:  10,
		FaultDistribution: map[faults.FaultType]int{faults.NoFault: 8, faults.FiberBreak: 2},
	}
}

func measurements(n int) []models.Measurement {
	ms := make([]models.Measurement, n)
	for i := range ms {
		ms[i] = models.Measurement{
			Timestamp:   models.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, n-i, 0, time.UTC)},
			SignalPower: float64(-i),
			FaultType:   faults.NoFault,
		}
	}
	return ms
}

func newPoller(src Source) (*Poller, *testutil.Recorder, *surface.Memory) {
	rec := testutil.NewRecorder()
	mem := surface.NewMemory()
	p := New(src, chart.NewManager(rec, nil), mem, Config{Location: time.UTC}, nil)
	return p, rec, mem
}

func TestRefresh(t *testing.T) {
	src := &fakeSource{
		stats:  func(int) (models.StatsSnapshot, error) { return statsOf(3), nil },
		recent: func(int) ([]models.Measurement, error) { return measurements(3), nil },
	}
	p, rec, mem := newPoller(src)

	require.NoError(t, p.Refresh(context.Background()))

	assert.Equal(t, []int{client.DefaultRecentLimit}, src.limits)
	assert.Equal(t, "3", mem.Text(surface.DeviceCount))
	assert.Equal(t, "20.0%", mem.Text(surface.FaultRate))
	assert.NotEmpty(t, mem.Text(surface.LastUpdate))
	assert.False(t, p.Aggregator().LastUpdated().IsZero())

	assert.Equal(t, 1, rec.Live(surface.FaultDistributionChart))
	require.Len(t, rec.CreatedOn(surface.SignalPowerChart), 1)
	series := rec.CreatedOn(surface.SignalPowerChart)[0].Spec.(chart.SeriesSpec)
	assert.Equal(t, []float64{-2, -1, 0}, series.Values)

	assert.Len(t, mem.Rows(surface.RecentMeasurements), 3)
}

func TestRefreshIdempotent(t *testing.T) {
	src := &fakeSource{
		stats:  func(int) (models.StatsSnapshot, error) { return statsOf(3), nil },
		recent: func(int) ([]models.Measurement, error) { return measurements(2), nil },
	}
	p, rec, _ := newPoller(src)

	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))

	pies := rec.CreatedOn(surface.FaultDistributionChart)
	require.Len(t, pies, 2)
	assert.Equal(t, pies[0].Spec, pies[1].Spec)
	assert.True(t, pies[0].Destroyed())
	assert.Equal(t, 1, rec.Live(surface.FaultDistributionChart))
	assert.Equal(t, 1, rec.Live(surface.SignalPowerChart))
}

func TestRefreshPartialFailure(t *testing.T) {
	src := &fakeSource{
		stats: func(int) (models.StatsSnapshot, error) {
			return models.StatsSnapshot{}, ferrors.Transport("GET /api/data/stats", assert.AnError)
		},
		recent: func(int) ([]models.Measurement, error) { return nil, nil },
	}
	p, rec, mem := newPoller(src)

	err := p.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrTransport)

	assert.False(t, mem.HasText(surface.FaultRate))
	assert.Empty(t, rec.CreatedOn(surface.FaultDistributionChart))
	assert.True(t, p.Aggregator().LastUpdated().IsZero())

	rows := mem.Rows(surface.RecentMeasurements)
	require.Len(t, rows, 1)
	assert.Equal(t, table.EmptyMessage, rows[0].Cells[0].Text)
}

func TestRefreshFailureKeepsPreviousRender(t *testing.T) {
	var fail atomic.Bool
	src := &fakeSource{
		stats: func(int) (models.StatsSnapshot, error) {
			if fail.Load() {
				return models.StatsSnapshot{}, ferrors.Status("GET /api/data/stats", 500, "")
			}
			return statsOf(5), nil
		},
		recent: func(int) ([]models.Measurement, error) {
			if fail.Load() {
				return nil, ferrors.Decode("GET /api/data/recent", assert.AnError)
			}
			return measurements(1), nil
		},
	}
	p, rec, mem := newPoller(src)

	require.NoError(t, p.Refresh(context.Background()))
	fail.Store(true)
	assert.Error(t, p.Refresh(context.Background()))

	assert.Equal(t, "5", mem.Text(surface.DeviceCount))
	assert.Equal(t, 1, rec.Live(surface.FaultDistributionChart))
	assert.Len(t, rec.Created(), 2)
	assert.Len(t, mem.Rows(surface.RecentMeasurements), 1)
}

func TestRefreshDiscardsStale(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{
		stats: func(call int) (models.StatsSnapshot, error) {
			if call == 1 {
				<-release
				return statsOf(1), nil
			}
			return statsOf(2), nil
		},
		recent: func(int) ([]models.Measurement, error) { return measurements(1), nil },
	}
	p, rec, mem := newPoller(src)

	done := make(chan error)
	go func() { done <- p.Refresh(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.statCalls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, "2", mem.Text(surface.DeviceCount))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "2", mem.Text(surface.DeviceCount))
	assert.Len(t, rec.CreatedOn(surface.FaultDistributionChart), 1)
}

func TestRefreshSlowerThanIntervalStillRenders(t *testing.T) {
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	src := &fakeSource{
		stats: func(call int) (models.StatsSnapshot, error) {
			<-gates[call-1]
			return statsOf(call), nil
		},
		recent: func(int) ([]models.Measurement, error) { return measurements(1), nil },
	}
	p, rec, mem := newPoller(src)

	first := make(chan error)
	second := make(chan error)
	go func() { first <- p.Refresh(context.Background()) }()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.statCalls == 1
	}, time.Second, time.Millisecond)
	go func() { second <- p.Refresh(context.Background()) }()
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.statCalls == 2
	}, time.Second, time.Millisecond)

	// the older refresh resolves while the newer one is still in flight
	close(gates[0])
	require.NoError(t, <-first)
	assert.Equal(t, "1", mem.Text(surface.DeviceCount))

	close(gates[1])
	require.NoError(t, <-second)
	assert.Equal(t, "2", mem.Text(surface.DeviceCount))
	assert.Len(t, rec.CreatedOn(surface.FaultDistributionChart), 2)
	assert.Equal(t, 1, rec.Live(surface.FaultDistributionChart))
}

func TestRun(t *testing.T) {
	src := &fakeSource{
		stats:  func(int) (models.StatsSnapshot, error) { return statsOf(1), nil },
		recent: func(int) ([]models.Measurement, error) { return measurements(1), nil },
	}
	rec := testutil.NewRecorder()
	mem := surface.NewMemory()
	p := New(src, chart.NewManager(rec, nil), mem, Config{Interval: 10 * time.Millisecond, Location: time.UTC}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(stopped)
	}()

	assert.Eventually(t, func() bool {
		return len(rec.CreatedOn(surface.FaultDistributionChart)) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, 1, rec.Live(surface.FaultDistributionChart))
}

func TestWithPost(t *testing.T) {
	src := &fakeSource{
		stats:  func(int) (models.StatsSnapshot, error) { return statsOf(1), nil },
		recent: func(int) ([]models.Measurement, error) { return measurements(1), nil },
	}
	var mu sync.Mutex
	var queued []func()
	post := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		queued = append(queued, fn)
	}

	rec := testutil.NewRecorder()
	mem := surface.NewMemory()
	p := New(src, chart.NewManager(rec, nil), mem, Config{Location: time.UTC}, nil, WithPost(post))
	require.NoError(t, p.Refresh(context.Background()))

	assert.Empty(t, rec.Created())
	require.Len(t, queued, 2)
	for _, fn := range queued {
		fn()
	}
	assert.Len(t, rec.Created(), 2)
	assert.Equal(t, "1", mem.Text(surface.DeviceCount))
}
