// Package poller refreshes the dashboard from the backend on a fixed interval.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fiberwatch.sh/internal/aggregate"
	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/client"
	"fiberwatch.sh/internal/fence"
	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/metrics"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/table"
	"fiberwatch.sh/internal/tracing"
)

// DefaultInterval is the refresh period.
const DefaultInterval = 30 * time.Second

// Source is the read side of the backend.
type Source interface {
	Stats(ctx context.Context) (models.StatsSnapshot, error)
	Recent(ctx context.Context, limit int) ([]models.Measurement, error)
}

// Config configures a Poller.
type Config struct {
	Interval    time.Duration
	RecentLimit int
	Location    *time.Location
}

// Poller fetches stats and recent measurements and renders them.
type Poller struct {
	source  Source
	charts  *chart.Manager
	surface surface.Surface
	agg     *aggregate.Aggregator
	table   *table.Renderer
	post    func(func())
	logger  *slog.Logger
	config  Config

	statsSeq  fence.Sequence
	recentSeq fence.Sequence

	wg sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithPost routes every render step through post. The dashboard uses this to
// run renders on its event loop.
func WithPost(post func(func())) Option {
	return func(p *Poller) { p.post = post }
}

// WithAggregator replaces the default aggregator.
func WithAggregator(agg *aggregate.Aggregator) Option {
	return func(p *Poller) { p.agg = agg }
}

// New creates a Poller.
func New(source Source, charts *chart.Manager, s surface.Surface, config Config, logger *slog.Logger, opts ...Option) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = client.DefaultRecentLimit
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Poller{
		source:  source,
		charts:  charts,
		surface: s,
		table:   table.New(config.Location),
		logger:  logger.With("component", "poller"),
		config:  config,
	}
	var mu sync.Mutex
	p.post = func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.agg == nil {
		p.agg = aggregate.New(config.Location)
	}
	return p
}

// Aggregator returns the aggregator holding the last-updated time.
func (p *Poller) Aggregator() *aggregate.Aggregator {
	return p.agg
}

// Refresh fetches both endpoints concurrently and hands each successful
// result to the render step. A failure of one does not affect the other.
// A result is discarded only when a newer Refresh has already rendered, so
// a backend slower than the interval still updates the screen.
func (p *Poller) Refresh(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "dashboard.refresh")
	defer func() { tracing.End(span, err) }()

	statsSeq := p.statsSeq.Next()
	recentSeq := p.recentSeq.Next()

	var (
		wg       sync.WaitGroup
		statsErr error
		recErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		stats, err := p.source.Stats(ctx)
		if err != nil {
			statsErr = ferrors.Wrap(err, "load stats")
			p.logger.Error("Error loading dashboard data", "endpoint", client.EndpointStats, "seq", statsSeq, "kind", ferrors.KindOf(err).String(), "err", err)
			return
		}
		p.post(func() { p.renderStats(statsSeq, stats) })
	}()
	go func() {
		defer wg.Done()
		ms, err := p.source.Recent(ctx, p.config.RecentLimit)
		if err != nil {
			recErr = ferrors.Wrap(err, "load recent measurements")
			p.logger.Error("Error loading dashboard data", "endpoint", client.EndpointRecent, "seq", recentSeq, "kind", ferrors.KindOf(err).String(), "err", err)
			return
		}
		p.post(func() { p.renderRecent(recentSeq, ms) })
	}()
	wg.Wait()

	return errors.Join(statsErr, recErr)
}

func (p *Poller) renderStats(seq uint64, stats models.StatsSnapshot) {
	if !p.statsSeq.Advance(seq) {
		metrics.RecordStale("poll")
		p.logger.Debug("Discarding stale stats", "seq", seq, "applied", p.statsSeq.Applied())
		return
	}
	p.agg.Render(p.surface, stats)
	if err := p.charts.Render(chart.FaultDistribution, chart.FaultDistributionPie(stats.FaultDistribution)); err != nil {
		p.logger.Error("Failed to render fault distribution", "err", err)
	}
}

func (p *Poller) renderRecent(seq uint64, ms []models.Measurement) {
	if !p.recentSeq.Advance(seq) {
		metrics.RecordStale("poll")
		p.logger.Debug("Discarding stale measurements", "seq", seq, "applied", p.recentSeq.Applied())
		return
	}
	if err := p.charts.Render(chart.SignalPowerSeries, chart.SignalPower(ms, p.config.Location)); err != nil {
		p.logger.Error("Failed to render signal power", "err", err)
	}
	p.table.Render(p.surface, ms)
}

// Trigger starts a Refresh in the background.
func (p *Poller) Trigger(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.Refresh(ctx)
	}()
}

// Run refreshes immediately and then on every interval until ctx is done.
// Ticks do not wait for the previous refresh to finish.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	p.logger.Info("Starting dashboard refresh", "interval", p.config.Interval, "limit", p.config.RecentLimit)
	metrics.PollTicksTotal.Inc()
	p.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.PollTicksTotal.Inc()
			p.Trigger(ctx)
		}
	}
}
