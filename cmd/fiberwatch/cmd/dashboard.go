package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/metrics"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/poller"
	"fiberwatch.sh/internal/predict"
	"fiberwatch.sh/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live fault dashboard",
		Long: `Open the terminal dashboard. Statistics, the fault distribution, the
signal power trend and the recent measurements refresh every
dashboard.refresh_interval; the analysis form submits new readings.

Keys: tab/arrows select and adjust, enter analyze, r refresh, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context())
		},
	}

	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	viper.BindPFlag("metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runDashboard(ctx context.Context) error {
	e, err := setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	loc, err := e.cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen := tui.NewScreen(formConfig(e.cfg.Form), 120, 40)
	loop := tui.NewLoop(screen, e.logger)
	charts := chart.NewManager(screen, e.logger)
	defer charts.Close()

	p := poller.New(e.client, charts, screen, poller.Config{
		Interval:    e.cfg.Dashboard.RefreshInterval,
		RecentLimit: e.cfg.Dashboard.RecentLimit,
		Location:    loc,
	}, e.logger, poller.WithPost(loop.Post))
	ctrl := predict.New(e.client, charts, screen, e.logger,
		predict.WithPost(loop.Post),
		predict.WithStateHook(func(s predict.State) {
			e.logger.Debug("Prediction state", "state", s.String())
		}),
	)

	var wg sync.WaitGroup
	if addr := e.cfg.Metrics.Addr; addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, addr, e.logger); err != nil {
				e.logger.Error("Metrics server failed", "addr", addr, "err", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	handlers := tui.Handlers{
		Refresh: func() { p.Trigger(ctx) },
		Submit: func(req models.PredictRequest) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = ctrl.Submit(ctx, req)
			}()
		},
	}

	err = loop.Run(ctx, handlers)
	cancel()
	wg.Wait()
	return err
}
