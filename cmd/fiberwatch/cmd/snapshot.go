package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/export"
	"fiberwatch.sh/internal/poller"
	"fiberwatch.sh/internal/progress"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/table"
)

func newSnapshotCmd() *cobra.Command {
	var (
		outDir        string
		open          bool
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the dashboard once to PNG files",
		Long: `Fetch statistics and recent measurements once, write the fault
distribution and signal power charts as PNG files and print the
measurements table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), outDir, open, width, height)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&open, "open", false, "open the output directory when done")
	cmd.Flags().IntVar(&width, "width", 800, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 450, "chart height in pixels")

	return cmd
}

func runSnapshot(ctx context.Context, outDir string, open bool, width, height int) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	loc, err := e.cfg.Location()
	if err != nil {
		return err
	}

	steps := progress.NewSteps(os.Stderr, 3, "Fetching dashboard data")

	mem := surface.NewMemory()
	images := export.NewBackend(width, height)
	charts := chart.NewManager(images, e.logger)
	defer charts.Close()

	p := poller.New(e.client, charts, mem, poller.Config{
		RecentLimit: e.cfg.Dashboard.RecentLimit,
		Location:    loc,
	}, e.logger)
	refreshErr := p.Refresh(ctx)
	steps.Step("Writing charts")

	paths, err := images.WriteDir(outDir)
	if err != nil {
		steps.Finish()
		return err
	}
	steps.Step("Done")
	steps.Finish()

	if refreshErr != nil {
		if len(paths) == 0 {
			return refreshErr
		}
		printWarning("Partial snapshot: %v", refreshErr)
	}

	printStats(mem)
	fmt.Println()
	printMeasurements(mem)
	fmt.Println()
	for _, path := range paths {
		printSuccess("Wrote %s", path)
	}

	if open {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return err
		}
		if err := browser.OpenFile(abs); err != nil {
			printWarning("Could not open %s: %v", abs, err)
		}
	}
	return nil
}

func printStats(mem *surface.Memory) {
	printHeader("Network Statistics")
	stats := []struct {
		label  string
		anchor surface.Anchor
	}{
		{"Devices", surface.DeviceCount},
		{"Measurements", surface.MeasurementCount},
		{"Fault rate", surface.FaultRate},
		{"Notifications", surface.NotificationCount},
		{"Recent alerts", surface.RecentAlerts},
		{"Last update", surface.LastUpdate},
	}
	for _, s := range stats {
		if !mem.HasText(s.anchor) {
			continue
		}
		fmt.Printf("  %-14s %s\n", s.label+":", cyan(mem.Text(s.anchor)))
	}
}

func printMeasurements(mem *surface.Memory) {
	printHeader("Recent Measurements")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Headers(), "\t"))
	for _, row := range mem.Rows(surface.RecentMeasurements) {
		if len(row.Cells) == 1 && row.Cells[0].Class == table.EmptyClass {
			fmt.Fprintln(w, row.Cells[0].Text)
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, c.Text)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}
