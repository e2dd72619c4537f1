package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fiberwatch.sh/internal/aggregate"
	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/tui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the backend and summarize network statistics",
		Long:  `Probe the fault detection backend and print the current device, measurement and fault counts.`,
		RunE:  runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	printHeader("Fiberwatch Status")
	fmt.Println()

	health, err := e.client.Health(ctx)
	if err != nil {
		printError("Backend %s is unreachable", e.client.BaseURL())
		return err
	}
	printSuccess("Backend %s is %s", e.client.BaseURL(), health.Status)

	stats, err := e.client.Stats(ctx)
	if err != nil {
		printError("Failed to load statistics")
		return err
	}

	loc, err := e.cfg.Location()
	if err != nil {
		return err
	}
	agg := aggregate.New(loc)
	sum := agg.Summarize(stats)

	fmt.Println()
	row := func(label, value string) {
		fmt.Printf("  %s %s\n", tui.LabelStyle.Render(fmt.Sprintf("%-14s", label)), tui.ValueStyle.Render(value))
	}
	row("Devices", strconv.Itoa(sum.DeviceCount))
	row("Measurements", strconv.Itoa(sum.MeasurementCount))
	row("Fault rate", sum.FaultRate)
	if sum.NotificationCount != nil {
		row("Notifications", strconv.Itoa(*sum.NotificationCount))
	}
	if sum.RecentAlerts != nil {
		row("Recent alerts", strconv.Itoa(*sum.RecentAlerts))
	}
	row("Checked at", agg.Clock(sum.LastUpdated))

	pie := chart.FaultDistributionPie(stats.FaultDistribution)
	if len(pie.Labels) == 0 {
		return nil
	}
	fmt.Println()
	printHeader("Fault Distribution")
	for i, label := range pie.Labels {
		fmt.Printf("  %-16s %6d  %s\n", label, pie.Values[i], yellow(strconv.Itoa(pie.Percent(i))+"%"))
	}
	return nil
}
