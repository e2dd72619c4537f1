package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/export"
	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/predict"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/tui"
)

func newPredictCmd() *cobra.Command {
	var (
		req      models.PredictRequest
		chartOut string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Analyze one set of optical readings",
		Long: `Submit signal power, attenuation and distance to the backend and show
the detected fault type, its probabilities and an interpretation.`,
		Example: `  fiberwatch predict --signal-power -20 --attenuation 0.5 --distance 1000
  fiberwatch predict --signal-power -45 --attenuation 2.1 --distance 800 --chart-out probs.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), req, chartOut, asJSON)
		},
	}

	cmd.Flags().Float64Var(&req.SignalPower, "signal-power", 0, "signal power in dB")
	cmd.Flags().Float64Var(&req.Attenuation, "attenuation", 0, "attenuation in dB/km")
	cmd.Flags().Float64Var(&req.Distance, "distance", 0, "distance in meters")
	cmd.Flags().StringVar(&chartOut, "chart-out", "", "write the probability chart to this PNG file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw prediction as JSON")
	cmd.MarkFlagRequired("signal-power")
	cmd.MarkFlagRequired("attenuation")
	cmd.MarkFlagRequired("distance")

	return cmd
}

func runPredict(ctx context.Context, req models.PredictRequest, chartOut string, asJSON bool) error {
	e, err := setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	mem := surface.NewMemory()
	images := export.NewBackend(0, 0)
	charts := chart.NewManager(images, e.logger)
	defer charts.Close()

	spin := tui.NewBusySpinner("Analyzing fiber...", os.Stderr)
	ctrl := predict.New(e.client, charts, mem, e.logger, predict.WithBusyHook(spin.Show))

	res, err := ctrl.Submit(ctx, req)
	if err != nil {
		for _, msg := range mem.Alerts() {
			fmt.Fprintln(os.Stderr, tui.BannerStyle(faults.ToneDanger).Render(msg))
		}
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printPrediction(mem)

	if chartOut != "" {
		img := images.Image(surface.ProbabilityChart)
		if img == nil {
			return fmt.Errorf("no probability chart was rendered")
		}
		if err := os.WriteFile(chartOut, img.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		printSuccess("Probability chart written to %s", chartOut)
	}
	return nil
}

func printPrediction(mem *surface.Memory) {
	banner := mem.Banner(surface.ResultAlert)
	fmt.Println(tui.BannerStyle(banner.Tone).Render(banner.Text))

	fmt.Println(tui.TitleStyle.Render("Probabilities"))
	for _, row := range mem.Rows(surface.Results) {
		for _, cell := range row.Cells {
			switch cell.Class {
			case "probability":
				fmt.Println("  " + tui.ToneText(cell.Text, cell.Tone))
			case "confidence":
				fmt.Println(tui.ValueStyle.Render(cell.Text))
			default:
				fmt.Println(tui.HelpStyle.Render(cell.Text))
			}
		}
	}
}
