// Package surface defines the drawing surface the renderers write to: a set
// of named anchors holding text, table rows, banners and visibility.
package surface

import "fiberwatch.sh/internal/faults"

// Anchor names an element of the dashboard.
type Anchor string

// Stats anchors
const (
	DeviceCount       Anchor = "deviceCount"
	MeasurementCount  Anchor = "measurementCount"
	FaultRate         Anchor = "faultRate"
	LastUpdate        Anchor = "lastUpdate"
	NotificationCount Anchor = "notificationCount"
	RecentAlerts      Anchor = "recentAlerts"
)

// Chart and table anchors
const (
	FaultDistributionChart Anchor = "faultDistributionChart"
	SignalPowerChart       Anchor = "signalPowerChart"
	RecentMeasurements     Anchor = "recentMeasurements"
	ProbabilityChart       Anchor = "probabilityChart"
)

// Prediction anchors
const (
	ProbabilityCard  Anchor = "probabilityCard"
	ResultAlert      Anchor = "resultAlert"
	PredictionResult Anchor = "predictionResult"
	Results          Anchor = "results"
	LoadingOverlay   Anchor = "loadingOverlay"
)

// Anchors lists every anchor.
func Anchors() []Anchor {
	return []Anchor{
		DeviceCount, MeasurementCount, FaultRate, LastUpdate, NotificationCount, RecentAlerts,
		FaultDistributionChart, SignalPowerChart, RecentMeasurements, ProbabilityChart,
		ProbabilityCard, ResultAlert, PredictionResult, Results, LoadingOverlay,
	}
}

// Cell is one table cell. ColSpan 0 means 1.
type Cell struct {
	Text    string
	Class   string
	Tone    faults.Tone
	ColSpan int
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// Banner is a styled notice.
type Banner struct {
	Class string
	Icon  string
	Tone  faults.Tone
	Text  string
}

// Surface is where rendered state lands. Implementations must be called
// from the UI loop only, unless they document otherwise.
type Surface interface {
	SetText(a Anchor, text string)
	SetRows(a Anchor, rows []Row)
	SetBanner(a Anchor, b Banner)
	SetVisible(a Anchor, visible bool)
	// Alert shows a blocking notification.
	Alert(msg string)
}
