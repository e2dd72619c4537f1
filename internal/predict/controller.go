// Package predict runs the on-demand fault analysis flow: submit three
// readings, then render the classification, its probability bars and the
// interpretation.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/fence"
	"fiberwatch.sh/internal/ferrors"
	"fiberwatch.sh/internal/metrics"
	"fiberwatch.sh/internal/models"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/tracing"
)

// AlertMessage is shown for every failed analysis.
const AlertMessage = "An error occurred while analyzing the fiber. Please try again."

var (
	// ErrStale is returned when a newer submission overtook this one.
	ErrStale = errors.New("prediction superseded by a newer request")
	// ErrInvalidInput is returned for non-finite readings.
	ErrInvalidInput = errors.New("invalid prediction input")
)

// State is the controller's position in the submit flow.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Predictor submits readings to the backend.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictRequest) (models.PredictionResult, error)
}

// Controller drives one prediction panel.
type Controller struct {
	predictor Predictor
	charts    *chart.Manager
	surface   surface.Surface
	post      func(func())
	logger    *slog.Logger
	busy      *Busy
	seq       fence.Sequence

	mu      sync.Mutex
	state   State
	onState func(State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPost routes every render step through post.
func WithPost(post func(func())) Option {
	return func(c *Controller) { c.post = post }
}

// WithStateHook is called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(c *Controller) { c.onState = fn }
}

// WithBusyHook is called whenever the busy indicator changes, in addition
// to toggling the loading overlay.
func WithBusyHook(fn func(visible bool)) Option {
	return func(c *Controller) {
		prev := c.busy.show
		c.busy.show = func(v bool) {
			prev(v)
			fn(v)
		}
	}
}

// New creates a Controller.
func New(predictor Predictor, charts *chart.Manager, s surface.Surface, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		predictor: predictor,
		charts:    charts,
		surface:   s,
		logger:    logger.With("component", "predict"),
	}
	var mu sync.Mutex
	c.post = func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
	c.busy = NewBusy(func(v bool) {
		c.post(func() { c.surface.SetVisible(surface.LoadingOverlay, v) })
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy returns the controller's busy indicator.
func (c *Controller) Busy() *Busy {
	return c.busy
}

func (c *Controller) transition(s State) {
	c.mu.Lock()
	c.state = s
	hook := c.onState
	c.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// Submit sends req and renders the outcome. It blocks until the request
// finishes; the dashboard calls it from a goroutine.
//
// Any failure shows AlertMessage and leaves earlier results on screen.
// A response overtaken by a newer Submit is dropped and ErrStale returned.
func (c *Controller) Submit(ctx context.Context, req models.PredictRequest) (_ models.PredictionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "predict.submit")
	defer func() { tracing.End(span, err) }()

	if err := validate(req); err != nil {
		c.logger.Warn("Rejected prediction input", "err", err)
		c.post(func() { c.surface.Alert(AlertMessage) })
		return models.PredictionResult{}, err
	}

	seq := c.seq.Next()
	release := c.busy.Acquire()
	defer func() {
		release()
		if c.seq.Latest(seq) {
			c.transition(Idle)
		}
	}()
	c.transition(Submitting)

	res, err := c.predictor.Predict(ctx, req)

	if !c.seq.Latest(seq) {
		metrics.RecordStale("predict")
		c.logger.Debug("Discarding stale prediction", "seq", seq, "latest", c.seq.Current())
		return models.PredictionResult{}, ErrStale
	}

	if err != nil {
		c.transition(Failed)
		metrics.PredictionsTotal.WithLabelValues(outcomeOf(err)).Inc()
		c.logger.Error("Prediction failed", "seq", seq, "kind", ferrors.KindOf(err).String(), "err", err)
		c.post(func() { c.surface.Alert(AlertMessage) })
		return models.PredictionResult{}, err
	}

	c.transition(Success)
	metrics.PredictionsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.logger.Info("Prediction complete", "seq", seq, "prediction", string(res.Prediction), "confidence", res.Confidence)
	c.post(func() {
		if !c.seq.Latest(seq) {
			metrics.RecordStale("predict")
			return
		}
		c.render(res)
	})
	return res, nil
}

func (c *Controller) render(res models.PredictionResult) {
	profile := faults.Lookup(res.Prediction)

	c.surface.SetText(surface.PredictionResult, string(res.Prediction))
	c.surface.SetBanner(surface.ResultAlert, surface.Banner{
		Class: profile.AlertClass,
		Icon:  profile.Icon,
		Tone:  profile.Tone,
		Text:  "Detected: " + string(res.Prediction),
	})
	c.surface.SetVisible(surface.ResultAlert, true)
	c.surface.SetRows(surface.Results, Lines(res))

	if err := c.charts.Render(chart.ProbabilityBars, chart.Probability(res.Probabilities)); err != nil {
		c.logger.Error("Failed to render probability chart", "err", err)
	}
	c.surface.SetVisible(surface.ProbabilityCard, true)
}

// Lines returns the result panel rows: one per probability, then the
// confidence and the interpretation.
func Lines(res models.PredictionResult) []surface.Row {
	labels := faults.Keys(res.Probabilities)
	rows := make([]surface.Row, 0, len(labels)+2)
	for _, ft := range labels {
		p := faults.Lookup(ft)
		rows = append(rows, surface.Row{Cells: []surface.Cell{{
			Text:  fmt.Sprintf("%s: %s", ft, chart.Percent(res.Probabilities[ft])),
			Class: "probability",
			Tone:  p.Tone,
		}}})
	}
	rows = append(rows,
		surface.Row{Cells: []surface.Cell{{Text: "Confidence: " + chart.Percent(res.Confidence), Class: "confidence"}}},
		surface.Row{Cells: []surface.Cell{{Text: faults.Lookup(res.Prediction).Interpretation, Class: "interpretation"}}},
	)
	return rows
}

func validate(req models.PredictRequest) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"signal_power", req.SignalPower},
		{"attenuation", req.Attenuation},
		{"distance", req.Distance},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func outcomeOf(err error) string {
	switch ferrors.KindOf(err) {
	case ferrors.KindStatus:
		return metrics.OutcomeStatus
	case ferrors.KindDecode:
		return metrics.OutcomeDecode
	default:
		return metrics.OutcomeTransport
	}
}
