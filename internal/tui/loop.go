package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ui "github.com/gizak/termui/v3"
	"golang.org/x/time/rate"

	"fiberwatch.sh/internal/models"
)

// Action is what a key press asks the dashboard to do.
type Action int

const (
	ActionNone Action = iota
	ActionRedraw
	ActionQuit
	ActionRefresh
	ActionSubmit
)

// HandleKey applies a termui key event to the screen. While an alert is
// shown only enter and escape are accepted.
func (s *Screen) HandleKey(id string) Action {
	if s.Alerting() {
		switch id {
		case "<Enter>", "<Escape>":
			s.dismiss()
			return ActionRedraw
		case "<C-c>":
			return ActionQuit
		}
		return ActionNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch id {
	case "q", "<C-c>":
		return ActionQuit
	case "r":
		return ActionRefresh
	case "<Enter>":
		return ActionSubmit
	case "<Tab>", "<Down>", "j":
		s.form.Next()
	case "<Up>", "k":
		s.form.Prev()
	case "<Right>", "l", "+":
		s.form.Adjust(1)
	case "<Left>", "h", "-":
		s.form.Adjust(-1)
	default:
		return ActionNone
	}
	return ActionRedraw
}

// Request returns the readings in the form.
func (s *Screen) Request() models.PredictRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Request()
}

// Handlers are the dashboard callbacks invoked from the loop. Both must
// return quickly; long work belongs on a goroutine.
type Handlers struct {
	Refresh func()
	Submit  func(models.PredictRequest)
}

// Loop owns the terminal and serializes every screen mutation.
type Loop struct {
	screen  *Screen
	posts   chan func()
	done    chan struct{}
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewLoop creates a loop for screen. Manual refreshes are limited to one
// per second.
func NewLoop(screen *Screen, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		screen:  screen,
		posts:   make(chan func(), 64),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger.With("component", "tui"),
	}
}

// Post queues fn to run on the loop. It is safe to call from any goroutine
// and drops fn once the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.posts <- fn:
	case <-l.done:
	}
}

// Throttled reports whether a manual refresh must be skipped.
func (l *Loop) Throttled() bool {
	return !l.limiter.Allow()
}

// Dispatch runs the action for a key press and reports whether to redraw
// and whether to stop.
func (l *Loop) Dispatch(id string, h Handlers) (redraw, quit bool) {
	switch l.screen.HandleKey(id) {
	case ActionQuit:
		return false, true
	case ActionRefresh:
		if l.Throttled() {
			l.logger.Debug("Manual refresh throttled")
			return false, false
		}
		if h.Refresh != nil {
			h.Refresh()
		}
	case ActionSubmit:
		if h.Submit != nil {
			h.Submit(l.screen.Request())
		}
		return true, false
	case ActionRedraw:
		return true, false
	}
	return false, false
}

// Run takes over the terminal until ctx ends or the user quits.
func (l *Loop) Run(ctx context.Context, h Handlers) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %v", err)
	}
	defer ui.Close()
	defer close(l.done)

	w, ht := ui.TerminalDimensions()
	l.screen.Resize(w, ht)
	render := func() {
		ui.Clear()
		ui.Render(l.screen.Drawables()...)
	}
	render()

	uiEvents := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.posts:
			fn()
			// drain whatever else is queued before redrawing
			for drained := false; !drained; {
				select {
				case fn := <-l.posts:
					fn()
				default:
					drained = true
				}
			}
			render()
		case e := <-uiEvents:
			switch e.Type {
			case ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				l.screen.Resize(payload.Width, payload.Height)
				render()
			case ui.KeyboardEvent:
				redraw, quit := l.Dispatch(e.ID, h)
				if quit {
					return nil
				}
				if redraw {
					render()
				}
			}
		}
	}
}
