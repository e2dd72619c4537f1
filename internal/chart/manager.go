// Package chart owns the chart instances drawn on the dashboard. Every slot
// holds at most one live instance; rendering a slot destroys the previous
// instance before the new one is created.
package chart

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fiberwatch.sh/internal/metrics"
	"fiberwatch.sh/internal/surface"
)

var (
	ErrUnknownSlot   = errors.New("unknown chart slot")
	ErrKindMismatch  = errors.New("chart kind does not match slot")
	ErrManagerClosed = errors.New("chart manager closed")
)

// Instance is a chart attached to an anchor.
type Instance interface {
	// Destroy detaches the chart and releases its resources.
	Destroy()
}

// Backend draws chart specs.
type Backend interface {
	Create(anchor surface.Anchor, spec Spec) (Instance, error)
}

type slotState struct {
	mu   sync.Mutex
	live Instance
}

// Manager is the slot registry.
type Manager struct {
	backend Backend
	logger  *slog.Logger
	slots   map[Slot]*slotState

	closeMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager drawing through backend.
func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		backend: backend,
		logger:  logger.With("component", "chart"),
		slots:   make(map[Slot]*slotState, len(Slots())),
	}
	for _, s := range Slots() {
		m.slots[s] = &slotState{}
	}
	return m
}

// Render replaces the chart in slot with one drawn from spec.
//
// An invalid spec is rejected before anything is destroyed. If the backend
// fails to create the new chart the slot is left empty.
func (m *Manager) Render(slot Slot, spec Spec) error {
	state, ok := m.slots[slot]
	if !ok || !slot.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, int(slot))
	}
	if spec == nil || spec.Kind() != slot.Kind() {
		return fmt.Errorf("%w: slot %s", ErrKindMismatch, slot)
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("render %s: %w", slot, err)
	}

	m.closeMu.RLock()
	defer m.closeMu.RUnlock()
	if m.closed {
		return ErrManagerClosed
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.live != nil {
		state.live.Destroy()
		state.live = nil
		metrics.ChartInstances.WithLabelValues(slot.String()).Set(0)
	}

	inst, err := m.backend.Create(slot.Anchor(), spec)
	if err != nil {
		m.logger.Error("Failed to create chart", "slot", slot.String(), "err", err)
		return fmt.Errorf("render %s: %w", slot, err)
	}

	state.live = inst
	metrics.ChartInstances.WithLabelValues(slot.String()).Set(1)
	metrics.ChartRendersTotal.WithLabelValues(slot.String()).Inc()
	m.logger.Debug("Rendered chart", "slot", slot.String(), "kind", spec.Kind().String())
	return nil
}

// Live returns the current instance of slot, nil if empty.
func (m *Manager) Live(slot Slot) Instance {
	state, ok := m.slots[slot]
	if !ok {
		return nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.live
}

// Close destroys every live instance. Later renders fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.closeMu.Lock()
	defer m.closeMu.Unlock()
	if m.closed {
		return
	}
	m.closed = true

	for _, slot := range Slots() {
		state := m.slots[slot]
		state.mu.Lock()
		if state.live != nil {
			state.live.Destroy()
			state.live = nil
			metrics.ChartInstances.WithLabelValues(slot.String()).Set(0)
		}
		state.mu.Unlock()
	}
}
