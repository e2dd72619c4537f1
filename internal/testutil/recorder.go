package testutil

import (
	"errors"
	"sync"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/surface"
)

// ErrCreate is returned by a Recorder told to fail.
var ErrCreate = errors.New("recorder: create failed")

// Recorder is a chart.Backend that keeps every instance it creates.
type Recorder struct {
	mu        sync.Mutex
	created   []*RecordedChart
	failNext  bool
	maxLive   map[surface.Anchor]int
	liveCount map[surface.Anchor]int
}

var _ chart.Backend = (*Recorder)(nil)

// RecordedChart is one instance created by a Recorder.
type RecordedChart struct {
	Anchor surface.Anchor
	Spec   chart.Spec

	rec       *Recorder
	destroyed bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		maxLive:   make(map[surface.Anchor]int),
		liveCount: make(map[surface.Anchor]int),
	}
}

// FailNext makes the next Create call fail.
func (r *Recorder) FailNext() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = true
}

func (r *Recorder) Create(anchor surface.Anchor, spec chart.Spec) (chart.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return nil, ErrCreate
	}
	c := &RecordedChart{Anchor: anchor, Spec: spec, rec: r}
	r.created = append(r.created, c)
	r.liveCount[anchor]++
	if r.liveCount[anchor] > r.maxLive[anchor] {
		r.maxLive[anchor] = r.liveCount[anchor]
	}
	return c, nil
}

func (c *RecordedChart) Destroy() {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.rec.liveCount[c.Anchor]--
}

// Destroyed reports whether Destroy was called.
func (c *RecordedChart) Destroyed() bool {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	return c.destroyed
}

// Created returns every instance in creation order.
func (r *Recorder) Created() []*RecordedChart {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*RecordedChart, len(r.created))
	copy(out, r.created)
	return out
}

// CreatedOn returns the instances created on anchor.
func (r *Recorder) CreatedOn(anchor surface.Anchor) []*RecordedChart {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*RecordedChart
	for _, c := range r.created {
		if c.Anchor == anchor {
			out = append(out, c)
		}
	}
	return out
}

// Live returns the number of undestroyed instances on anchor.
func (r *Recorder) Live(anchor surface.Anchor) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveCount[anchor]
}

// MaxLive returns the highest number of simultaneously live instances seen on anchor.
func (r *Recorder) MaxLive(anchor surface.Anchor) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxLive[anchor]
}
