// Package progress reports multi-step command progress on a terminal bar.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Steps is a bar that advances once per completed step.
type Steps struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewSteps creates a bar of total steps writing to out.
func NewSteps(out io.Writer, total int, description string) *Steps {
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Steps{bar: bar, out: out}
}

// Step marks one step done and shows description for the next.
func (s *Steps) Step(description string) {
	s.bar.Describe(description)
	_ = s.bar.Add(1)
}

// Finish completes the bar.
func (s *Steps) Finish() {
	_ = s.bar.Finish()
}

// Current returns the number of completed steps.
func (s *Steps) Current() int64 {
	return int64(s.bar.State().CurrentNum)
}
