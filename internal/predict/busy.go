package predict

import "sync"

// Busy is a reference-counted indicator. It is shown while at least one
// holder has acquired it.
type Busy struct {
	mu    sync.Mutex
	count int
	show  func(visible bool)
}

// NewBusy returns an indicator that calls show on every visibility change.
func NewBusy(show func(visible bool)) *Busy {
	return &Busy{show: show}
}

// Acquire shows the indicator and returns its release. Calling release more
// than once has no further effect.
func (b *Busy) Acquire() (release func()) {
	b.mu.Lock()
	b.count++
	if b.count == 1 && b.show != nil {
		b.show(true)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.count--
			if b.count == 0 && b.show != nil {
				b.show(false)
			}
		})
	}
}

// Held returns the number of outstanding holders.
func (b *Busy) Held() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
