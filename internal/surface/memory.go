package surface

import "sync"

// Memory is an in-memory Surface. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	text    map[Anchor]string
	rows    map[Anchor][]Row
	banners map[Anchor]Banner
	visible map[Anchor]bool
	alerts  []string
}

var _ Surface = (*Memory)(nil)

// NewMemory returns an empty surface with every anchor hidden.
func NewMemory() *Memory {
	return &Memory{
		text:    make(map[Anchor]string),
		rows:    make(map[Anchor][]Row),
		banners: make(map[Anchor]Banner),
		visible: make(map[Anchor]bool),
	}
}

func (m *Memory) SetText(a Anchor, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text[a] = text
}

func (m *Memory) SetRows(a Anchor, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Row, len(rows))
	copy(cp, rows)
	m.rows[a] = cp
}

func (m *Memory) SetBanner(a Anchor, b Banner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banners[a] = b
}

func (m *Memory) SetVisible(a Anchor, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[a] = visible
}

func (m *Memory) Alert(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, msg)
}

// Text returns the text at a.
func (m *Memory) Text(a Anchor) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text[a]
}

// HasText reports whether a was ever written.
func (m *Memory) HasText(a Anchor) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.text[a]
	return ok
}

// Rows returns the rows at a.
func (m *Memory) Rows(a Anchor) []Row {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[a]
}

// Banner returns the banner at a.
func (m *Memory) Banner(a Anchor) Banner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.banners[a]
}

// Visible reports whether a is shown.
func (m *Memory) Visible(a Anchor) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible[a]
}

// Alerts returns every alert shown so far.
func (m *Memory) Alerts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.alerts))
	copy(out, m.alerts)
	return out
}
