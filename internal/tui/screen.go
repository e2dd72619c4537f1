// Package tui is the terminal front-end: a termui screen that serves as both
// the drawing surface and the chart backend, plus the lipgloss styles and
// spinner used by the one-shot commands.
package tui

import (
	"fmt"
	"image"
	"strings"
	"sync"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/surface"
	"fiberwatch.sh/internal/table"
)

var statAnchors = []struct {
	anchor surface.Anchor
	title  string
}{
	{surface.DeviceCount, "Devices"},
	{surface.MeasurementCount, "Measurements"},
	{surface.FaultRate, "Fault Rate"},
	{surface.LastUpdate, "Last Update"},
	{surface.NotificationCount, "Notifications"},
	{surface.RecentAlerts, "Recent Alerts"},
}

// Screen holds every widget of the dashboard. Apart from Post, its methods
// must run on the event loop.
type Screen struct {
	mu sync.Mutex

	stats   map[surface.Anchor]*widgets.Paragraph
	charts  map[surface.Anchor]ui.Drawable
	rects   map[surface.Anchor]image.Rectangle
	visible map[surface.Anchor]bool

	table   *widgets.Table
	banner  *widgets.Paragraph
	results *widgets.List
	overlay *widgets.Paragraph
	formBox *widgets.Paragraph
	help    *widgets.Paragraph
	modal   *widgets.Paragraph

	form   *Form
	alerts []string
	busy   bool

	width, height int
}

var (
	_ surface.Surface = (*Screen)(nil)
	_ chart.Backend   = (*Screen)(nil)
)

// NewScreen builds the widgets for a width x height terminal.
func NewScreen(form FormConfig, width, height int) *Screen {
	s := &Screen{
		stats:   make(map[surface.Anchor]*widgets.Paragraph),
		charts:  make(map[surface.Anchor]ui.Drawable),
		rects:   make(map[surface.Anchor]image.Rectangle),
		visible: make(map[surface.Anchor]bool),
		form:    NewForm(form),
	}

	for _, sa := range statAnchors {
		p := widgets.NewParagraph()
		p.Title = sa.title
		p.Text = "-"
		s.stats[sa.anchor] = p
	}

	s.table = widgets.NewTable()
	s.table.Title = "Recent Measurements"
	s.table.TextStyle = ui.NewStyle(ui.ColorWhite)
	s.table.RowSeparator = false
	s.table.Rows = [][]string{table.Headers()}
	s.table.RowStyles[0] = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)

	s.banner = widgets.NewParagraph()
	s.banner.Title = "Result"

	s.results = widgets.NewList()
	s.results.Title = "Probabilities"
	s.results.WrapText = true

	s.overlay = widgets.NewParagraph()
	s.overlay.Text = "Analyzing..."
	s.overlay.TextStyle = ui.NewStyle(ui.ColorYellow)
	s.overlay.BorderStyle.Fg = ui.ColorYellow

	s.formBox = widgets.NewParagraph()
	s.formBox.Title = "Analyze Fiber"

	s.help = widgets.NewParagraph()
	s.help.Text = "tab/arrows: select field  left/right: adjust  enter: analyze  r: refresh  q: quit"
	s.help.Border = false
	s.help.TextStyle = ui.NewStyle(ui.ColorCyan)

	s.modal = widgets.NewParagraph()
	s.modal.Title = "Error"
	s.modal.BorderStyle.Fg = ui.ColorRed
	s.modal.WrapText = true

	s.Resize(width, height)
	return s
}

// Resize recomputes the layout.
func (s *Screen) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height

	const statsH, helpH, formH, bannerH = 3, 1, 7, 3
	body := height - statsH - helpH
	if body < 4 {
		body = 4
	}
	chartsH := body / 2
	lowerY := statsH + chartsH

	cardW := width / len(statAnchors)
	for i, sa := range statAnchors {
		x2 := (i + 1) * cardW
		if i == len(statAnchors)-1 {
			x2 = width
		}
		s.stats[sa.anchor].SetRect(i*cardW, 0, x2, statsH)
	}

	half := width / 2
	s.rects[surface.FaultDistributionChart] = image.Rect(0, statsH, half, lowerY)
	s.rects[surface.SignalPowerChart] = image.Rect(half, statsH, width, lowerY)

	left := width * 3 / 5
	bottom := statsH + body
	s.table.SetRect(0, lowerY, left, bottom)

	s.formBox.SetRect(left, lowerY, width, lowerY+formH)
	s.banner.SetRect(left, lowerY+formH, width, lowerY+formH+bannerH)
	rest := lowerY + formH + bannerH
	mid := rest + (bottom-rest)/2
	s.results.SetRect(left, rest, width, mid)
	s.rects[surface.ProbabilityChart] = image.Rect(left, mid, width, bottom)

	s.help.SetRect(0, bottom, width, height)
	s.overlay.SetRect(left, lowerY+formH, width, lowerY+formH+bannerH)

	mw, mh := width/2, 5
	s.modal.SetRect((width-mw)/2, (height-mh)/2, (width+mw)/2, (height+mh)/2)

	for anchor, w := range s.charts {
		r := s.rects[anchor]
		w.SetRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}
}

// SetText implements surface.Surface.
func (s *Screen) SetText(a surface.Anchor, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.stats[a]; ok {
		p.Text = text
		return
	}
	if a == surface.PredictionResult {
		s.banner.Title = "Result: " + text
	}
}

// SetRows implements surface.Surface.
func (s *Screen) SetRows(a surface.Anchor, rows []surface.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch a {
	case surface.RecentMeasurements:
		s.table.Title = "Recent Measurements"
		// termui cells cannot span columns; the placeholder goes in the title
		if len(rows) == 1 && len(rows[0].Cells) == 1 && rows[0].Cells[0].ColSpan >= table.Columns {
			s.table.Title += ": " + rows[0].Cells[0].Text
			s.table.Rows = [][]string{table.Headers()}
			return
		}
		s.table.Rows = append([][]string{table.Headers()}, tableRows(rows)...)
	case surface.Results:
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			for _, c := range r.Cells {
				if c.Text == "" {
					continue
				}
				lines = append(lines, styled(c.Text, c.Tone))
			}
		}
		s.results.Rows = lines
	}
}

// tableRows converts rows to termui cells. A spanning cell is padded with
// empty cells so the column count stays fixed.
func tableRows(rows []surface.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var cells []string
		for _, c := range r.Cells {
			cells = append(cells, styled(c.Text, c.Tone))
			for i := 1; i < c.ColSpan; i++ {
				cells = append(cells, "")
			}
		}
		out = append(out, cells)
	}
	return out
}

// SetBanner implements surface.Surface.
func (s *Screen) SetBanner(a surface.Anchor, b surface.Banner) {
	if a != surface.ResultAlert {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner.Text = b.Text
	s.banner.TextStyle = ui.NewStyle(ToneColor(b.Tone))
	s.banner.BorderStyle.Fg = ToneColor(b.Tone)
}

// SetVisible implements surface.Surface.
func (s *Screen) SetVisible(a surface.Anchor, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[a] = visible
	if a == surface.LoadingOverlay {
		s.busy = visible
	}
}

// Alert implements surface.Surface. Alerts queue; each blocks input until
// dismissed.
func (s *Screen) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, msg)
}

// Alerting reports whether an alert is shown.
func (s *Screen) Alerting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts) > 0
}

func (s *Screen) dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) > 0 {
		s.alerts = s.alerts[1:]
	}
}

type termChart struct {
	screen *Screen
	anchor surface.Anchor
	widget ui.Drawable
}

// Create implements chart.Backend.
func (s *Screen) Create(anchor surface.Anchor, spec chart.Spec) (chart.Instance, error) {
	w, err := buildWidget(spec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rects[anchor]
	if !ok {
		return nil, fmt.Errorf("no chart region for %s", anchor)
	}
	if _, taken := s.charts[anchor]; taken {
		return nil, fmt.Errorf("chart region %s already in use", anchor)
	}
	w.SetRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	s.charts[anchor] = w
	return &termChart{screen: s, anchor: anchor, widget: w}, nil
}

func (c *termChart) Destroy() {
	c.screen.mu.Lock()
	defer c.screen.mu.Unlock()
	if c.screen.charts[c.anchor] == c.widget {
		delete(c.screen.charts, c.anchor)
	}
}

// Chart returns the widget attached to anchor, nil if none.
func (s *Screen) Chart(anchor surface.Anchor) ui.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charts[anchor]
}

// Drawables returns the widgets to render, back to front.
func (s *Screen) Drawables() []ui.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ui.Drawable, 0, 16)
	for _, sa := range statAnchors {
		items = append(items, s.stats[sa.anchor])
	}
	for _, a := range []surface.Anchor{surface.FaultDistributionChart, surface.SignalPowerChart} {
		if w, ok := s.charts[a]; ok {
			items = append(items, w)
		}
	}
	items = append(items, s.table)

	s.formBox.Text = s.form.Text(s.busy)
	items = append(items, s.formBox)

	if s.busy {
		items = append(items, s.overlay)
	} else if s.visible[surface.ResultAlert] {
		items = append(items, s.banner)
	}
	if s.visible[surface.ProbabilityCard] {
		items = append(items, s.results)
		if w, ok := s.charts[surface.ProbabilityChart]; ok {
			items = append(items, w)
		}
	}
	items = append(items, s.help)

	if len(s.alerts) > 0 {
		s.modal.Text = s.alerts[0] + "\n\n[enter] OK"
		items = append(items, s.modal)
	}
	return items
}

// Cells returns the text of the measurements table, header included.
func (s *Screen) Cells() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.table.Rows))
	for i, r := range s.table.Rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// StatText returns the text of a stats card.
func (s *Screen) StatText(a surface.Anchor) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.stats[a]; ok {
		return p.Text
	}
	return ""
}

// ResultLines returns the rows of the probability list.
func (s *Screen) ResultLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.results.Rows...)
}

// BannerText returns the result banner text.
func (s *Screen) BannerText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimSpace(s.banner.Text)
}

// TableTitle returns the measurements table title.
func (s *Screen) TableTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Title
}
