// Package export renders chart specs to PNG images with go-chart.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	fchart "fiberwatch.sh/internal/chart"
	"fiberwatch.sh/internal/faults"
	"fiberwatch.sh/internal/surface"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 450
)

// Backend is a chart.Backend producing PNG images kept in memory.
type Backend struct {
	width, height int

	mu   sync.Mutex
	live map[surface.Anchor]*Image
}

var _ fchart.Backend = (*Backend)(nil)

// NewBackend returns a Backend rendering width x height images.
func NewBackend(width, height int) *Backend {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Backend{width: width, height: height, live: make(map[surface.Anchor]*Image)}
}

// Image is one rendered chart.
type Image struct {
	backend *Backend
	anchor  surface.Anchor

	mu   sync.Mutex
	data []byte
}

// Bytes returns the PNG data, nil once destroyed.
func (i *Image) Bytes() []byte {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.data
}

func (i *Image) Destroy() {
	i.mu.Lock()
	i.data = nil
	i.mu.Unlock()

	i.backend.mu.Lock()
	defer i.backend.mu.Unlock()
	if i.backend.live[i.anchor] == i {
		delete(i.backend.live, i.anchor)
	}
}

// Create implements chart.Backend.
func (b *Backend) Create(anchor surface.Anchor, spec fchart.Spec) (fchart.Instance, error) {
	data, err := b.render(spec)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", anchor, err)
	}
	img := &Image{backend: b, anchor: anchor, data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.live[anchor] = img
	return img, nil
}

// Image returns the live image for anchor, nil if none.
func (b *Backend) Image(anchor surface.Anchor) *Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live[anchor]
}

// WriteDir writes every live image to dir as <anchor>.png and returns the
// paths in name order.
func (b *Backend) WriteDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	b.mu.Lock()
	images := make(map[surface.Anchor]*Image, len(b.live))
	for a, img := range b.live {
		images[a] = img
	}
	b.mu.Unlock()

	var paths []string
	for a, img := range images {
		path := filepath.Join(dir, string(a)+".png")
		if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

type pngRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (b *Backend) render(spec fchart.Spec) ([]byte, error) {
	var r pngRenderer
	switch s := spec.(type) {
	case fchart.PieSpec:
		if s.Total() == 0 {
			return b.placeholder("Fault Distribution")
		}
		r = b.pie(s)
	case fchart.SeriesSpec:
		if len(s.Values) < 2 {
			return b.placeholder(s.DatasetLabel)
		}
		r = b.series(s)
	case fchart.BarSpec:
		if len(s.Values) == 0 {
			return b.placeholder(s.DatasetLabel)
		}
		r = b.bars(s)
	default:
		return nil, fmt.Errorf("unsupported chart spec %T", spec)
	}

	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toDrawing(c faults.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.Alpha8()}
}

func (b *Backend) pie(s fchart.PieSpec) pngRenderer {
	values := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		values = append(values, chart.Value{
			Value: float64(v),
			Label: s.Tooltip(i),
			Style: chart.Style{FillColor: toDrawing(s.Colors[i]), StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	return &chart.PieChart{
		Title:  "Fault Distribution",
		Width:  b.width,
		Height: b.height,
		Values: values,
	}
}

func (b *Backend) series(s fchart.SeriesSpec) pngRenderer {
	loc := s.Location
	ts := chart.TimeSeries{
		Name:    s.DatasetLabel,
		XValues: s.Times,
		YValues: s.Values,
		Style: chart.Style{
			StrokeColor: toDrawing(s.Line),
			FillColor:   toDrawing(s.Fill),
			StrokeWidth: 2,
		},
	}
	ch := &chart.Chart{
		Width:      b.width,
		Height:     b.height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name: s.XTitle,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					t := chart.TimeFromFloat64(f)
					if loc != nil {
						t = t.In(loc)
					}
					return t.Format("15:04:05")
				}
				return chart.TimeValueFormatterWithFormat("15:04:05")(v)
			},
		},
		YAxis:  chart.YAxis{Name: s.YTitle},
		Series: []chart.Series{ts},
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

func (b *Backend) bars(s fchart.BarSpec) pngRenderer {
	bars := make([]chart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		bars = append(bars, chart.Value{
			Value: v,
			Label: string(s.Labels[i]),
			Style: chart.Style{FillColor: toDrawing(s.Fills[i]), StrokeColor: toDrawing(s.Borders[i]), StrokeWidth: 1},
		})
	}
	barWidth := (b.width - 80) / (2 * len(bars))
	return &chart.BarChart{
		Title:      s.DatasetLabel,
		Width:      b.width,
		Height:     b.height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: s.YMin, Max: s.YMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return s.Tick(f)
				}
				return ""
			},
		},
		Bars: bars,
	}
}

// placeholder draws a blank image with a caption. go-chart refuses empty or
// single-point data.
func (b *Backend) placeholder(title string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	bg := image.NewUniform(color.RGBA{R: 250, G: 250, B: 250, A: 255})
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.Set(x, y, bg)
		}
	}

	dr := &font.Drawer{Dst: img, Src: image.NewUniform(color.RGBA{R: 107, G: 114, B: 128, A: 255}), Face: basicfont.Face7x13}
	text := title + ": no data yet"
	w := dr.MeasureString(text).Ceil()
	dr.Dot = fixed.Point26_6{X: fixed.I((b.width - w) / 2), Y: fixed.I(b.height / 2)}
	dr.DrawString(text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
