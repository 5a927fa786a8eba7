package renderer

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/wormhole/components"
)

// Virtual pixels per terminal cell. Cells are roughly twice as tall as wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

// ramp maps cell intensity to glyph density.
var ramp = []rune(" .:-=+*#%@")

type cell struct {
	r, g, b float32 // Accumulated light, 0-1 per channel before clamping
	a       float32
}

// TerminalSurface rasterizes surface calls into terminal cells. Each cell
// accumulates light; End writes one glyph per cell to the screen, choosing
// glyph density by intensity and the foreground color by hue.
type TerminalSurface struct {
	screen     tcell.Screen
	cols, rows int
	cells      []cell
	blend      BlendMode
	closed     bool
}

// NewTerminalSurface creates a surface covering the whole screen.
func NewTerminalSurface(screen tcell.Screen) *TerminalSurface {
	s := &TerminalSurface{screen: screen}
	s.resize()
	return s
}

func (s *TerminalSurface) resize() {
	cols, rows := s.screen.Size()
	if cols == s.cols && rows == s.rows && s.cells != nil {
		return
	}
	s.cols, s.rows = cols, rows
	s.cells = make([]cell, cols*rows)
}

// Size returns the surface size in virtual pixels.
func (s *TerminalSurface) Size() (w, h float32) {
	return float32(s.cols * CellWidth), float32(s.rows * CellHeight)
}

// Begin starts a frame, following terminal resizes.
func (s *TerminalSurface) Begin() {
	if s.closed {
		return
	}
	s.resize()
	s.blend = BlendAlpha
}

// Clear resets all cells to black.
func (s *TerminalSurface) Clear() {
	for i := range s.cells {
		s.cells[i] = cell{}
	}
}

// SetBlend changes the blend mode for following draws.
func (s *TerminalSurface) SetBlend(mode BlendMode) { s.blend = mode }

// FillCircle lights the cells whose centers fall inside the circle. Circles
// smaller than a cell light the nearest cell by area coverage.
func (s *TerminalSurface) FillCircle(x, y, r float32, c components.Color) {
	if s.closed || r <= 0 {
		return
	}
	if r < CellWidth/2 {
		cover := float32(math.Pi) * r * r / (CellWidth * CellHeight)
		s.plot(int(x/CellWidth), int(y/CellHeight), c, minf(cover*4, 1))
		return
	}
	s.each(x, y, r, func(cx, cy int, d float32) {
		if d <= r {
			s.plot(cx, cy, c, 1)
		}
	})
}

// StrokeCircle lights cells near the circle's outline.
func (s *TerminalSurface) StrokeCircle(x, y, r, width float32, c components.Color) {
	if s.closed || r <= 0 {
		return
	}
	band := width/2 + CellWidth/2
	s.each(x, y, r+band, func(cx, cy int, d float32) {
		if off := absf(d - r); off <= band {
			s.plot(cx, cy, c, minf(1, width/CellWidth+0.25))
		}
	})
}

// Polyline samples each segment at half-cell steps.
func (s *TerminalSurface) Polyline(pts []components.Point, width float32, c components.Color) {
	if s.closed || len(pts) < 2 {
		return
	}
	cover := minf(1, width/CellWidth+0.2)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := float32(math.Hypot(float64(dx), float64(dy)))
		steps := int(length/(CellWidth/2)) + 1
		for k := 0; k <= steps; k++ {
			t := float32(k) / float32(steps)
			s.plot(int((a.X+dx*t)/CellWidth), int((a.Y+dy*t)/CellHeight), c, cover)
		}
	}
}

// RadialGradient colors each cell by its distance from the center.
func (s *TerminalSurface) RadialGradient(x, y, radius float32, stops []GradientStop) {
	if s.closed || radius <= 0 || len(stops) == 0 {
		return
	}
	s.each(x, y, radius, func(cx, cy int, d float32) {
		if d <= radius {
			s.plot(cx, cy, gradientAt(stops, d/radius), 1)
		}
	})
}

// Halo lights cells with a linear falloff out to r+blur.
func (s *TerminalSurface) Halo(x, y, r, blur float32, c components.Color) {
	if s.closed {
		return
	}
	outer := r + blur
	if outer <= 0 {
		return
	}
	s.each(x, y, outer, func(cx, cy int, d float32) {
		if d <= outer {
			s.plot(cx, cy, c, 1-d/outer)
		}
	})
}

// End writes the cells to the screen. The caller shows the screen.
func (s *TerminalSurface) End() {
	if s.closed {
		return
	}
	for cy := 0; cy < s.rows; cy++ {
		for cx := 0; cx < s.cols; cx++ {
			ch, style := s.glyph(s.cells[cy*s.cols+cx])
			s.screen.SetContent(cx, cy, ch, nil, style)
		}
	}
}

// Close drops the cell buffer. The screen belongs to the caller.
func (s *TerminalSurface) Close() {
	s.closed = true
	s.cells = nil
}

// Intensity returns the brightness of the cell at column cx, row cy in [0, 1].
func (s *TerminalSurface) Intensity(cx, cy int) float32 {
	if cx < 0 || cy < 0 || cx >= s.cols || cy >= s.rows || s.cells == nil {
		return 0
	}
	c := s.cells[cy*s.cols+cx]
	return minf(1, maxf(c.r, maxf(c.g, c.b)))
}

func (s *TerminalSurface) glyph(c cell) (rune, tcell.Style) {
	level := minf(1, maxf(c.r, maxf(c.g, c.b)))
	idx := int(level * float32(len(ramp)-1))
	if idx <= 0 {
		return ' ', tcell.StyleDefault
	}
	// Normalize so the glyph carries brightness and the color carries hue
	fg := tcell.NewRGBColor(channel(c.r/level), channel(c.g/level), channel(c.b/level))
	return ramp[idx], tcell.StyleDefault.Foreground(fg)
}

// each visits every cell whose center lies in the bounding box of the circle.
func (s *TerminalSurface) each(x, y, r float32, fn func(cx, cy int, d float32)) {
	x0 := maxi(0, int((x-r)/CellWidth))
	x1 := mini(s.cols-1, int((x+r)/CellWidth))
	y0 := maxi(0, int((y-r)/CellHeight))
	y1 := mini(s.rows-1, int((y+r)/CellHeight))
	for cy := y0; cy <= y1; cy++ {
		py := (float32(cy) + 0.5) * CellHeight
		for cx := x0; cx <= x1; cx++ {
			px := (float32(cx) + 0.5) * CellWidth
			fn(cx, cy, float32(math.Hypot(float64(px-x), float64(py-y))))
		}
	}
}

func (s *TerminalSurface) plot(cx, cy int, c components.Color, cover float32) {
	if cx < 0 || cy < 0 || cx >= s.cols || cy >= s.rows {
		return
	}
	a := c.A * cover
	if a <= 0 {
		return
	}
	p := &s.cells[cy*s.cols+cx]
	r, g, b := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255
	if s.blend == BlendAdditive {
		p.r += r * a
		p.g += g * a
		p.b += b * a
		p.a = minf(1, p.a+a)
		return
	}
	p.r = p.r*(1-a) + r*a
	p.g = p.g*(1-a) + g*a
	p.b = p.b*(1-a) + b*a
	p.a = p.a + a*(1-p.a)
}

func channel(v float32) int32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return int32(v * 255)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}
