package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wormhole/components"
)

// gradientRings is the number of bands used to approximate a radial gradient.
const gradientRings = 32

// RaylibSurface draws into an offscreen render texture that is composited
// over the 3D scene.
type RaylibSurface struct {
	target rl.RenderTexture2D
	w, h   int32
	blend  BlendMode
	active bool
	closed bool
}

// NewRaylibSurface allocates a render texture of the given size.
// Must be called after the window is initialized.
func NewRaylibSurface(w, h int) *RaylibSurface {
	return &RaylibSurface{
		target: rl.LoadRenderTexture(int32(w), int32(h)),
		w:      int32(w),
		h:      int32(h),
	}
}

// Size returns the surface size.
func (s *RaylibSurface) Size() (w, h float32) {
	return float32(s.w), float32(s.h)
}

// Begin redirects drawing into the texture.
func (s *RaylibSurface) Begin() {
	if s.closed {
		return
	}
	rl.BeginTextureMode(s.target)
	s.active = true
	s.blend = BlendAlpha
}

// End restores drawing to the screen.
func (s *RaylibSurface) End() {
	if !s.active {
		return
	}
	if s.blend != BlendAlpha {
		rl.EndBlendMode()
		s.blend = BlendAlpha
	}
	rl.EndTextureMode()
	s.active = false
}

// Clear makes the surface fully transparent.
func (s *RaylibSurface) Clear() {
	if !s.active {
		return
	}
	rl.ClearBackground(rl.Blank)
}

// SetBlend changes the blend mode for following draws.
func (s *RaylibSurface) SetBlend(mode BlendMode) {
	if !s.active || mode == s.blend {
		return
	}
	if s.blend != BlendAlpha {
		rl.EndBlendMode()
	}
	if mode == BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}
	s.blend = mode
}

// FillCircle draws a filled circle.
func (s *RaylibSurface) FillCircle(x, y, r float32, c components.Color) {
	if !s.active || r <= 0 {
		return
	}
	rl.DrawCircleV(rl.NewVector2(x, y), r, toRL(c))
}

// StrokeCircle draws a circle outline of the given width.
func (s *RaylibSurface) StrokeCircle(x, y, r, width float32, c components.Color) {
	if !s.active || r <= 0 || width <= 0 {
		return
	}
	inner := r - width/2
	if inner < 0 {
		inner = 0
	}
	rl.DrawRing(rl.NewVector2(x, y), inner, r+width/2, 0, 360, 96, toRL(c))
}

// Polyline draws connected line segments.
func (s *RaylibSurface) Polyline(pts []components.Point, width float32, c components.Color) {
	if !s.active || len(pts) < 2 {
		return
	}
	col := toRL(c)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		rl.DrawLineEx(rl.NewVector2(a.X, a.Y), rl.NewVector2(b.X, b.Y), width, col)
	}
}

// RadialGradient draws concentric bands colored by the stops.
func (s *RaylibSurface) RadialGradient(x, y, radius float32, stops []GradientStop) {
	if !s.active || radius <= 0 || len(stops) == 0 {
		return
	}
	center := rl.NewVector2(x, y)
	step := radius / gradientRings
	for i := 0; i < gradientRings; i++ {
		inner := float32(i) * step
		mid := (float32(i) + 0.5) / gradientRings
		c := gradientAt(stops, mid)
		if c.A <= 0 {
			continue
		}
		rl.DrawRing(center, inner, inner+step, 0, 360, 64, toRL(c))
	}
}

// Halo draws a soft glow fading out over blur pixels past r.
func (s *RaylibSurface) Halo(x, y, r, blur float32, c components.Color) {
	if !s.active || r+blur <= 0 {
		return
	}
	outer := c
	outer.A = 0
	rl.DrawCircleGradient(int32(x), int32(y), r+blur, toRL(c), toRL(outer))
}

// Composite draws the surface texture over the current screen contents.
func (s *RaylibSurface) Composite() {
	if s.closed {
		return
	}
	// Render textures are stored upside down
	src := rl.NewRectangle(0, 0, float32(s.w), -float32(s.h))
	rl.DrawTextureRec(s.target.Texture, src, rl.NewVector2(0, 0), rl.White)
}

// Close unloads the render texture. Safe to call more than once.
func (s *RaylibSurface) Close() {
	if s.closed {
		return
	}
	s.End()
	rl.UnloadRenderTexture(s.target)
	s.closed = true
}

func toRL(c components.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.Alpha8())
}
