// Package renderer draws the wormhole onto 2D surfaces and renders the globe.
package renderer

import "github.com/pthm-cable/wormhole/components"

// BlendMode selects how drawn colors combine with the surface.
type BlendMode uint8

const (
	BlendAlpha    BlendMode = iota // Source-over
	BlendAdditive                  // Colors add, so overlaps brighten
)

// GradientStop is one color stop of a radial gradient; Offset is in [0, 1].
type GradientStop struct {
	Offset float32
	Color  components.Color
}

// Surface is a transparent 2D drawing target overlaid on the scene.
// Coordinates are in surface pixels with the origin at the top left.
// Close releases the surface; it is safe to call more than once and drawing
// after Close is ignored.
type Surface interface {
	Size() (w, h float32)
	Begin()
	End()
	Clear()
	SetBlend(mode BlendMode)
	FillCircle(x, y, r float32, c components.Color)
	StrokeCircle(x, y, r, width float32, c components.Color)
	Polyline(pts []components.Point, width float32, c components.Color)
	RadialGradient(x, y, radius float32, stops []GradientStop)
	Halo(x, y, r, blur float32, c components.Color)
	Close()
}

// gradientAt interpolates the stop colors at offset t.
func gradientAt(stops []GradientStop, t float32) components.Color {
	if len(stops) == 0 {
		return components.Color{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			f := (t - a.Offset) / span
			return components.Color{
				R: lerpByte(a.Color.R, b.Color.R, f),
				G: lerpByte(a.Color.G, b.Color.G, f),
				B: lerpByte(a.Color.B, b.Color.B, f),
				A: a.Color.A + (b.Color.A-a.Color.A)*f,
			}
		}
	}
	return stops[len(stops)-1].Color
}

func lerpByte(a, b uint8, f float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*f + 0.5)
}
