// Package components defines the particle data shared by the wormhole systems,
// including the ECS components used for ambient particles.
package components

// Point is a 2D point in surface pixels.
type Point struct {
	X, Y float32
}

// Color is a straight (non-premultiplied) RGB color with a fractional alpha.
type Color struct {
	R, G, B uint8
	A       float32 // 0-1
}

// RGBA returns a color with the given components.
func RGBA(r, g, b uint8, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// WithAlpha returns a copy of c with alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = clampAlpha(a)
	return c
}

// Scale returns a copy of c with alpha multiplied by f.
func (c Color) Scale(f float32) Color {
	c.A = clampAlpha(c.A * f)
	return c
}

// Shift returns a copy of c with every channel offset by d, saturating at 0 and 255.
func (c Color) Shift(d int) Color {
	c.R = shiftChannel(c.R, d)
	c.G = shiftChannel(c.G, d)
	c.B = shiftChannel(c.B, d)
	return c
}

// Alpha8 returns alpha as an 8-bit value.
func (c Color) Alpha8() uint8 {
	return uint8(clampAlpha(c.A)*255 + 0.5)
}

// White is opaque white.
var White = Color{R: 255, G: 255, B: 255, A: 1}

func shiftChannel(v uint8, d int) uint8 {
	n := int(v) + d
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func clampAlpha(a float32) float32 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}
