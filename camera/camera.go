// Package camera provides the orbit rig that views the globe and the timed
// camera move that dives into it when the wormhole explodes.
package camera

import "math"

// Handle is the camera surface the animation drives. Implementations must
// tolerate being driven every frame.
type Handle interface {
	Position() (depth, height float32)
	SetPosition(depth, height float32)
	SetControlsEnabled(enabled bool)
	SetScale(scale float32)
	SetOpacity(opacity float32)
	SetSpin(multiplier float32)
}

// Defaults holds the values a rig starts with and returns to on Reset.
type Defaults struct {
	Depth       float32
	Height      float32
	Opacity     float32
	Fovy        float32
	Sensitivity float32 // Radians of orbit per pixel of drag
}

// Rig is an orbit camera around the origin with driven globe parameters.
// Yaw and pitch rotate the eye around the look direction's origin; depth is
// the distance along the view axis.
type Rig struct {
	depth, height float32
	yaw, pitch    float32

	// Globe parameters driven by the animation
	scale, opacity, spin float32

	controls bool
	defaults Defaults

	// Orbit constraints
	MinPitch, MaxPitch float32
	MinDepth, MaxDepth float32
}

// New creates a rig at its default position with controls enabled.
func New(d Defaults) *Rig {
	r := &Rig{
		defaults: d,
		MinPitch: -1.2,
		MaxPitch: 1.2,
		MinDepth: 2.5,
		MaxDepth: 8,
	}
	r.Reset()
	return r
}

// Reset returns the rig to its default position, globe scale 1, default
// opacity and base spin, with controls enabled.
func (r *Rig) Reset() {
	r.depth = r.defaults.Depth
	r.height = r.defaults.Height
	r.yaw = 0
	r.pitch = 0
	r.scale = 1
	r.opacity = r.defaults.Opacity
	r.spin = 1
	r.controls = true
}

// Position returns the depth and height of the eye.
func (r *Rig) Position() (depth, height float32) {
	return r.depth, r.height
}

// SetPosition moves the eye.
func (r *Rig) SetPosition(depth, height float32) {
	r.depth = depth
	r.height = height
}

// SetControlsEnabled toggles user orbit control.
func (r *Rig) SetControlsEnabled(enabled bool) {
	r.controls = enabled
}

// ControlsEnabled reports whether user input may orbit the rig.
func (r *Rig) ControlsEnabled() bool {
	return r.controls
}

// SetScale sets the globe scale.
func (r *Rig) SetScale(scale float32) { r.scale = scale }

// SetOpacity sets the globe opacity.
func (r *Rig) SetOpacity(opacity float32) { r.opacity = clamp(opacity, 0, 1) }

// SetSpin sets the globe spin multiplier over its base rate.
func (r *Rig) SetSpin(multiplier float32) { r.spin = multiplier }

// Scale returns the globe scale.
func (r *Rig) Scale() float32 { return r.scale }

// Opacity returns the globe opacity.
func (r *Rig) Opacity() float32 { return r.opacity }

// Spin returns the globe spin multiplier.
func (r *Rig) Spin() float32 { return r.spin }

// Fovy returns the vertical field of view in degrees.
func (r *Rig) Fovy() float32 { return r.defaults.Fovy }

// Orbit rotates the eye by a drag of dx, dy pixels.
// Returns false and does nothing while controls are disabled.
func (r *Rig) Orbit(dx, dy float32) bool {
	if !r.controls {
		return false
	}
	r.yaw -= dx * r.defaults.Sensitivity
	r.pitch = clamp(r.pitch+dy*r.defaults.Sensitivity, r.MinPitch, r.MaxPitch)
	return true
}

// Zoom moves the eye along the view axis by delta, within depth limits.
// Returns false and does nothing while controls are disabled.
func (r *Rig) Zoom(delta float32) bool {
	if !r.controls {
		return false
	}
	r.depth = clamp(r.depth-delta, r.MinDepth, r.MaxDepth)
	return true
}

// Eye returns the eye position in world coordinates.
func (r *Rig) Eye() (x, y, z float32) {
	fx, fy, fz := r.forward()
	return fx * r.depth, r.height + fy*r.depth, fz * r.depth
}

// Target returns the point the eye looks at: one unit ahead of the eye
// toward the rig axis.
func (r *Rig) Target() (x, y, z float32) {
	ex, ey, ez := r.Eye()
	fx, fy, fz := r.forward()
	return ex - fx, ey - fy, ez - fz
}

// forward is the unit vector from the rig axis toward the eye.
func (r *Rig) forward() (x, y, z float32) {
	cy, sy := float32(math.Cos(float64(r.yaw))), float32(math.Sin(float64(r.yaw)))
	cp, sp := float32(math.Cos(float64(r.pitch))), float32(math.Sin(float64(r.pitch)))
	return sy * cp, sp, cy * cp
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
