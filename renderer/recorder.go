package renderer

import "github.com/pthm-cable/wormhole/components"

// Op identifies a recorded drawing call.
type Op uint8

const (
	OpClear Op = iota
	OpFillCircle
	OpStrokeCircle
	OpPolyline
	OpGradient
	OpHalo
)

// Call is one recorded drawing call.
type Call struct {
	Op    Op
	Blend BlendMode
	X, Y  float32
	R     float32
	Color components.Color
}

// Recorder is a surface that records the calls of the latest frame instead of
// drawing. Used by the headless frontend and tests.
type Recorder struct {
	w, h   float32
	blend  BlendMode
	calls  []Call
	frames int
	total  int
	closes int
	closed bool
}

// NewRecorder creates a recording surface of the given size.
func NewRecorder(w, h float32) *Recorder {
	return &Recorder{w: w, h: h}
}

// Size returns the surface size.
func (r *Recorder) Size() (w, h float32) { return r.w, r.h }

// Begin starts a new frame, discarding the previous frame's calls.
func (r *Recorder) Begin() {
	if r.closed {
		return
	}
	r.frames++
	r.calls = r.calls[:0]
	r.blend = BlendAlpha
}

// End finishes the frame.
func (r *Recorder) End() {}

// Clear records a clear.
func (r *Recorder) Clear() { r.record(Call{Op: OpClear}) }

// SetBlend changes the blend mode for following calls.
func (r *Recorder) SetBlend(mode BlendMode) { r.blend = mode }

// FillCircle records a filled circle.
func (r *Recorder) FillCircle(x, y, rad float32, c components.Color) {
	r.record(Call{Op: OpFillCircle, X: x, Y: y, R: rad, Color: c})
}

// StrokeCircle records a circle outline.
func (r *Recorder) StrokeCircle(x, y, rad, width float32, c components.Color) {
	r.record(Call{Op: OpStrokeCircle, X: x, Y: y, R: rad, Color: c})
}

// Polyline records a polyline starting at its first point.
func (r *Recorder) Polyline(pts []components.Point, width float32, c components.Color) {
	if len(pts) < 2 {
		return
	}
	r.record(Call{Op: OpPolyline, X: pts[0].X, Y: pts[0].Y, R: width, Color: c})
}

// RadialGradient records a gradient with its innermost color.
func (r *Recorder) RadialGradient(x, y, radius float32, stops []GradientStop) {
	c := components.Color{}
	if len(stops) > 0 {
		c = stops[0].Color
	}
	r.record(Call{Op: OpGradient, X: x, Y: y, R: radius, Color: c})
}

// Halo records a soft glow.
func (r *Recorder) Halo(x, y, rad, blur float32, c components.Color) {
	r.record(Call{Op: OpHalo, X: x, Y: y, R: rad + blur, Color: c})
}

// Close marks the recorder closed.
func (r *Recorder) Close() {
	r.closes++
	r.closed = true
}

func (r *Recorder) record(c Call) {
	if r.closed {
		return
	}
	c.Blend = r.blend
	r.calls = append(r.calls, c)
	r.total++
}

// Calls returns the calls of the latest frame.
func (r *Recorder) Calls() []Call { return r.calls }

// Count returns how many calls of op the latest frame made.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Frames returns the number of frames begun.
func (r *Recorder) Frames() int { return r.frames }

// Total returns the number of calls recorded over all frames.
func (r *Recorder) Total() int { return r.total }

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool { return r.closed }

// Closes returns how many times Close has been called.
func (r *Recorder) Closes() int { return r.closes }
