package renderer

import (
	"math"
	"testing"

	"github.com/pthm-cable/wormhole/components"
)

func TestRecorderKeepsLatestFrame(t *testing.T) {
	r := NewRecorder(800, 600)

	r.Begin()
	r.Clear()
	r.FillCircle(10, 10, 2, components.White)
	r.FillCircle(20, 20, 2, components.White)
	r.End()

	if got := r.Count(OpFillCircle); got != 2 {
		t.Fatalf("expected 2 circles, got %d", got)
	}

	r.Begin()
	r.Clear()
	r.SetBlend(BlendAdditive)
	r.Halo(5, 5, 3, 4, components.White)
	r.End()

	if got := r.Count(OpFillCircle); got != 0 {
		t.Errorf("expected previous frame discarded, got %d circles", got)
	}
	calls := r.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[1].Op != OpHalo || calls[1].Blend != BlendAdditive {
		t.Errorf("expected additive halo, got %+v", calls[1])
	}
	if calls[1].R != 7 {
		t.Errorf("expected halo extent 7, got %f", calls[1].R)
	}
	if r.Frames() != 2 || r.Total() != 5 {
		t.Errorf("expected 2 frames and 5 calls, got %d and %d", r.Frames(), r.Total())
	}
}

func TestRecorderBeginResetsBlend(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Begin()
	r.SetBlend(BlendAdditive)
	r.End()

	r.Begin()
	r.FillCircle(1, 1, 1, components.White)
	if r.Calls()[0].Blend != BlendAlpha {
		t.Error("each frame should start with alpha blending")
	}
}

func TestRecorderIgnoresDrawsAfterClose(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Begin()
	r.Close()
	r.Close()

	r.Begin()
	r.FillCircle(1, 1, 1, components.White)
	r.Polyline([]components.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 1, components.White)

	if r.Total() != 0 {
		t.Errorf("expected no calls after close, got %d", r.Total())
	}
	if r.Frames() != 1 {
		t.Errorf("expected Begin after close to be ignored, got %d frames", r.Frames())
	}
	if !r.Closed() || r.Closes() != 2 {
		t.Errorf("expected closed with 2 close calls, got %v and %d", r.Closed(), r.Closes())
	}
}

func TestRecorderPolylineNeedsTwoPoints(t *testing.T) {
	r := NewRecorder(100, 100)
	r.Begin()
	r.Polyline([]components.Point{{X: 3, Y: 4}}, 1, components.White)
	if r.Count(OpPolyline) != 0 {
		t.Error("single point polyline should not be recorded")
	}
}

func TestGradientAt(t *testing.T) {
	stops := []GradientStop{
		{Offset: 0, Color: components.RGBA(255, 255, 255, 1)},
		{Offset: 0.5, Color: components.RGBA(200, 100, 0, 0.5)},
		{Offset: 1, Color: components.RGBA(0, 0, 0, 0)},
	}

	tests := []struct {
		name    string
		t       float32
		r, g, b uint8
		a       float32
	}{
		{"before first", -1, 255, 255, 255, 1},
		{"first stop", 0, 255, 255, 255, 1},
		{"quarter", 0.25, 228, 178, 128, 0.75},
		{"middle stop", 0.5, 200, 100, 0, 0.5},
		{"last stop", 1, 0, 0, 0, 0},
		{"past last", 2, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := gradientAt(stops, tt.t)
			if c.R != tt.r || c.G != tt.g || c.B != tt.b {
				t.Errorf("got rgb (%d, %d, %d), want (%d, %d, %d)", c.R, c.G, c.B, tt.r, tt.g, tt.b)
			}
			if math.Abs(float64(c.A-tt.a)) > 1e-5 {
				t.Errorf("got alpha %f, want %f", c.A, tt.a)
			}
		})
	}
}

func TestGradientAtEmpty(t *testing.T) {
	if c := gradientAt(nil, 0.5); c != (components.Color{}) {
		t.Errorf("expected zero color, got %+v", c)
	}
}
