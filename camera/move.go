package camera

import (
	"math"
	"time"

	"github.com/pthm-cable/wormhole/config"
)

// Move is the timed dive into the globe. Position eases out; the globe's
// scale, opacity and spin ease in.
type Move struct {
	h     Handle
	start time.Time
	dur   time.Duration

	fromDepth, fromHeight float32
	toDepth, toHeight     float32

	scaleGain   float32
	baseOpacity float32
	opacityDrop float32
	minOpacity  float32
	spinGain    float32

	done bool
}

// NewMove starts a move from the handle's current position and disables
// user controls until it completes.
func NewMove(h Handle, now time.Time, cfg *config.CameraConfig) *Move {
	depth, height := h.Position()
	h.SetControlsEnabled(false)
	return &Move{
		h:           h,
		start:       now,
		dur:         time.Duration(cfg.MoveMs * float64(time.Millisecond)),
		fromDepth:   depth,
		fromHeight:  height,
		toDepth:     float32(cfg.TargetDepth),
		toHeight:    height - float32(cfg.HeightDrop),
		scaleGain:   float32(cfg.ScaleGain),
		baseOpacity: float32(cfg.BaseOpacity),
		opacityDrop: float32(cfg.OpacityDrop),
		minOpacity:  float32(cfg.MinOpacity),
		spinGain:    float32(cfg.SpinGain),
	}
}

// Update drives the handle for time now and reports whether the move is done.
// Controls are re-enabled on the update that completes the move.
func (m *Move) Update(now time.Time) bool {
	if m.done {
		return true
	}
	x := float32(1)
	if m.dur > 0 {
		x = clamp(float32(now.Sub(m.start))/float32(m.dur), 0, 1)
	}
	out := EaseOutExpo(x)
	in := EaseInExpo(x)

	m.h.SetPosition(
		m.fromDepth+(m.toDepth-m.fromDepth)*out,
		m.fromHeight+(m.toHeight-m.fromHeight)*out,
	)
	m.h.SetScale(1 + in*in*m.scaleGain)
	opacity := m.baseOpacity * (1 - in*m.opacityDrop)
	if opacity < m.minOpacity {
		opacity = m.minOpacity
	}
	m.h.SetOpacity(opacity)
	m.h.SetSpin(1 + in*m.spinGain)

	if x >= 1 {
		m.done = true
		m.h.SetControlsEnabled(true)
	}
	return m.done
}

// Done reports whether the move has completed.
func (m *Move) Done() bool {
	return m.done
}

// EaseOutExpo decelerates to 1; exact at both ends.
func EaseOutExpo(x float32) float32 {
	if x >= 1 {
		return 1
	}
	return 1 - float32(math.Pow(2, float64(-10*x)))
}

// EaseInExpo accelerates from 0; exact at both ends.
func EaseInExpo(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Pow(2, float64(10*x-10)))
}
