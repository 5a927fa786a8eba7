package telemetry

import (
	"math"
	"time"
)

// FPSMeter counts frames over a fixed window and reports the rate, capped at
// the profile's maximum so a fast display cannot score above target.
type FPSMeter struct {
	window  time.Duration
	cap     int
	frames  int
	since   time.Time
	current int
}

// NewFPSMeter creates a meter that updates every window and never reports above maxFPS.
func NewFPSMeter(window time.Duration, maxFPS int) *FPSMeter {
	return &FPSMeter{window: window, cap: maxFPS}
}

// Frame counts one rendered frame at now and returns the latest rate.
func (m *FPSMeter) Frame(now time.Time) int {
	if m.since.IsZero() {
		m.since = now
		return m.current
	}
	m.frames++
	elapsed := now.Sub(m.since)
	if elapsed >= m.window && elapsed > 0 {
		fps := int(math.Round(float64(m.frames) * float64(time.Second) / float64(elapsed)))
		if m.cap > 0 && fps > m.cap {
			fps = m.cap
		}
		m.current = fps
		m.frames = 0
		m.since = now
	}
	return m.current
}

// FPS returns the latest rate.
func (m *FPSMeter) FPS() int {
	return m.current
}

// SetCap changes the reported maximum.
func (m *FPSMeter) SetCap(maxFPS int) {
	m.cap = maxFPS
}
