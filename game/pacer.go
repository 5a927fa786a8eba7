package game

import "time"

// FramePacer gates scheduled ticks down to a target frame rate and an
// optional skip stride, and converts real elapsed time into motion deltas.
type FramePacer struct {
	interval time.Duration // Minimum time between passed ticks
	nominal  time.Duration // Duration of one motion frame
	maxDelta float32
	skip     int

	ticks    int
	last     time.Time // Last tick that passed the rate gate
	lastWork time.Time // Last tick that did work
}

// NewFramePacer creates a pacer that passes at most maxFPS ticks per second
// and does work on every skip-th of those. Deltas are measured in nominal
// frames and clamped to maxDelta.
func NewFramePacer(maxFPS, skip int, nominal time.Duration, maxDelta float64) *FramePacer {
	if maxFPS < 1 {
		maxFPS = 1
	}
	if skip < 1 {
		skip = 1
	}
	if nominal <= 0 {
		nominal = time.Second / 60
	}
	return &FramePacer{
		interval: time.Second / time.Duration(maxFPS),
		nominal:  nominal,
		maxDelta: float32(maxDelta),
		skip:     skip,
	}
}

// Reset starts timing from now.
func (p *FramePacer) Reset(now time.Time) {
	p.ticks = 0
	p.last = now
	p.lastWork = now
}

// Gate reports whether the tick at now should do work, and the motion delta
// to use when it should.
func (p *FramePacer) Gate(now time.Time) (dt float32, ok bool) {
	elapsed := now.Sub(p.last)
	if elapsed < p.interval {
		return 0, false
	}
	// Keep the phase of the schedule so jittery ticks do not drift the rate
	p.last = now.Add(-(elapsed % p.interval))

	p.ticks++
	if p.ticks%p.skip != 0 {
		return 0, false
	}

	dt = float32(float64(now.Sub(p.lastWork)) / float64(p.nominal))
	if dt > p.maxDelta {
		dt = p.maxDelta
	}
	if dt < 0 {
		dt = 0
	}
	p.lastWork = now
	return dt, true
}

// Interval returns the minimum time between passed ticks.
func (p *FramePacer) Interval() time.Duration { return p.interval }
