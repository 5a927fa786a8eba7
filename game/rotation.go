package game

import (
	"math"

	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/systems"
)

// Rotation segments, in order.
const (
	SegmentInitial = iota
	SegmentAcceleration
	SegmentPulsing
	SegmentFinal
	SegmentComplete
)

// RotationState is the rotation curve sampled at one point in time.
type RotationState struct {
	Speed   float32 // Radians per nominal frame
	Segment int
	Pulse   systems.Pulse // Particle size pulsing, active in the pulsing segment
	Driven  float32       // Driven element spin multiplier
}

// RotationAt samples the four-segment rotation curve t seconds after the
// ring formed:
//   - initial: linear from BaseSpeed to InitialEnd
//   - acceleration: power law up to AccelerationEnd
//   - pulsing: a sine riding a linear rise, with amplitude and frequency
//     growing over the segment
//   - final: power law up to MaxSpeed
//
// Past the last segment the speed holds at MaxSpeed.
func RotationAt(t float64, rc *config.RotationConfig) RotationState {
	if t < 0 {
		t = 0
	}
	st := RotationState{Driven: float32(math.Min(1+t*rc.DrivenGain, rc.DrivenCap))}

	d1 := rc.InitialDuration
	d2 := d1 + rc.AccelerationDuration
	d3 := d2 + rc.PulsingDuration
	d4 := d3 + rc.FinalDuration

	switch {
	case t < d1:
		st.Segment = SegmentInitial
		st.Speed = float32(rc.BaseSpeed + (rc.InitialEnd-rc.BaseSpeed)*segmentProgress(t, 0, rc.InitialDuration))

	case t < d2:
		st.Segment = SegmentAcceleration
		p := segmentProgress(t, d1, rc.AccelerationDuration)
		st.Speed = float32(rc.InitialEnd + (rc.AccelerationEnd-rc.InitialEnd)*math.Pow(p, rc.AccelerationExponent))

	case t < d3:
		st.Segment = SegmentPulsing
		local := t - d2
		p := segmentProgress(t, d2, rc.PulsingDuration)
		base := rc.AccelerationEnd + rc.PulsingRise*p
		amp := lerp64(rc.PulseAmplitudeStart, rc.PulseAmplitudeEnd, p)
		// Phase is the integral of a linearly rising angular frequency
		phase := rc.PulseFrequencyStart*local + (rc.PulseFrequencyEnd-rc.PulseFrequencyStart)*local*p/2
		st.Speed = float32(base + amp*math.Sin(phase))
		st.Pulse = systems.Pulse{
			Active:    true,
			Frequency: float32(lerp64(rc.SizePulseFrequencyStart, rc.SizePulseFrequencyEnd, p)),
			Intensity: float32(lerp64(rc.SizePulseIntensityStart, rc.SizePulseIntensityEnd, p)),
		}

	case t < d4:
		st.Segment = SegmentFinal
		start := rc.AccelerationEnd + rc.PulsingRise
		p := segmentProgress(t, d3, rc.FinalDuration)
		st.Speed = float32(start + (rc.MaxSpeed-start)*math.Pow(p, rc.FinalExponent))

	default:
		st.Segment = SegmentComplete
		st.Speed = float32(rc.MaxSpeed)
	}
	return st
}

// segmentProgress maps t within [start, start+dur) to [0, 1).
func segmentProgress(t, start, dur float64) float64 {
	if dur <= 0 {
		return 1
	}
	return math.Min((t-start)/dur, 1)
}

func lerp64(a, b, t float64) float64 {
	return a + (b-a)*t
}
