// Package systems provides the particle motion, spawn and effect systems of the wormhole.
package systems

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/config"
)

// MotionStage selects the motion model applied to ring particles.
type MotionStage uint8

const (
	StageConverge MotionStage = iota // Travel from spawn point to target
	StageRotate                      // Orbit the center
	StageExplode                     // Compress, then fly outward
)

// Pulse describes the size pulsing of the rotation curve's pulsing segment.
type Pulse struct {
	Active    bool
	Frequency float32 // Hz
	Intensity float32
}

// MotionFrame carries the per-frame inputs shared by every ring particle.
type MotionFrame struct {
	Stage   MotionStage
	Now     time.Time
	ClockMs float64 // Milliseconds since the run started
	DT      float32 // Elapsed time in nominal frames

	CenterX, CenterY float32
	Rotation         float32 // Cumulative ring rotation
	RotationSpeed    float32
	MaxRotationSpeed float32
	Shrinking        bool
	Pulse            Pulse

	ExplosionProgress float32
	TrailLength       int

	Rng *rand.Rand
}

// UpdateParticle advances one ring particle by one frame.
// Particles whose start time has not been reached are left untouched.
func UpdateParticle(p *components.Particle, f *MotionFrame, mc *config.MotionConfig) {
	if !p.Started {
		if f.Now.Before(p.StartAt) {
			return
		}
		p.Started = true
		p.Alpha = 0
	}

	if f.Stage != StageExplode && p.Alpha < p.TargetAlpha {
		p.Alpha = minf(p.Alpha+float32(mc.FadeInRate)*f.DT, p.TargetAlpha)
	}

	switch f.Stage {
	case StageConverge:
		converge(p, f, mc)
	case StageRotate:
		rotate(p, f, mc)
	case StageExplode:
		explode(p, f, mc)
	}

	decayTrail(p, f.DT, mc)
}

func converge(p *components.Particle, f *MotionFrame, mc *config.MotionConfig) {
	if len(p.ControlPoints) > 0 {
		p.PathProgress = minf(p.PathProgress+p.ConvergenceSpeed*float32(mc.PathRate)*f.DT, 1)
		if p.PathProgress >= 1 {
			p.X, p.Y = p.TargetX, p.TargetY
		} else {
			p.X, p.Y = PathPoint(p, p.PathProgress)
			if f.Rng.Float64() < mc.JitterChance {
				amp := float32(mc.JitterAmplitude)
				p.X += (f.Rng.Float32()*2 - 1) * amp
				p.Y += (f.Rng.Float32()*2 - 1) * amp
			}
		}
	} else {
		dx := p.TargetX - p.X
		dy := p.TargetY - p.Y
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if d > float32(mc.SnapDistance) {
			step := p.ConvergenceSpeed * spawnSpeedMultiplier(p.Spawn, d) * f.DT * minf(d, float32(mc.StepClamp))
			p.X += dx / d * step
			p.Y += dy / d * step
		} else {
			p.X, p.Y = p.TargetX, p.TargetY
		}
	}

	thr := float32(mc.InPlaceThreshold)
	p.InPlace = absf(p.TargetX-p.X) < thr && absf(p.TargetY-p.Y) < thr
	p.VisualSize = p.Size
}

// spawnSpeedMultiplier speeds up straight-line travel for particles that start far away.
func spawnSpeedMultiplier(kind components.SpawnKind, d float32) float32 {
	switch kind {
	case components.SpawnRingEdge:
		return 1.2
	case components.SpawnBorder:
		return 0.8 + 0.4*(1-minf(d/500, 1))
	default:
		return 1
	}
}

// PathPoint returns the position at progress t along a particle's curved path.
// One control point gives a quadratic Bezier, two a cubic, more a polyline.
func PathPoint(p *components.Particle, t float32) (x, y float32) {
	cps := p.ControlPoints
	switch len(cps) {
	case 0:
		return lerp(p.StartX, p.TargetX, t), lerp(p.StartY, p.TargetY, t)
	case 1:
		u := 1 - t
		a, b, c := u*u, 2*u*t, t*t
		return a*p.StartX + b*cps[0].X + c*p.TargetX,
			a*p.StartY + b*cps[0].Y + c*p.TargetY
	case 2:
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		return a*p.StartX + b*cps[0].X + c*cps[1].X + d*p.TargetX,
			a*p.StartY + b*cps[0].Y + c*cps[1].Y + d*p.TargetY
	}

	segments := len(cps) + 1
	pos := t * float32(segments)
	seg := int(pos)
	if seg >= segments {
		seg = segments - 1
	}
	local := pos - float32(seg)
	ax, ay := pathVertex(p, seg)
	bx, by := pathVertex(p, seg+1)
	return lerp(ax, bx, local), lerp(ay, by, local)
}

// pathVertex indexes start, control points and target as one polyline.
func pathVertex(p *components.Particle, i int) (x, y float32) {
	switch {
	case i == 0:
		return p.StartX, p.StartY
	case i > len(p.ControlPoints):
		return p.TargetX, p.TargetY
	default:
		cp := p.ControlPoints[i-1]
		return cp.X, cp.Y
	}
}

func rotate(p *components.Particle, f *MotionFrame, mc *config.MotionConfig) {
	p.Angle += p.Speed * f.RotationSpeed * float32(mc.RotationGain) * f.DT

	ratio := float32(0)
	if f.MaxRotationSpeed > 0 {
		ratio = f.RotationSpeed / f.MaxRotationSpeed
	}
	var pulse, mult float32
	if f.Pulse.Active {
		period := 1000 / float64(f.Pulse.Frequency)
		pulse = 1 + float32(math.Sin(f.ClockMs/period+float64(p.PulseFactor)*10))*f.Pulse.Intensity
		mult = 1 + ratio*1.5
	} else {
		pulse = float32(math.Sin(f.ClockMs/200))*0.2 + 1
		mult = 1 + ratio*0.5
	}

	if f.Shrinking {
		p.Radius *= 1 - float32(mc.ShrinkRate)*f.DT
	}

	if f.TrailLength > 0 && float64(f.RotationSpeed) > mc.TrailMinSpeed {
		chance := math.Min(float64(f.RotationSpeed)*mc.TrailChanceGain, mc.TrailChanceMax)
		if f.Rng.Float64() < chance {
			pushTrail(p, f.TrailLength)
		}
	}

	placeOnRing(p, f)
	p.VisualSize = p.Size * (1 + p.Depth) * pulse * mult
	if p.VisualSize < 0.1 {
		p.VisualSize = 0.1
	}
}

func explode(p *components.Particle, f *MotionFrame, mc *config.MotionConfig) {
	prog := clamp01(f.ExplosionProgress)
	if float64(prog) < mc.CompressionEnd {
		p.Radius *= 1 - float32(mc.CompressionRate)*f.DT
		p.Size *= 1 + float32(mc.CompressionGrowth)*f.DT
		p.Alpha = minf(1, p.Alpha*(1+float32(mc.CompressionGrowth)*f.DT))
	} else {
		factor := powf(prog, float32(mc.ExpansionExponent)) * float32(mc.ExpansionScale)
		p.Radius += factor * f.DT * (1 + f.Rng.Float32()*0.5)
		p.Alpha = clamp01(p.Alpha * (1 - float32(mc.ExpansionFade)*f.DT*prog))
		p.Size *= 1 - float32(mc.ExpansionShrink)*f.DT
	}
	p.Angle += p.Speed * f.RotationSpeed * float32(mc.RotationGain) * f.DT

	placeOnRing(p, f)
	p.VisualSize = p.Size * (1 + p.Depth)
}

func placeOnRing(p *components.Particle, f *MotionFrame) {
	theta := p.Angle + f.Rotation
	r := p.Radius * (1 + p.Depth)
	p.X = f.CenterX + cosf(theta)*r
	p.Y = f.CenterY + sinf(theta)*r
}

// pushTrail records the current position, dropping the oldest point past max.
func pushTrail(p *components.Particle, max int) {
	p.Trail = append(p.Trail, components.TrailPoint{
		X:       p.X,
		Y:       p.Y,
		Size:    p.VisualSize * 0.9,
		Opacity: p.Alpha * 0.9,
	})
	if over := len(p.Trail) - max; over > 0 {
		copy(p.Trail, p.Trail[over:])
		p.Trail = p.Trail[:max]
	}
}

// decayTrail fades and shrinks trail points, dropping the faint ones.
func decayTrail(p *components.Particle, dt float32, mc *config.MotionConfig) {
	if len(p.Trail) == 0 {
		return
	}
	alive := 0
	for i := range p.Trail {
		t := p.Trail[i]
		t.Opacity -= float32(mc.TrailDecay) * dt
		t.Size -= float32(mc.TrailShrink) * t.Size * dt
		if float64(t.Opacity) <= mc.TrailMinOpacity || t.Size <= 0 {
			continue
		}
		p.Trail[alive] = t
		alive++
	}
	p.Trail = p.Trail[:alive]
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
