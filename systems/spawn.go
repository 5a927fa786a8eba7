package systems

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/config"
)

// RingLayout describes the viewport and the ring a population converges onto.
// Lengths are already scaled by the screen size factor.
type RingLayout struct {
	CenterX, CenterY float32
	Width, Height    float32
	Radius           float32
	Thickness        float32
}

// BuildPalette expands the base colors with a lighter and a darker variant each
// when harmony is enabled.
func BuildPalette(base []config.RGB, harmony bool, shift int) []components.Color {
	out := make([]components.Color, 0, len(base)*3)
	for _, c := range base {
		col := components.RGBA(c.R, c.G, c.B, 0.95)
		out = append(out, col)
		if harmony {
			out = append(out, col.Shift(shift).WithAlpha(0.9), col.Shift(-shift).WithAlpha(0.95))
		}
	}
	return out
}

// SpawnRing creates n ring particles. Particle i targets angle i/n of a full
// turn, starts at a point chosen by the weighted spawn strategies and becomes
// active after a skewed random delay from start.
func SpawnRing(rng *rand.Rand, n int, layout RingLayout, palette []components.Color,
	sizeVariance float32, start time.Time, wc *config.WormholeConfig) []components.Particle {

	particles := make([]components.Particle, n)
	edge := float32(math.Max(float64(layout.Width), float64(layout.Height)) * wc.EdgeFactor)
	variance := float32(wc.RingVariance)

	for i := range particles {
		p := &particles[i]

		angle := float32(i) / float32(n) * 2 * math.Pi
		radius := layout.Radius - layout.Thickness/2 + rng.Float32()*layout.Thickness
		radius *= 1 - variance/2 + rng.Float32()*variance

		p.Angle = angle
		p.Radius = radius
		p.TargetX = layout.CenterX + cosf(angle)*radius
		p.TargetY = layout.CenterY + sinf(angle)*radius

		p.Spawn = components.SpawnKind(pickWeighted(rng.Float64(), wc.SpawnWeights))
		p.StartX, p.StartY = spawnPoint(rng, p.Spawn, layout, edge)
		p.X, p.Y = p.StartX, p.StartY

		delay := math.Pow(rng.Float64(), wc.DelayExponent) * wc.MaxDelayMs
		p.StartAt = start.Add(time.Duration(delay * float64(time.Millisecond)))

		p.ControlPoints = controlPoints(rng, pickWeighted(rng.Float64(), wc.PathWeights), p, float32(wc.PathOffset))

		sizeMult := float32(1)
		if rng.Float32() >= 0.7 {
			if rng.Float32() < 0.5 {
				sizeMult = 1.5
			} else {
				sizeMult = 0.8
			}
		}
		p.BaseSize = (rng.Float32()*sizeVariance + 1.2) * sizeMult
		p.Size = p.BaseSize
		p.VisualSize = p.Size

		p.Speed = 0.012 + rng.Float32()*0.015
		p.Depth = (rng.Float32() - 0.5) * 0.3
		p.ConvergenceSpeed = 0.01 + rng.Float32()*0.01
		p.TargetAlpha = 0.9 + rng.Float32()*0.05
		p.PulseFactor = 0.75 + rng.Float32()*0.5
		p.Color = palette[i%len(palette)]
	}
	return particles
}

func spawnPoint(rng *rand.Rand, kind components.SpawnKind, layout RingLayout, edge float32) (x, y float32) {
	switch kind {
	case components.SpawnRingEdge:
		a := rng.Float32() * 2 * math.Pi
		d := edge * (powf(rng.Float32(), 0.7)*0.3 + 0.7)
		return layout.CenterX + cosf(a)*d, layout.CenterY + sinf(a)*d
	case components.SpawnGrid:
		return rng.Float32() * layout.Width, rng.Float32() * layout.Height
	case components.SpawnSpiral:
		a := rng.Float32() * 20
		r := edge * (0.5 + 0.5*rng.Float32())
		return layout.CenterX + cosf(a)*r, layout.CenterY + sinf(a)*r
	default:
		switch rng.Intn(4) {
		case 0:
			return rng.Float32() * layout.Width, 0
		case 1:
			return layout.Width, rng.Float32() * layout.Height
		case 2:
			return rng.Float32() * layout.Width, layout.Height
		default:
			return 0, rng.Float32() * layout.Height
		}
	}
}

// controlPoints places k points along the start-target line with offsets that
// shrink toward the target.
func controlPoints(rng *rand.Rand, k int, p *components.Particle, maxOffset float32) []components.Point {
	if k == 0 {
		return nil
	}
	pts := make([]components.Point, k)
	for j := range pts {
		ratio := float32(j+1) / float32(k+1)
		spread := maxOffset * (1 - 0.6*log10f(float32(j+2)))
		damp := 1 - ratio*0.5
		pts[j] = components.Point{
			X: lerp(p.StartX, p.TargetX, ratio) + (rng.Float32()*2*spread-spread)*damp,
			Y: lerp(p.StartY, p.TargetY, ratio) + (rng.Float32()*2*spread-spread)*damp,
		}
	}
	return pts
}
