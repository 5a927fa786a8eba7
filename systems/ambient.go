package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wormhole/components"
)

// AmbientStage selects how background particles drift.
type AmbientStage uint8

const (
	AmbientIdle  AmbientStage = iota // Breathing in place
	AmbientSwirl                     // Orbit and gather toward the ring
	AmbientBlast                     // Pushed outward by the shockwave
)

// AmbientFrame carries the per-frame inputs for background particles.
type AmbientFrame struct {
	Stage   AmbientStage
	ClockMs float64
	DT      float32

	CenterX, CenterY float32
	Width            float32
	Pulse            Pulse

	ExplosionProgress float32
	ShockwaveRadius   float32

	Rng *rand.Rand
}

// AmbientSystem owns the background particle population in an ECS world.
type AmbientSystem struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Ambient]
	filter *ecs.Filter2[components.Position, components.Ambient]
	count  int
}

// NewAmbientSystem creates an ambient system backed by the given world.
func NewAmbientSystem(world *ecs.World) *AmbientSystem {
	return &AmbientSystem{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Ambient](world),
		filter: ecs.NewFilter2[components.Position, components.Ambient](world),
	}
}

// Spawn adds n background particles in three distance bands around the center.
func (s *AmbientSystem) Spawn(rng *rand.Rand, n int, cx, cy, width float32, palette []components.Color) {
	for i := 0; i < n; i++ {
		var lo, hi float32
		switch i % 3 {
		case 0:
			lo, hi = 0, 0.25
		case 1:
			lo, hi = 0.25, 0.4
		default:
			lo, hi = 0.4, 0.5
		}
		d := width * (lo + rng.Float32()*(hi-lo))
		a := rng.Float32() * 2 * math.Pi

		pos := components.Position{X: cx + cosf(a)*d, Y: cy + sinf(a)*d}
		size := (log10f(rng.Float32()*8+2)*0.5 + 0.3) * 1.5
		alpha := 0.25 + rng.Float32()*0.4
		amb := components.Ambient{
			Size:      size,
			BaseSize:  size,
			Alpha:     alpha,
			BaseAlpha: alpha,
			Speed:     0.05 + rng.Float32()*0.15,
			Pulse:     0.85 + rng.Float32()*0.3,
			Color:     palette[rng.Intn(len(palette))].WithAlpha(1),
		}
		s.mapper.NewEntity(&pos, &amb)
	}
	s.count += n
}

// Count returns the number of background particles.
func (s *AmbientSystem) Count() int {
	return s.count
}

// Update advances every stride-th particle and passes it to visit, if set.
// Particles skipped by the stride are neither moved nor visited this frame.
func (s *AmbientSystem) Update(f *AmbientFrame, stride int, visit func(*components.Position, *components.Ambient)) {
	if stride < 1 {
		stride = 1
	}
	i := 0
	query := s.filter.Query()
	for query.Next() {
		pos, amb := query.Get()
		if i%stride == 0 {
			switch f.Stage {
			case AmbientSwirl:
				swirl(pos, amb, f)
			case AmbientBlast:
				blast(pos, amb, f)
			}
			if f.Stage != AmbientBlast {
				breathe(amb, f)
			}
			if visit != nil {
				visit(pos, amb)
			}
		}
		i++
	}
}

// Each visits every stride-th particle without updating it.
func (s *AmbientSystem) Each(stride int, visit func(*components.Position, *components.Ambient)) {
	if stride < 1 {
		stride = 1
	}
	i := 0
	query := s.filter.Query()
	for query.Next() {
		pos, amb := query.Get()
		if i%stride == 0 {
			visit(pos, amb)
		}
		i++
	}
}

func breathe(amb *components.Ambient, f *AmbientFrame) {
	t := f.ClockMs / 1000 * float64(amb.Pulse)
	scale := 1 + float32(math.Sin(t*2))*0.15
	if f.Pulse.Active {
		scale *= 1 + f.Pulse.Intensity*0.3*float32(math.Sin(t*2*math.Pi*float64(f.Pulse.Frequency)))
	}
	amb.Size = amb.BaseSize * scale
	amb.Alpha = clamp01(amb.BaseAlpha * (0.85 + 0.15*float32(math.Sin(t*1.25))))
}

// swirl orbits the particle around the center, faster near it, and pulls
// outliers in while keeping the core clear.
func swirl(pos *components.Position, amb *components.Ambient, f *AmbientFrame) {
	dx := pos.X - f.CenterX
	dy := pos.Y - f.CenterY
	d := distance(pos.X, pos.Y, f.CenterX, f.CenterY)
	angle := float32(math.Atan2(float64(dy), float64(dx)))

	angle += 0.002 * f.DT * (1.5 - d/(0.5*f.Width))
	if d > 60 {
		d -= minf(1, 150/d) * amb.Speed * f.DT
		angle += 0.05 * f.DT / d
	}
	if d < 40 {
		d += 0.2 * amb.Speed * f.DT
	}

	pos.X = f.CenterX + cosf(angle)*d
	pos.Y = f.CenterY + sinf(angle)*d
}

// blast moves particles inside the shockwave's reach: first inward with the
// compressing ring, then outward with flicker and fade.
func blast(pos *components.Position, amb *components.Ambient, f *AmbientFrame) {
	d := distance(pos.X, pos.Y, f.CenterX, f.CenterY)
	if d >= f.ShockwaveRadius*1.2 || d == 0 {
		return
	}
	dirX := (pos.X - f.CenterX) / d
	dirY := (pos.Y - f.CenterY) / d
	prog := f.ExplosionProgress

	if prog < 0.3 {
		pull := minf(0.1*f.DT*d*0.1, d)
		pos.X -= dirX * pull
		pos.Y -= dirY * pull
		amb.Size *= 1 + 0.01*f.DT
		return
	}

	push := minf(0.5, prog*0.5) * 5 * f.DT * (1 + amb.Speed*5)
	pos.X += dirX * push
	pos.Y += dirY * push
	if f.Rng.Float32() < prog*0.1 {
		amb.Alpha = minf(1, amb.Alpha*1.5)
	} else {
		amb.Alpha = clamp01(amb.Alpha * (1 - 0.02*f.DT))
	}
	amb.Size = clampFloat(amb.Size*(1-0.005*f.DT), 0.1, amb.BaseSize*3)
}
