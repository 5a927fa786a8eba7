package renderer

import (
	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/systems"
)

// ParticleRenderer draws ring particles, their trails, sparks and ambient
// dots onto a surface.
type ParticleRenderer struct {
	trail []components.Point // Reused polyline buffer
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// DrawRing draws one ring particle with its trail. A positive glow radius adds
// a halo around particles that are large enough to show one.
func (r *ParticleRenderer) DrawRing(s Surface, p *components.Particle, glow float32) {
	if !p.Started || p.Alpha <= 0 {
		return
	}

	if len(p.Trail) > 1 {
		r.drawTrail(s, p)
	}

	size := p.VisualSize
	if size < 0.1 {
		size = 0.1
	}
	if glow > 0 && size > 1 {
		s.Halo(p.X, p.Y, size, glow, p.Color.WithAlpha(p.Alpha*0.6))
	}
	s.FillCircle(p.X, p.Y, size, p.Color.WithAlpha(p.Alpha))
}

// drawTrail draws the trail oldest first, ending at the particle.
func (r *ParticleRenderer) drawTrail(s Surface, p *components.Particle) {
	r.trail = r.trail[:0]
	var opacity, width float32
	for _, t := range p.Trail {
		r.trail = append(r.trail, components.Point{X: t.X, Y: t.Y})
		opacity += t.Opacity
		width += t.Size
	}
	r.trail = append(r.trail, components.Point{X: p.X, Y: p.Y})
	n := float32(len(p.Trail))
	s.Polyline(r.trail, width/n, p.Color.WithAlpha(opacity/n*p.Alpha))
}

// DrawSparks draws sparks fading and shrinking over their life.
func (r *ParticleRenderer) DrawSparks(s Surface, sparks []systems.Spark) {
	for i := range sparks {
		p := &sparks[i]

		lifeRatio := float32(p.Life) / float32(p.MaxLife)
		size := p.Size * lifeRatio
		if size < 0.5 {
			size = 0.5
		}
		s.FillCircle(p.X, p.Y, size, p.Color.Scale(lifeRatio))
	}
}

// DrawAmbient draws one background dot.
func (r *ParticleRenderer) DrawAmbient(s Surface, pos *components.Position, amb *components.Ambient) {
	if amb.Alpha <= 0 || amb.Size <= 0 {
		return
	}
	s.FillCircle(pos.X, pos.Y, amb.Size, amb.Color.WithAlpha(amb.Alpha))
}
