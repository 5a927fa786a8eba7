package game

import (
	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/renderer"
)

// Flash gradient: white core through violet to transparent, scaled by the
// current flash opacity.
var flashStops = []struct {
	offset float32
	color  components.Color
	gain   float32
}{
	{0, components.RGBA(255, 255, 255, 1), 1.2},
	{0.1, components.RGBA(230, 200, 255, 1), 1.1},
	{0.2, components.RGBA(200, 150, 255, 1), 1},
	{0.4, components.RGBA(180, 70, 255, 1), 0.8},
	{0.7, components.RGBA(120, 40, 180, 1), 0.4},
	{1, components.RGBA(80, 0, 120, 1), 0},
}

// Shockwave rings from the front inward: color, base width and width falloff.
var shockwaveRings = []struct {
	color components.Color
	width float32
	fade  float32
}{
	{components.RGBA(200, 120, 255, 1), 25, 1},
	{components.RGBA(160, 80, 255, 0.95), 18 * 0.9, 0.95},
	{components.RGBA(255, 180, 255, 0.9), 12 * 0.8, 0.9},
	{components.RGBA(255, 255, 255, 0.85), 8 * 0.7, 0.85},
}

var overlayColor = components.RGBA(150, 50, 255, 0.8)

// render draws the current frame: overlay, background particles, flash,
// shockwave, then ring particles and sparks, all additively blended.
func (r *Run) render() {
	s := r.surface
	if s == nil {
		return
	}
	s.Begin()
	defer s.End()
	s.Clear()

	if r.phase.Terminal() {
		return
	}

	s.SetBlend(renderer.BlendAdditive)
	r.drawOverlay(s)

	stride := r.profile.BackgroundStride
	r.ambient.Each(stride, func(pos *components.Position, amb *components.Ambient) {
		r.draw.DrawAmbient(s, pos, amb)
	})

	if r.flash > 0 {
		r.drawFlash(s)
	}
	if r.phase >= PhaseExploding && r.shockwave > 0 {
		r.drawShockwave(s)
	}

	glow := r.glowIntensity()
	step := r.renderStride()
	for i := 0; i < len(r.particles); i += step {
		p := &r.particles[i]
		blur := float32(0)
		if glow > 0 {
			blur = p.VisualSize * glow
		}
		r.draw.DrawRing(s, p, blur)
	}
	r.draw.DrawSparks(s, r.sparks.Sparks)
}

// drawOverlay draws the wormhole disc behind the particles. While fading it
// grows to three times its size as it fades out.
func (r *Run) drawOverlay(s renderer.Surface) {
	scale, opacity := float32(1), float32(1)
	if r.phase == PhaseFading {
		scale = 1 + r.fade*2
		opacity = 1 - r.fade
	}
	if opacity <= 0 {
		return
	}
	factor := r.profile.ScreenFactor
	if factor <= 0 {
		factor = 1
	}
	radius := float32(r.cfg.Wormhole.OverlaySize) * factor / 2 * scale
	glow := float32(r.cfg.Wormhole.OverlayGlow) * factor * opacity
	cx, cy := r.layout.CenterX, r.layout.CenterY

	s.RadialGradient(cx, cy, radius, []renderer.GradientStop{
		{Offset: 0, Color: components.RGBA(0, 0, 0, 0)},
		{Offset: 0.6, Color: components.RGBA(40, 0, 80, 0.3*opacity)},
		{Offset: 1, Color: overlayColor.Scale(0.5 * opacity)},
	})
	if glow > 0 {
		s.Halo(cx, cy, radius, glow, overlayColor.Scale(opacity*0.4))
	}
}

// drawFlash fills half the surface width with the flash gradient.
func (r *Run) drawFlash(s renderer.Surface) {
	w, _ := s.Size()
	stops := make([]renderer.GradientStop, len(flashStops))
	for i, st := range flashStops {
		stops[i] = renderer.GradientStop{Offset: st.offset, Color: st.color.WithAlpha(r.flash * st.gain)}
	}
	s.RadialGradient(r.layout.CenterX, r.layout.CenterY, w/2, stops)
}

// drawShockwave draws concentric rings inside the shockwave front. Rings
// thin out and fade as the explosion progresses.
func (r *Run) drawShockwave(s renderer.Surface) {
	prog := r.explosion
	intensity := (1 - prog) * float32(r.cfg.Effects.ShockwaveIntensity)
	if intensity <= 0 {
		return
	}
	n := r.cfg.Effects.ShockwaveWaves
	for i := 0; i < n; i++ {
		f := float32(i) / float32(n)
		ring := shockwaveRings[i%len(shockwaveRings)]
		radius := r.shockwave * (1 - f*0.6)
		width := ring.width * (1 - prog)
		if width <= 0 {
			continue
		}
		alpha := (1 - f*0.3) * 0.9 * ring.fade * intensity
		s.StrokeCircle(r.layout.CenterX, r.layout.CenterY, radius, width, ring.color.WithAlpha(alpha))
	}
}

// glowIntensity is the halo blur per unit of particle size, zero when the
// profile disables glow.
func (r *Run) glowIntensity() float32 {
	if !r.profile.Glow {
		return 0
	}
	ec := &r.cfg.Effects
	if r.phase >= PhaseExploding {
		return (1 - r.explosion) * float32(ec.GlowExplosion)
	}
	return r.rot.Speed*float32(ec.GlowRotationGain) + float32(ec.GlowBase)
}
