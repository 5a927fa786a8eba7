package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/renderer"
	"github.com/pthm-cable/wormhole/systems"
	"github.com/pthm-cable/wormhole/telemetry"
)

// RunHooks are optional callbacks a run makes to its owner. They are called
// from inside Frame.
type RunHooks struct {
	OnFrame      func(now time.Time)                 // After each executed frame
	OnPhase      func(from, to Phase, now time.Time) // After entering a phase
	OnCameraDone func(now time.Time)
	OnComplete   func(now time.Time) // Once, after teardown at the end of the animation
}

// RunOptions configures a new run.
type RunOptions struct {
	Config        *config.Config
	Profile       PerformanceProfile
	Width, Height float32
	Surface       renderer.Surface
	Camera        camera.Handle
	Rng           *rand.Rand
	Start         time.Time
	Hooks         RunHooks
	Perf          *telemetry.PerfCollector // May be nil
}

// Run is one play of the wormhole animation. It owns its particles, surface
// and phase state; nothing is shared between runs.
type Run struct {
	cfg     *config.Config
	profile PerformanceProfile
	layout  systems.RingLayout
	surface renderer.Surface
	cam     camera.Handle
	rng     *rand.Rand
	hooks   RunHooks
	perf    *telemetry.PerfCollector

	particles []components.Particle
	palette   []components.Color
	ambient   *systems.AmbientSystem
	sparks    *systems.SparkSystem
	draw      *renderer.ParticleRenderer
	pacer     *FramePacer
	move      *camera.Move
	motion    systems.MotionFrame

	phase      Phase
	start      time.Time
	phaseStart time.Time
	formedAt   time.Time // Ring formation; the rotation curve's origin
	now        time.Time
	dt         float32
	frames     int

	// Phase state
	rot        RotationState
	rotation   float32 // Cumulative ring rotation
	flash      float32
	shockwave  float32
	explosion  float32
	fade       float32
	cameraDone bool

	// Formation counts over the particles visited this frame
	visited, started, inPlace int

	closed bool
}

// NewRun spawns a run's particles and starts its clock.
func NewRun(opts RunOptions) *Run {
	cfg := opts.Config
	prof := opts.Profile
	factor := prof.ScreenFactor
	if factor <= 0 {
		factor = 1
	}

	r := &Run{
		cfg:     cfg,
		profile: prof,
		layout: systems.RingLayout{
			CenterX:   opts.Width / 2,
			CenterY:   opts.Height / 2,
			Width:     opts.Width,
			Height:    opts.Height,
			Radius:    float32(cfg.Wormhole.RingRadius) * factor,
			Thickness: float32(cfg.Wormhole.RingThickness) * factor,
		},
		surface: opts.Surface,
		cam:     opts.Camera,
		rng:     opts.Rng,
		hooks:   opts.Hooks,
		perf:    opts.Perf,
		sparks:  systems.NewSparkSystem(),
		draw:    renderer.NewParticleRenderer(),
		pacer:   NewFramePacer(prof.MaxFPS, prof.SkipFrames, cfg.Derived.NominalFrame, cfg.Motion.MaxDeltaTime),
		phase:   PhaseConverging,
		start:   opts.Start,
		now:     opts.Start,
	}
	r.phaseStart = opts.Start
	r.rot.Speed = float32(cfg.Rotation.BaseSpeed)
	r.pacer.Reset(opts.Start)

	r.palette = systems.BuildPalette(cfg.Wormhole.Palette, cfg.Wormhole.Harmony, cfg.Wormhole.HarmonyShift)
	r.particles = systems.SpawnRing(r.rng, prof.ParticleCount, r.layout, r.palette,
		prof.SizeVariance, opts.Start, &cfg.Wormhole)

	r.ambient = systems.NewAmbientSystem(ecs.NewWorld())
	r.ambient.Spawn(r.rng, prof.BackgroundCount, r.layout.CenterX, r.layout.CenterY, opts.Width, r.palette)

	slog.Info("run_started",
		"profile", prof,
		"width", opts.Width,
		"height", opts.Height,
		"ring_radius", r.layout.Radius,
	)
	return r
}

// Frame advances the run to now. It returns false once the run has been torn
// down, after which it never touches its state again.
func (r *Run) Frame(now time.Time) bool {
	if r.closed {
		return false
	}

	// The camera move runs at the host's rate, not the paced rate
	if r.move != nil && !r.cameraDone && r.move.Update(now) {
		r.cameraDone = true
		if r.hooks.OnCameraDone != nil {
			r.hooks.OnCameraDone(now)
		}
	}

	dt, ok := r.pacer.Gate(now)
	if !ok {
		return true
	}
	r.now = now
	r.dt = dt
	r.frames++

	r.perf.StartFrame()
	r.step(now, dt)
	r.perf.StartPhase(telemetry.PhaseDraw)
	r.render()
	r.perf.EndFrame()

	if r.hooks.OnFrame != nil {
		r.hooks.OnFrame(now)
	}

	if r.phase.Terminal() {
		r.Close("complete")
		if r.hooks.OnComplete != nil {
			r.hooks.OnComplete(now)
		}
		return false
	}
	return true
}

// step advances phase state and every particle by one executed frame.
func (r *Run) step(now time.Time, dt float32) {
	r.perf.StartPhase(telemetry.PhaseSchedule)
	h := phaseTable[r.phase]
	if h.update != nil {
		h.update(r, now, dt)
	}
	r.rotation += r.rot.Speed * dt

	r.perf.StartPhase(telemetry.PhaseAmbient)
	r.updateAmbient(dt)

	r.perf.StartPhase(telemetry.PhaseRing)
	r.updateParticles(now, dt)

	r.perf.StartPhase(telemetry.PhaseEffects)
	r.updateEffects(dt)

	if h.ready != nil && h.ready(r, now) {
		r.advance(now)
	}
}

func (r *Run) updateParticles(now time.Time, dt float32) {
	f := &r.motion
	*f = systems.MotionFrame{
		Now:              now,
		ClockMs:          float64(now.Sub(r.start)) / float64(time.Millisecond),
		DT:               dt,
		CenterX:          r.layout.CenterX,
		CenterY:          r.layout.CenterY,
		Rotation:         r.rotation,
		RotationSpeed:    r.rot.Speed,
		MaxRotationSpeed: float32(r.cfg.Rotation.MaxSpeed),
		Shrinking:        r.phase >= PhaseShrinking,
		Pulse:            r.rot.Pulse,
		TrailLength:      r.profile.TrailLength,
		Rng:              r.rng,
	}
	switch {
	case r.phase == PhaseConverging:
		f.Stage = systems.StageConverge
	case r.phase < PhaseExploding:
		f.Stage = systems.StageRotate
	default:
		f.Stage = systems.StageExplode
		f.ExplosionProgress = r.explosion
	}

	r.visited, r.started, r.inPlace = 0, 0, 0
	stride := r.renderStride()
	mc := &r.cfg.Motion
	for i := 0; i < len(r.particles); i += stride {
		p := &r.particles[i]
		systems.UpdateParticle(p, f, mc)
		r.visited++
		if p.Started {
			r.started++
			if p.InPlace {
				r.inPlace++
			}
		}
	}
}

// renderStride is the particle stride for this frame; it doubles late in the
// explosion when particles are spread thin.
func (r *Run) renderStride() int {
	s := r.profile.RenderStride
	if s < 1 {
		s = 1
	}
	if r.phase >= PhaseExploding && float64(r.explosion) > r.cfg.Effects.ExplosionStrideAt {
		s *= 2
	}
	return s
}

func (r *Run) updateAmbient(dt float32) {
	f := systems.AmbientFrame{
		ClockMs:           float64(r.now.Sub(r.start)) / float64(time.Millisecond),
		DT:                dt,
		CenterX:           r.layout.CenterX,
		CenterY:           r.layout.CenterY,
		Width:             r.layout.Width,
		Pulse:             r.rot.Pulse,
		ExplosionProgress: r.explosion,
		ShockwaveRadius:   r.shockwave,
		Rng:               r.rng,
	}
	switch {
	case r.phase == PhaseConverging:
		f.Stage = systems.AmbientIdle
	case r.phase < PhaseExploding:
		f.Stage = systems.AmbientSwirl
	default:
		f.Stage = systems.AmbientBlast
	}
	r.ambient.Update(&f, r.profile.BackgroundStride, nil)
}

func (r *Run) updateEffects(dt float32) {
	if r.flash > 0 {
		r.flash -= float32(r.cfg.Effects.FlashDecay) * dt * (1 + r.flash*0.5)
		if r.flash < 0 {
			r.flash = 0
		}
	}

	if r.phase >= PhaseExploding {
		prog := r.explosion
		r.shockwave += float32(r.cfg.Effects.ShockwavePropagation) * dt * (1 - prog*0.3) * (1 + prog*0.2)

		ec := &r.cfg.Effects
		if r.frames%2 == 0 {
			r.sparks.EmitRing(r.rng, r.layout.CenterX, r.layout.CenterY, r.shockwave, prog,
				float32(ec.SparkWindow), ec.SparkMax, ec.SparkLife)
		}
	}
	r.sparks.Update(dt)
}

// advance moves to the next phase and runs its entry action.
func (r *Run) advance(now time.Time) {
	from := r.phase
	to, ok := from.Next()
	if !ok || !from.CanTransition(to) {
		panic(fmt.Sprintf("game: illegal phase transition from %s", from))
	}
	r.phase = to
	r.phaseStart = now

	slog.Info("phase_transition",
		"from", from.String(),
		"to", to.String(),
		"elapsed_ms", now.Sub(r.start).Milliseconds(),
	)

	if h := phaseTable[to]; h.enter != nil {
		h.enter(r, now)
	}
	if r.hooks.OnPhase != nil {
		r.hooks.OnPhase(from, to, now)
	}
}

// Close tears the run down. It is safe to call more than once.
func (r *Run) Close(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	if r.surface != nil {
		r.surface.Close()
	}
	slog.Info("run_torn_down",
		"reason", reason,
		"phase", r.phase.String(),
		"frames", r.frames,
		"elapsed_ms", r.now.Sub(r.start).Milliseconds(),
	)
}

// Closed reports whether the run has been torn down.
func (r *Run) Closed() bool { return r.closed }

// Phase returns the current phase.
func (r *Run) Phase() Phase { return r.phase }

// Particles returns the ring particles. The slice is owned by the run.
func (r *Run) Particles() []components.Particle { return r.particles }

// Frames returns the number of executed frames.
func (r *Run) Frames() int { return r.frames }

// RotationSpeed returns the current ring rotation speed.
func (r *Run) RotationSpeed() float32 { return r.rot.Speed }

// ExplosionProgress returns explosion progress in [0, 1].
func (r *Run) ExplosionProgress() float32 { return r.explosion }

// CameraDone reports whether the explosion camera move has completed.
func (r *Run) CameraDone() bool { return r.cameraDone }

// Sparks returns the number of live explosion sparks.
func (r *Run) Sparks() int { return r.sparks.Count() }

// phaseHandler holds the per-phase behavior of the run's state machine.
// update runs first each executed frame; ready is checked after particles
// move; enter runs once when the phase is entered.
type phaseHandler struct {
	enter  func(r *Run, now time.Time)
	update func(r *Run, now time.Time, dt float32)
	ready  func(r *Run, now time.Time) bool
}

var phaseTable = [...]phaseHandler{
	PhaseConverging: {
		ready: (*Run).formed,
	},
	PhaseRotating: {
		enter:  (*Run).enterRotating,
		update: (*Run).updateRotating,
		ready:  (*Run).rotationComplete,
	},
	PhaseShrinking: {
		enter:  (*Run).enterShrinking,
		update: (*Run).updateRotating,
		ready:  (*Run).shrinkDelayElapsed,
	},
	PhaseExploding: {
		enter:  (*Run).enterExploding,
		update: (*Run).updateExploding,
		ready:  (*Run).explosionComplete,
	},
	PhaseFading: {
		update: (*Run).updateFading,
		ready:  (*Run).fadeComplete,
	},
	PhaseDone: {},
}

// formed reports whether enough particles have started and enough of those
// have reached the ring.
func (r *Run) formed(time.Time) bool {
	rc := &r.cfg.Rotation
	return float64(r.started) > float64(r.visited)*rc.FormationStarted &&
		float64(r.inPlace) >= float64(r.started)*rc.FormationInPlace
}

func (r *Run) enterRotating(now time.Time) {
	r.formedAt = now
	r.cam.SetSpin(float32(r.cfg.Rotation.DrivenInitial))
}

func (r *Run) updateRotating(now time.Time, dt float32) {
	r.rot = RotationAt(now.Sub(r.formedAt).Seconds(), &r.cfg.Rotation)
	r.cam.SetSpin(r.rot.Driven)
}

func (r *Run) rotationComplete(now time.Time) bool {
	return r.rot.Segment == SegmentComplete
}

func (r *Run) enterShrinking(now time.Time) {
	r.flash = float32(r.cfg.Effects.ShrinkFlash)
	r.rot.Speed = float32(r.cfg.Rotation.MaxSpeed)
	r.rot.Pulse = systems.Pulse{}
}

func (r *Run) shrinkDelayElapsed(now time.Time) bool {
	return now.Sub(r.phaseStart) >= r.cfg.Derived.ShrinkDelay
}

func (r *Run) enterExploding(now time.Time) {
	r.flash = float32(r.cfg.Effects.ExplosionFlash)
	r.shockwave = r.layout.Radius
	r.explosion = 0
	r.move = camera.NewMove(r.cam, now, &r.cfg.Camera)
}

func (r *Run) updateExploding(now time.Time, dt float32) {
	r.explosion = progress(now.Sub(r.phaseStart), r.cfg.Derived.Explosion)
}

func (r *Run) explosionComplete(now time.Time) bool {
	return r.explosion >= 1 && r.cameraDone
}

func (r *Run) updateFading(now time.Time, dt float32) {
	r.fade = progress(now.Sub(r.phaseStart), r.cfg.Derived.Fade)
}

func (r *Run) fadeComplete(now time.Time) bool {
	return r.fade >= 1
}

// progress returns elapsed/total clamped to [0, 1].
func progress(elapsed, total time.Duration) float32 {
	if total <= 0 {
		return 1
	}
	return float32(math.Min(math.Max(float64(elapsed)/float64(total), 0), 1))
}
