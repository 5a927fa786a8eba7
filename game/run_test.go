package game

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/components"
	"github.com/pthm-cable/wormhole/renderer"
)

const testFrame = time.Second / 60

func testRig() *camera.Rig {
	return camera.New(camera.Defaults{Depth: 3.8, Opacity: 0.8, Fovy: 75, Sensitivity: 0.005})
}

func newTestRun(t *testing.T, tier DeviceTier, hooks RunHooks) (*Run, *renderer.Recorder, *camera.Rig, time.Time) {
	t.Helper()
	cfg := testConfig(t)
	prof := ResolveProfile(cfg, tier, 800)
	prof.ParticleCount = 120
	prof.BackgroundCount = 30

	rig := testRig()
	rec := renderer.NewRecorder(800, 600)
	start := time.Unix(1000, 0)
	r := NewRun(RunOptions{
		Config:  cfg,
		Profile: prof,
		Width:   800,
		Height:  600,
		Surface: rec,
		Camera:  rig,
		Rng:     rand.New(rand.NewSource(1)),
		Start:   start,
		Hooks:   hooks,
	})
	return r, rec, rig, start
}

// advanceUntil ticks the run at 60Hz until stop returns true, the run ends
// or limit elapses. It returns the time of the last tick.
func advanceUntil(r *Run, start time.Time, limit time.Duration, stop func() bool) time.Time {
	now := start
	for now.Sub(start) < limit {
		now = now.Add(testFrame)
		if !r.Frame(now) || stop() {
			break
		}
	}
	return now
}

func TestRunCompletesThroughEveryPhase(t *testing.T) {
	var seen []Phase
	var completions int
	var cameraDone bool
	hooks := RunHooks{
		OnPhase: func(from, to Phase, now time.Time) {
			if len(seen) > 0 && seen[len(seen)-1] != from {
				t.Errorf("transition from %s does not follow %s", from, seen[len(seen)-1])
			}
			seen = append(seen, to)
		},
		OnCameraDone: func(time.Time) { cameraDone = true },
		OnComplete:   func(time.Time) { completions++ },
	}
	r, rec, rig, start := newTestRun(t, TierFull, hooks)

	advanceUntil(r, start, 90*time.Second, func() bool { return false })

	want := []Phase{PhaseRotating, PhaseShrinking, PhaseExploding, PhaseFading, PhaseDone}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("phases %v, want %v", seen, want)
	}
	if completions != 1 {
		t.Errorf("expected one completion, got %d", completions)
	}
	if !cameraDone || !r.CameraDone() {
		t.Error("expected the camera move to complete")
	}
	if !r.Closed() || !rec.Closed() {
		t.Error("expected run and surface torn down")
	}
	if !rig.ControlsEnabled() {
		t.Error("controls should be re-enabled after the camera move")
	}
}

func TestRunParticleInvariants(t *testing.T) {
	r, _, _, start := newTestRun(t, TierFull, RunHooks{})
	wasStarted := make([]bool, len(r.Particles()))

	now := start
	for now.Sub(start) < 90*time.Second {
		now = now.Add(testFrame)
		if !r.Frame(now) {
			break
		}
		for i := range r.Particles() {
			p := &r.Particles()[i]
			if p.Alpha < 0 || p.Alpha > 1 {
				t.Fatalf("particle %d alpha %f out of range in %s", i, p.Alpha, r.Phase())
			}
			if p.Started && now.Before(p.StartAt) {
				t.Fatalf("particle %d started before its start time", i)
			}
			if wasStarted[i] && !p.Started {
				t.Fatalf("particle %d stopped being started", i)
			}
			if !p.Started && !now.Before(p.StartAt) {
				t.Fatalf("particle %d not started at %v past its start time", i, now.Sub(p.StartAt))
			}
			wasStarted[i] = p.Started
			if len(p.Trail) > 7 {
				t.Fatalf("particle %d trail length %d over cap", i, len(p.Trail))
			}
		}
	}
}

func TestRunNeverReturnsToEarlierPhase(t *testing.T) {
	r, _, _, start := newTestRun(t, TierFull, RunHooks{})
	prev := r.Phase()
	now := start
	for now.Sub(start) < 90*time.Second {
		now = now.Add(testFrame)
		if !r.Frame(now) {
			break
		}
		if r.Phase() < prev {
			t.Fatalf("phase went back from %s to %s", prev, r.Phase())
		}
		prev = r.Phase()
	}
}

func TestRunResetStopsMutation(t *testing.T) {
	for _, stop := range []Phase{PhaseConverging, PhaseRotating, PhaseExploding, PhaseFading} {
		t.Run(stop.String(), func(t *testing.T) {
			r, rec, _, start := newTestRun(t, TierFull, RunHooks{})
			now := advanceUntil(r, start, 90*time.Second, func() bool { return r.Phase() >= stop })
			if r.Phase() != stop {
				t.Fatalf("run did not reach %s, in %s", stop, r.Phase())
			}

			r.Close("reset")
			r.Close("reset")

			snapshot := make([]components.Particle, len(r.Particles()))
			copy(snapshot, r.Particles())
			frames, calls := r.Frames(), rec.Total()

			for i := 0; i < 120; i++ {
				now = now.Add(testFrame)
				if r.Frame(now) {
					t.Fatal("Frame should report a closed run as finished")
				}
			}

			if !reflect.DeepEqual(snapshot, r.Particles()) {
				t.Error("particles changed after teardown")
			}
			if r.Frames() != frames || rec.Total() != calls {
				t.Error("frames executed or drawn after teardown")
			}
			if rec.Closes() != 1 {
				t.Errorf("expected the surface closed once, got %d", rec.Closes())
			}
		})
	}
}

func TestRunRendersAdditively(t *testing.T) {
	r, rec, _, start := newTestRun(t, TierFull, RunHooks{})
	advanceUntil(r, start, 90*time.Second, func() bool { return r.Phase() == PhaseRotating })

	calls := rec.Calls()
	if len(calls) == 0 || calls[0].Op != renderer.OpClear {
		t.Fatal("frame should start with a clear")
	}
	circles := 0
	for _, c := range calls[1:] {
		if c.Blend != renderer.BlendAdditive {
			t.Fatalf("expected additive blending, got %+v", c)
		}
		if c.Op == renderer.OpFillCircle {
			circles++
		}
	}
	if circles == 0 {
		t.Error("expected particles drawn")
	}
	if rec.Count(renderer.OpHalo) < 2 {
		t.Error("expected particle glow on the full tier")
	}
}

func TestRunConstrainedDisablesGlow(t *testing.T) {
	r, rec, _, start := newTestRun(t, TierConstrained, RunHooks{})
	advanceUntil(r, start, 90*time.Second, func() bool { return r.Phase() == PhaseRotating })

	// Only the overlay glows
	if got := rec.Count(renderer.OpHalo); got != 1 {
		t.Errorf("expected only the overlay halo, got %d halos", got)
	}
}

func TestRunExplosionEffects(t *testing.T) {
	r, rec, rig, start := newTestRun(t, TierFull, RunHooks{})
	now := advanceUntil(r, start, 90*time.Second, func() bool { return r.Phase() == PhaseExploding })
	if rig.ControlsEnabled() {
		t.Error("controls should be disabled during the camera move")
	}

	sparks, rings := 0, 0
	for i := 0; i < 30; i++ {
		now = now.Add(testFrame)
		r.Frame(now)
		if r.Sparks() > sparks {
			sparks = r.Sparks()
		}
		if n := rec.Count(renderer.OpStrokeCircle); n > rings {
			rings = n
		}
	}
	if sparks == 0 {
		t.Error("expected sparks early in the explosion")
	}
	if rings != 4 {
		t.Errorf("expected 4 shockwave rings, got %d", rings)
	}
}

func TestPhaseTransitions(t *testing.T) {
	order := []Phase{PhaseConverging, PhaseRotating, PhaseShrinking, PhaseExploding, PhaseFading, PhaseDone}
	for i := 0; i < len(order)-1; i++ {
		next, ok := order[i].Next()
		if !ok || next != order[i+1] {
			t.Errorf("%s.Next() = %s, %v", order[i], next, ok)
		}
		if order[i+1].CanTransition(order[i]) {
			t.Errorf("%s should not go back to %s", order[i+1], order[i])
		}
	}
	if _, ok := PhaseDone.Next(); ok {
		t.Error("done should have no successor")
	}
	if PhaseExploding.CanTransition(PhaseRotating) || PhaseExploding.CanTransition(PhaseConverging) {
		t.Error("exploding must not return to an earlier phase")
	}
	if PhaseConverging.CanTransition(PhaseExploding) {
		t.Error("phases must not be skipped")
	}
}
