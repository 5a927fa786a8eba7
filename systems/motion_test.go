package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/wormhole/components"
)

func rotateFrame(now time.Time, speed float32) *MotionFrame {
	return &MotionFrame{
		Stage:            StageRotate,
		Now:              now,
		DT:               1,
		CenterX:          640,
		CenterY:          360,
		RotationSpeed:    speed,
		MaxRotationSpeed: 0.15,
		TrailLength:      7,
		Rng:              rand.New(rand.NewSource(1)),
	}
}

func TestUpdateParticle_WaitsForStartTime(t *testing.T) {
	cfg := testConfig(t)
	now := time.Unix(100, 0)
	p := components.Particle{X: 10, Y: 20, TargetX: 300, TargetY: 300, StartAt: now.Add(time.Second), ConvergenceSpeed: 0.02}
	f := &MotionFrame{Stage: StageConverge, Now: now, DT: 1, Rng: rand.New(rand.NewSource(1))}

	UpdateParticle(&p, f, &cfg.Motion)

	if p.Started {
		t.Error("particle started before its start time")
	}
	if p.X != 10 || p.Y != 20 {
		t.Errorf("unstarted particle moved to (%.1f, %.1f)", p.X, p.Y)
	}
}

func TestUpdateParticle_StartFadesIn(t *testing.T) {
	cfg := testConfig(t)
	now := time.Unix(100, 0)
	p := components.Particle{X: 10, Y: 20, TargetX: 300, TargetY: 300, StartAt: now, Alpha: 0.5, TargetAlpha: 0.9, ConvergenceSpeed: 0.02}
	f := &MotionFrame{Stage: StageConverge, Now: now, DT: 1, Rng: rand.New(rand.NewSource(1))}

	UpdateParticle(&p, f, &cfg.Motion)

	if !p.Started {
		t.Fatal("particle should start when start time is reached")
	}
	want := float32(cfg.Motion.FadeInRate)
	if math.Abs(float64(p.Alpha-want)) > 1e-6 {
		t.Errorf("alpha after first frame = %.4f, want %.4f", p.Alpha, want)
	}

	for i := 0; i < 100; i++ {
		UpdateParticle(&p, f, &cfg.Motion)
	}
	if p.Alpha != p.TargetAlpha {
		t.Errorf("alpha should settle at target %.2f, got %.4f", p.TargetAlpha, p.Alpha)
	}
}

func TestConverge_CurvedPathEndsOnTarget(t *testing.T) {
	cfg := testConfig(t)
	now := time.Unix(100, 0)
	p := components.Particle{
		StartX: 0, StartY: 0,
		TargetX: 500, TargetY: 300,
		ControlPoints:    []components.Point{{X: 100, Y: 400}},
		PathProgress:     0.999,
		ConvergenceSpeed: 0.02,
		Started:          true,
		TargetAlpha:      0.9,
	}
	f := &MotionFrame{Stage: StageConverge, Now: now, DT: 2, Rng: rand.New(rand.NewSource(1))}

	UpdateParticle(&p, f, &cfg.Motion)

	if p.PathProgress != 1 {
		t.Fatalf("path progress = %v, want 1", p.PathProgress)
	}
	if p.X != p.TargetX || p.Y != p.TargetY {
		t.Errorf("position (%v, %v) should equal target (%v, %v)", p.X, p.Y, p.TargetX, p.TargetY)
	}
	if !p.InPlace {
		t.Error("particle on target should be in place")
	}
}

func TestConverge_StraightPathApproaches(t *testing.T) {
	cfg := testConfig(t)
	now := time.Unix(100, 0)
	kinds := []components.SpawnKind{components.SpawnRingEdge, components.SpawnGrid, components.SpawnBorder}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			p := components.Particle{
				X: 0, Y: 0, TargetX: 600, TargetY: 400,
				Spawn: kind, ConvergenceSpeed: 0.015, Started: true, TargetAlpha: 0.9,
			}
			f := &MotionFrame{Stage: StageConverge, Now: now, DT: 2, Rng: rand.New(rand.NewSource(1))}

			prev := distance(p.X, p.Y, p.TargetX, p.TargetY)
			for i := 0; i < 2000; i++ {
				UpdateParticle(&p, f, &cfg.Motion)
				d := distance(p.X, p.Y, p.TargetX, p.TargetY)
				if prev >= 8 && d >= prev {
					t.Fatalf("frame %d: distance did not shrink from %.3f (now %.3f)", i, prev, d)
				}
				prev = d
			}
			if !p.InPlace {
				t.Errorf("particle should be in place after 2000 frames, %.2f px away", prev)
			}
		})
	}
}

func TestConverge_SnapWithinThreshold(t *testing.T) {
	cfg := testConfig(t)
	p := components.Particle{X: 97, Y: 100, TargetX: 100, TargetY: 100, Started: true, ConvergenceSpeed: 0.01}
	f := &MotionFrame{Stage: StageConverge, Now: time.Unix(0, 0), DT: 1, Rng: rand.New(rand.NewSource(1))}

	UpdateParticle(&p, f, &cfg.Motion)

	if p.X != 100 || p.Y != 100 {
		t.Errorf("particle within snap distance should land on target, got (%v, %v)", p.X, p.Y)
	}
}

func TestPathPoint_Endpoints(t *testing.T) {
	base := components.Particle{StartX: 10, StartY: 20, TargetX: 400, TargetY: 300}
	cps := []components.Point{{X: 50, Y: 250}, {X: 200, Y: -40}, {X: 350, Y: 120}}

	for k := 0; k <= 3; k++ {
		p := base
		p.ControlPoints = cps[:k]

		x, y := PathPoint(&p, 0)
		if math.Abs(float64(x-p.StartX)) > 1e-3 || math.Abs(float64(y-p.StartY)) > 1e-3 {
			t.Errorf("k=%d: PathPoint(0) = (%v, %v), want start", k, x, y)
		}
		x, y = PathPoint(&p, 1)
		if math.Abs(float64(x-p.TargetX)) > 1e-3 || math.Abs(float64(y-p.TargetY)) > 1e-3 {
			t.Errorf("k=%d: PathPoint(1) = (%v, %v), want target", k, x, y)
		}
	}
}

func TestPathPoint_PolylineMidSegment(t *testing.T) {
	p := components.Particle{
		StartX: 0, StartY: 0, TargetX: 400, TargetY: 0,
		ControlPoints: []components.Point{{X: 100, Y: 0}, {X: 200, Y: 0}, {X: 300, Y: 0}},
	}
	// Four equal segments; t=0.625 is halfway through the third
	x, _ := PathPoint(&p, 0.625)
	if math.Abs(float64(x-250)) > 1e-3 {
		t.Errorf("PathPoint(0.625) x = %v, want 250", x)
	}
}

func TestRotate_BoundsAndTrails(t *testing.T) {
	cfg := testConfig(t)
	now := time.Unix(100, 0)
	p := components.Particle{
		Angle: 1, Radius: 100, Size: 2, Speed: 0.02, PulseFactor: 1,
		Started: true, Alpha: 0.9, TargetAlpha: 0.95,
	}
	f := rotateFrame(now, 0.15)
	f.Pulse = Pulse{Active: true, Frequency: 2, Intensity: 0.7}

	for i := 0; i < 500; i++ {
		f.ClockMs = float64(i) * 16.67
		UpdateParticle(&p, f, &cfg.Motion)
		if p.Alpha < 0 || p.Alpha > 1 {
			t.Fatalf("frame %d: alpha %.3f out of [0, 1]", i, p.Alpha)
		}
		if p.VisualSize <= 0 {
			t.Fatalf("frame %d: visual size %.3f not positive", i, p.VisualSize)
		}
		if len(p.Trail) > f.TrailLength {
			t.Fatalf("frame %d: trail length %d exceeds %d", i, len(p.Trail), f.TrailLength)
		}
	}

	r := distance(p.X, p.Y, f.CenterX, f.CenterY)
	if math.Abs(float64(r-100)) > 0.01 {
		t.Errorf("rotating particle drifted off its radius: %.3f", r)
	}
}

func TestRotate_ShrinkingPullsInward(t *testing.T) {
	cfg := testConfig(t)
	p := components.Particle{Radius: 100, Size: 2, Speed: 0.02, Started: true, Alpha: 0.9, TargetAlpha: 0.9}
	f := rotateFrame(time.Unix(0, 0), 0.15)
	f.Shrinking = true

	UpdateParticle(&p, f, &cfg.Motion)

	want := float32(100 * (1 - cfg.Motion.ShrinkRate))
	if math.Abs(float64(p.Radius-want)) > 1e-4 {
		t.Errorf("radius after shrinking frame = %.4f, want %.4f", p.Radius, want)
	}
}

func TestExplode_CompressThenExpand(t *testing.T) {
	cfg := testConfig(t)
	p := components.Particle{Radius: 100, Size: 2, Speed: 0.02, Started: true, Alpha: 0.9, TargetAlpha: 0.9}
	f := &MotionFrame{
		Stage: StageExplode, Now: time.Unix(0, 0), DT: 2,
		CenterX: 640, CenterY: 360, RotationSpeed: 0.15,
		Rng: rand.New(rand.NewSource(5)),
	}

	f.ExplosionProgress = 0.1
	UpdateParticle(&p, f, &cfg.Motion)
	if p.Radius >= 100 {
		t.Errorf("radius should compress early in the explosion, got %.2f", p.Radius)
	}

	compressed := p.Radius
	for prog := float32(0.3); prog <= 1; prog += 0.01 {
		f.ExplosionProgress = prog
		UpdateParticle(&p, f, &cfg.Motion)
		if p.Alpha < 0 || p.Alpha > 1 {
			t.Fatalf("progress %.2f: alpha %.3f out of [0, 1]", prog, p.Alpha)
		}
		if p.VisualSize <= 0 {
			t.Fatalf("progress %.2f: visual size %.3f not positive", prog, p.VisualSize)
		}
	}
	if p.Radius <= compressed {
		t.Errorf("radius should expand late in the explosion: %.2f <= %.2f", p.Radius, compressed)
	}
}

func TestDecayTrail_DropsFaintPoints(t *testing.T) {
	cfg := testConfig(t)
	p := components.Particle{Trail: []components.TrailPoint{
		{Size: 2, Opacity: 0.12},
		{Size: 2, Opacity: 0.8},
	}}

	decayTrail(&p, 1, &cfg.Motion)

	if len(p.Trail) != 1 {
		t.Fatalf("expected faint point dropped, %d remain", len(p.Trail))
	}
	if math.Abs(float64(p.Trail[0].Opacity)-(0.8-cfg.Motion.TrailDecay)) > 1e-6 {
		t.Errorf("opacity = %.4f after decay", p.Trail[0].Opacity)
	}
}
