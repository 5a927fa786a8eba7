package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wormhole/components"
)

func newTestAmbient(t *testing.T, n int) *AmbientSystem {
	t.Helper()
	cfg := testConfig(t)
	palette := BuildPalette(cfg.Wormhole.Palette, true, cfg.Wormhole.HarmonyShift)
	s := NewAmbientSystem(ecs.NewWorld())
	s.Spawn(rand.New(rand.NewSource(2)), n, 640, 360, 1280, palette)
	return s
}

func TestAmbientSpawn_WithinHalfWidth(t *testing.T) {
	s := newTestAmbient(t, 90)
	if s.Count() != 90 {
		t.Fatalf("Count() = %d, want 90", s.Count())
	}

	visited := 0
	s.Each(1, func(pos *components.Position, amb *components.Ambient) {
		visited++
		if d := distance(pos.X, pos.Y, 640, 360); d > 640.01 {
			t.Errorf("particle %.1f px from center, beyond half width", d)
		}
		if amb.BaseAlpha < 0.25 || amb.BaseAlpha > 0.65 {
			t.Errorf("base alpha %.3f out of range", amb.BaseAlpha)
		}
		if amb.Size <= 0 {
			t.Errorf("size %.3f not positive", amb.Size)
		}
	})
	if visited != 90 {
		t.Errorf("Each visited %d particles, want 90", visited)
	}
}

func TestAmbientUpdate_Stride(t *testing.T) {
	tests := []struct {
		name   string
		stride int
		want   int
	}{
		{"every particle", 1, 30},
		{"every second", 2, 15},
		{"every third", 3, 10},
		{"zero treated as one", 0, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestAmbient(t, 30)
			f := &AmbientFrame{Stage: AmbientIdle, DT: 1, CenterX: 640, CenterY: 360, Width: 1280, Rng: rand.New(rand.NewSource(1))}
			visited := 0
			s.Update(f, tt.stride, func(*components.Position, *components.Ambient) { visited++ })
			if visited != tt.want {
				t.Errorf("visited %d, want %d", visited, tt.want)
			}
		})
	}
}

func TestAmbientUpdate_AlphaBounds(t *testing.T) {
	s := newTestAmbient(t, 60)
	rng := rand.New(rand.NewSource(4))
	stages := []AmbientStage{AmbientIdle, AmbientSwirl, AmbientBlast}

	for _, stage := range stages {
		f := &AmbientFrame{
			Stage: stage, DT: 2, CenterX: 640, CenterY: 360, Width: 1280,
			Pulse:           Pulse{Active: true, Frequency: 1.5, Intensity: 0.5},
			ShockwaveRadius: 2000,
			Rng:             rng,
		}
		for frame := 0; frame < 200; frame++ {
			f.ClockMs = float64(frame) * 16.67
			f.ExplosionProgress = float32(frame) / 200
			s.Update(f, 1, func(_ *components.Position, amb *components.Ambient) {
				if amb.Alpha < 0 || amb.Alpha > 1 {
					t.Fatalf("stage %d frame %d: alpha %.3f out of [0, 1]", stage, frame, amb.Alpha)
				}
				if amb.Size <= 0 {
					t.Fatalf("stage %d frame %d: size %.3f not positive", stage, frame, amb.Size)
				}
			})
		}
	}
}

func TestAmbientSwirl_KeepsCoreClear(t *testing.T) {
	s := newTestAmbient(t, 60)
	f := &AmbientFrame{Stage: AmbientSwirl, DT: 1, CenterX: 640, CenterY: 360, Width: 1280, Rng: rand.New(rand.NewSource(1))}

	for frame := 0; frame < 3000; frame++ {
		s.Update(f, 1, nil)
	}
	s.Each(1, func(pos *components.Position, _ *components.Ambient) {
		if d := distance(pos.X, pos.Y, 640, 360); d > 640 {
			t.Errorf("swirling particle escaped to %.1f px", d)
		}
	})
}
