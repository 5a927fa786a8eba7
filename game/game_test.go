package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/renderer"
	"github.com/pthm-cable/wormhole/telemetry"
)

type testHost struct {
	rig      *camera.Rig
	surfaces []*renderer.Recorder
	approved bool
	failNext bool
}

func newTestGame(t *testing.T, outputDir string) (*Game, *testHost) {
	t.Helper()
	cfg := testConfig(t)
	cfg.Profiles.Full.ParticleCount = 120
	cfg.Profiles.Full.BackgroundCount = 30

	host := &testHost{rig: testRig(), approved: true}
	g, err := New(Options{
		Config:    cfg,
		Tier:      TierFull,
		Seed:      7,
		OutputDir: outputDir,
		Width:     800,
		Height:    600,
		Camera:    host.rig,
		NewSurface: func(w, h int) (renderer.Surface, error) {
			if host.failNext {
				host.failNext = false
				return nil, errors.New("no surface")
			}
			rec := renderer.NewRecorder(float32(w), float32(h))
			host.surfaces = append(host.surfaces, rec)
			return rec, nil
		},
		Approved: func() bool { return host.approved },
	})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g, host
}

// tickUntil ticks g at 60Hz until stop returns true or limit elapses and
// returns the time of the last tick.
func tickUntil(g *Game, now time.Time, limit time.Duration, stop func() bool) time.Time {
	end := now.Add(limit)
	for now.Before(end) {
		now = now.Add(testFrame)
		g.Tick(now)
		if stop() {
			break
		}
	}
	return now
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected an error without a config")
	}
	if _, err := New(Options{Config: testConfig(t)}); err == nil {
		t.Error("expected an error without a camera and surface factory")
	}
}

func TestHeadlessPlayIsScored(t *testing.T) {
	dir := t.TempDir()
	g, host := newTestGame(t, dir)

	results := RunHeadless(g, HeadlessOptions{Plays: 1, FrameRate: 60, Start: time.Unix(500, 0)})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Score < 0 || res.Score > 100 || res.Grade == "" {
		t.Errorf("implausible result %+v", res)
	}
	if res.TargetFPS != 120 {
		t.Errorf("target should be the profile ceiling, got %f", res.TargetFPS)
	}
	for _, s := range res.Samples {
		if s.FPS > 60 {
			t.Errorf("recorded %f fps from a 60Hz host", s.FPS)
		}
	}
	if res.TotalTime < time.Second {
		t.Errorf("total time %v too short", res.TotalTime)
	}
	if !g.ScorePanel().Visible(time.Unix(500, 0).Add(res.TotalTime)) {
		t.Error("score panel should be showing the result")
	}
	if len(host.surfaces) != 1 || !host.surfaces[0].Closed() {
		t.Error("the play's surface should be torn down")
	}

	runs, err := telemetry.ReadRuns(filepath.Join(dir, "runs.csv"))
	if err != nil {
		t.Fatalf("reading runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Score != res.Score || runs[0].Profile != "full" {
		t.Errorf("unexpected runs.csv contents %+v", runs)
	}
	samples, err := telemetry.ReadSamples(filepath.Join(dir, "samples.csv"))
	if err != nil {
		t.Fatalf("reading samples: %v", err)
	}
	if len(samples[1]) != len(res.Samples) {
		t.Errorf("expected %d samples for run 1, got %d", len(res.Samples), len(samples[1]))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected a config snapshot: %v", err)
	}
}

func TestScoreWaitsForSettle(t *testing.T) {
	g, _ := newTestGame(t, "")
	start := time.Unix(500, 0)
	g.Play(start)

	now := tickUntil(g, start, 90*time.Second, func() bool { return !g.Active() })
	if g.Active() {
		t.Fatal("run did not complete")
	}
	doneAt := now
	if _, ok := g.LastResult(); ok {
		t.Fatal("result should not be scored before the settle delay")
	}
	if !g.Settling() {
		t.Fatal("expected the finished run to be settling")
	}

	now = tickUntil(g, now, 2*time.Second, func() bool { return !g.Settling() })
	res, ok := g.LastResult()
	if !ok {
		t.Fatal("expected a result after the settle delay")
	}
	if !g.ScorePanel().Visible(now) {
		t.Error("score panel should open with the result")
	}
	if g.ScorePanel().Result().Score != res.Score {
		t.Error("score panel shows a different result")
	}
	// The settle delay is not part of the completion time
	if want := doneAt.Sub(start); res.TotalTime != want {
		t.Errorf("total time %v, want %v from play to the end of the animation", res.TotalTime, want)
	}
}

func TestRunWithoutSamplesIsNotScored(t *testing.T) {
	g, _ := newTestGame(t, "")
	g.cfg.Score.SampleIntervalMs = 10 * 60 * 1000
	scorer, err := telemetry.NewScorer(g.cfg.Score, float64(g.Profile().MaxFPS))
	if err != nil {
		t.Fatalf("creating scorer: %v", err)
	}
	g.scorer = scorer

	start := time.Unix(500, 0)
	g.Play(start)
	now := tickUntil(g, start, 90*time.Second, func() bool { return !g.Active() })
	if g.Active() {
		t.Fatal("run did not complete")
	}
	if g.Settling() {
		t.Error("a run without samples should not wait to be revealed")
	}
	if g.scorer.Active() {
		t.Error("scorer should stop with the run even without samples")
	}

	tickUntil(g, now, 2*time.Second, func() bool { return false })
	if _, ok := g.LastResult(); ok {
		t.Error("a run without samples must not be scored")
	}
	if g.ScorePanel().Visible(now) {
		t.Error("no score panel without a result")
	}
}

func TestResetCancelsScoring(t *testing.T) {
	for _, stop := range []Phase{PhaseConverging, PhaseRotating, PhaseExploding} {
		t.Run(stop.String(), func(t *testing.T) {
			g, host := newTestGame(t, "")
			start := time.Unix(500, 0)
			if !g.Play(start) {
				t.Fatal("play refused")
			}
			now := tickUntil(g, start, 90*time.Second, func() bool {
				p, ok := g.Phase()
				return !ok || p >= stop
			})

			g.Reset(now)
			g.Reset(now)

			if g.Active() || g.Settling() {
				t.Fatal("reset should leave the game idle")
			}
			surface := host.surfaces[0]
			calls := surface.Total()
			tickUntil(g, now, 5*time.Second, func() bool { return false })
			if surface.Total() != calls {
				t.Error("surface drawn after reset")
			}
			if _, ok := g.LastResult(); ok {
				t.Error("a reset run must not be scored")
			}
			depth, _ := host.rig.Position()
			if depth != 3.8 || !host.rig.ControlsEnabled() {
				t.Error("camera should be restored by reset")
			}
		})
	}
}

func TestPlayRefusedOutsideApprovedMode(t *testing.T) {
	g, host := newTestGame(t, "")
	host.approved = false
	now := time.Unix(500, 0)

	if g.Play(now) {
		t.Fatal("play should be refused")
	}
	if g.Active() || len(host.surfaces) != 0 {
		t.Error("a refused play must not start a run")
	}
	if !g.Advisory().Visible(now) {
		t.Error("refusal should raise the advisory")
	}

	host.approved = true
	if !g.Play(now) {
		t.Fatal("play should start once approved")
	}
	if g.Advisory().Visible(now) {
		t.Error("advisory should be dismissed when play starts")
	}
}

func TestPlayStopsPreviousRun(t *testing.T) {
	g, host := newTestGame(t, "")
	start := time.Unix(500, 0)
	g.Play(start)
	now := tickUntil(g, start, 2*time.Second, func() bool { return false })
	first := g.Run()

	if !g.Play(now) {
		t.Fatal("second play refused")
	}
	if !first.Closed() || !host.surfaces[0].Closed() {
		t.Error("the previous run should be torn down before the next starts")
	}
	if g.Run() == first || len(host.surfaces) != 2 {
		t.Error("expected a fresh run on its own surface")
	}
	if host.surfaces[1].Closed() {
		t.Error("the new run's surface should be open")
	}
}

func TestPlayWithoutSurface(t *testing.T) {
	g, host := newTestGame(t, "")
	host.failNext = true
	if g.Play(time.Unix(500, 0)) {
		t.Error("play should fail without a surface")
	}
	if g.Active() {
		t.Error("no run should be active")
	}
}

func TestEscapeHintAfterCameraMove(t *testing.T) {
	g, _ := newTestGame(t, "")
	start := time.Unix(500, 0)
	g.Play(start)
	now := tickUntil(g, start, 90*time.Second, func() bool { return g.Run().CameraDone() })
	if !g.Run().CameraDone() {
		t.Fatal("camera move did not complete")
	}
	if !g.EscapeHint().Visible(now) {
		t.Error("escape hint should show once the camera move completes")
	}
}
