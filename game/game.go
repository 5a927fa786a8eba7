package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/telemetry"
	"github.com/pthm-cable/wormhole/ui"
)

// advisoryFlash is the flash period of the display-mode advisory.
const advisoryFlash = 800 * time.Millisecond

// resetter is implemented by camera handles that can return to their
// pre-run pose.
type resetter interface {
	Reset()
}

// Game owns the play trigger, the active run, the FPS meter and the score
// hand-off. It is platform-neutral: frontends feed it timestamps and input
// and draw its state. All methods must be called from the frame loop.
type Game struct {
	cfg     *config.Config
	opts    Options
	profile PerformanceProfile
	rng     *rand.Rand

	scorer *telemetry.Scorer
	meter  *telemetry.FPSMeter
	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager

	run   *Run
	runID int

	// A finished run's result is revealed once it has had time to settle
	stopAt  time.Time
	pending telemetry.ScoreResult
	results []telemetry.ScoreResult

	advisory   *ui.Advisory
	escapeHint *ui.EscapeHint
	scorePanel *ui.ScorePanel
}

// New creates a game from opts. The output directory, if set, is created
// and a config snapshot written to it.
func New(opts Options) (*Game, error) {
	if opts.Config == nil {
		return nil, errors.New("game: options need a config")
	}
	if opts.Camera == nil || opts.NewSurface == nil {
		return nil, errors.New("game: options need a camera and a surface factory")
	}
	cfg := opts.Config
	prof := ResolveProfile(cfg, opts.Tier, opts.Width)

	scorer, err := telemetry.NewScorer(cfg.Score, float64(prof.MaxFPS))
	if err != nil {
		return nil, fmt.Errorf("creating scorer: %w", err)
	}
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	return &Game{
		cfg:        cfg,
		opts:       opts,
		profile:    prof,
		rng:        newRand(opts.Seed),
		scorer:     scorer,
		meter:      telemetry.NewFPSMeter(cfg.Derived.FPSUpdate, prof.MaxFPS),
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:     output,
		advisory:   ui.NewAdvisory(advisoryFlash),
		escapeHint: ui.NewEscapeHint(msDuration(cfg.Timing.EscapeHintMs)),
		scorePanel: ui.NewScorePanel(msDuration(cfg.Timing.ResultVisibleMs), prof.MaxFPS),
	}, nil
}

// SetViewport changes the size used by the next run.
func (g *Game) SetViewport(w, h float32) {
	g.opts.Width = w
	g.opts.Height = h
}

// Play starts a run at now. Outside the approved display mode the advisory is
// raised instead and Play returns false. A run still in progress is torn down
// before the new one starts.
func (g *Game) Play(now time.Time) bool {
	if g.cfg.Screen.RequireFullscreen && g.opts.Approved != nil && !g.opts.Approved() {
		g.advisory.Show(now, "Switch to fullscreen (F11) to open the wormhole")
		slog.Info("play_refused", "reason", "not_fullscreen")
		return false
	}
	g.advisory.Dismiss()

	if g.run != nil && !g.run.Closed() {
		g.run.Close("restarted")
	}
	g.scorer.Cancel()
	g.stopAt = time.Time{}
	g.pending = telemetry.ScoreResult{}
	g.scorePanel.Close()
	g.escapeHint.Hide()
	if r, ok := g.opts.Camera.(resetter); ok {
		r.Reset()
	}

	w, h := g.opts.Width, g.opts.Height
	surface, err := g.opts.NewSurface(int(w), int(h))
	if err != nil {
		slog.Error("failed to create surface", "error", err)
		return false
	}
	if sw, sh := surface.Size(); sw > 0 && sh > 0 {
		w, h = sw, sh
	}
	g.profile = ResolveProfile(g.cfg, g.opts.Tier, w)
	g.runID++

	g.run = NewRun(RunOptions{
		Config:  g.cfg,
		Profile: g.profile,
		Width:   w,
		Height:  h,
		Surface: surface,
		Camera:  g.opts.Camera,
		Rng:     g.rng,
		Start:   now,
		Perf:    g.perf,
		Hooks: RunHooks{
			OnFrame:      g.onFrame,
			OnPhase:      g.onPhase,
			OnCameraDone: g.onCameraDone,
			OnComplete:   g.onComplete,
		},
	})
	g.scorer.Start(now)
	return true
}

// Reset returns to idle from any phase: the active run is torn down, scoring
// is cancelled and the camera restored. Safe to call repeatedly.
func (g *Game) Reset(now time.Time) {
	if g.run != nil {
		g.run.Close("reset")
	}
	if g.scorer.Active() || g.Settling() {
		slog.Info("score_cancelled", "run_id", g.runID)
	}
	g.scorer.Cancel()
	g.stopAt = time.Time{}
	g.pending = telemetry.ScoreResult{}
	g.advisory.Dismiss()
	g.escapeHint.Hide()
	g.scorePanel.Close()
	if r, ok := g.opts.Camera.(resetter); ok {
		r.Reset()
	}
}

// Tick advances the game to now. Call once per host frame.
func (g *Game) Tick(now time.Time) {
	g.meter.Frame(now)
	if g.run != nil && !g.run.Closed() {
		g.run.Frame(now)
	}
	if !g.stopAt.IsZero() && !now.Before(g.stopAt) {
		g.stopAt = time.Time{}
		g.finish(now)
	}
}

func (g *Game) onFrame(now time.Time) {
	// The scorer records exactly what the HUD shows
	g.scorer.Record(now, float64(g.meter.FPS()))
}

func (g *Game) onPhase(from, to Phase, now time.Time) {
	switch to {
	case PhaseShrinking:
		g.opts.Cues.Flash()
	case PhaseExploding:
		g.opts.Cues.Explosion()
	}
}

func (g *Game) onCameraDone(now time.Time) {
	g.escapeHint.Show(now)
}

// onComplete scores the run as it ends; the result is revealed after the
// settle delay.
func (g *Game) onComplete(now time.Time) {
	slog.Info("run_perf", "run_id", g.runID, "perf", g.perf.Stats())
	res, ok := g.scorer.Stop(now)
	if !ok {
		g.scorer.Cancel()
		slog.Info("score_skipped", "run_id", g.runID, "reason", "no_samples")
		return
	}
	g.pending = res
	g.stopAt = now.Add(msDuration(g.cfg.Timing.ScoreRevealMs))
}

// finish reveals the scored run.
func (g *Game) finish(now time.Time) {
	res := g.pending
	g.pending = telemetry.ScoreResult{}
	slog.Info("score_result",
		"run_id", g.runID,
		"score", res.Score,
		"grade", res.Grade,
		"avg_fps", res.AverageFPS,
		"min_fps", res.MinFPS,
		"stability", res.Stability,
		"total_ms", res.TotalTime.Milliseconds(),
	)
	g.results = append(g.results, res)

	rec := telemetry.NewRunRecord(g.runID, g.profile.Tier.String(), g.profile.ParticleCount, res)
	if err := g.output.WriteRun(rec, res.Samples); err != nil {
		slog.Error("failed to write run", "error", err)
	}
	g.scorePanel.Show(res, now)
}

// Close tears down the active run and flushes output. Audio cues belong to
// the caller.
func (g *Game) Close() error {
	if g.run != nil {
		g.run.Close("shutdown")
	}
	return g.output.Close()
}

// Active reports whether a run is animating.
func (g *Game) Active() bool {
	return g.run != nil && !g.run.Closed()
}

// Settling reports whether a finished run is waiting to be scored.
func (g *Game) Settling() bool {
	return !g.stopAt.IsZero()
}

// Run returns the current or most recent run, or nil.
func (g *Game) Run() *Run { return g.run }

// Phase returns the active run's phase and false when idle.
func (g *Game) Phase() (Phase, bool) {
	if !g.Active() {
		return PhaseDone, false
	}
	return g.run.Phase(), true
}

// FPS returns the metered frame rate shown to the user and recorded by the scorer.
func (g *Game) FPS() int { return g.meter.FPS() }

// Profile returns the profile of the current or next run.
func (g *Game) Profile() PerformanceProfile { return g.profile }

// Results returns every scored run in order.
func (g *Game) Results() []telemetry.ScoreResult { return g.results }

// LastResult returns the most recent scored run.
func (g *Game) LastResult() (telemetry.ScoreResult, bool) {
	if len(g.results) == 0 {
		return telemetry.ScoreResult{}, false
	}
	return g.results[len(g.results)-1], true
}

// Advisory returns the display-mode advisory state.
func (g *Game) Advisory() *ui.Advisory { return g.advisory }

// EscapeHint returns the escape hint state.
func (g *Game) EscapeHint() *ui.EscapeHint { return g.escapeHint }

// ScorePanel returns the score panel state.
func (g *Game) ScorePanel() *ui.ScorePanel { return g.scorePanel }

// Perf returns the frame cost collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perf }

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
