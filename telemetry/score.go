// Package telemetry provides frame rate measurement, run scoring and score export.
package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/pthm-cable/wormhole/config"
)

// Sample is one frame rate observation taken during a run.
type Sample struct {
	ElapsedSec float64
	FPS        float64
}

// TimeRating buckets a run's completion time against the reference times.
type TimeRating uint8

const (
	RatingBlazing TimeRating = iota
	RatingExcellent
	RatingGood
	RatingPassing
	RatingSlow
	RatingSluggish
)

// String returns the rating label.
func (r TimeRating) String() string {
	switch r {
	case RatingBlazing:
		return "blazing"
	case RatingExcellent:
		return "excellent"
	case RatingGood:
		return "good"
	case RatingPassing:
		return "passing"
	case RatingSlow:
		return "slow"
	default:
		return "sluggish"
	}
}

// ScoreComponents holds the four weighted sub-scores, each 0-100.
type ScoreComponents struct {
	Average   float64
	Minimum   float64
	Stability float64
	Time      float64
}

// ScoreResult is the outcome of a scored run.
type ScoreResult struct {
	Score      int
	Grade      string
	TargetFPS  float64
	AverageFPS float64
	MinFPS     float64
	MaxFPS     float64
	Stability  float64 // Percent, 0-100
	TotalTime  time.Duration
	Rating     TimeRating
	Components ScoreComponents
	Samples    []Sample
}

// LogValue implements slog.LogValuer for structured logging.
func (r ScoreResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("score", r.Score),
		slog.String("grade", r.Grade),
		slog.Float64("target_fps", r.TargetFPS),
		slog.Float64("average_fps", r.AverageFPS),
		slog.Float64("min_fps", r.MinFPS),
		slog.Float64("max_fps", r.MaxFPS),
		slog.Float64("stability", r.Stability),
		slog.Int64("total_ms", r.TotalTime.Milliseconds()),
		slog.String("time_rating", r.Rating.String()),
		slog.Float64("average_score", r.Components.Average),
		slog.Float64("minimum_score", r.Components.Minimum),
		slog.Float64("stability_score", r.Components.Stability),
		slog.Float64("time_score", r.Components.Time),
		slog.Int("samples", len(r.Samples)),
	)
}

// Scorer records frame rate samples over a run and scores the run when it stops.
// It is driven from the frame loop and is not safe for concurrent use.
type Scorer struct {
	cfg       config.ScoreConfig
	targetFPS float64
	interval  time.Duration
	timeCurve *interp.PiecewiseLinear

	active     bool
	start      time.Time
	lastSample time.Time
	samples    []Sample
}

// NewScorer creates a scorer targeting targetFPS.
func NewScorer(cfg config.ScoreConfig, targetFPS float64) (*Scorer, error) {
	curve, err := newTimeCurve(cfg)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		cfg:       cfg,
		targetFPS: targetFPS,
		interval:  time.Duration(cfg.SampleIntervalMs * float64(time.Millisecond)),
		timeCurve: curve,
	}, nil
}

// Start resets the sample buffer and begins a run at now.
func (s *Scorer) Start(now time.Time) {
	s.active = true
	s.start = now
	s.lastSample = now
	s.samples = s.samples[:0]
}

// Record appends a sample if at least one sample interval has passed since the last one.
func (s *Scorer) Record(now time.Time, fps float64) {
	if !s.active {
		return
	}
	if now.Sub(s.lastSample) < s.interval {
		return
	}
	s.samples = append(s.samples, Sample{
		ElapsedSec: now.Sub(s.start).Seconds(),
		FPS:        fps,
	})
	s.lastSample = now
}

// Stop ends the run and scores it. Returns false without scoring when the
// scorer is not active or has no samples; an empty run stays active.
func (s *Scorer) Stop(now time.Time) (ScoreResult, bool) {
	if !s.active || len(s.samples) == 0 {
		return ScoreResult{}, false
	}
	s.active = false

	samples := make([]Sample, len(s.samples))
	copy(samples, s.samples)
	return s.score(samples, now.Sub(s.start)), true
}

// Cancel ends the run without scoring.
func (s *Scorer) Cancel() {
	s.active = false
	s.samples = s.samples[:0]
}

// Active reports whether a run is being recorded.
func (s *Scorer) Active() bool {
	return s.active
}

// SampleCount returns the number of samples recorded in the current run.
func (s *Scorer) SampleCount() int {
	return len(s.samples)
}

// Score computes a result for the given samples and total time without
// touching the scorer's run state.
func (s *Scorer) Score(samples []Sample, total time.Duration) (ScoreResult, error) {
	if len(samples) == 0 {
		return ScoreResult{}, fmt.Errorf("scoring run: no samples")
	}
	return s.score(samples, total), nil
}

func (s *Scorer) score(samples []Sample, total time.Duration) ScoreResult {
	fps := make([]float64, len(samples))
	for i, smp := range samples {
		fps[i] = smp.FPS
	}
	sum := Summarize(fps)

	comp := ScoreComponents{
		Average:   CurveScore(ratio(sum.Mean, s.targetFPS), s.cfg.AverageCurve),
		Minimum:   CurveScore(ratio(sum.Min, s.targetFPS), s.cfg.MinimumCurve),
		Stability: CurveScore(sum.Stability, s.cfg.StabilityCurve),
		Time:      s.TimeScore(total),
	}
	w := s.cfg.Weights
	weighted := comp.Average*w.Average + comp.Minimum*w.Minimum +
		comp.Stability*w.Stability + comp.Time*w.Time
	score := int(math.Round(weighted))

	return ScoreResult{
		Score:      score,
		Grade:      Grade(score, s.cfg),
		TargetFPS:  s.targetFPS,
		AverageFPS: sum.Mean,
		MinFPS:     sum.Min,
		MaxFPS:     sum.Max,
		Stability:  sum.Stability,
		TotalTime:  total,
		Rating:     Rate(total, s.cfg),
		Components: comp,
		Samples:    samples,
	}
}

// TimeScore maps a completion time onto 0-100: full marks up to the fast
// reference, linear through the standard and slow references, reaching the
// floor at twice the slow reference.
func (s *Scorer) TimeScore(total time.Duration) float64 {
	ms := float64(total) / float64(time.Millisecond)
	lo, hi := s.cfg.FastMs, s.cfg.SlowMs*2
	if ms < lo {
		ms = lo
	}
	if ms > hi {
		ms = hi
	}
	return s.timeCurve.Predict(ms)
}

func newTimeCurve(cfg config.ScoreConfig) (*interp.PiecewiseLinear, error) {
	xs := []float64{cfg.FastMs, cfg.StandardMs, cfg.SlowMs, cfg.SlowMs * 2}
	ys := []float64{cfg.FastScore, cfg.StandardScore, cfg.SlowScore, cfg.FloorScore}
	curve := &interp.PiecewiseLinear{}
	if err := curve.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting time score curve: %w", err)
	}
	return curve, nil
}

// CurveScore evaluates a banded score curve at x, clamped to 0-100.
func CurveScore(x float64, c config.CurveConfig) float64 {
	if x >= c.FullAt {
		return 100
	}
	for _, b := range c.Bands {
		if x >= b.From {
			return math.Max(0, math.Min(100, b.Base+(x-b.From)*b.Slope))
		}
	}
	return 0
}

// Grade maps a score onto its letter grade.
func Grade(score int, cfg config.ScoreConfig) string {
	for _, g := range cfg.Grades {
		if score >= g.Min {
			return g.Grade
		}
	}
	return cfg.FallbackGrade
}

// Rate buckets a completion time against the reference times.
func Rate(total time.Duration, cfg config.ScoreConfig) TimeRating {
	ms := float64(total) / float64(time.Millisecond)
	switch {
	case ms <= cfg.FastMs*0.9:
		return RatingBlazing
	case ms <= cfg.FastMs:
		return RatingExcellent
	case ms <= cfg.StandardMs:
		return RatingGood
	case ms <= cfg.SlowMs:
		return RatingPassing
	case ms <= cfg.SlowMs*1.2:
		return RatingSlow
	default:
		return RatingSluggish
	}
}

func ratio(v, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return v / target
}
