package main

import (
	"math"
	"sync"
	"time"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/game"
	"github.com/pthm-cable/wormhole/renderer"
)

// overBudgetPenalty scales how hard exceeding the frame budget is punished
// relative to the [0, 1] density reward.
const overBudgetPenalty = 10.0

// FitnessEvaluator runs headless plays and measures their real frame cost.
type FitnessEvaluator struct {
	params     *ParamVector
	tier       game.DeviceTier
	seeds      []int64
	seconds    float64
	budget     time.Duration
	baseConfig *config.Config

	mu       sync.Mutex
	lastCost time.Duration
}

// NewFitnessEvaluator creates an evaluator that plays seconds of synthetic
// time per seed and compares the mean executed-frame cost with budget.
func NewFitnessEvaluator(params *ParamVector, tier game.DeviceTier, seeds []int64, seconds float64,
	budget time.Duration, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		tier:       tier,
		seeds:      seeds,
		seconds:    seconds,
		budget:     budget,
		baseConfig: baseCfg,
	}
}

// LastCost returns the mean frame cost from the most recent evaluation.
func (fe *FitnessEvaluator) LastCost() time.Duration {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCost
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// negative density, plus a penalty proportional to any budget overrun.
// Seeds run one after another so they do not compete for the CPU being measured.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	var total time.Duration
	for _, seed := range fe.seeds {
		total += fe.measure(x, seed)
	}
	cost := total / time.Duration(len(fe.seeds))

	fe.mu.Lock()
	fe.lastCost = cost
	fe.mu.Unlock()

	fitness := -fe.params.Density(x)
	if over := float64(cost)/float64(fe.budget) - 1; over > 0 {
		fitness += overBudgetPenalty * over
	}
	return fitness
}

// measure plays one seed and returns its mean executed-frame cost.
func (fe *FitnessEvaluator) measure(x []float64, seed int64) time.Duration {
	cfg := fe.copyConfig()
	prof := &cfg.Profiles.Full
	if fe.tier == game.TierConstrained {
		prof = &cfg.Profiles.Constrained
	}
	fe.params.ApplyToProfile(prof, x)

	rate := prof.MaxFPS
	frames := int(math.Ceil(fe.seconds * float64(rate)))
	cfg.Telemetry.PerfCollectorWindow = frames

	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	g, err := game.New(game.Options{
		Config: cfg,
		Tier:   fe.tier,
		Seed:   seed,
		Width:  w,
		Height: h,
		Camera: camera.New(game.CameraDefaults(&cfg.Camera)),
		NewSurface: func(w, h int) (renderer.Surface, error) {
			return renderer.NewRecorder(float32(w), float32(h)), nil
		},
	})
	if err != nil {
		return time.Duration(math.MaxInt64 / 4)
	}
	defer g.Close()

	now := time.Unix(0, 0)
	frame := time.Second / time.Duration(rate)
	g.Play(now)
	for i := 0; i < frames && g.Active(); i++ {
		now = now.Add(frame)
		g.Tick(now)
	}
	return g.Perf().Stats().AvgFrame
}

// copyConfig copies the base config. Only value fields are edited per
// evaluation, so slices may stay shared.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
