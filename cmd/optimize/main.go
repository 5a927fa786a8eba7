package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/game"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval            int     `csv:"eval"`
	Fitness         float64 `csv:"fitness"`
	CostUs          int64   `csv:"cost_us"`
	ParticleCount   int     `csv:"particle_count"`
	BackgroundCount int     `csv:"background_count"`
	TrailLength     int     `csv:"trail_length"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	tierName := flag.String("tier", "full", "Profile to tune: full or constrained")
	seconds := flag.Float64("seconds", 20, "Synthetic seconds played per evaluation")
	seeds := flag.Int("seeds", 2, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	budgetFrac := flag.Float64("budget", 0.5, "Fraction of the tier's frame interval the CPU may use")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Runs log every phase transition; keep only problems
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	tier, err := game.ParseTier(*tierName)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	prof := &baseCfg.Profiles.Full
	if tier == game.TierConstrained {
		prof = &baseCfg.Profiles.Constrained
	}
	budget := time.Duration(*budgetFrac * float64(time.Second) / float64(prof.MaxFPS))

	params := NewParamVector(prof)
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, tier, evalSeeds, *seconds, budget, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			rec := []EvalRecord{{
				Eval:            evalCount,
				Fitness:         fitness,
				CostUs:          evaluator.LastCost().Microseconds(),
				ParticleCount:   int(clamped[0]),
				BackgroundCount: int(clamped[1]),
				TrailLength:     int(clamped[2]),
			}}
			if evalCount == 1 {
				err = gocsv.Marshal(rec, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(rec, logFile)
			}
			if err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: particles=%d background=%d trail=%d cost=%s budget=%s (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, int(clamped[0]), int(clamped[1]), int(clamped[2]),
				evaluator.LastCost(), budget, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential: evaluations are timed
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.2,
		Population:   4 + 3*dim/2,
	}

	fmt.Printf("Tuning %s profile: budget %s per frame, %d evaluations of %d seeds\n",
		tier, budget, *maxEvals, *seeds)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.3f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.0f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	out := &bestCfg.Profiles.Full
	if tier == game.TierConstrained {
		out = &bestCfg.Profiles.Constrained
	}
	params.ApplyToProfile(out, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
