// Command scorecalc re-scores recorded runs with the current config's curves
// and weights, printing the recorded and recomputed scores side by side.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Config YAML whose score section is applied (empty = use defaults)")
	dir := flag.String("dir", "", "Output directory holding runs.csv and samples.csv")
	target := flag.Float64("target-fps", 0, "Target frame rate (0 = each run's recorded target)")
	flag.Parse()

	if *dir == "" {
		log.Fatal("--dir is required")
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	runs, err := telemetry.ReadRuns(filepath.Join(*dir, "runs.csv"))
	if err != nil {
		log.Fatal(err)
	}
	samples, err := telemetry.ReadSamples(filepath.Join(*dir, "samples.csv"))
	if err != nil {
		log.Fatal(err)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID < runs[j].RunID })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tPROFILE\tSAMPLES\tRECORDED\tRESCORED\tDELTA\tGRADE\tTIME")
	for _, run := range runs {
		result, err := rescore(cfg, run, samples[run.RunID], *target)
		if err != nil {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t-\t-\t-\t%s\n",
				run.RunID, run.Profile, len(samples[run.RunID]), run.Score, err)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%+d\t%s\t%s\n",
			run.RunID, run.Profile, len(samples[run.RunID]), run.Score,
			result.Score, result.Score-run.Score, result.Grade, result.Rating)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

// rescore recomputes one run. Its completion time is the recorded total.
func rescore(cfg *config.Config, run telemetry.RunRecord, samples []telemetry.Sample, target float64) (telemetry.ScoreResult, error) {
	if target <= 0 {
		target = run.TargetFPS
	}
	scorer, err := telemetry.NewScorer(cfg.Score, target)
	if err != nil {
		return telemetry.ScoreResult{}, fmt.Errorf("building scorer: %w", err)
	}
	return scorer.Score(samples, time.Duration(run.TotalMs)*time.Millisecond)
}
