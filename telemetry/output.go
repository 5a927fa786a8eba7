package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/wormhole/config"
)

// RunRecord is one scored run in runs.csv.
type RunRecord struct {
	RunID          int     `csv:"run_id" yaml:"run_id"`
	Profile        string  `csv:"profile" yaml:"profile"`
	Particles      int     `csv:"particles" yaml:"particles"`
	TargetFPS      float64 `csv:"target_fps" yaml:"target_fps"`
	TotalMs        int64   `csv:"total_ms" yaml:"total_ms"`
	AverageFPS     float64 `csv:"average_fps" yaml:"average_fps"`
	MinFPS         float64 `csv:"min_fps" yaml:"min_fps"`
	MaxFPS         float64 `csv:"max_fps" yaml:"max_fps"`
	Stability      float64 `csv:"stability" yaml:"stability"`
	AverageScore   float64 `csv:"average_score" yaml:"average_score"`
	MinimumScore   float64 `csv:"minimum_score" yaml:"minimum_score"`
	StabilityScore float64 `csv:"stability_score" yaml:"stability_score"`
	TimeScore      float64 `csv:"time_score" yaml:"time_score"`
	Score          int     `csv:"score" yaml:"score"`
	Grade          string  `csv:"grade" yaml:"grade"`
	TimeRating     string  `csv:"time_rating" yaml:"time_rating"`
}

// SampleRecord is one frame rate sample in samples.csv.
type SampleRecord struct {
	RunID      int     `csv:"run_id"`
	ElapsedSec float64 `csv:"elapsed_sec"`
	FPS        float64 `csv:"fps"`
}

// NewRunRecord flattens a score result for export.
func NewRunRecord(runID int, profile string, particles int, r ScoreResult) RunRecord {
	return RunRecord{
		RunID:          runID,
		Profile:        profile,
		Particles:      particles,
		TargetFPS:      r.TargetFPS,
		TotalMs:        r.TotalTime.Milliseconds(),
		AverageFPS:     r.AverageFPS,
		MinFPS:         r.MinFPS,
		MaxFPS:         r.MaxFPS,
		Stability:      r.Stability,
		AverageScore:   r.Components.Average,
		MinimumScore:   r.Components.Minimum,
		StabilityScore: r.Components.Stability,
		TimeScore:      r.Components.Time,
		Score:          r.Score,
		Grade:          r.Grade,
		TimeRating:     r.Rating.String(),
	}
}

// OutputManager writes scored runs to CSV files and a YAML summary.
type OutputManager struct {
	dir         string
	runsFile    *os.File
	samplesFile *os.File

	// Track if headers have been written
	runsHeaderWritten    bool
	samplesHeaderWritten bool

	runs []RunRecord
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating runs.csv: %w", err)
	}
	om.runsFile = f

	f, err = os.Create(filepath.Join(dir, "samples.csv"))
	if err != nil {
		om.runsFile.Close()
		return nil, fmt.Errorf("creating samples.csv: %w", err)
	}
	om.samplesFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteRun appends a run to runs.csv, its samples to samples.csv and
// rewrites summary.yaml.
func (om *OutputManager) WriteRun(rec RunRecord, samples []Sample) error {
	if om == nil {
		return nil
	}

	runs := []RunRecord{rec}
	if !om.runsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(runs, om.runsFile); err != nil {
			return fmt.Errorf("writing run: %w", err)
		}
		om.runsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(runs, om.runsFile); err != nil {
			return fmt.Errorf("writing run: %w", err)
		}
	}

	records := make([]SampleRecord, len(samples))
	for i, s := range samples {
		records[i] = SampleRecord{RunID: rec.RunID, ElapsedSec: s.ElapsedSec, FPS: s.FPS}
	}
	if len(records) > 0 {
		if !om.samplesHeaderWritten {
			if err := gocsv.Marshal(records, om.samplesFile); err != nil {
				return fmt.Errorf("writing samples: %w", err)
			}
			om.samplesHeaderWritten = true
		} else {
			if err := gocsv.MarshalWithoutHeaders(records, om.samplesFile); err != nil {
				return fmt.Errorf("writing samples: %w", err)
			}
		}
	}

	om.runs = append(om.runs, rec)
	return om.writeSummary()
}

// runSummary is the layout of summary.yaml.
type runSummary struct {
	Runs      int         `yaml:"runs"`
	BestScore int         `yaml:"best_score"`
	Results   []RunRecord `yaml:"results"`
}

func (om *OutputManager) writeSummary() error {
	sum := runSummary{Runs: len(om.runs), Results: om.runs}
	for _, r := range om.runs {
		if r.Score > sum.BestScore {
			sum.BestScore = r.Score
		}
	}
	data, err := yaml.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "summary.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing summary.yaml: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.runsFile != nil {
		if err := om.runsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.samplesFile != nil {
		if err := om.samplesFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadSamples loads samples.csv grouped by run id.
func ReadSamples(path string) (map[int][]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening samples: %w", err)
	}
	defer f.Close()

	var records []SampleRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parsing samples: %w", err)
	}
	out := make(map[int][]Sample)
	for _, r := range records {
		out[r.RunID] = append(out[r.RunID], Sample{ElapsedSec: r.ElapsedSec, FPS: r.FPS})
	}
	return out, nil
}

// ReadRuns loads runs.csv.
func ReadRuns(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening runs: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parsing runs: %w", err)
	}
	return records, nil
}
