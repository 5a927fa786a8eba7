package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/wormhole/config"
)

func TestOutputManager_DisabledIsNil(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	// Nil receiver is a no-op
	if err := om.WriteRun(RunRecord{}, nil); err != nil {
		t.Errorf("nil WriteRun: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManager_RunsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	s := newTestScorer(t, 60)
	samples := []Sample{{1, 58}, {2, 60}, {3, 59}}
	res, err := s.Score(samples, 28*time.Second)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for id := 1; id <= 2; id++ {
		if err := om.WriteRun(NewRunRecord(id, "full", 400, res), res.Samples); err != nil {
			t.Fatalf("WriteRun %d: %v", id, err)
		}
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	runs, err := ReadRuns(filepath.Join(dir, "runs.csv"))
	if err != nil {
		t.Fatalf("ReadRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].RunID != 2 || runs[1].Score != res.Score || runs[1].Grade != res.Grade {
		t.Errorf("second run mismatch: %+v", runs[1])
	}
	if runs[0].TotalMs != 28000 {
		t.Errorf("total ms = %d, want 28000", runs[0].TotalMs)
	}

	byRun, err := ReadSamples(filepath.Join(dir, "samples.csv"))
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	if len(byRun) != 2 || len(byRun[1]) != 3 || len(byRun[2]) != 3 {
		t.Errorf("unexpected sample grouping: %v", byRun)
	}
	if byRun[2][1].FPS != 60 {
		t.Errorf("sample fps = %v, want 60", byRun[2][1].FPS)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.yaml"))
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var sum runSummary
	if err := yaml.Unmarshal(data, &sum); err != nil {
		t.Fatalf("parsing summary: %v", err)
	}
	if sum.Runs != 2 || sum.BestScore != res.Score {
		t.Errorf("summary = %+v", sum)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
