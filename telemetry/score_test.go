package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/wormhole/config"
)

func testScoreConfig(t *testing.T) config.ScoreConfig {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg.Score
}

func newTestScorer(t *testing.T, target float64) *Scorer {
	t.Helper()
	s, err := NewScorer(testScoreConfig(t), target)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	return s
}

func TestScorer_ExampleRun(t *testing.T) {
	s := newTestScorer(t, 60)
	start := time.Unix(1000, 0)
	fps := []float64{58, 59, 60, 60, 59, 58, 60, 60, 59, 60}

	s.Start(start)
	for i, v := range fps {
		s.Record(start.Add(time.Duration(i+1)*time.Second), v)
	}
	if s.SampleCount() != len(fps) {
		t.Fatalf("expected %d samples, got %d", len(fps), s.SampleCount())
	}

	res, ok := s.Stop(start.Add(28 * time.Second))
	if !ok {
		t.Fatal("expected run to be scored")
	}
	if math.Abs(res.AverageFPS-59.3) > 0.001 {
		t.Errorf("average fps = %v, want 59.3", res.AverageFPS)
	}
	if res.MinFPS != 58 {
		t.Errorf("min fps = %v, want 58", res.MinFPS)
	}
	if res.Stability <= 98 {
		t.Errorf("stability = %v, want > 98", res.Stability)
	}
	if res.Components.Time != 100 {
		t.Errorf("time score = %v, want 100", res.Components.Time)
	}
	if res.Score < 90 || res.Grade != "S" {
		t.Errorf("score %d grade %s, want 90s and S", res.Score, res.Grade)
	}
	if res.TotalTime != 28*time.Second {
		t.Errorf("total time = %v, want 28s", res.TotalTime)
	}
	if res.Rating != RatingExcellent {
		t.Errorf("rating = %v, want excellent", res.Rating)
	}
	if s.Active() {
		t.Error("scorer should be inactive after stop")
	}
}

func TestScorer_StopWithoutSamples(t *testing.T) {
	s := newTestScorer(t, 60)
	start := time.Unix(0, 0)

	if _, ok := s.Stop(start); ok {
		t.Error("stop before start should not score")
	}

	s.Start(start)
	// Within the first interval: no sample yet
	s.Record(start.Add(500*time.Millisecond), 60)
	if _, ok := s.Stop(start.Add(time.Second)); ok {
		t.Error("stop with zero samples should not score")
	}
}

func TestScorer_StopIdempotent(t *testing.T) {
	s := newTestScorer(t, 60)
	start := time.Unix(0, 0)
	s.Start(start)
	s.Record(start.Add(time.Second), 60)

	if _, ok := s.Stop(start.Add(2 * time.Second)); !ok {
		t.Fatal("first stop should score")
	}
	if _, ok := s.Stop(start.Add(3 * time.Second)); ok {
		t.Error("second stop should be a no-op")
	}
}

func TestScorer_RecordRateLimited(t *testing.T) {
	s := newTestScorer(t, 60)
	start := time.Unix(0, 0)
	s.Start(start)

	// 10 seconds of frames at 60 Hz
	for i := 1; i <= 600; i++ {
		s.Record(start.Add(time.Duration(i)*time.Second/60), 60)
	}
	if s.SampleCount() != 10 {
		t.Errorf("expected one sample per second (10), got %d", s.SampleCount())
	}
}

func TestScorer_Cancel(t *testing.T) {
	s := newTestScorer(t, 60)
	start := time.Unix(0, 0)
	s.Start(start)
	s.Record(start.Add(time.Second), 60)

	s.Cancel()

	if s.Active() {
		t.Error("scorer should be inactive after cancel")
	}
	if _, ok := s.Stop(start.Add(2 * time.Second)); ok {
		t.Error("stop after cancel should not score")
	}
	s.Record(start.Add(3*time.Second), 60)
	if s.SampleCount() != 0 {
		t.Error("record after cancel should be ignored")
	}
}

func TestTimeScore(t *testing.T) {
	s := newTestScorer(t, 60)
	tests := []struct {
		name string
		ms   int
		want float64
	}{
		{"well under fast", 10000, 100},
		{"at fast", 30000, 100},
		{"between fast and standard", 35000, 90},
		{"at standard", 40000, 80},
		{"between standard and slow", 45000, 70},
		{"at slow", 50000, 60},
		{"past slow", 75000, 50},
		{"floor", 100000, 40},
		{"beyond floor", 500000, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.TimeScore(time.Duration(tt.ms) * time.Millisecond)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TimeScore(%dms) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestCurveScore(t *testing.T) {
	cfg := testScoreConfig(t)
	tests := []struct {
		name  string
		x     float64
		curve config.CurveConfig
		want  float64
	}{
		{"average full", 0.95, cfg.AverageCurve, 100},
		{"average upper band", 0.8, cfg.AverageCurve, 95},
		{"average middle band", 0.6, cfg.AverageCurve, 82.5},
		{"average lower band", 0.4, cfg.AverageCurve, 62.5},
		{"average bottom", 0.15, cfg.AverageCurve, 25.0005},
		{"minimum full", 0.7, cfg.MinimumCurve, 100},
		{"minimum upper band", 0.6, cfg.MinimumCurve, 95},
		{"minimum middle band", 0.4, cfg.MinimumCurve, 80},
		{"minimum bottom", 0, cfg.MinimumCurve, 0},
		{"stability full", 90, cfg.StabilityCurve, 100},
		{"stability upper band", 70, cfg.StabilityCurve, 90},
		{"stability middle band", 60, cfg.StabilityCurve, 82.5},
		{"stability raw", 40, cfg.StabilityCurve, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurveScore(tt.x, tt.curve)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("CurveScore(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	cfg := testScoreConfig(t)
	tests := []struct {
		score int
		want  string
	}{
		{100, "S"}, {90, "S"}, {89, "A"}, {80, "A"}, {79, "B"},
		{70, "B"}, {65, "C"}, {60, "C"}, {59, "D"}, {40, "D"}, {39, "E"}, {0, "E"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score, cfg); got != tt.want {
			t.Errorf("Grade(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRate(t *testing.T) {
	cfg := testScoreConfig(t)
	tests := []struct {
		ms   int
		want TimeRating
	}{
		{20000, RatingBlazing},
		{29000, RatingExcellent},
		{39000, RatingGood},
		{49000, RatingPassing},
		{59000, RatingSlow},
		{61000, RatingSluggish},
	}
	for _, tt := range tests {
		if got := Rate(time.Duration(tt.ms)*time.Millisecond, cfg); got != tt.want {
			t.Errorf("Rate(%dms) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestScore_LowFrameRate(t *testing.T) {
	s := newTestScorer(t, 120)
	samples := []Sample{{1, 30}, {2, 25}, {3, 35}, {4, 30}}

	res, err := s.Score(samples, 45*time.Second)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score >= 90 {
		t.Errorf("a quarter of target should not score in the 90s, got %d", res.Score)
	}
	if res.Score < 0 || res.Score > 100 {
		t.Errorf("score %d outside 0-100", res.Score)
	}

	if _, err := s.Score(nil, time.Second); err == nil {
		t.Error("expected error scoring no samples")
	}
}
