package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of a run's frame rate samples.
type Summary struct {
	Mean      float64
	Min       float64
	Max       float64
	StdDev    float64 // Population standard deviation
	P10       float64
	Stability float64 // 100 - coefficient of variation in percent, floored at 0
}

// Summarize computes frame rate statistics. Returns a zero Summary for no values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Mean:   mean,
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		StdDev: std,
		P10:    Percentile(sorted, 0.10),
	}
	if mean > 0 {
		s.Stability = 100 - std/mean*100
		if s.Stability < 0 {
			s.Stability = 0
		}
	}
	return s
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", s.Mean),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("std_dev", s.StdDev),
		slog.Float64("p10", s.P10),
		slog.Float64("stability", s.Stability),
	)
}
