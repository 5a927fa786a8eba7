// Package main provides CMA-ES tuning of a device tier's performance profile:
// the richest particle population whose measured frame cost fits the tier's
// frame budget on this machine.
package main

import (
	"math"

	"github.com/pthm-cable/wormhole/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Weight  float64 // Contribution to visual density per unit of range
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the profile parameters for a tier, defaulting to
// its current values.
func NewParamVector(p *config.ProfileConfig) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "particle_count", Path: "particle_count", Min: 50, Max: 1500, Default: float64(p.ParticleCount), Weight: 1.0},
			{Name: "background_count", Path: "background_count", Min: 0, Max: 800, Default: float64(p.BackgroundCount), Weight: 0.3},
			{Name: "trail_length", Path: "trail_length", Min: 0, Max: 12, Default: float64(p.TrailLength), Weight: 0.4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and rounds them to whole counts.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Round(math.Max(spec.Min, math.Min(spec.Max, v[i])))
	}
	return clamped
}

// Density scores how rich a parameter set looks, in [0, 1].
func (pv *ParamVector) Density(values []float64) float64 {
	clamped := pv.Clamp(values)
	var sum, total float64
	for i, spec := range pv.Specs {
		sum += spec.Weight * (clamped[i] - spec.Min) / (spec.Max - spec.Min)
		total += spec.Weight
	}
	return sum / total
}

// ApplyToProfile writes parameter values into a profile.
// Order must match Specs order.
func (pv *ParamVector) ApplyToProfile(p *config.ProfileConfig, values []float64) {
	clamped := pv.Clamp(values)
	p.ParticleCount = int(clamped[0])
	p.BackgroundCount = int(clamped[1])
	p.TrailLength = int(clamped[2])
}
