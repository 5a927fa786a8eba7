package game

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/pthm-cable/wormhole/config"
)

// DeviceTier is a coarse classification of the host's rendering budget.
type DeviceTier uint8

const (
	TierFull DeviceTier = iota
	TierConstrained
)

func (t DeviceTier) String() string {
	if t == TierConstrained {
		return "constrained"
	}
	return "full"
}

// ParseTier parses a tier name. "auto" and "" detect the tier from the host.
func ParseTier(s string) (DeviceTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectTier(), nil
	case "full":
		return TierFull, nil
	case "constrained":
		return TierConstrained, nil
	}
	return TierFull, fmt.Errorf("unknown device tier %q (want full, constrained or auto)", s)
}

// DetectTier classifies the host by CPU count.
func DetectTier() DeviceTier {
	if runtime.NumCPU() < 4 {
		return TierConstrained
	}
	return TierFull
}

// PerformanceProfile is every cost knob of a run, resolved once when the run
// starts from the device tier and viewport width.
type PerformanceProfile struct {
	Tier             DeviceTier
	ParticleCount    int
	BackgroundCount  int
	TrailLength      int
	Glow             bool
	MaxFPS           int
	SkipFrames       int
	BackgroundStride int
	RenderStride     int
	SizeVariance     float32
	ScreenFactor     float32 // Scales ring radius, thickness and overlay size
}

// ResolveProfile builds the profile for a tier and viewport width.
func ResolveProfile(cfg *config.Config, tier DeviceTier, width float32) PerformanceProfile {
	pc := cfg.Profiles.Full
	if tier == TierConstrained {
		pc = cfg.Profiles.Constrained
	}
	return PerformanceProfile{
		Tier:             tier,
		ParticleCount:    pc.ParticleCount,
		BackgroundCount:  pc.BackgroundCount,
		TrailLength:      pc.TrailLength,
		Glow:             pc.Glow,
		MaxFPS:           pc.MaxFPS,
		SkipFrames:       pc.SkipFrames,
		BackgroundStride: pc.BackgroundStride,
		RenderStride:     pc.RenderStride,
		SizeVariance:     float32(pc.SizeVariance),
		ScreenFactor:     ScreenFactor(width),
	}
}

// ScreenFactor shrinks the effect on narrow viewports.
func ScreenFactor(width float32) float32 {
	switch {
	case width <= 375:
		return 0.6
	case width <= 480:
		return 0.7
	case width <= 768:
		return 0.8
	case width <= 1024:
		return 0.9
	default:
		return 1
	}
}

// LogValue implements slog.LogValuer.
func (p PerformanceProfile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("tier", p.Tier.String()),
		slog.Int("particles", p.ParticleCount),
		slog.Int("background", p.BackgroundCount),
		slog.Int("trail_length", p.TrailLength),
		slog.Bool("glow", p.Glow),
		slog.Int("max_fps", p.MaxFPS),
		slog.Int("skip_frames", p.SkipFrames),
		slog.Float64("screen_factor", float64(p.ScreenFactor)),
	)
}
