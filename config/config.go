// Package config provides configuration loading and access for the wormhole effect.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all animation, scoring and presentation parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Wormhole  WormholeConfig  `yaml:"wormhole"`
	Motion    MotionConfig    `yaml:"motion"`
	Rotation  RotationConfig  `yaml:"rotation"`
	Timing    TimingConfig    `yaml:"timing"`
	Camera    CameraConfig    `yaml:"camera"`
	Effects   EffectsConfig   `yaml:"effects"`
	Score     ScoreConfig     `yaml:"score"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audio     AudioConfig     `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width             int    `yaml:"width"`
	Height            int    `yaml:"height"`
	Title             string `yaml:"title"`
	RequireFullscreen bool   `yaml:"require_fullscreen"` // Play is refused outside fullscreen
}

// ProfileConfig holds the cost knobs for one device tier.
type ProfileConfig struct {
	ParticleCount    int     `yaml:"particle_count"`
	BackgroundCount  int     `yaml:"background_count"`
	TrailLength      int     `yaml:"trail_length"`
	Glow             bool    `yaml:"glow"`
	MaxFPS           int     `yaml:"max_fps"`
	SkipFrames       int     `yaml:"skip_frames"`       // Execute work every Nth scheduled tick
	BackgroundStride int     `yaml:"background_stride"` // Draw every Nth ambient particle
	RenderStride     int     `yaml:"render_stride"`     // Update/draw every Nth ring particle
	SizeVariance     float64 `yaml:"size_variance"`
}

// ProfilesConfig holds one profile per device tier.
type ProfilesConfig struct {
	Full        ProfileConfig `yaml:"full"`
	Constrained ProfileConfig `yaml:"constrained"`
}

// RGB is an opaque palette entry.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// WormholeConfig holds ring geometry and particle population parameters.
// Lengths are in pixels at screen size factor 1.0.
type WormholeConfig struct {
	RingRadius    float64   `yaml:"ring_radius"`
	RingThickness float64   `yaml:"ring_thickness"`
	RingVariance  float64   `yaml:"ring_variance"` // Target radius scaled by [1-v/2, 1+v/2]
	OverlaySize   float64   `yaml:"overlay_size"`
	OverlayGlow   float64   `yaml:"overlay_glow"`
	SpawnWeights  []float64 `yaml:"spawn_weights"` // ring-edge, grid, spiral, border
	EdgeFactor    float64   `yaml:"edge_factor"`   // Spawn distance as fraction of the larger viewport side
	MaxDelayMs    float64   `yaml:"max_delay_ms"`
	DelayExponent float64   `yaml:"delay_exponent"`
	PathWeights   []float64 `yaml:"path_weights"` // 0, 1, 2, 3 control points
	PathOffset    float64   `yaml:"path_offset"`
	Palette       []RGB     `yaml:"palette"`
	Harmony       bool      `yaml:"harmony"`
	HarmonyShift  int       `yaml:"harmony_shift"`
}

// MotionConfig holds per-particle motion constants. Rates are per nominal frame.
type MotionConfig struct {
	NominalFrameMs    float64 `yaml:"nominal_frame_ms"`
	MaxDeltaTime      float64 `yaml:"max_delta_time"`
	FadeInRate        float64 `yaml:"fade_in_rate"`
	PathRate          float64 `yaml:"path_rate"`
	InPlaceThreshold  float64 `yaml:"in_place_threshold"`
	SnapDistance      float64 `yaml:"snap_distance"`
	StepClamp         float64 `yaml:"step_clamp"`
	JitterChance      float64 `yaml:"jitter_chance"`
	JitterAmplitude   float64 `yaml:"jitter_amplitude"`
	RotationGain      float64 `yaml:"rotation_gain"`
	ShrinkRate        float64 `yaml:"shrink_rate"`
	TrailMinSpeed     float64 `yaml:"trail_min_speed"`
	TrailChanceGain   float64 `yaml:"trail_chance_gain"`
	TrailChanceMax    float64 `yaml:"trail_chance_max"`
	TrailDecay        float64 `yaml:"trail_decay"`
	TrailShrink       float64 `yaml:"trail_shrink"`
	TrailMinOpacity   float64 `yaml:"trail_min_opacity"`
	CompressionEnd    float64 `yaml:"compression_end"`
	CompressionRate   float64 `yaml:"compression_rate"`
	CompressionGrowth float64 `yaml:"compression_growth"`
	ExpansionExponent float64 `yaml:"expansion_exponent"`
	ExpansionScale    float64 `yaml:"expansion_scale"`
	ExpansionFade     float64 `yaml:"expansion_fade"`
	ExpansionShrink   float64 `yaml:"expansion_shrink"`
}

// RotationConfig holds the four-segment rotation speed curve.
// Durations are in seconds; speeds are radians per nominal frame.
type RotationConfig struct {
	InitialDuration      float64 `yaml:"initial_duration"`
	AccelerationDuration float64 `yaml:"acceleration_duration"`
	PulsingDuration      float64 `yaml:"pulsing_duration"`
	FinalDuration        float64 `yaml:"final_duration"`

	BaseSpeed            float64 `yaml:"base_speed"`
	InitialEnd           float64 `yaml:"initial_end"`
	AccelerationEnd      float64 `yaml:"acceleration_end"`
	AccelerationExponent float64 `yaml:"acceleration_exponent"`
	PulsingRise          float64 `yaml:"pulsing_rise"`
	PulseAmplitudeStart  float64 `yaml:"pulse_amplitude_start"`
	PulseAmplitudeEnd    float64 `yaml:"pulse_amplitude_end"`
	PulseFrequencyStart  float64 `yaml:"pulse_frequency_start"`
	PulseFrequencyEnd    float64 `yaml:"pulse_frequency_end"`
	FinalExponent        float64 `yaml:"final_exponent"`
	MaxSpeed             float64 `yaml:"max_speed"`

	// Particle size pulsing during the pulsing segment
	SizePulseFrequencyStart float64 `yaml:"size_pulse_frequency_start"`
	SizePulseFrequencyEnd   float64 `yaml:"size_pulse_frequency_end"`
	SizePulseIntensityStart float64 `yaml:"size_pulse_intensity_start"`
	SizePulseIntensityEnd   float64 `yaml:"size_pulse_intensity_end"`

	DrivenGain    float64 `yaml:"driven_gain"`    // Driven element speed-up per second of rotation
	DrivenCap     float64 `yaml:"driven_cap"`     // Maximum driven element multiplier
	DrivenInitial float64 `yaml:"driven_initial"` // Multiplier applied when the ring forms

	FormationStarted float64 `yaml:"formation_started"` // Fraction of visited particles that must have started
	FormationInPlace float64 `yaml:"formation_in_place"` // Fraction of started particles that must be in place
}

// TimingConfig holds phase timing in milliseconds.
type TimingConfig struct {
	ShrinkDelayMs   float64 `yaml:"shrink_delay_ms"`
	ExplosionMs     float64 `yaml:"explosion_ms"`
	FadeMs          float64 `yaml:"fade_ms"`
	ScoreRevealMs   float64 `yaml:"score_reveal_ms"`
	ResultVisibleMs float64 `yaml:"result_visible_ms"`
	EscapeHintMs    float64 `yaml:"escape_hint_ms"`
}

// CameraConfig holds the orbit rig defaults and the explosion camera move.
type CameraConfig struct {
	StartDepth       float64 `yaml:"start_depth"`
	StartHeight      float64 `yaml:"start_height"`
	Fovy             float64 `yaml:"fovy"`
	MoveMs           float64 `yaml:"move_ms"`
	TargetDepth      float64 `yaml:"target_depth"`
	HeightDrop       float64 `yaml:"height_drop"`
	ScaleGain        float64 `yaml:"scale_gain"`
	BaseOpacity      float64 `yaml:"base_opacity"`
	OpacityDrop      float64 `yaml:"opacity_drop"`
	MinOpacity       float64 `yaml:"min_opacity"`
	SpinGain         float64 `yaml:"spin_gain"`
	OrbitSensitivity float64 `yaml:"orbit_sensitivity"`
	GlobeRadius      float64 `yaml:"globe_radius"`
	GlobeSpin        float64 `yaml:"globe_spin"` // Radians per frame at multiplier 1
	ShellPoints      int     `yaml:"shell_points"`
	ShellSpin        float64 `yaml:"shell_spin"`
}

// EffectsConfig holds flash, shockwave and spark parameters.
type EffectsConfig struct {
	ShrinkFlash          float64 `yaml:"shrink_flash"`
	ExplosionFlash       float64 `yaml:"explosion_flash"`
	FlashDecay           float64 `yaml:"flash_decay"`
	ShockwaveIntensity   float64 `yaml:"shockwave_intensity"`
	ShockwavePropagation float64 `yaml:"shockwave_propagation"`
	ShockwaveWaves       int     `yaml:"shockwave_waves"`
	SparkWindow          float64 `yaml:"spark_window"` // Explosion progress after which sparks stop
	SparkMax             int     `yaml:"spark_max"`
	SparkLife            int     `yaml:"spark_life"` // Frames
	GlowRotationGain     float64 `yaml:"glow_rotation_gain"`
	GlowBase             float64 `yaml:"glow_base"`
	GlowExplosion        float64 `yaml:"glow_explosion"`
	ExplosionStrideAt    float64 `yaml:"explosion_stride_at"` // Render stride doubles past this progress
}

// BandConfig is one linear piece of a score curve: score = Base + (x-From)*Slope.
type BandConfig struct {
	From  float64 `yaml:"from"`
	Base  float64 `yaml:"base"`
	Slope float64 `yaml:"slope"`
}

// CurveConfig maps a ratio or percentage onto a 0-100 score.
// Values at or above FullAt score 100; otherwise the first band whose From
// is <= x applies. Bands must be ordered by descending From.
type CurveConfig struct {
	FullAt float64      `yaml:"full_at"`
	Bands  []BandConfig `yaml:"bands"`
}

// WeightsConfig holds the score component weights.
type WeightsConfig struct {
	Average   float64 `yaml:"average"`
	Minimum   float64 `yaml:"minimum"`
	Stability float64 `yaml:"stability"`
	Time      float64 `yaml:"time"`
}

// GradeConfig maps a minimum score onto a letter grade.
type GradeConfig struct {
	Grade string `yaml:"grade"`
	Min   int    `yaml:"min"`
}

// ScoreConfig holds performance scoring parameters.
type ScoreConfig struct {
	SampleIntervalMs float64       `yaml:"sample_interval_ms"`
	FastMs           float64       `yaml:"fast_ms"`
	StandardMs       float64       `yaml:"standard_ms"`
	SlowMs           float64       `yaml:"slow_ms"`
	FastScore        float64       `yaml:"fast_score"`
	StandardScore    float64       `yaml:"standard_score"`
	SlowScore        float64       `yaml:"slow_score"`
	FloorScore       float64       `yaml:"floor_score"`
	Weights          WeightsConfig `yaml:"weights"`
	AverageCurve     CurveConfig   `yaml:"average_curve"`
	MinimumCurve     CurveConfig   `yaml:"minimum_curve"`
	StabilityCurve   CurveConfig   `yaml:"stability_curve"`
	Grades           []GradeConfig `yaml:"grades"`
	FallbackGrade    string        `yaml:"fallback_grade"`
}

// TelemetryConfig holds FPS metering and perf collection parameters.
type TelemetryConfig struct {
	FPSUpdateMs         float64 `yaml:"fps_update_ms"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// AudioConfig holds the optional sound cues.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled"`
	SampleRate  int     `yaml:"sample_rate"`
	FlashHz     float64 `yaml:"flash_hz"`
	ExplosionHz float64 `yaml:"explosion_hz"`
	ToneMs      float64 `yaml:"tone_ms"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TotalRotationSec float64       // Sum of the four rotation segment durations
	NominalFrame     time.Duration // Motion.NominalFrameMs as a duration
	ShrinkDelay      time.Duration
	Explosion        time.Duration
	Fade             time.Duration
	CameraMove       time.Duration
	SampleInterval   time.Duration
	FPSUpdate        time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	for name, p := range map[string]ProfileConfig{"full": c.Profiles.Full, "constrained": c.Profiles.Constrained} {
		if p.ParticleCount <= 0 {
			return fmt.Errorf("profile %s: particle_count must be positive", name)
		}
		if p.MaxFPS <= 0 {
			return fmt.Errorf("profile %s: max_fps must be positive", name)
		}
	}
	if len(c.Wormhole.SpawnWeights) != 4 {
		return fmt.Errorf("wormhole: spawn_weights needs 4 entries, got %d", len(c.Wormhole.SpawnWeights))
	}
	if len(c.Wormhole.PathWeights) != 4 {
		return fmt.Errorf("wormhole: path_weights needs 4 entries, got %d", len(c.Wormhole.PathWeights))
	}
	if len(c.Wormhole.Palette) == 0 {
		return fmt.Errorf("wormhole: palette is empty")
	}
	s := c.Score
	if !(s.FastMs < s.StandardMs && s.StandardMs < s.SlowMs) {
		return fmt.Errorf("score: reference times must be increasing (fast %v, standard %v, slow %v)",
			s.FastMs, s.StandardMs, s.SlowMs)
	}
	for name, curve := range map[string]CurveConfig{
		"average_curve":   s.AverageCurve,
		"minimum_curve":   s.MinimumCurve,
		"stability_curve": s.StabilityCurve,
	} {
		for i := 1; i < len(curve.Bands); i++ {
			if curve.Bands[i].From >= curve.Bands[i-1].From {
				return fmt.Errorf("score %s: bands must be ordered by descending from", name)
			}
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	r := c.Rotation
	c.Derived.TotalRotationSec = r.InitialDuration + r.AccelerationDuration + r.PulsingDuration + r.FinalDuration

	c.Derived.NominalFrame = msDuration(c.Motion.NominalFrameMs)
	c.Derived.ShrinkDelay = msDuration(c.Timing.ShrinkDelayMs)
	c.Derived.Explosion = msDuration(c.Timing.ExplosionMs)
	c.Derived.Fade = msDuration(c.Timing.FadeMs)
	c.Derived.CameraMove = msDuration(c.Camera.MoveMs)
	c.Derived.SampleInterval = msDuration(c.Score.SampleIntervalMs)
	c.Derived.FPSUpdate = msDuration(c.Telemetry.FPSUpdateMs)

	// Strides and skips of zero mean "every tick"
	for _, p := range []*ProfileConfig{&c.Profiles.Full, &c.Profiles.Constrained} {
		if p.SkipFrames < 1 {
			p.SkipFrames = 1
		}
		if p.BackgroundStride < 1 {
			p.BackgroundStride = 1
		}
		if p.RenderStride < 1 {
			p.RenderStride = 1
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
