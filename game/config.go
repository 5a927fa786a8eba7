package game

import (
	"math/rand"

	"github.com/pthm-cable/wormhole/audio"
	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/renderer"
)

// Options holds configuration for game initialization.
type Options struct {
	Config    *config.Config
	Tier      DeviceTier
	Seed      int64
	OutputDir string // Empty disables CSV output
	Width     float32
	Height    float32

	Camera camera.Handle

	// NewSurface creates the drawing surface for one run. Each run gets its
	// own surface and closes it on teardown.
	NewSurface func(w, h int) (renderer.Surface, error)

	// Approved reports whether the display is in the mode play requires.
	// Nil means always approved.
	Approved func() bool

	Cues *audio.Cues // May be nil
}

// CameraDefaults returns the rig defaults from the camera config.
func CameraDefaults(cc *config.CameraConfig) camera.Defaults {
	return camera.Defaults{
		Depth:       float32(cc.StartDepth),
		Height:      float32(cc.StartHeight),
		Opacity:     float32(cc.BaseOpacity),
		Fovy:        float32(cc.Fovy),
		Sensitivity: float32(cc.OrbitSensitivity),
	}
}

// newRand returns a seeded source; seed 0 is a valid seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
