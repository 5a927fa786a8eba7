package components

import "time"

// SpawnKind identifies where a ring particle enters the viewport from.
type SpawnKind uint8

const (
	SpawnRingEdge SpawnKind = iota // Outside a ring around the center
	SpawnGrid                      // Anywhere in the viewport
	SpawnSpiral                    // Along a loose spiral
	SpawnBorder                    // On one of the four viewport edges
)

// String returns the spawn kind name.
func (k SpawnKind) String() string {
	switch k {
	case SpawnRingEdge:
		return "ring_edge"
	case SpawnGrid:
		return "grid"
	case SpawnSpiral:
		return "spiral"
	case SpawnBorder:
		return "border"
	default:
		return "unknown"
	}
}

// TrailPoint is one fading afterimage left behind a fast particle.
type TrailPoint struct {
	X, Y    float32
	Size    float32
	Opacity float32
}

// Particle is a foreground ring particle. Positions are in surface pixels
// and angles in radians.
type Particle struct {
	X, Y             float32
	StartX, StartY   float32
	TargetX, TargetY float32

	// Polar coordinates around the wormhole center once in place.
	Angle  float32
	Radius float32
	Depth  float32 // Pseudo-depth in [-0.15, 0.15], scales radius and size

	Size       float32
	BaseSize   float32
	VisualSize float32 // Size after depth and pulse, used for drawing

	Color       Color
	Alpha       float32
	TargetAlpha float32

	Speed            float32 // Angular speed factor
	ConvergenceSpeed float32
	PulseFactor      float32 // Phase offset for the size pulse

	StartAt time.Time
	Started bool
	InPlace bool

	Spawn         SpawnKind
	ControlPoints []Point
	PathProgress  float32

	Trail []TrailPoint
}
