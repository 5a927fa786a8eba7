package components

// Position represents an ambient particle's surface position.
type Position struct {
	X, Y float32
}

// Ambient holds the drifting state of a background particle.
type Ambient struct {
	Size      float32
	BaseSize  float32
	Alpha     float32
	BaseAlpha float32
	Speed     float32
	Pulse     float32 // Per-particle breathing rate factor
	Color     Color
}
