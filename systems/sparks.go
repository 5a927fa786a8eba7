package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/wormhole/components"
)

// Spark is a short-lived point thrown off the shockwave front.
type Spark struct {
	X, Y       float32
	VelX, VelY float32
	Life       int32
	MaxLife    int32
	Size       float32
	Color      components.Color
}

// SparkSystem manages explosion sparks.
type SparkSystem struct {
	Sparks    []Spark
	maxSparks int
}

// NewSparkSystem creates a new spark system.
func NewSparkSystem() *SparkSystem {
	return &SparkSystem{
		Sparks:    make([]Spark, 0, 256),
		maxSparks: 256,
	}
}

// sparkColors are picked by weight: white, violet, cyan, magenta.
var sparkColors = []components.Color{
	components.White,
	{R: 180, G: 100, B: 255, A: 1},
	{R: 100, G: 200, B: 255, A: 1},
	{R: 220, G: 120, B: 255, A: 1},
}

var sparkWeights = []float64{0.3, 0.3, 0.25, 0.15}

// Update ages all sparks and drops the expired ones.
func (s *SparkSystem) Update(dt float32) {
	alive := 0
	for i := range s.Sparks {
		p := &s.Sparks[i]

		p.Life--
		if p.Life <= 0 {
			continue
		}

		// Drag
		p.VelX *= 0.92
		p.VelY *= 0.92

		p.X += p.VelX * dt
		p.Y += p.VelY * dt

		s.Sparks[alive] = s.Sparks[i]
		alive++
	}
	s.Sparks = s.Sparks[:alive]
}

// EmitRing throws sparks around the shockwave front. The count tapers off over
// the second half of the window; progress past the window emits nothing.
func (s *SparkSystem) EmitRing(rng *rand.Rand, cx, cy, radius, progress, window float32, maxCount, life int) {
	if progress >= window || life <= 0 {
		return
	}
	half := window / 2
	mult := float32(1)
	if progress >= half {
		mult = 1 - (progress-half)/half
	}
	count := int(float32(maxCount) * mult)
	alpha := clamp01(1 - progress*1.5)

	for i := 0; i < count && len(s.Sparks) < s.maxSparks; i++ {
		a := rng.Float32() * 2 * math.Pi
		d := radius * (0.9 + rng.Float32()*0.2)
		speed := 0.5 + rng.Float32()
		s.Sparks = append(s.Sparks, Spark{
			X:       cx + cosf(a)*d,
			Y:       cy + sinf(a)*d,
			VelX:    cosf(a) * speed,
			VelY:    sinf(a) * speed,
			Life:    int32(life),
			MaxLife: int32(life),
			Size:    log10f(rng.Float32()*10+2) * 6 * (1 - progress*0.5),
			Color:   sparkColors[pickWeighted(rng.Float64(), sparkWeights)].WithAlpha(alpha),
		})
	}
}

// Count returns the current number of active sparks.
func (s *SparkSystem) Count() int {
	return len(s.Sparks)
}
