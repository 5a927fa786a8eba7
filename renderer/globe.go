package renderer

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
)

// Globe renders the wireframe sphere and its point shell, viewed through a
// camera rig. The rig's scale, opacity and spin multiplier drive the sphere.
type Globe struct {
	rig        *camera.Rig
	radius     float32
	spin       float32 // Radians per frame at multiplier 1
	shellSpin  float32
	angle      float32
	shellAngle float32
	shell      []rl.Vector3

	Color      rl.Color
	WireColor  rl.Color
	ShellColor rl.Color
}

// NewGlobe creates a globe and scatters its shell points.
func NewGlobe(rig *camera.Rig, cc *config.CameraConfig, rng *rand.Rand) *Globe {
	r := float32(cc.GlobeRadius)
	return &Globe{
		rig:        rig,
		radius:     r,
		spin:       float32(cc.GlobeSpin),
		shellSpin:  float32(cc.ShellSpin),
		shell:      ShellPoints(rng, cc.ShellPoints, r*1.25, r*1.5),
		Color:      rl.NewColor(40, 60, 140, 255),
		WireColor:  rl.NewColor(120, 160, 255, 255),
		ShellColor: rl.NewColor(200, 200, 255, 255),
	}
}

// ShellPoints scatters n points uniformly over directions at distances in
// [rmin, rmax] from the origin.
func ShellPoints(rng *rand.Rand, n int, rmin, rmax float32) []rl.Vector3 {
	pts := make([]rl.Vector3, n)
	for i := range pts {
		// Uniform direction from z and azimuth
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * math.Pi
		s := math.Sqrt(1 - z*z)
		d := float64(rmin + rng.Float32()*(rmax-rmin))
		pts[i] = rl.NewVector3(float32(s*math.Cos(phi)*d), float32(z*d), float32(s*math.Sin(phi)*d))
	}
	return pts
}

// Update spins the globe and shell by dt nominal frames.
func (g *Globe) Update(dt float32) {
	g.angle += g.spin * g.rig.Spin() * dt
	g.shellAngle += g.shellSpin * dt
}

// Camera returns the raylib camera for the rig's current pose.
func (g *Globe) Camera() rl.Camera3D {
	ex, ey, ez := g.rig.Eye()
	tx, ty, tz := g.rig.Target()
	return rl.NewCamera3D(
		rl.NewVector3(ex, ey, ez),
		rl.NewVector3(tx, ty, tz),
		rl.NewVector3(0, 1, 0),
		g.rig.Fovy(),
		rl.CameraPerspective,
	)
}

// Draw renders the globe in 3D mode.
func (g *Globe) Draw() {
	opacity := g.rig.Opacity()
	scale := g.rig.Scale()

	rl.BeginMode3D(g.Camera())

	rl.PushMatrix()
	rl.Rotatef(g.angle*rl.Rad2deg, 0, 1, 0)
	rl.Scalef(scale, scale, scale)
	rl.DrawSphereEx(rl.Vector3{}, g.radius, 24, 24, rl.Fade(g.Color, opacity))
	rl.DrawSphereWires(rl.Vector3{}, g.radius*1.001, 16, 16, rl.Fade(g.WireColor, opacity*0.5))
	rl.PopMatrix()

	rl.PushMatrix()
	rl.Rotatef(g.shellAngle*rl.Rad2deg, 0, 1, 0)
	shell := rl.Fade(g.ShellColor, opacity*0.7)
	for _, p := range g.shell {
		rl.DrawPoint3D(p, shell)
	}
	rl.PopMatrix()

	rl.EndMode3D()
}

// Hit reports whether the screen position lies over the globe.
func (g *Globe) Hit(pos rl.Vector2) bool {
	ray := rl.GetScreenToWorldRay(pos, g.Camera())
	return rl.GetRayCollisionSphere(ray, rl.Vector3{}, g.radius*g.rig.Scale()).Hit
}

// Reset returns the globe to its initial orientation.
func (g *Globe) Reset() {
	g.angle = 0
	g.shellAngle = 0
}
