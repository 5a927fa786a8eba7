package ui

import (
	"fmt"

	"github.com/charmbracelet/harmonica"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// FPSLabel formats the frame rate readout.
func FPSLabel(fps, maxFPS int) string {
	return fmt.Sprintf("FPS: %d (max %d)", fps, maxFPS)
}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	FPS          int
	MaxFPS       int
	Profile      string
	Phase        string
	Idle         bool // No run active; the start prompt is shown
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the frame rate readout, the FPS gauge and the start prompt.
// The readout shows the meter value as-is; only the gauge is smoothed.
type HUD struct {
	renderer *Renderer
	spring   harmonica.Spring
	gauge    float64
	vel      float64
}

// NewHUD creates a HUD whose gauge spring is stepped at fps updates per second.
func NewHUD(fps int) *HUD {
	if fps <= 0 {
		fps = 60
	}
	return &HUD{
		renderer: NewRenderer(),
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update steps the gauge toward fps/maxFPS and returns its position.
func (h *HUD) Update(fps, maxFPS int) float64 {
	target := 0.0
	if maxFPS > 0 {
		target = float64(fps) / float64(maxFPS)
	}
	h.gauge, h.vel = h.spring.Update(h.gauge, h.vel, target)
	return h.gauge
}

// Gauge returns the smoothed frame rate ratio.
func (h *HUD) Gauge() float64 {
	return h.gauge
}

// Draw renders the HUD. Returns true when the start button was clicked.
func (h *HUD) Draw(data HUDData) bool {
	th := h.renderer.Theme

	rl.DrawText(FPSLabel(data.FPS, data.MaxFPS), 10, 10, th.FontSize, th.ValueColor)

	gauge := float32(h.gauge)
	if gauge < 0 {
		gauge = 0
	}
	if gauge > 1 {
		gauge = 1
	}
	rl.DrawRectangle(10, 32, 160, 4, th.BarBg)
	rl.DrawRectangle(10, 32, int32(160*gauge), 4, th.RatioColor(gauge))

	status := data.Profile
	if data.Phase != "" {
		status += " | " + data.Phase
	}
	rl.DrawText(status, 10, 42, th.FontSize-4, th.HintColor)

	if !data.Idle {
		return false
	}
	cx := data.ScreenWidth / 2
	h.renderer.DrawCentered("Click the globe to open the wormhole", cx, data.ScreenHeight-110, th.FontSize+2, th.HintColor)
	return h.renderer.Button(float32(cx-70), float32(data.ScreenHeight-80), 140, 36, "Start")
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
