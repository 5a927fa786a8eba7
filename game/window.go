package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/renderer"
	"github.com/pthm-cable/wormhole/ui"
)

// clickSlop is how far, in pixels, a press may drag and still count as a click.
const clickSlop = 4

// OpenWindow initializes the raylib window. Escape is handled as reset, so it
// is unbound as the exit key.
func OpenWindow(cfg *config.Config) {
	rl.SetConfigFlags(rl.FlagVsyncHint | rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	rl.SetExitKey(0)
}

// Window is the raylib frontend: the globe scene, the run's surface
// composited over it and the UI on top.
type Window struct {
	g     *Game
	cfg   *config.Config
	rig   *camera.Rig
	globe *renderer.Globe
	hud   *ui.HUD
	ui    *ui.Renderer

	surface *renderer.RaylibSurface // Current run's surface

	press   rl.Vector2
	dragged float32
}

// NewWindow builds the game for an open window. opts.Camera, NewSurface,
// Approved and the viewport are filled in here.
func NewWindow(cfg *config.Config, opts Options) (*Window, error) {
	w := &Window{
		cfg: cfg,
		rig: camera.New(CameraDefaults(&cfg.Camera)),
		ui:  ui.NewRenderer(),
	}
	w.globe = renderer.NewGlobe(w.rig, &cfg.Camera, newRand(opts.Seed+1))

	opts.Config = cfg
	opts.Camera = w.rig
	opts.Width = float32(rl.GetScreenWidth())
	opts.Height = float32(rl.GetScreenHeight())
	opts.NewSurface = func(width, height int) (renderer.Surface, error) {
		w.surface = renderer.NewRaylibSurface(width, height)
		return w.surface, nil
	}
	opts.Approved = rl.IsWindowFullscreen

	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	w.g = g
	w.hud = ui.NewHUD(g.Profile().MaxFPS)
	return w, nil
}

// Game returns the game driven by the window.
func (w *Window) Game() *Game { return w.g }

// Loop runs until the window is closed.
func (w *Window) Loop() {
	for !rl.WindowShouldClose() {
		now := time.Now()
		w.handleInput(now)
		w.g.Tick(now)
		w.draw(now)
	}
}

// Unload releases the game and the last surface.
func (w *Window) Unload() error {
	err := w.g.Close()
	if w.surface != nil {
		w.surface.Close()
	}
	return err
}

// idle reports whether the start prompt applies: no run animating or
// waiting to be scored.
func (w *Window) idle() bool {
	return !w.g.Active() && !w.g.Settling()
}

func (w *Window) handleInput(now time.Time) {
	if rl.IsWindowResized() {
		w.g.SetViewport(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
		w.g.SetViewport(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		w.g.Reset(now)
		w.globe.Reset()
	}

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		w.press = mouse
		w.dragged = 0
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			w.rig.Orbit(d.X, d.Y)
			w.dragged += rl.Vector2Length(d)
		}
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) && w.dragged < clickSlop &&
		w.idle() && !w.g.Advisory().Visible(now) && w.globe.Hit(mouse) {
		w.g.Play(now)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.rig.Zoom(wheel * 0.3)
	}
}

func (w *Window) draw(now time.Time) {
	dt := float32(float64(rl.GetFrameTime()) * 1000 / w.cfg.Motion.NominalFrameMs)
	w.globe.Update(dt)
	prof := w.g.Profile()
	w.hud.Update(w.g.FPS(), prof.MaxFPS)

	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w.globe.Draw()
	if w.surface != nil {
		w.surface.Composite()
	}

	phase := ""
	if p, ok := w.g.Phase(); ok {
		phase = p.String()
	}
	start := w.hud.Draw(ui.HUDData{
		FPS:          w.g.FPS(),
		MaxFPS:       prof.MaxFPS,
		Profile:      prof.Tier.String(),
		Phase:        phase,
		Idle:         w.idle() && !w.g.ScorePanel().Visible(now),
		ScreenWidth:  sw,
		ScreenHeight: sh,
	})
	w.hud.DrawControls(sh, "Click globe: play | Drag: orbit | Wheel: zoom | F11: fullscreen | Esc: reset")

	w.g.EscapeHint().Draw(w.ui, sw, sh, now)
	if panel := w.g.ScorePanel(); panel.Visible(now) {
		panel.Update()
		panel.Draw(w.ui, sw, sh, now)
	}
	if w.g.Advisory().Draw(w.ui, sw, sh, now) {
		rl.ToggleFullscreen()
		w.g.Advisory().Dismiss()
		w.g.SetViewport(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	rl.EndDrawing()

	if start && !w.g.Advisory().Visible(now) {
		w.g.Play(now)
	}
}
