package game

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/wormhole/camera"
	"github.com/pthm-cable/wormhole/config"
	"github.com/pthm-cable/wormhole/renderer"
	"github.com/pthm-cable/wormhole/ui"
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(230, 230, 240))
	styleHint   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(160, 160, 190))
	styleAccent = tcell.StyleDefault.Foreground(tcell.NewRGBColor(210, 100, 255)).Bold(true)
)

// Terminal is the tcell frontend. The run draws into a TerminalSurface that
// maps pixels onto character cells; text overlays are written over it.
type Terminal struct {
	g      *Game
	screen tcell.Screen
	rig    *camera.Rig
}

// NewTerminal builds the game on an initialized screen. Terminals have no
// display mode to approve, so play is never refused.
func NewTerminal(cfg *config.Config, opts Options, screen tcell.Screen) (*Terminal, error) {
	t := &Terminal{
		screen: screen,
		rig:    camera.New(CameraDefaults(&cfg.Camera)),
	}
	cols, rows := screen.Size()
	opts.Config = cfg
	opts.Camera = t.rig
	opts.Width = float32(cols * renderer.CellWidth)
	opts.Height = float32(rows * renderer.CellHeight)
	opts.Approved = nil
	opts.NewSurface = func(int, int) (renderer.Surface, error) {
		return renderer.NewTerminalSurface(screen), nil
	}

	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	t.g = g
	return t, nil
}

// Game returns the game driven by the terminal.
func (t *Terminal) Game() *Game { return t.g }

// Loop ticks at frameRate until the user quits. Events are read on their own
// goroutine and handled on the loop's.
func (t *Terminal) Loop(frameRate int) {
	if frameRate <= 0 {
		frameRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !t.HandleEvent(ev, time.Now()) {
				return
			}
		case now := <-ticker.C:
			t.Step(now)
		}
	}
}

// HandleEvent applies one input event. Returns false when the user quits.
func (t *Terminal) HandleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyEscape:
			t.g.Reset(now)
		case ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			if !t.g.Active() && !t.g.Settling() {
				t.g.Play(now)
			}
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'x':
			t.g.ScorePanel().Close()
		}

	case *tcell.EventResize:
		t.screen.Sync()
		cols, rows := t.screen.Size()
		t.g.SetViewport(float32(cols*renderer.CellWidth), float32(rows*renderer.CellHeight))
	}
	return true
}

// Step ticks the game and redraws the text overlays.
func (t *Terminal) Step(now time.Time) {
	t.g.Tick(now)
	if !t.g.Active() {
		t.screen.Clear()
	}

	_, rows := t.screen.Size()
	prof := t.g.Profile()
	status := ui.FPSLabel(t.g.FPS(), prof.MaxFPS) + "  " + prof.Tier.String()
	if p, ok := t.g.Phase(); ok {
		status += "  " + p.String()
	}
	t.text(0, 0, status, styleText)

	if !t.g.Active() && !t.g.Settling() && !t.g.ScorePanel().Visible(now) {
		t.centered(rows/2, "Press Enter to open the wormhole", styleHint)
	}
	if h := t.g.EscapeHint(); h.Visible(now) {
		t.centered(rows-1, h.Text(), styleHint)
	}
	if panel := t.g.ScorePanel(); panel.Visible(now) {
		lines := ui.ScoreLines(panel.Result())
		y := rows/2 - len(lines)/2
		t.centered(y, lines[0], styleAccent)
		for i, line := range lines[1:] {
			t.centered(y+1+i, line, styleText)
		}
		t.centered(y+len(lines)+1, "x: close", styleHint)
	}
	t.screen.Show()
}

func (t *Terminal) centered(y int, s string, style tcell.Style) {
	cols, _ := t.screen.Size()
	x := (cols - len([]rune(s))) / 2
	if x < 0 {
		x = 0
	}
	t.text(x, y, s, style)
}

func (t *Terminal) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Close tears down the game. The caller finalizes the screen.
func (t *Terminal) Close() error {
	return t.g.Close()
}
