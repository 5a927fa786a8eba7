package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wormhole/telemetry"
)

// Timer is a visibility window measured against frame timestamps.
// A zero duration stays visible until hidden.
type Timer struct {
	dur     time.Duration
	shownAt time.Time
	visible bool
}

// NewTimer creates a hidden timer that expires dur after each Show.
func NewTimer(dur time.Duration) Timer {
	return Timer{dur: dur}
}

// Show makes the timer visible from now.
func (t *Timer) Show(now time.Time) {
	t.shownAt = now
	t.visible = true
}

// Hide makes the timer invisible.
func (t *Timer) Hide() {
	t.visible = false
}

// Visible reports whether the window is open at now. An expired window
// hides itself.
func (t *Timer) Visible(now time.Time) bool {
	if t.visible && t.dur > 0 && now.Sub(t.shownAt) >= t.dur {
		t.visible = false
	}
	return t.visible
}

// Elapsed returns the time since Show.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	return now.Sub(t.shownAt)
}

// Advisory is the flashing overlay shown when play is refused outside the
// approved display mode.
type Advisory struct {
	timer  Timer
	period time.Duration
	Reason string
}

// NewAdvisory creates a hidden advisory flashing once per period.
func NewAdvisory(period time.Duration) *Advisory {
	return &Advisory{period: period}
}

// Show raises the advisory for reason.
func (a *Advisory) Show(now time.Time, reason string) {
	a.Reason = reason
	a.timer.Show(now)
}

// Dismiss hides the advisory.
func (a *Advisory) Dismiss() { a.timer.Hide() }

// Visible reports whether the advisory is up.
func (a *Advisory) Visible(now time.Time) bool { return a.timer.Visible(now) }

// Alpha returns the flashing opacity at now, in [0.4, 1].
func (a *Advisory) Alpha(now time.Time) float32 {
	if a.period <= 0 {
		return 1
	}
	phase := float64(a.timer.Elapsed(now)%a.period) / float64(a.period)
	return float32(0.7 + 0.3*math.Cos(2*math.Pi*phase))
}

// Draw renders the advisory over the whole screen. Returns true when its
// fullscreen button was clicked.
func (a *Advisory) Draw(r *Renderer, w, h int32, now time.Time) bool {
	if !a.Visible(now) {
		return false
	}
	alpha := a.Alpha(now)
	rl.DrawRectangle(0, 0, w, h, rl.Fade(rl.Black, 0.6))
	r.DrawCentered("Fullscreen required", w/2, h/2-70, r.Theme.HeaderFontSize+8, rl.Fade(r.Theme.WarningColor, alpha))
	r.DrawCentered(a.Reason, w/2, h/2-30, r.Theme.FontSize, r.Theme.LabelColor)
	return r.Button(float32(w/2-100), float32(h/2+10), 200, 40, "Go fullscreen")
}

// EscapeHint tells the user how to leave the finished scene.
type EscapeHint struct {
	timer Timer
}

// NewEscapeHint creates a hidden hint shown for dur at a time.
func NewEscapeHint(dur time.Duration) *EscapeHint {
	return &EscapeHint{timer: NewTimer(dur)}
}

// Show raises the hint.
func (e *EscapeHint) Show(now time.Time) { e.timer.Show(now) }

// Hide drops the hint.
func (e *EscapeHint) Hide() { e.timer.Hide() }

// Visible reports whether the hint is up.
func (e *EscapeHint) Visible(now time.Time) bool { return e.timer.Visible(now) }

// Text returns the hint text.
func (e *EscapeHint) Text() string { return "Press Esc to return" }

// Draw renders the hint at the bottom of the screen.
func (e *EscapeHint) Draw(r *Renderer, w, h int32, now time.Time) {
	if !e.Visible(now) {
		return
	}
	r.DrawCentered(e.Text(), w/2, h-40, r.Theme.FontSize, r.Theme.HintColor)
}

// ScoreLines formats a result as plain text lines, title first.
func ScoreLines(res telemetry.ScoreResult) []string {
	return []string{
		fmt.Sprintf("Score: %d (%s)", res.Score, res.Grade),
		fmt.Sprintf("Average FPS: %.1f / %.0f", res.AverageFPS, res.TargetFPS),
		fmt.Sprintf("Min FPS: %.0f", res.MinFPS),
		fmt.Sprintf("Stability: %.1f%%", res.Stability),
		fmt.Sprintf("Time: %.1fs (%s)", res.TotalTime.Seconds(), res.Rating),
	}
}

// ScorePanel shows a scored run. It springs into view when shown and closes
// itself after its visible window.
type ScorePanel struct {
	timer  Timer
	spring harmonica.Spring
	reveal float64
	vel    float64
	result telemetry.ScoreResult
}

// NewScorePanel creates a hidden panel that stays up for visible and whose
// reveal spring is stepped at fps updates per second.
func NewScorePanel(visible time.Duration, fps int) *ScorePanel {
	if fps <= 0 {
		fps = 60
	}
	return &ScorePanel{
		timer:  NewTimer(visible),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 0.6),
	}
}

// Show opens the panel with res and restarts the reveal.
func (p *ScorePanel) Show(res telemetry.ScoreResult, now time.Time) {
	p.result = res
	p.reveal = 0
	p.vel = 0
	p.timer.Show(now)
}

// Close hides the panel.
func (p *ScorePanel) Close() { p.timer.Hide() }

// Visible reports whether the panel is up at now.
func (p *ScorePanel) Visible(now time.Time) bool { return p.timer.Visible(now) }

// Result returns the result on display.
func (p *ScorePanel) Result() telemetry.ScoreResult { return p.result }

// Update steps the reveal spring toward fully shown and returns its position.
// The spring may overshoot 1.
func (p *ScorePanel) Update() float64 {
	p.reveal, p.vel = p.spring.Update(p.reveal, p.vel, 1)
	return p.reveal
}

// Reveal returns the current reveal position.
func (p *ScorePanel) Reveal() float64 { return p.reveal }

// Draw renders the panel sliding down from above the center. Returns true
// when the close button was clicked; the panel is then already closed.
func (p *ScorePanel) Draw(r *Renderer, w, h int32, now time.Time) bool {
	if !p.Visible(now) {
		return false
	}
	th := r.Theme
	const pw, ph = 380, 300
	x, y := Place(AnchorCenter, pw, ph, w, h, 0)
	y -= int32((1 - p.reveal) * float64(h) / 2)
	alpha := float32(math.Max(0, math.Min(1, p.reveal)))

	r.DrawPanel(x, y, pw, ph, alpha)
	lines := ScoreLines(p.result)

	cy := y + th.Padding
	r.DrawCentered(fmt.Sprintf("%d", p.result.Score), x+pw/2, cy, th.TitleFontSize, th.GradeColor(p.result.Grade))
	cy += th.TitleFontSize + 4
	r.DrawCentered(lines[0], x+pw/2, cy, th.HeaderFontSize, th.SectionHeader)
	cy += th.HeaderFontSize + 10

	for _, line := range lines[1:] {
		r.DrawLabel(x+th.Padding, cy, line)
		cy += th.LineHeight
	}
	cy += 4
	c := p.result.Components
	cy = r.DrawBar(x+th.Padding, cy, "Average", c.Average, pw-2*th.Padding)
	cy = r.DrawBar(x+th.Padding, cy, "Minimum", c.Minimum, pw-2*th.Padding)
	r.DrawBar(x+th.Padding, cy, "Stability", c.Stability, pw-2*th.Padding)

	if r.Button(float32(x+pw-34), float32(y+6), 28, 24, "x") {
		p.Close()
		return true
	}
	return false
}
