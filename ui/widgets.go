package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border, faded by alpha.
func (r *Renderer) DrawPanel(x, y, width, height int32, alpha float32) {
	rl.DrawRectangle(x, y, width, height, rl.Fade(r.Theme.PanelBg, alpha))
	rl.DrawRectangleLines(x, y, width, height, rl.Fade(r.Theme.PanelBorder, alpha))
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.HeaderFontSize + 6
}

// DrawLabel draws a text label.
func (r *Renderer) DrawLabel(x, y int32, text string) {
	rl.DrawText(text, x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a 0-100 score bar with its value.
func (r *Renderer) DrawBar(x, y int32, label string, value float64, width int32) int32 {
	ratio := float32(value / 100)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+4, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+4, int32(float32(barWidth)*ratio), r.Theme.BarHeight, r.Theme.RatioColor(ratio))
	rl.DrawText(fmt.Sprintf("%.0f", value), barX+barWidth+8, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight
}

// DrawCentered draws text horizontally centered on cx.
func (r *Renderer) DrawCentered(text string, cx, y, size int32, color rl.Color) {
	w := rl.MeasureText(text, size)
	rl.DrawText(text, cx-w/2, y, size, color)
}

// Button draws a raygui button and reports whether it was clicked.
func (r *Renderer) Button(x, y, width, height float32, text string) bool {
	return gui.Button(rl.Rectangle{X: x, Y: y, Width: width, Height: height}, text)
}
