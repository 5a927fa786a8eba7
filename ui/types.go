// Package ui draws the heads-up display and the overlays that frame a
// wormhole run: the display-mode advisory, the escape hint and the score
// panel. Visibility and timing live in plain state types so frontends
// without a window can share them.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// PanelAnchor specifies where a panel is anchored on screen.
type PanelAnchor int

const (
	AnchorTopLeft PanelAnchor = iota
	AnchorTopRight
	AnchorBottomCenter
	AnchorCenter
)

// Place returns the top-left corner of a w×h panel anchored on a
// screenW×screenH screen with the given margin.
func Place(a PanelAnchor, w, h, screenW, screenH, margin int32) (x, y int32) {
	switch a {
	case AnchorTopRight:
		return screenW - w - margin, margin
	case AnchorBottomCenter:
		return (screenW - w) / 2, screenH - h - margin
	case AnchorCenter:
		return (screenW - w) / 2, (screenH - h) / 2
	default:
		return margin, margin
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	HintColor      rl.Color
	WarningColor   rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
	TitleFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 14, G: 10, B: 24, A: 230},
		PanelBorder:    rl.Color{R: 120, G: 70, B: 200, A: 255},
		SectionHeader:  rl.Color{R: 210, G: 100, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		HintColor:      rl.Color{R: 160, G: 160, B: 190, A: 255},
		WarningColor:   rl.Color{R: 255, G: 200, B: 90, A: 255},
		BarBg:          rl.Color{R: 40, G: 36, B: 52, A: 255},
		BarFill:        rl.Color{R: 140, G: 0, B: 255, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Padding:        12,
		LineHeight:     20,
		LabelWidth:     110,
		BarHeight:      10,
		FontSize:       16,
		HeaderFontSize: 20,
		TitleFontSize:  48,
	}
}

// GradeColor returns the display color for a letter grade.
func (t Theme) GradeColor(grade string) rl.Color {
	switch grade {
	case "S":
		return rl.Color{R: 255, G: 100, B: 230, A: 255}
	case "A":
		return t.BarFillHigh
	case "B", "C":
		return t.BarFillMedium
	default:
		return t.BarFillLow
	}
}

// RatioColor picks a bar color for a 0-1 ratio.
func (t Theme) RatioColor(ratio float32) rl.Color {
	switch {
	case ratio < 0.5:
		return t.BarFillLow
	case ratio < 0.8:
		return t.BarFillMedium
	default:
		return t.BarFillHigh
	}
}
