package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Phase shares of the frame above which the perf panel highlights a row.
const (
	phaseWarmPct = 20
	phaseHotPct  = 40
)

// Theme holds the colors and metrics of the viewer overlays.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color

	// Flock panel bars
	SpeedFill        rl.Color
	PolarizationFill rl.Color

	// Perf panel rows by share of the frame
	PhaseCool rl.Color
	PhaseWarm rl.Color
	PhaseHot  rl.Color
	StepTotal rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the dark theme drawn over the 3D view.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:          rl.Color{R: 12, G: 14, B: 22, A: 220},
		PanelBorder:      rl.Color{R: 55, G: 65, B: 90, A: 255},
		SectionHeader:    rl.Color{R: 235, G: 200, B: 90, A: 255},
		LabelColor:       rl.LightGray,
		ValueColor:       rl.RayWhite,
		BarBg:            rl.Color{R: 35, G: 38, B: 48, A: 255},
		SpeedFill:        rl.Color{R: 90, G: 170, B: 230, A: 255},
		PolarizationFill: rl.Color{R: 120, G: 210, B: 150, A: 255},
		PhaseCool:        rl.LightGray,
		PhaseWarm:        rl.Orange,
		PhaseHot:         rl.Red,
		StepTotal:        rl.Yellow,
		Padding:          10,
		LineHeight:       16,
		LabelWidth:       90,
		BarHeight:        12,
		FontSize:         12,
		HeaderFontSize:   14,
	}
}

// PhaseColor picks the perf row color for a phase taking pct percent of the frame.
func (t Theme) PhaseColor(pct float64) rl.Color {
	switch {
	case pct > phaseHotPct:
		return t.PhaseHot
	case pct > phaseWarmPct:
		return t.PhaseWarm
	default:
		return t.PhaseCool
	}
}
