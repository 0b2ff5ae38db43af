package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Agents   int
	Frame    int64
	Strategy string
	FPS      int32
	Paused   bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at (x, y) and returns the Y below it.
func (h *HUD) Draw(x, y int32, data HUDData) int32 {
	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 25

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Frame: %d | FPS: %d", data.Agents, data.Frame, data.FPS),
		x, y, 16, rl.LightGray,
	)
	y += 20

	rl.DrawText("Strategy: "+data.Strategy, x, y, 16, rl.LightGray)
	y += 20

	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
		y += 20
	}
	return y
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PhaseRow is one line of the performance panel.
type PhaseRow struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// PhaseRows returns the phases recorded in stats, most expensive first.
// Ties keep pipeline order.
func PhaseRows(stats telemetry.PerfStats) []PhaseRow {
	rows := make([]PhaseRow, 0, len(telemetry.Phases))
	for _, name := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		rows = append(rows, PhaseRow{Name: name, Avg: avg, Pct: stats.PhasePct[name]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Pct > rows[j].Pct })
	return rows
}

// PerfPanel renders the per-phase frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	rows := PhaseRows(stats)
	height := int32(len(rows)+2)*r.Theme.LineHeight + pad*2 + 4

	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Frame Phases")

	rl.DrawText(fmt.Sprintf("Step: %s", stats.AvgFrameDuration.Round(time.Microsecond)), x, y, r.Theme.FontSize, r.Theme.StepTotal)
	y += r.Theme.LineHeight

	for _, row := range rows {
		rl.DrawText(
			fmt.Sprintf("%-13s %8s %5.1f%%", row.Name, row.Avg.Round(time.Microsecond), row.Pct),
			x, y, r.Theme.FontSize, r.Theme.PhaseColor(row.Pct),
		)
		y += r.Theme.LineHeight
	}
}

// FlockPanel renders the sampled flock statistics.
type FlockPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewFlockPanel creates a new flock stats panel.
func NewFlockPanel(x, y, width int32) *FlockPanel {
	return &FlockPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (f *FlockPanel) SetPosition(x, y int32) {
	f.x = x
	f.y = y
}

// Draw renders the flock panel. maxSpeed scales the speed bar.
func (f *FlockPanel) Draw(stats telemetry.FlockStats, maxSpeed float32) {
	r := f.renderer
	pad := r.Theme.Padding
	width := f.width - pad*2
	height := 6*r.Theme.LineHeight + pad*2 + 8

	r.DrawPanel(f.x, f.y, f.width, height)
	x := f.x + pad
	y := r.DrawSectionHeader(x, f.y+pad, "Flock")

	speed := float32(0)
	if maxSpeed > 0 {
		speed = float32(stats.MeanSpeed) / maxSpeed
	}
	y = r.DrawBar(x, y, "Speed", speed, width, r.Theme.SpeedFill)
	y = r.DrawBar(x, y, "Polarization", float32(stats.Polarization), width, r.Theme.PolarizationFill)
	y = r.DrawLabelValue(x, y, "Speed std", fmt.Sprintf("%.3f", stats.SpeedStdDev))
	if stats.OccupiedCells > 0 {
		r.DrawLabelValue(x, y, "Cells", fmt.Sprintf("%d (max %d)", stats.OccupiedCells, stats.MaxOccupancy))
	}
}
