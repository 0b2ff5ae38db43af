package game

import (
	"log/slog"

	"github.com/chewxy/math32"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/renderer"
	"github.com/pthm-cable/flock/ui"
)

const (
	// viewExtent is the half-size of the scene cube in view space.
	viewExtent = 10

	panelWidth   = 260
	orbitPerPx   = 0.005
	zoomPerNotch = 0.9
)

var strategies = []string{config.StrategyNaive, config.StrategyScattered, config.StrategyCoherent}

// Viewer renders a running simulation in a raylib window. Strategy changes
// and pausing take effect between frames.
type Viewer struct {
	sim    *Simulation
	points *renderer.PointRenderer
	camera *camera.Camera

	hud   *ui.HUD
	perf  *ui.PerfPanel
	flock *ui.FlockPanel

	vboPos []float32
	vboVel []float32
	paused bool
}

// NewViewer creates a viewer for sim. The raylib window must already be open.
func NewViewer(sim *Simulation) *Viewer {
	n := sim.Len()
	return &Viewer{
		sim:    sim,
		points: renderer.NewPointRenderer(viewExtent),
		camera: camera.New(viewExtent),
		hud:    ui.NewHUD(),
		perf:   ui.NewPerfPanel(10, 0, panelWidth),
		flock:  ui.NewFlockPanel(10, 0, panelWidth),
		vboPos: make([]float32, VBOStride*n),
		vboVel: make([]float32, VBOStride*n),
	}
}

// Update advances the simulation unless paused and refreshes the snapshot.
func (v *Viewer) Update() error {
	v.handleInput()
	if !v.paused {
		if err := v.sim.Step(v.sim.Config().Derived.DT32); err != nil {
			return err
		}
	}
	v.sim.Perf().RecordRender()
	return v.sim.CopyToVBO(v.vboPos, v.vboVel)
}

// Draw renders the last snapshot and the control panel.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 12, B: 18, A: 255})

	rl.BeginMode3D(v.camera3D())
	v.points.Draw(v.vboPos, v.vboVel, v.sim.Len())
	rl.EndMode3D()

	v.drawPanel()
	rl.EndDrawing()
}

func (v *Viewer) drawPanel() {
	const x, w, h = 10, 120, 28
	y := float32(10)

	for _, name := range strategies {
		label := name
		if name == v.sim.Strategy() {
			label = "> " + name
		}
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, label) {
			if err := v.sim.SetStrategy(name); err != nil {
				slog.Error("switching strategy", "error", err)
			}
		}
		y += h + 4
	}

	pauseLabel := "Pause"
	if v.paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, pauseLabel) {
		v.paused = !v.paused
	}
	y += h + 8

	y = float32(v.hud.Draw(x, int32(y), ui.HUDData{
		Title:    "Flock",
		Agents:   v.sim.Len(),
		Frame:    v.sim.Frame(),
		Strategy: v.sim.Strategy(),
		FPS:      rl.GetFPS(),
		Paused:   v.paused,
	}))

	v.perf.SetPosition(x, int32(y)+4)
	v.perf.Draw(v.sim.Perf().Stats())

	v.flock.SetPosition(x, int32(rl.GetScreenHeight())-150)
	v.flock.Draw(v.sim.FlockStats(), v.sim.Config().Derived.MaxSpeed32)

	v.hud.DrawControls(int32(rl.GetScreenHeight()), "[drag] orbit  [wheel] zoom  [R] reset view  [space] pause")
}

func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.camera.Reset()
	}

	mouse := rl.GetMousePosition()
	if mouse.X < panelWidth+20 {
		return
	}
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		d := rl.GetMouseDelta()
		v.camera.Orbit(d.X*orbitPerPx, d.Y*orbitPerPx)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(math32.Pow(zoomPerNotch, wheel))
	}
}

func (v *Viewer) camera3D() rl.Camera3D {
	x, y, z := v.camera.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: x, Y: y, Z: z},
		Target:     rl.Vector3{X: v.camera.TargetX, Y: v.camera.TargetY, Z: v.camera.TargetZ},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

// RunViewer opens a window and runs sim until the window closes or
// maxFrames frames have been stepped (0 = unlimited).
func RunViewer(sim *Simulation, maxFrames int64) error {
	sc := sim.Config().Screen
	rl.InitWindow(int32(sc.Width), int32(sc.Height), "Flock")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(sc.TargetFPS))

	v := NewViewer(sim)
	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil {
			return err
		}
		v.Draw()
		if maxFrames > 0 && sim.Frame() >= maxFrames {
			break
		}
	}
	return nil
}
