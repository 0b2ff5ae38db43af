// Package renderer draws flock snapshots with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PointRenderer draws agents from VBO-layout buffers (x, y, z, w per agent)
// as 3D points inside the scene cube.
type PointRenderer struct {
	// Extent is the half-size in world units the normalized [-1, 1] positions map to.
	Extent float32
	// Bounds is the color of the scene cube outline; zero alpha hides it.
	Bounds rl.Color
}

// NewPointRenderer creates a renderer for a cube of the given half-size.
func NewPointRenderer(extent float32) *PointRenderer {
	return &PointRenderer{
		Extent: extent,
		Bounds: rl.Color{R: 90, G: 90, B: 110, A: 255},
	}
}

// Draw renders n agents. It must be called between rl.BeginMode3D and
// rl.EndMode3D. vel may be nil, in which case every point is white.
func (r *PointRenderer) Draw(pos, vel []float32, n int) {
	if r.Bounds.A > 0 {
		side := 2 * r.Extent
		rl.DrawCubeWires(rl.Vector3{}, side, side, side, r.Bounds)
	}

	for i := 0; i < n; i++ {
		o := 4 * i
		p := rl.Vector3{
			X: pos[o] * r.Extent,
			Y: pos[o+1] * r.Extent,
			Z: pos[o+2] * r.Extent,
		}
		c := rl.RayWhite
		if vel != nil {
			c = velocityColor(vel[o], vel[o+1], vel[o+2])
		}
		rl.DrawPoint3D(p, c)
	}
}

// velocityColor maps an offset velocity to a color, one axis per channel.
func velocityColor(x, y, z float32) rl.Color {
	return rl.Color{R: channel(x), G: channel(y), B: channel(z), A: 255}
}

func channel(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}
