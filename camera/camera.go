// Package camera provides an orbit camera for viewing the scene cube.
package camera

import "math"

// pitchLimit keeps the eye off the poles so the up vector stays valid.
const pitchLimit = 1.5

const pi32 = float32(math.Pi)

// Camera orbits a fixed target at a given distance. Angles are in radians.
type Camera struct {
	// Target is the point the camera looks at
	TargetX, TargetY, TargetZ float32

	// Yaw rotates around the vertical axis, Pitch tilts above the horizon
	Yaw, Pitch float32

	// Distance from target
	Distance float32

	// Zoom constraints
	MinDistance, MaxDistance float32

	home pose
}

type pose struct {
	yaw, pitch, distance float32
}

// New creates a camera looking at the origin of a cube with the given
// half-size, from a corner-ish angle far enough to see all of it.
func New(extent float32) *Camera {
	c := &Camera{
		Yaw:         math.Pi / 4,
		Pitch:       0.45,
		Distance:    3.4 * extent,
		MinDistance: 0.5 * extent,
		MaxDistance: 10 * extent,
	}
	c.home = pose{yaw: c.Yaw, pitch: c.Pitch, distance: c.Distance}
	return c
}

// Position returns the eye position in world coordinates.
func (c *Camera) Position() (x, y, z float32) {
	sp, cp := math.Sincos(float64(c.Pitch))
	sy, cy := math.Sincos(float64(c.Yaw))
	x = c.TargetX + c.Distance*float32(cp*cy)
	y = c.TargetY + c.Distance*float32(sp)
	z = c.TargetZ + c.Distance*float32(cp*sy)
	return x, y, z
}

// Orbit rotates the camera by the given angle deltas.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -pitchLimit, pitchLimit)
}

// ZoomBy scales the distance by factor (< 1 moves closer).
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance * factor)
}

// SetDistance sets the distance, respecting the zoom constraints.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// Reset restores the pose the camera was created with.
func (c *Camera) Reset() {
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
	c.Distance = c.home.distance
}

// wrapAngle maps a to (-pi32, pi32]. The bounds are the float32 value of
// Pi, which rounds above the float64 one.
func wrapAngle(a float32) float32 {
	if a > -pi32 && a <= pi32 {
		return a
	}
	out := float32(math.Mod(float64(a)+math.Pi, 2*math.Pi)) - pi32
	for out <= -pi32 {
		out += 2 * pi32
	}
	for out > pi32 {
		out -= 2 * pi32
	}
	return out
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
