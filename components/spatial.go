// Package components defines the per-agent data the flocking pipeline operates on.
package components

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
)

// Vec3 is a single-precision 3D vector used for agent positions and velocities.
type Vec3 struct {
	X, Y, Z float32
}

// String implements fmt.Stringer.
func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul scales v by s.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LenSqr returns the squared length. Prefer it for threshold comparisons.
func (v Vec3) LenSqr() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the Euclidean length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v.LenSqr())
}

// DistSqr returns the squared distance between v and o.
func (v Vec3) DistSqr(o Vec3) float32 {
	return v.Sub(o).LenSqr()
}

// Floor returns the component-wise floor.
func (v Vec3) Floor() Vec3 {
	return Vec3{math32.Floor(v.X), math32.Floor(v.Y), math32.Floor(v.Z)}
}

// Flatten reinterprets a Vec3 slice as its backing float32 array (x0,y0,z0,x1,...).
// The result aliases vs; writes through it are visible in vs.
func Flatten(vs []Vec3) []float32 {
	if len(vs) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&vs[0])), 3*len(vs))
}
