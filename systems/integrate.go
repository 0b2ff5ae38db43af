package systems

import (
	"github.com/viterin/vek/vek32"

	"github.com/pthm-cable/flock/components"
)

// Integrator advances positions by one timestep and wraps them into the scene.
type Integrator struct {
	scale float32
	step  []float32 // v*dt for every agent, flat
}

// NewIntegrator creates an integrator for n agents in [-scale, scale]^3.
func NewIntegrator(n int, scale float32) *Integrator {
	return &Integrator{
		scale: scale,
		step:  make([]float32, 3*n),
	}
}

// Integrate applies pos += vel*dt to agents [start, end), then teleports each
// coordinate that left the scene to the opposite face.
func (it *Integrator) Integrate(pos, vel []components.Vec3, dt float32, start, end int) {
	if start >= end {
		return
	}
	p := components.Flatten(pos[start:end])
	step := it.step[3*start : 3*end]
	vek32.MulNumber_Into(step, components.Flatten(vel[start:end]), dt)
	vek32.Add_Inplace(p, step)
	for i, v := range p {
		p[i] = wrapCoord(v, it.scale)
	}
}
