package game

import (
	"math/rand/v2"

	"github.com/pthm-cable/flock/components"
)

// hash32 is a 32-bit integer avalanche: every input bit affects every output bit.
func hash32(a uint32) uint32 {
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

// agentRNG returns the generator for agent index at the given frame. It
// depends only on its arguments, so agents can be seeded in any order.
func agentRNG(frame uint32, index int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(hash32(uint32(index)*frame)), uint64(index)))
}

// unitCube draws a point uniformly from [-1, 1)^3.
func unitCube(rng *rand.Rand) components.Vec3 {
	return components.Vec3{
		X: rng.Float32()*2 - 1,
		Y: rng.Float32()*2 - 1,
		Z: rng.Float32()*2 - 1,
	}
}

// seedAgents fills pos (and vel, when speed > 0) for agents [start, end).
func seedAgents(pos, vel []components.Vec3, frame uint32, scale, speed float32, start, end int) {
	for i := start; i < end; i++ {
		rng := agentRNG(frame, i)
		pos[i] = unitCube(rng).Mul(scale)
		if speed <= 0 {
			vel[i] = components.Vec3{}
			continue
		}
		dir := unitCube(rng)
		l := dir.Len()
		if l == 0 {
			dir, l = components.Vec3{X: 1}, 1
		}
		vel[i] = dir.Mul(speed / l)
	}
}
