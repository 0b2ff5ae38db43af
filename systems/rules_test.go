package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

func TestTwoAgentsAttract(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Rules.Cohesion.Scale = 0.1
		c.Rules.Separation.Scale = 0.01
	})
	rules := NewRules(cfg)
	pos := []components.Vec3{{}, {X: 1}}
	vel := make([]components.Vec3, 2)
	next := make([]components.Vec3, 2)

	NewSearch(&rules, nil).BruteForce(pos, vel, next, 0, 2)

	// cohesion pulls 0.1, separation pushes 0.01, alignment averages zero velocity
	assert.InDelta(t, 0.09, next[0].X, 1e-6)
	assert.InDelta(t, -0.09, next[1].X, 1e-6)
	assert.Zero(t, next[0].Y)
	assert.Zero(t, next[0].Z)
	assert.Equal(t, next[0].X, -next[1].X)
}

func TestIsolatedAgentHasZeroDelta(t *testing.T) {
	cfg := testConfig(t, nil)
	rules := NewRules(cfg)
	pos := []components.Vec3{{X: -50}, {X: 50}}
	vel := []components.Vec3{{X: 0.3, Y: -0.2}, {Z: 0.5}}

	for i := range pos {
		assert.Equal(t, components.Vec3{}, rules.VelocityDelta(i, pos, vel))
	}
}

func TestThresholdsAreIndependentAndStrict(t *testing.T) {
	cfg := testConfig(t, nil) // cohesion 5, separation 3, alignment 5
	rules := NewRules(cfg)

	// at distance 4 only cohesion and alignment apply
	pos := []components.Vec3{{}, {X: 4}}
	vel := []components.Vec3{{}, {Y: 1}}
	dv := rules.VelocityDelta(0, pos, vel)
	assert.InDelta(t, 4*0.01, dv.X, 1e-6)
	assert.InDelta(t, 0.1, dv.Y, 1e-6)

	// exactly on the separation radius is outside it
	pos[1] = components.Vec3{X: 3}
	vel[1] = components.Vec3{}
	dv = rules.VelocityDelta(0, pos, vel)
	assert.InDelta(t, 3*0.01, dv.X, 1e-6)

	// exactly on the cohesion radius contributes nothing at all
	pos[1] = components.Vec3{X: 5}
	vel[1] = components.Vec3{Y: 1}
	assert.Equal(t, components.Vec3{}, rules.VelocityDelta(0, pos, vel))
}

func TestCohesionAndAlignmentAverage(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Rules.Separation.Scale = 0
	})
	rules := NewRules(cfg)
	pos := []components.Vec3{{}, {X: 2}, {Y: 2}}
	vel := []components.Vec3{{}, {X: 1}, {X: 1, Y: 2}}

	dv := rules.VelocityDelta(0, pos, vel)
	// center (1,1,0), mean heading (1,1,0)
	assert.InDelta(t, 1*0.01+1*0.1, dv.X, 1e-6)
	assert.InDelta(t, 1*0.01+1*0.1, dv.Y, 1e-6)
	assert.InDelta(t, 0, dv.Z, 1e-6)
}

func TestLimitRescale(t *testing.T) {
	rules := Rules{MaxSpeed: 1}

	v := rules.Limit(components.Vec3{X: 3, Y: 4})
	assert.InDelta(t, 0.6, v.X, 1e-6)
	assert.InDelta(t, 0.8, v.Y, 1e-6)
	assert.InDelta(t, 1, v.Len(), 1e-6)

	slow := components.Vec3{X: 0.1, Y: -0.2, Z: 0.3}
	assert.Equal(t, slow, rules.Limit(slow))
}

func TestLimitClamp(t *testing.T) {
	rules := Rules{MaxSpeed: 1, Clamp: true}
	v := rules.Limit(components.Vec3{X: 3, Y: -0.5, Z: -4})
	assert.Equal(t, components.Vec3{X: 1, Y: -0.5, Z: -1}, v)
}
