package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/flock/components"
)

func TestFlockSampler_AlignedFlock(t *testing.T) {
	var s FlockSampler
	vel := []components.Vec3{{X: 1}, {X: 2}, {X: 3}}

	st := s.Sample(vel)

	assert.Equal(t, 3, st.Agents)
	assert.InDelta(t, 2, st.MeanSpeed, 1e-9)
	assert.InDelta(t, 1, st.SpeedStdDev, 1e-9)
	assert.InDelta(t, 3, st.MaxSpeed, 1e-9)
	assert.InDelta(t, 1, st.Polarization, 1e-9)
}

func TestFlockSampler_OpposedHeadings(t *testing.T) {
	var s FlockSampler
	vel := []components.Vec3{{X: 1}, {X: -1}, {Y: 0.5}, {Y: -0.5}}

	st := s.Sample(vel)
	assert.InDelta(t, 0, st.Polarization, 1e-9)
}

func TestFlockSampler_RestingAgents(t *testing.T) {
	var s FlockSampler

	st := s.Sample(make([]components.Vec3, 4))
	assert.Zero(t, st.MeanSpeed)
	assert.Zero(t, st.Polarization)

	single := s.Sample([]components.Vec3{{Z: 0.5}})
	assert.InDelta(t, 0.5, single.MeanSpeed, 1e-9)
	assert.Zero(t, single.SpeedStdDev)

	empty := s.Sample(nil)
	assert.Zero(t, empty.Agents)
}
