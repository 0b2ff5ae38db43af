package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/flock/telemetry"
)

func TestPhaseRowsOrder(t *testing.T) {
	stats := telemetry.PerfStats{
		PhaseAvg: map[string]time.Duration{
			telemetry.PhaseSort:      2 * time.Millisecond,
			telemetry.PhaseVelocity:  6 * time.Millisecond,
			telemetry.PhaseIntegrate: time.Millisecond,
			telemetry.PhaseSwap:      time.Millisecond,
		},
		PhasePct: map[string]float64{
			telemetry.PhaseSort:      20,
			telemetry.PhaseVelocity:  60,
			telemetry.PhaseIntegrate: 10,
			telemetry.PhaseSwap:      10,
		},
	}

	rows := PhaseRows(stats)
	require.Len(t, rows, 4)
	assert.Equal(t, telemetry.PhaseVelocity, rows[0].Name)
	assert.Equal(t, telemetry.PhaseSort, rows[1].Name)
	// equal shares keep pipeline order
	assert.Equal(t, telemetry.PhaseIntegrate, rows[2].Name)
	assert.Equal(t, telemetry.PhaseSwap, rows[3].Name)
	assert.Equal(t, 6*time.Millisecond, rows[0].Avg)
}

func TestPhaseRowsEmpty(t *testing.T) {
	assert.Empty(t, PhaseRows(telemetry.PerfStats{}))
}

func TestThemePhaseColor(t *testing.T) {
	theme := DefaultTheme()

	assert.Equal(t, theme.PhaseHot, theme.PhaseColor(41))
	assert.Equal(t, theme.PhaseWarm, theme.PhaseColor(phaseHotPct))
	assert.Equal(t, theme.PhaseWarm, theme.PhaseColor(21))
	assert.Equal(t, theme.PhaseCool, theme.PhaseColor(phaseWarmPct))
	assert.Equal(t, theme.PhaseCool, theme.PhaseColor(0))
	assert.NotEqual(t, theme.SpeedFill, theme.PolarizationFill)
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, float32(0), clampUnit(-1))
	assert.Equal(t, float32(0.5), clampUnit(0.5))
	assert.Equal(t, float32(1), clampUnit(3))
}
