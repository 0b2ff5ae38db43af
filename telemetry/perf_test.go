package telemetry

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseSort)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseVelocity)
		time.Sleep(200 * time.Microsecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	assert.Positive(t, stats.AvgFrameDuration)
	assert.Contains(t, stats.PhaseAvg, PhaseSort)
	assert.Contains(t, stats.PhaseAvg, PhaseVelocity)
	assert.NotContains(t, stats.PhaseAvg, PhaseReorder)
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartFrame()
		pc.StartPhase(PhaseIntegrate)
		pc.EndFrame()
	}

	stats := pc.Stats()
	assert.Positive(t, stats.AvgFrameDuration)
	assert.Positive(t, stats.FramesPerSecond)
	assert.LessOrEqual(t, stats.MinFrameDuration, stats.MaxFrameDuration)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartFrame()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndFrame()
	}

	stats := pc.Stats()
	assert.Greater(t, stats.PhasePct["slow"], stats.PhasePct["fast"])
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	assert.Zero(t, stats.AvgFrameDuration)
	assert.NotNil(t, stats.PhaseAvg)
	assert.NotNil(t, stats.PhasePct)
}

func TestPerfCollector_RenderTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordRender()
	time.Sleep(16 * time.Millisecond)
	pc.RecordRender()

	stats := pc.Stats()
	assert.GreaterOrEqual(t, stats.RenderDuration, 15*time.Millisecond)
	assert.Positive(t, stats.FPS)
	assert.Less(t, stats.FPS, 70.0)
}

func TestPerfStats_CSVAndLogValue(t *testing.T) {
	stats := PerfStats{
		AvgFrameDuration: 2 * time.Millisecond,
		PhasePct:         map[string]float64{PhaseSort: 25, PhaseVelocity: 60},
	}

	row := stats.ToCSV(120, "coherent")
	assert.Equal(t, int64(120), row.Frame)
	assert.Equal(t, "coherent", row.Strategy)
	assert.Equal(t, int64(2000), row.AvgFrameUS)
	assert.Equal(t, 25.0, row.SortPct)
	assert.Equal(t, 60.0, row.VelocityPct)
	assert.Zero(t, row.ReorderPct)

	v := stats.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	keys := make([]string, 0)
	for _, a := range v.Group() {
		keys = append(keys, a.Key)
	}
	assert.Contains(t, keys, "sort_pct")
	assert.Contains(t, keys, "velocity_pct")
	assert.NotContains(t, keys, "fps")
}
