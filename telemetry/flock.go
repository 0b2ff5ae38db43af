package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/components"
)

// FlockStats summarises the state of the flock after one frame.
type FlockStats struct {
	Frame    int64  `csv:"frame"`
	Strategy string `csv:"strategy"`
	Agents   int    `csv:"agents"`

	MeanSpeed   float64 `csv:"mean_speed"`
	SpeedStdDev float64 `csv:"speed_std"`
	MaxSpeed    float64 `csv:"max_speed"`

	// Length of the mean unit heading: 1 when every moving agent points the
	// same way, near 0 for random headings.
	Polarization float64 `csv:"polarization"`

	OccupiedCells int `csv:"occupied_cells"`
	MaxOccupancy  int `csv:"max_occupancy"`
}

// FlockSampler computes FlockStats, reusing its buffers between frames.
type FlockSampler struct {
	speeds     []float64
	hx, hy, hz []float64
}

// Sample computes speed and heading statistics for vel. Grid occupancy is
// filled in by the caller.
func (s *FlockSampler) Sample(vel []components.Vec3) FlockStats {
	s.speeds = s.speeds[:0]
	s.hx, s.hy, s.hz = s.hx[:0], s.hy[:0], s.hz[:0]

	var top float64
	for _, v := range vel {
		speed := float64(v.Len())
		s.speeds = append(s.speeds, speed)
		top = math.Max(top, speed)
		if speed == 0 {
			continue
		}
		s.hx = append(s.hx, float64(v.X)/speed)
		s.hy = append(s.hy, float64(v.Y)/speed)
		s.hz = append(s.hz, float64(v.Z)/speed)
	}

	st := FlockStats{Agents: len(vel), MaxSpeed: top}
	if len(s.speeds) == 0 {
		return st
	}
	if len(s.speeds) == 1 {
		st.MeanSpeed = s.speeds[0]
	} else {
		st.MeanSpeed, st.SpeedStdDev = stat.MeanStdDev(s.speeds, nil)
	}
	if len(s.hx) > 0 {
		mx, my, mz := stat.Mean(s.hx, nil), stat.Mean(s.hy, nil), stat.Mean(s.hz, nil)
		st.Polarization = math.Sqrt(mx*mx + my*my + mz*mz)
	}
	return st
}

// LogValue implements slog.LogValuer for structured logging.
func (f FlockStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", f.Frame),
		slog.String("strategy", f.Strategy),
		slog.Float64("mean_speed", f.MeanSpeed),
		slog.Float64("speed_std", f.SpeedStdDev),
		slog.Float64("polarization", f.Polarization),
		slog.Int("occupied_cells", f.OccupiedCells),
		slog.Int("max_occupancy", f.MaxOccupancy),
	)
}
