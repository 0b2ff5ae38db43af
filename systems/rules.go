package systems

import (
	"github.com/chewxy/math32"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

// Rules holds the flocking parameters in the form the hot loop compares
// against: thresholds are squared so no neighbor needs a square root.
type Rules struct {
	CohesionDist2   float32
	SeparationDist2 float32
	AlignmentDist2  float32

	CohesionScale   float32
	SeparationScale float32
	AlignmentScale  float32

	MaxSpeed float32
	Clamp    bool // per-component clamp instead of rescaling to MaxSpeed
}

// NewRules builds Rules from a validated config.
func NewRules(cfg *config.Config) Rules {
	d := cfg.Derived
	return Rules{
		CohesionDist2:   d.Rule1Distance * d.Rule1Distance,
		SeparationDist2: d.Rule2Distance * d.Rule2Distance,
		AlignmentDist2:  d.Rule3Distance * d.Rule3Distance,
		CohesionScale:   d.Rule1Scale,
		SeparationScale: d.Rule2Scale,
		AlignmentScale:  d.Rule3Scale,
		MaxSpeed:        d.MaxSpeed32,
		Clamp:           cfg.Motion.SpeedLimit == config.SpeedLimitClamp,
	}
}

// Neighborhood accumulates one agent's rule sums over its candidates.
type Neighborhood struct {
	center     components.Vec3
	cohesion   int32
	separation components.Vec3
	heading    components.Vec3
	alignment  int32
}

// Reset clears the sums for the next agent.
func (nb *Neighborhood) Reset() { *nb = Neighborhood{} }

// Add folds one candidate into the sums. Each threshold is tested on its own,
// so a candidate may count toward several rules. The caller excludes self.
func (r *Rules) Add(nb *Neighborhood, self, other, otherVel components.Vec3) {
	d2 := other.DistSqr(self)
	if d2 < r.CohesionDist2 {
		nb.center = nb.center.Add(other)
		nb.cohesion++
	}
	if d2 < r.SeparationDist2 {
		nb.separation = nb.separation.Sub(other.Sub(self))
	}
	if d2 < r.AlignmentDist2 {
		nb.heading = nb.heading.Add(otherVel)
		nb.alignment++
	}
}

// Delta returns the summed velocity change for an agent at self.
func (r *Rules) Delta(nb *Neighborhood, self components.Vec3) components.Vec3 {
	dv := nb.separation.Mul(r.SeparationScale)
	if nb.cohesion > 0 {
		center := nb.center.Mul(1 / float32(nb.cohesion))
		dv = dv.Add(center.Sub(self).Mul(r.CohesionScale))
	}
	if nb.alignment > 0 {
		dv = dv.Add(nb.heading.Mul(r.AlignmentScale / float32(nb.alignment)))
	}
	return dv
}

// Limit applies the speed limit to a candidate velocity. It runs once per
// agent after every rule contribution has been summed.
func (r *Rules) Limit(v components.Vec3) components.Vec3 {
	if r.Clamp {
		return components.Vec3{
			X: clampFloat(v.X, -r.MaxSpeed, r.MaxSpeed),
			Y: clampFloat(v.Y, -r.MaxSpeed, r.MaxSpeed),
			Z: clampFloat(v.Z, -r.MaxSpeed, r.MaxSpeed),
		}
	}
	l2 := v.LenSqr()
	if l2 <= r.MaxSpeed*r.MaxSpeed {
		return v
	}
	return v.Mul(r.MaxSpeed / math32.Sqrt(l2))
}

// VelocityDelta evaluates the rules for agent self against every other agent.
func (r *Rules) VelocityDelta(self int, pos, vel []components.Vec3) components.Vec3 {
	var nb Neighborhood
	p := pos[self]
	for j := range pos {
		if j == self {
			continue
		}
		r.Add(&nb, p, pos[j], vel[j])
	}
	return r.Delta(&nb, p)
}
