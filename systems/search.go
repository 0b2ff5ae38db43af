package systems

import "github.com/pthm-cable/flock/components"

// Search runs the velocity pass of each strategy. Every pass reads the
// current position and velocity buffers and writes only slot i of velNext for
// agent i, so disjoint ranges run concurrently.
type Search struct {
	rules *Rules
	grid  *Grid
}

// NewSearch creates the velocity passes. grid may be nil when only BruteForce
// is used.
func NewSearch(rules *Rules, grid *Grid) *Search {
	return &Search{rules: rules, grid: grid}
}

// BruteForce compares every agent in [start, end) against all others.
func (s *Search) BruteForce(pos, vel, velNext []components.Vec3, start, end int) {
	r := s.rules
	var nb Neighborhood
	for i := start; i < end; i++ {
		nb.Reset()
		p := pos[i]
		for j := range pos {
			if j == i {
				continue
			}
			r.Add(&nb, p, pos[j], vel[j])
		}
		velNext[i] = r.Limit(vel[i].Add(r.Delta(&nb, p)))
	}
}

// Scattered scans nearby cells and reaches agent data through the grid's
// slot permutation. pos and vel are in agent order.
func (s *Search) Scattered(pos, vel, velNext []components.Vec3, start, end int) {
	r := s.rules
	agents := s.grid.ArrayIndex()
	var nb Neighborhood
	for i := start; i < end; i++ {
		nb.Reset()
		p := pos[i]
		s.grid.VisitCells(p, func(first, last int32) {
			for k := first; k < last; k++ {
				j := agents[k]
				if int(j) == i {
					continue
				}
				r.Add(&nb, p, pos[j], vel[j])
			}
		})
		velNext[i] = r.Limit(vel[i].Add(r.Delta(&nb, p)))
	}
}

// Coherent scans nearby cells of buffers already reordered into slot order,
// so a cell's agents are contiguous. velNext is written in slot order.
func (s *Search) Coherent(pos, vel, velNext []components.Vec3, start, end int) {
	r := s.rules
	var nb Neighborhood
	for i := start; i < end; i++ {
		nb.Reset()
		p := pos[i]
		s.grid.VisitCells(p, func(first, last int32) {
			for k := int(first); k < int(last); k++ {
				if k == i {
					continue
				}
				r.Add(&nb, p, pos[k], vel[k])
			}
		})
		velNext[i] = r.Limit(vel[i].Add(r.Delta(&nb, p)))
	}
}

// Reorder gathers agent data into slot order for slots [start, end):
// dst[i] = src[ArrayIndex()[i]]. ids may be nil.
func (s *Search) Reorder(dstPos, dstVel, srcPos, srcVel []components.Vec3, dstIDs, srcIDs []uint32, start, end int) {
	agents := s.grid.ArrayIndex()
	for i := start; i < end; i++ {
		a := agents[i]
		dstPos[i] = srcPos[a]
		dstVel[i] = srcVel[a]
	}
	if dstIDs == nil {
		return
	}
	for i := start; i < end; i++ {
		dstIDs[i] = srcIDs[agents[i]]
	}
}
