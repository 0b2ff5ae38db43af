package game

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"github.com/pthm-cable/flock/components"
)

// VBOStride is the number of floats written per agent by CopyToVBO.
const VBOStride = 4

// velocityColorOffset shifts velocities into a visible color range.
const velocityColorOffset = 0.3

// CopyToVBO writes a display-ready snapshot of every agent: positions scaled
// by -1/sceneScale and velocities offset by 0.3, each padded with w = 1.
// Either destination may be nil. Simulation state is not modified.
func (s *Simulation) CopyToVBO(pos, vel []float32) error {
	if s.closed {
		return ErrClosed
	}
	n := s.store.Len()
	if pos != nil && len(pos) < VBOStride*n {
		return fmt.Errorf("%w: positions need %d floats, got %d", ErrShortBuffer, VBOStride*n, len(pos))
	}
	if vel != nil && len(vel) < VBOStride*n {
		return fmt.Errorf("%w: velocities need %d floats, got %d", ErrShortBuffer, VBOStride*n, len(vel))
	}

	if pos != nil {
		scale := -1 / s.cfg.Derived.SceneScale32
		src := s.store.Positions()
		s.exec.For(n, func(_, start, end int) {
			tmp := s.vboTmp[3*start : 3*end]
			vek32.MulNumber_Into(tmp, components.Flatten(src[start:end]), scale)
			interleave(pos, tmp, start, end)
		})
	}
	if vel != nil {
		src := s.store.Velocities()
		s.exec.For(n, func(_, start, end int) {
			tmp := s.vboTmp[3*start : 3*end]
			vek32.AddNumber_Into(tmp, components.Flatten(src[start:end]), velocityColorOffset)
			interleave(vel, tmp, start, end)
		})
	}
	return nil
}

// interleave copies xyz triples for agents [start, end) into dst with w = 1.
func interleave(dst, xyz []float32, start, end int) {
	for i := start; i < end; i++ {
		o := VBOStride * i
		t := xyz[3*(i-start):]
		dst[o], dst[o+1], dst[o+2], dst[o+3] = t[0], t[1], t[2], 1
	}
}
