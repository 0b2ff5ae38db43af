package components

// Store owns every per-agent buffer of a simulation.
//
// Buffer roles:
//   - canonical positions: the authoritative position of each slot.
//   - current velocities: read by a velocity pass, never written by it.
//   - next velocities: written by a velocity pass, one slot per agent.
//   - scratch positions/velocities: targets of the coherent reorder.
//
// Roles only change through SwapVelocities and SwapPositions, which the
// orchestrator calls once at the end of a frame. Neither copies data.
//
// Slot identity is stable as long as SwapPositions is never called. The
// coherent strategy calls it every frame with a scratch array in cell order,
// so a slot index does not name the same agent across coherent frames. When
// the store tracks ids, IDs()[i] is the stable identifier of slot i.
type Store struct {
	pos        []Vec3
	posScratch []Vec3

	vel        []Vec3
	velNext    []Vec3
	velScratch []Vec3

	ids        []uint32
	idsScratch []uint32
}

// NewStore allocates buffers for n agents. With trackIDs the store also keeps
// a per-slot identifier initialized to the slot index.
func NewStore(n int, trackIDs bool) *Store {
	s := &Store{
		pos:        make([]Vec3, n),
		posScratch: make([]Vec3, n),
		vel:        make([]Vec3, n),
		velNext:    make([]Vec3, n),
		velScratch: make([]Vec3, n),
	}
	if trackIDs {
		s.ids = make([]uint32, n)
		s.idsScratch = make([]uint32, n)
		for i := range s.ids {
			s.ids[i] = uint32(i)
		}
	}
	return s
}

// Len returns the number of agents.
func (s *Store) Len() int { return len(s.pos) }

// Positions returns the canonical position buffer.
func (s *Store) Positions() []Vec3 { return s.pos }

// Velocities returns the current velocity buffer.
func (s *Store) Velocities() []Vec3 { return s.vel }

// NextVelocities returns the buffer the next velocity pass writes into.
func (s *Store) NextVelocities() []Vec3 { return s.velNext }

// ScratchPositions returns the reorder target for positions.
func (s *Store) ScratchPositions() []Vec3 { return s.posScratch }

// ScratchVelocities returns the reorder target for velocities.
func (s *Store) ScratchVelocities() []Vec3 { return s.velScratch }

// TracksIDs reports whether the store carries stable identifiers.
func (s *Store) TracksIDs() bool { return s.ids != nil }

// IDs returns the identifier of each canonical slot, or nil when not tracked.
func (s *Store) IDs() []uint32 { return s.ids }

// ScratchIDs returns the reorder target for identifiers, or nil when not tracked.
func (s *Store) ScratchIDs() []uint32 { return s.idsScratch }

// SwapVelocities makes the next buffer current.
func (s *Store) SwapVelocities() {
	s.vel, s.velNext = s.velNext, s.vel
}

// SwapPositions makes the scratch positions (and ids) canonical.
func (s *Store) SwapPositions() {
	s.pos, s.posScratch = s.posScratch, s.pos
	s.ids, s.idsScratch = s.idsScratch, s.ids
}

// Release drops every buffer. The store is unusable afterwards.
func (s *Store) Release() {
	*s = Store{}
}
