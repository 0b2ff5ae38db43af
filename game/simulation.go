// Package game drives the flocking pipeline: it owns the agent buffers, the
// grid and the worker pool, and runs one strategy per frame.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

var (
	// ErrNoAgents is returned when a simulation is created with no agents.
	ErrNoAgents = errors.New("simulation needs at least one agent")
	// ErrClosed is returned by operations on a closed simulation.
	ErrClosed = errors.New("simulation closed")
	// ErrShortBuffer is returned when an export destination cannot hold every agent.
	ErrShortBuffer = errors.New("destination buffer too short")
	// ErrUnknownStrategy is returned for a strategy name other than naive, scattered or coherent.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Options configures a simulation beyond the loaded config.
type Options struct {
	// Seed is the frame counter mixed into the initial layout. 0 means 1.
	Seed uint32
	// Executor runs every stage. nil builds a worker pool from cfg.Parallel.
	Executor systems.Executor
}

// Simulation is the flocking context: agent buffers, grid, and the strategy
// that runs each frame. It is not safe for concurrent use; stages fan out
// internally through the executor.
type Simulation struct {
	cfg      *config.Config
	strategy string

	store      *components.Store
	grid       *systems.Grid
	rules      systems.Rules
	search     *systems.Search
	integrator *systems.Integrator

	exec systems.Executor
	pool *workerPool // nil when the caller supplied the executor

	perf     *telemetry.PerfCollector
	sampler  telemetry.FlockSampler
	vboTmp   []float32
	frame    int64
	gridUsed bool // grid holds the ranges of the last frame
	closed   bool
}

// NewSimulation validates cfg, allocates every buffer for cfg.Agents.Count
// agents and seeds their initial layout.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg.Agents.Count <= 0 {
		return nil, fmt.Errorf("%w: count %d", ErrNoAgents, cfg.Agents.Count)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulation config: %w", err)
	}
	if err := checkStrategy(cfg.Strategy); err != nil {
		return nil, err
	}

	n := cfg.Agents.Count
	d := cfg.Derived
	s := &Simulation{
		cfg:        cfg,
		strategy:   cfg.Strategy,
		store:      components.NewStore(n, cfg.Agents.TrackIDs),
		grid:       systems.NewGrid(n, cfg),
		rules:      systems.NewRules(cfg),
		integrator: systems.NewIntegrator(n, d.SceneScale32),
		exec:       opts.Executor,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		vboTmp:     make([]float32, 3*n),
	}
	s.search = systems.NewSearch(&s.rules, s.grid)
	if s.exec == nil {
		s.pool = newWorkerPool(cfg.Parallel.Workers, cfg.Parallel.LaneBatchSize, cfg.Parallel.Threshold)
		s.exec = s.pool
	}

	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	pos, vel := s.store.Positions(), s.store.Velocities()
	speed := float32(cfg.Agents.InitialSpeed)
	s.exec.For(n, func(_, start, end int) {
		seedAgents(pos, vel, seed, d.SceneScale32, speed, start, end)
	})

	slog.Info("simulation initialized",
		"agents", n,
		"strategy", s.strategy,
		"grid_side", d.GridSideCount,
		"grid_cells", d.GridCellCount,
		"cell_width", d.CellWidth,
		"cell_search", cfg.Grid.CellSearch,
		"cell_skip", cfg.Grid.CellSkip,
		"speed_limit", cfg.Motion.SpeedLimit,
		"seed", seed,
	)
	return s, nil
}

func checkStrategy(name string) error {
	switch name {
	case config.StrategyNaive, config.StrategyScattered, config.StrategyCoherent:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Step advances one frame with the current strategy.
func (s *Simulation) Step(dt float32) error {
	if s.closed {
		return ErrClosed
	}
	switch s.strategy {
	case config.StrategyNaive:
		s.StepNaive(dt)
	case config.StrategyScattered:
		s.StepScatteredGrid(dt)
	case config.StrategyCoherent:
		s.StepCoherentGrid(dt)
	}
	return nil
}

// SetStrategy selects the strategy used by Step from the next frame on.
// Every frame ends with the latest velocities current and positions
// canonical, so switching between frames needs no buffer fix-up.
func (s *Simulation) SetStrategy(name string) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkStrategy(name); err != nil {
		return err
	}
	if name != s.strategy {
		slog.Info("strategy changed", "frame", s.frame, "from", s.strategy, "to", name)
	}
	s.strategy = name
	return nil
}

// StepNaive advances one frame comparing every pair of agents.
// It does nothing on a closed simulation.
func (s *Simulation) StepNaive(dt float32) {
	if s.closed {
		return
	}
	st := s.store
	n := st.Len()
	pos, vel, next := st.Positions(), st.Velocities(), st.NextVelocities()

	s.perf.StartFrame()
	s.perf.StartPhase(telemetry.PhaseVelocity)
	s.exec.For(n, func(_, start, end int) { s.search.BruteForce(pos, vel, next, start, end) })

	s.integrate(pos, next, dt)

	s.perf.StartPhase(telemetry.PhaseSwap)
	st.SwapVelocities()
	s.gridUsed = false
	s.endFrame()
}

// StepScatteredGrid advances one frame, finding neighbors through the grid
// and reading agent data through its slot permutation. Slot identity is
// preserved.
func (s *Simulation) StepScatteredGrid(dt float32) {
	if s.closed {
		return
	}
	st := s.store
	n := st.Len()
	pos, vel, next := st.Positions(), st.Velocities(), st.NextVelocities()

	s.perf.StartFrame()
	s.buildGrid(pos)

	s.perf.StartPhase(telemetry.PhaseVelocity)
	s.exec.For(n, func(_, start, end int) { s.search.Scattered(pos, vel, next, start, end) })

	s.integrate(pos, next, dt)

	s.perf.StartPhase(telemetry.PhaseSwap)
	st.SwapVelocities()
	s.gridUsed = true
	s.endFrame()
}

// StepCoherentGrid advances one frame after copying agent data into cell
// order. The reordered buffers become canonical, so slot i does not name the
// same agent across frames; IDs() follows agents when ids are tracked.
func (s *Simulation) StepCoherentGrid(dt float32) {
	if s.closed {
		return
	}
	st := s.store
	n := st.Len()
	pos, vel, next := st.Positions(), st.Velocities(), st.NextVelocities()
	sortedPos, sortedVel := st.ScratchPositions(), st.ScratchVelocities()
	ids, sortedIDs := st.IDs(), st.ScratchIDs()

	s.perf.StartFrame()
	s.buildGrid(pos)

	s.perf.StartPhase(telemetry.PhaseReorder)
	s.exec.For(n, func(_, start, end int) {
		s.search.Reorder(sortedPos, sortedVel, pos, vel, sortedIDs, ids, start, end)
	})

	s.perf.StartPhase(telemetry.PhaseVelocity)
	s.exec.For(n, func(_, start, end int) { s.search.Coherent(sortedPos, sortedVel, next, start, end) })

	s.integrate(sortedPos, next, dt)

	s.perf.StartPhase(telemetry.PhaseSwap)
	st.SwapPositions()
	st.SwapVelocities()
	s.gridUsed = true
	s.endFrame()
}

// buildGrid runs the four grid construction stages, each a barrier.
func (s *Simulation) buildGrid(pos []components.Vec3) {
	n := len(pos)
	g := s.grid

	s.perf.StartPhase(telemetry.PhaseAssignCells)
	s.exec.For(n, func(_, start, end int) { g.AssignCells(pos, start, end) })

	s.perf.StartPhase(telemetry.PhaseSort)
	g.Sort(s.exec)

	s.perf.StartPhase(telemetry.PhaseRanges)
	s.exec.For(g.CellCount(), func(_, start, end int) { g.ResetRanges(start, end) })
	s.exec.For(n, func(_, start, end int) { g.DeriveRanges(start, end) })
}

func (s *Simulation) integrate(pos, vel []components.Vec3, dt float32) {
	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.exec.For(len(pos), func(_, start, end int) { s.integrator.Integrate(pos, vel, dt, start, end) })
}

func (s *Simulation) endFrame() {
	s.perf.EndFrame()
	s.frame++
	if every := int64(s.cfg.Telemetry.LogEvery); every > 0 && s.frame%every == 0 {
		slog.Info("perf", "frame", s.frame, "strategy", s.strategy, "stats", s.perf.Stats())
	}
}

// Close stops the worker pool and releases every buffer. A second call
// returns ErrClosed.
func (s *Simulation) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if s.pool != nil {
		s.pool.stopWorkers()
	}
	s.store.Release()
	s.grid = nil
	s.search = nil
	s.integrator = nil
	s.vboTmp = nil
	slog.Info("simulation closed", "frames", s.frame)
	return nil
}

// Frame returns the number of frames stepped so far.
func (s *Simulation) Frame() int64 { return s.frame }

// Strategy returns the strategy Step runs.
func (s *Simulation) Strategy() string { return s.strategy }

// Config returns the validated config the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Len returns the number of agents, 0 once closed.
func (s *Simulation) Len() int { return s.store.Len() }

// Positions returns the canonical positions. The slice is valid until the
// next step.
func (s *Simulation) Positions() []components.Vec3 { return s.store.Positions() }

// Velocities returns the current velocities, indexed like Positions.
func (s *Simulation) Velocities() []components.Vec3 { return s.store.Velocities() }

// IDs returns the stable agent id of each slot, or nil unless track_ids is set.
func (s *Simulation) IDs() []uint32 { return s.store.IDs() }

// Perf returns the frame timing collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// FlockStats summarises the current velocities. Grid occupancy comes from
// the last grid build and is zero after a naive frame.
func (s *Simulation) FlockStats() telemetry.FlockStats {
	if s.closed {
		return telemetry.FlockStats{}
	}
	st := s.sampler.Sample(s.store.Velocities())
	st.Frame = s.frame
	st.Strategy = s.strategy
	if s.gridUsed {
		st.OccupiedCells, st.MaxOccupancy = s.grid.Occupancy()
	}
	return st
}
