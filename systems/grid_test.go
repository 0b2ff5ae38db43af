package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

// testConfig returns the defaults with mutate applied and derived values refreshed.
func testConfig(t *testing.T, mutate func(c *config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// randomPositions scatters n agents uniformly over [-scale, scale)^3.
func randomPositions(rng *rand.Rand, n int, scale float32) []components.Vec3 {
	pos := make([]components.Vec3, n)
	for i := range pos {
		pos[i] = components.Vec3{
			X: (rng.Float32()*2 - 1) * scale,
			Y: (rng.Float32()*2 - 1) * scale,
			Z: (rng.Float32()*2 - 1) * scale,
		}
	}
	return pos
}

func TestGridRangesPartitionAgents(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Scene.Scale = 20 })
	rng := rand.New(rand.NewPCG(1, 2))
	n := 800
	pos := randomPositions(rng, n, cfg.Derived.SceneScale32)

	g := NewGrid(n, cfg)
	g.Build(pos, Serial{BatchSize: 16})

	keys := g.GridIndex()
	agents := g.ArrayIndex()

	seen := make([]bool, n)
	for i := range keys {
		if i > 0 {
			require.LessOrEqual(t, keys[i-1], keys[i], "keys non-decreasing at %d", i)
		}
		require.False(t, seen[agents[i]], "agent %d in two slots", agents[i])
		seen[agents[i]] = true
	}

	// each agent sits inside the range of its own cell
	counts := make(map[int32]int)
	for slot, a := range agents {
		x, y, z := g.CellCoord(pos[a])
		c := g.Flatten(x, y, z)
		counts[c]++
		start, end, ok := g.CellRange(c)
		require.True(t, ok)
		assert.True(t, int32(slot) >= start && int32(slot) < end, "slot %d outside [%d,%d)", slot, start, end)
	}

	total := 0
	for c := 0; c < g.CellCount(); c++ {
		start, end, ok := g.CellRange(int32(c))
		if !ok {
			assert.Equal(t, g.Empty(), g.CellStart()[c])
			assert.Equal(t, g.Empty(), g.CellEnd()[c])
			assert.Zero(t, counts[int32(c)])
			continue
		}
		assert.Equal(t, counts[int32(c)], int(end-start), "cell %d", c)
		total += int(end - start)
	}
	assert.Equal(t, n, total)
	assert.Equal(t, int32(n+1), g.Empty())
}

func TestGridRebuildClearsStaleRanges(t *testing.T) {
	cfg := testConfig(t, nil)
	rng := rand.New(rand.NewPCG(3, 4))
	n := 200
	pos := randomPositions(rng, n, cfg.Derived.SceneScale32)

	g := NewGrid(n, cfg)
	g.Build(pos, Serial{})

	for i := range pos {
		pos[i] = components.Vec3{X: 1, Y: 1, Z: 1}
	}
	g.Build(pos, Serial{BatchSize: 32})

	x, y, z := g.CellCoord(components.Vec3{X: 1, Y: 1, Z: 1})
	only := g.Flatten(x, y, z)
	for c := 0; c < g.CellCount(); c++ {
		start, end, ok := g.CellRange(int32(c))
		if int32(c) == only {
			require.True(t, ok)
			assert.Equal(t, int32(0), start)
			assert.Equal(t, int32(n), end)
			continue
		}
		assert.False(t, ok, "cell %d kept a range from the previous frame", c)
	}

	occupied, maxCount := g.Occupancy()
	assert.Equal(t, 1, occupied)
	assert.Equal(t, n, maxCount)
}

func TestCellCoordBoundaryUsesFloor(t *testing.T) {
	// distances of 4 give a power-of-two cell width, so boundaries are exact
	cfg := testConfig(t, func(c *config.Config) {
		c.Rules.Cohesion.Distance = 4
		c.Rules.Separation.Distance = 4
		c.Rules.Alignment.Distance = 4
	})
	g := NewGrid(1, cfg)
	require.Equal(t, float32(4), g.CellWidth())
	require.Equal(t, float32(-104), g.Minimum())

	x, _, _ := g.CellCoord(components.Vec3{X: -100})
	assert.Equal(t, 1, x, "point on a face belongs to the upper cell")

	x, _, _ = g.CellCoord(components.Vec3{X: -100.01})
	assert.Equal(t, 0, x)

	x, y, z := g.CellCoord(components.Vec3{X: 100, Y: -100, Z: 0})
	assert.True(t, g.InBounds(x, y, z))
	assert.Equal(t, int32(x+y*g.SideCount()+z*g.SideCount()*g.SideCount()), g.Flatten(x, y, z))
}

func TestSceneCornersStayInsideGrid(t *testing.T) {
	for _, mult := range []float64{0.5, 1, 1.5, 2, 3} {
		cfg := testConfig(t, func(c *config.Config) { c.Grid.CellWidthMultiplier = mult })
		g := NewGrid(1, cfg)
		s := cfg.Derived.SceneScale32
		for _, p := range []components.Vec3{
			{X: -s, Y: -s, Z: -s},
			{X: s, Y: s, Z: s},
			{X: -s, Y: s, Z: 0},
		} {
			x, y, z := g.CellCoord(p)
			assert.True(t, g.InBounds(x, y, z), "multiplier %v point %v", mult, p)
		}
		// at least one whole cell below the scene
		x, _, _ := g.CellCoord(components.Vec3{X: -s})
		assert.GreaterOrEqual(t, x, 1, "multiplier %v", mult)
	}
}

func TestAssignCellsPanicsOutsideGrid(t *testing.T) {
	cfg := testConfig(t, nil)
	g := NewGrid(2, cfg)
	pos := []components.Vec3{{}, {X: 1e6}}
	assert.Panics(t, func() { g.AssignCells(pos, 0, len(pos)) })
}

func TestSearchBoundsCellCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	tests := []struct {
		name   string
		mult   float64
		search string
		limit  int
	}{
		{"radius width 1", 1, config.CellSearchRadius, 27},
		{"radius width 2", 2, config.CellSearchRadius, 8},
		{"cube width 1", 1, config.CellSearchCube, 27},
		{"cube width 2", 2, config.CellSearchCube, 27},
		{"radius width 0.5", 0.5, config.CellSearchRadius, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Grid.CellWidthMultiplier = tt.mult
				c.Grid.CellSearch = tt.search
			})
			g := NewGrid(1, cfg)
			for _, p := range randomPositions(rng, 500, cfg.Derived.SceneScale32) {
				b := g.searchBounds(p)
				cells := (b.hi[0] - b.lo[0] + 1) * (b.hi[1] - b.lo[1] + 1) * (b.hi[2] - b.lo[2] + 1)
				require.LessOrEqual(t, cells, tt.limit, "point %v", p)
				require.Positive(t, cells)
			}
		})
	}
}

func TestVisitCellsFindsEveryNeighbor(t *testing.T) {
	tests := []struct {
		name   string
		mult   float64
		search string
		skip   bool
	}{
		{"cube", 1, config.CellSearchCube, false},
		{"cube skip", 1, config.CellSearchCube, true},
		{"radius", 1, config.CellSearchRadius, false},
		{"radius skip", 1, config.CellSearchRadius, true},
		{"radius wide cells", 2, config.CellSearchRadius, false},
		{"radius half cells skip", 0.5, config.CellSearchRadius, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Scene.Scale = 15
				c.Grid.CellWidthMultiplier = tt.mult
				c.Grid.CellSearch = tt.search
				c.Grid.CellSkip = tt.skip
			})
			rng := rand.New(rand.NewPCG(8, 9))
			n := 600
			pos := randomPositions(rng, n, cfg.Derived.SceneScale32)
			g := NewGrid(n, cfg)
			g.Build(pos, Serial{})

			slotOf := make([]int32, n)
			for slot, a := range g.ArrayIndex() {
				slotOf[a] = int32(slot)
			}

			r2 := cfg.Derived.MaxRuleDistance * cfg.Derived.MaxRuleDistance
			for i := range pos {
				var ranges [][2]int32
				g.VisitCells(pos[i], func(start, end int32) {
					ranges = append(ranges, [2]int32{start, end})
				})
				for j := range pos {
					if pos[i].DistSqr(pos[j]) >= r2 {
						continue
					}
					s := slotOf[j]
					found := false
					for _, rg := range ranges {
						if s >= rg[0] && s < rg[1] {
							found = true
							break
						}
					}
					require.True(t, found, "agent %d misses neighbor %d", i, j)
				}
			}
		})
	}
}

func TestCellMissesUsesBoxDistance(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Rules.Cohesion.Distance = 4
		c.Rules.Separation.Distance = 4
		c.Rules.Alignment.Distance = 4
		c.Grid.CellWidthMultiplier = 1
	})
	g := NewGrid(1, cfg)
	// cell 26 spans [0, 4) on each axis
	p := components.Vec3{X: 2, Y: 2, Z: 2}
	assert.False(t, g.cellMisses(p, 26, 26, 26), "own cell")
	assert.False(t, g.cellMisses(p, 27, 26, 26), "face neighbor 2 away")
	// corner cell box starts at (4,4,4): distance sqrt(12) < 4
	assert.False(t, g.cellMisses(p, 27, 27, 27))

	q := components.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	// box of cell (27,27,27) is 3.5 away on every axis: sqrt(36.75) > 4
	assert.True(t, g.cellMisses(q, 27, 27, 27))
	// face cell (27,26,26) is 3.5 away: inside the radius
	assert.False(t, g.cellMisses(q, 27, 26, 26))
}
