package systems

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
)

// Grid is a uniform cubic partition of the scene rebuilt from scratch every
// frame. Building it takes four stages, each a barrier for the next:
// AssignCells, Sort, ResetRanges and DeriveRanges.
//
// After DeriveRanges the agents of cell c occupy sorted slots
// [CellStart()[c], CellEnd()[c]) and ArrayIndex()[slot] names the agent.
// Untouched cells hold the sentinel Empty() in both tables.
type Grid struct {
	sideCount int
	cellCount int
	cellWidth float32
	invWidth  float32
	minimum   float32

	searchRadius float32
	cube         bool
	skip         bool

	gridIndex  []int32 // sort key of slot i: its cell index
	arrayIndex []int32 // agent occupying slot i
	cellStart  []int32
	cellEnd    []int32

	sorter *KeySorter
}

// NewGrid allocates a grid for n agents sized by the derived config.
func NewGrid(n int, cfg *config.Config) *Grid {
	d := cfg.Derived
	return &Grid{
		sideCount:    d.GridSideCount,
		cellCount:    d.GridCellCount,
		cellWidth:    d.CellWidth,
		invWidth:     d.InverseCellWidth,
		minimum:      d.GridMinimum,
		searchRadius: d.MaxRuleDistance,
		cube:         cfg.Grid.CellSearch == config.CellSearchCube,
		skip:         cfg.Grid.CellSkip,
		gridIndex:    make([]int32, n),
		arrayIndex:   make([]int32, n),
		cellStart:    make([]int32, d.GridCellCount),
		cellEnd:      make([]int32, d.GridCellCount),
		sorter:       NewKeySorter(n),
	}
}

// SideCount returns the number of cells per axis.
func (g *Grid) SideCount() int { return g.sideCount }

// CellCount returns the total number of cells.
func (g *Grid) CellCount() int { return g.cellCount }

// CellWidth returns the edge length of one cell.
func (g *Grid) CellWidth() float32 { return g.cellWidth }

// Minimum returns the lower corner of the grid on every axis.
func (g *Grid) Minimum() float32 { return g.minimum }

// Empty returns the sentinel stored for cells with no agents.
func (g *Grid) Empty() int32 { return int32(len(g.gridIndex)) + 1 }

// GridIndex returns the sort keys, non-decreasing once Sort has run.
func (g *Grid) GridIndex() []int32 { return g.gridIndex }

// ArrayIndex returns the sorted-slot to agent permutation.
func (g *Grid) ArrayIndex() []int32 { return g.arrayIndex }

// CellStart returns the first sorted slot of every cell.
func (g *Grid) CellStart() []int32 { return g.cellStart }

// CellEnd returns one past the last sorted slot of every cell.
func (g *Grid) CellEnd() []int32 { return g.cellEnd }

// CellCoord returns the integer cell coordinate containing p. Boundaries
// resolve with floor, so a point on a cell face belongs to the upper cell.
func (g *Grid) CellCoord(p components.Vec3) (x, y, z int) {
	c := p.Sub(components.Vec3{X: g.minimum, Y: g.minimum, Z: g.minimum}).Mul(g.invWidth).Floor()
	return int(c.X), int(c.Y), int(c.Z)
}

// InBounds reports whether a cell coordinate lies inside the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	r := g.sideCount
	return x >= 0 && x < r && y >= 0 && y < r && z >= 0 && z < r
}

// Flatten maps a cell coordinate to its index, x varying fastest.
func (g *Grid) Flatten(x, y, z int) int32 {
	r := g.sideCount
	return int32(x + y*r + z*r*r)
}

// AssignCells computes the cell key of agents [start, end) and resets their
// slot to the identity permutation. A position outside the grid means the
// grid was sized inconsistently with the scene and panics.
func (g *Grid) AssignCells(pos []components.Vec3, start, end int) {
	for i := start; i < end; i++ {
		x, y, z := g.CellCoord(pos[i])
		if !g.InBounds(x, y, z) {
			panic(fmt.Sprintf("grid: agent %d at %v maps to cell (%d,%d,%d) outside a %d^3 grid",
				i, pos[i], x, y, z, g.sideCount))
		}
		g.gridIndex[i] = g.Flatten(x, y, z)
		g.arrayIndex[i] = int32(i)
	}
}

// Sort orders the slots by cell key.
func (g *Grid) Sort(ex Executor) {
	g.sorter.Sort(g.gridIndex, g.arrayIndex, int32(g.cellCount-1), ex)
}

// ResetRanges marks cells [start, end) empty.
func (g *Grid) ResetRanges(start, end int) {
	empty := g.Empty()
	for c := start; c < end; c++ {
		g.cellStart[c] = empty
		g.cellEnd[c] = empty
	}
}

// DeriveRanges records cell boundaries found at sorted slots [start, end).
// Each boundary is written by exactly one slot, so ranges of slots can run
// concurrently.
func (g *Grid) DeriveRanges(start, end int) {
	keys := g.gridIndex
	last := len(keys) - 1
	for i := start; i < end; i++ {
		k := keys[i]
		if i == 0 || keys[i-1] != k {
			g.cellStart[k] = int32(i)
		}
		if i == last || keys[i+1] != k {
			g.cellEnd[k] = int32(i + 1)
		}
	}
}

// Build runs all four construction stages with ex.
func (g *Grid) Build(pos []components.Vec3, ex Executor) {
	ex.For(len(pos), func(_, start, end int) { g.AssignCells(pos, start, end) })
	g.Sort(ex)
	ex.For(g.cellCount, func(_, start, end int) { g.ResetRanges(start, end) })
	ex.For(len(pos), func(_, start, end int) { g.DeriveRanges(start, end) })
}

// CellRange returns the sorted slot range of cell c. ok is false for empty cells.
func (g *Grid) CellRange(c int32) (start, end int32, ok bool) {
	start, end = g.cellStart[c], g.cellEnd[c]
	if start == g.Empty() {
		return 0, 0, false
	}
	return start, end, true
}

// Occupancy scans the sorted keys and returns the number of non-empty cells
// and the largest number of agents sharing one cell.
func (g *Grid) Occupancy() (occupied, maxCount int) {
	keys := g.gridIndex
	run := 0
	for i := range keys {
		if i > 0 && keys[i] == keys[i-1] {
			run++
		} else {
			occupied++
			run = 1
		}
		maxCount = max(maxCount, run)
	}
	return occupied, maxCount
}

// cellBounds is an inclusive block of cell coordinates.
type cellBounds struct {
	lo, hi [3]int
}

// searchBounds returns the block of cells that can hold an agent within the
// search radius of p, clipped to the grid.
func (g *Grid) searchBounds(p components.Vec3) cellBounds {
	var b cellBounds
	if g.cube {
		x, y, z := g.CellCoord(p)
		b.lo = [3]int{x - 1, y - 1, z - 1}
		b.hi = [3]int{x + 1, y + 1, z + 1}
	} else {
		r := components.Vec3{X: g.searchRadius, Y: g.searchRadius, Z: g.searchRadius}
		b.lo[0], b.lo[1], b.lo[2] = g.CellCoord(p.Sub(r))
		b.hi[0], b.hi[1], b.hi[2] = g.CellCoord(p.Add(r))
	}
	last := g.sideCount - 1
	for a := range 3 {
		b.lo[a] = max(b.lo[a], 0)
		b.hi[a] = min(b.hi[a], last)
	}
	return b
}

// cellMisses reports whether the box of cell (x, y, z) lies farther than the
// search radius from p.
func (g *Grid) cellMisses(p components.Vec3, x, y, z int) bool {
	d2 := axisGap(p.X, g.minimum+float32(x)*g.cellWidth, g.cellWidth) +
		axisGap(p.Y, g.minimum+float32(y)*g.cellWidth, g.cellWidth) +
		axisGap(p.Z, g.minimum+float32(z)*g.cellWidth, g.cellWidth)
	return d2 > g.searchRadius*g.searchRadius
}

// axisGap returns the squared distance from v to the interval [lo, lo+width].
func axisGap(v, lo, width float32) float32 {
	d := math32.Max(math32.Max(lo-v, v-(lo+width)), 0)
	return d * d
}

// VisitCells calls fn with the slot range of every non-empty cell that may
// hold an agent within the search radius of p. Cells are visited with x
// varying fastest, matching key order.
func (g *Grid) VisitCells(p components.Vec3, fn func(start, end int32)) {
	b := g.searchBounds(p)
	empty := g.Empty()
	for z := b.lo[2]; z <= b.hi[2]; z++ {
		for y := b.lo[1]; y <= b.hi[1]; y++ {
			for x := b.lo[0]; x <= b.hi[0]; x++ {
				if g.skip && g.cellMisses(p, x, y, z) {
					continue
				}
				c := g.Flatten(x, y, z)
				start := g.cellStart[c]
				if start == empty {
					continue
				}
				fn(start, g.cellEnd[c])
			}
		}
	}
}
