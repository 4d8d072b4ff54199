// Package nav implements A* pathfinding on a uniform open-field grid for
// enemy movement. Grounded algorithmically on
// original_source/server/src/game/managers/game_manager_enemy.cpp
// (NavGrid, WorldToCell, the replan timer); the search body itself is
// implemented fresh from the spec's algorithm description since no
// FindPathAstar body survived the source pack's filter.
package nav

import "math"

// KCellSize is the nominal tile size in world units (~100px tiles).
const KCellSize = 100.0

// Grid is a uniform WxH grid covering a rectangular map, with reusable
// scratch buffers for repeated A* searches within one tick.
type Grid struct {
	width, height int32
	cellsX, cellsY int

	cameFrom    []int32
	gScore      []float32
	visitEpoch  []uint32
	closedEpoch []uint32
	epoch       uint32
}

// NewGrid builds scratch buffers sized for a mapWidth x mapHeight world.
func NewGrid(mapWidth, mapHeight int32) *Grid {
	cellsX := int((mapWidth + KCellSize - 1) / KCellSize)
	cellsY := int((mapHeight + KCellSize - 1) / KCellSize)
	if cellsX < 1 {
		cellsX = 1
	}
	if cellsY < 1 {
		cellsY = 1
	}
	n := cellsX * cellsY
	g := &Grid{
		width: mapWidth, height: mapHeight,
		cellsX: cellsX, cellsY: cellsY,
		cameFrom:    make([]int32, n),
		gScore:      make([]float32, n),
		visitEpoch:  make([]uint32, n),
		closedEpoch: make([]uint32, n),
	}
	return g
}

// Cell is a grid coordinate.
type Cell struct{ X, Y int }

// WorldToCell maps a world position onto its containing grid cell,
// clamped to the grid bounds.
func (g *Grid) WorldToCell(x, y float32) Cell {
	cx := int(x / KCellSize)
	cy := int(y / KCellSize)
	if cx < 0 {
		cx = 0
	}
	if cx >= g.cellsX {
		cx = g.cellsX - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.cellsY {
		cy = g.cellsY - 1
	}
	return Cell{cx, cy}
}

// CellToWorldCenter returns the world-space center of cell c.
func (g *Grid) CellToWorldCenter(c Cell) (float32, float32) {
	return float32(c.X)*KCellSize + KCellSize/2, float32(c.Y)*KCellSize + KCellSize/2
}

func (g *Grid) index(c Cell) int { return c.Y*g.cellsX + c.X }

func (g *Grid) inBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.cellsX && c.Y >= 0 && c.Y < g.cellsY
}

var neighborOffsets = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func stepCost(dx, dy int) float32 {
	if dx != 0 && dy != 0 {
		return float32(math.Sqrt2)
	}
	return 1
}

func heuristic(a, b Cell) float32 {
	dx := float32(a.X - b.X)
	dy := float32(a.Y - b.Y)
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}
