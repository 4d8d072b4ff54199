package nav

import "container/heap"

type openEntry struct {
	cell Cell
	f, g float32
}

type openHeap []openEntry

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g < h[j].g
}
func (h openHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)        { *h = append(*h, x.(openEntry)) }
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FindPath runs A* from start to goal on the grid's 8-connected cells.
// Returns the path goal-reconstructed-then-reversed with the start cell
// skipped, or an empty slice if start==goal, the grid is 1x1, or no path
// exists (open field with no obstacles always succeeds except for those
// degenerate cases).
func (g *Grid) FindPath(start, goal Cell) []Cell {
	if start == goal {
		return nil
	}
	if g.cellsX*g.cellsY <= 1 {
		return nil
	}
	if !g.inBounds(start) || !g.inBounds(goal) {
		return nil
	}

	g.epoch++
	epoch := g.epoch

	startIdx := g.index(start)
	g.gScore[startIdx] = 0
	g.visitEpoch[startIdx] = epoch

	open := &openHeap{{cell: start, f: heuristic(start, goal), g: 0}}
	heap.Init(open)

	for open.Len() > 0 {
		cur := heap.Pop(open).(openEntry)
		curIdx := g.index(cur.cell)
		if g.closedEpoch[curIdx] == epoch {
			continue
		}
		g.closedEpoch[curIdx] = epoch

		if cur.cell == goal {
			return g.reconstruct(start, goal, epoch)
		}

		for _, off := range neighborOffsets {
			next := Cell{cur.cell.X + off[0], cur.cell.Y + off[1]}
			if !g.inBounds(next) {
				continue
			}
			nextIdx := g.index(next)
			if g.closedEpoch[nextIdx] == epoch {
				continue
			}

			tentativeG := cur.g + stepCost(off[0], off[1])
			known := g.visitEpoch[nextIdx] == epoch
			if !known || tentativeG < g.gScore[nextIdx] {
				g.gScore[nextIdx] = tentativeG
				g.visitEpoch[nextIdx] = epoch
				g.cameFrom[nextIdx] = int32(curIdx)
				heap.Push(open, openEntry{cell: next, f: tentativeG + heuristic(next, goal), g: tentativeG})
			}
		}
	}
	return nil
}

func (g *Grid) reconstruct(start, goal Cell, epoch uint32) []Cell {
	path := make([]Cell, 0, 16)
	cur := goal
	for cur != start {
		path = append(path, cur)
		idx := g.index(cur)
		prevIdx := int(g.cameFrom[idx])
		cur = Cell{prevIdx % g.cellsX, prevIdx / g.cellsX}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
