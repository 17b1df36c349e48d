package trade

import (
	"container/heap"
	"math"

	"github.com/talgya/tradewinds/internal/world"
)

type routeNode struct {
	priority float64
	seq      int
	tile     *world.Tile
}

// routeHeap orders nodes by priority, then by insertion so ties resolve
// the same way on every run.
type routeHeap []routeNode

func (h routeHeap) Len() int { return len(h) }

func (h routeHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h routeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *routeHeap) Push(x any) { *h = append(*h, x.(routeNode)) }

func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// FindRoute runs A* over the eight-connected grid from start to goal,
// weighting steps by the destination tile's movement cost and using
// straight-line distance as the heuristic. It gives up after popping
// maxExpansions nodes and returns nil when no route is found in budget.
func FindRoute(g *world.Grid, start, goal *world.Tile, maxExpansions int) []*world.Tile {
	if start == nil || goal == nil {
		return nil
	}
	if start == goal {
		return []*world.Tile{start}
	}

	open := &routeHeap{{tile: start}}
	seq := 0
	came := make(map[*world.Tile]*world.Tile)
	gscore := map[*world.Tile]float64{start: 0}
	var buf []*world.Tile

	for pops := 0; open.Len() > 0 && pops < maxExpansions; pops++ {
		current := heap.Pop(open).(routeNode).tile

		if current == goal {
			path := []*world.Tile{current}
			for {
				prev, ok := came[current]
				if !ok {
					break
				}
				current = prev
				path = append(path, current)
			}
			reverseInPlace(path)
			return path
		}

		buf = g.Neighbors8(current.X, current.Y, buf[:0])
		for _, nb := range buf {
			newG := gscore[current] + nb.CostOrDefault()
			if old, seen := gscore[nb]; seen && newG >= old {
				continue
			}
			gscore[nb] = newG
			came[nb] = current
			seq++
			h := math.Hypot(float64(nb.X-goal.X), float64(nb.Y-goal.Y))
			heap.Push(open, routeNode{priority: newG + h, seq: seq, tile: nb})
		}
	}
	return nil
}

// pathCost sums movement costs over every tile on the path, endpoints
// included.
func pathCost(path []*world.Tile) float64 {
	var total float64
	for _, t := range path {
		total += t.CostOrDefault()
	}
	return total
}

func reverseInPlace(path []*world.Tile) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}
