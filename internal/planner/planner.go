// Package planner implements A* search over a warehouse grid, with three
// variants layered on a common open-set search (spec §4.2): plain,
// robot-penalized, and detour-augmented. Emergency search is plain search
// with peer avoidance disabled.
//
// The open-set priority queue follows the teacher's container/heap shape
// (internal/algo/astar.go's astarNode/astarHeap in the retrieval pack),
// generalized from space-time search over a graph to plain 4-connected
// grid search.
package planner

import (
	"container/heap"

	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// Path is an ordered sequence of cells, beginning at the search's start and
// ending at its goal. An empty Path means the search failed.
type Path []warehouse.Cell

// Peers is a narrow view of other robots' state that the planner needs:
// their current cell and their goal (a robot resting at its own goal does
// not block others from ending their plan there, per spec §4.2).
type Peers interface {
	// Positions returns the current cell of every other robot, and whether
	// that cell is also that robot's goal.
	Positions() []PeerState
}

// PeerState describes one other robot for planning purposes.
type PeerState struct {
	Cell   warehouse.Cell
	AtGoal bool
}

// Obstacles reports static obstacle membership; satisfied by *warehouse.Grid.
type Obstacles interface {
	IsInside(c warehouse.Cell) bool
	HasObstacle(c warehouse.Cell) bool
}

type openNode struct {
	cell    warehouse.Cell
	g       int
	f       int
	parent  *openNode
	seq     int // insertion order, for deterministic tie-breaking
	index   int // heap index
}

type openHeap []*openNode

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *openHeap) Push(x any) {
	n := x.(*openNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

func heuristic(a, b warehouse.Cell) int {
	return a.Manhattan(b)
}

// edgeCost computes the step cost of moving onto `to`, for plain search
// (cost 1) or robot-penalized search (1 plus a peer-proximity penalty).
type edgeCostFunc func(to warehouse.Cell) int

// search is the shared best-first loop; variants differ only in edgeCost
// and in which cells are prunable as peer-blocked.
func search(obs Obstacles, start, goal warehouse.Cell, blocked map[warehouse.Cell]bool, cost edgeCostFunc) Path {
	if !obs.IsInside(start) || !obs.IsInside(goal) {
		return nil
	}

	open := &openHeap{}
	heap.Init(open)
	seq := 0
	startNode := &openNode{cell: start, g: 0, f: heuristic(start, goal), seq: seq}
	seq++
	heap.Push(open, startNode)

	bestG := map[warehouse.Cell]int{start: 0}
	closed := make(map[warehouse.Cell]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*openNode)
		if closed[current.cell] {
			continue
		}
		if current.cell == goal {
			return reconstruct(current)
		}
		closed[current.cell] = true

		for _, n := range current.cell.Neighbors4() {
			if !obs.IsInside(n) || obs.HasObstacle(n) {
				continue
			}
			if blocked != nil && blocked[n] {
				continue
			}
			if closed[n] {
				continue
			}
			g := current.g + cost(n)
			if prev, ok := bestG[n]; ok && g >= prev {
				continue
			}
			bestG[n] = g
			node := &openNode{
				cell:   n,
				g:      g,
				f:      g + heuristic(n, goal),
				parent: current,
				seq:    seq,
			}
			seq++
			heap.Push(open, node)
		}
	}
	return nil
}

func reconstruct(n *openNode) Path {
	var path Path
	for cur := n; cur != nil; cur = cur.parent {
		path = append(Path{cur.cell}, path...)
	}
	return path
}

func blockedByPeers(peers Peers) map[warehouse.Cell]bool {
	blocked := make(map[warehouse.Cell]bool)
	if peers == nil {
		return blocked
	}
	for _, p := range peers.Positions() {
		if !p.AtGoal {
			blocked[p.Cell] = true
		}
	}
	return blocked
}

// Plain performs best-first search with f=g+h, pruning obstacles and cells
// occupied by peers (unless that cell is the peer's own goal).
func Plain(obs Obstacles, peers Peers, start, goal warehouse.Cell) Path {
	blocked := blockedByPeers(peers)
	return search(obs, start, goal, blocked, func(warehouse.Cell) int { return 1 })
}

// Emergency performs best-first search ignoring peer robots entirely; used
// only when battery is critical (spec §4.2, §4.5 step 2).
func Emergency(obs Obstacles, start, goal warehouse.Cell) Path {
	return search(obs, start, goal, nil, func(warehouse.Cell) int { return 1 })
}

// RobotPenalized performs best-first search where the edge cost to a
// neighbor is 1 + penalty(neighbor): 10*multiplier for a cell containing a
// peer, plus 5*multiplier for any 4-adjacent neighbor of a peer. Obstacles
// are still pruned entirely, not merely penalized.
func RobotPenalized(obs Obstacles, peers Peers, start, goal warehouse.Cell, multiplier int) Path {
	if multiplier <= 0 {
		multiplier = 1
	}
	occupied := make(map[warehouse.Cell]bool)
	nearPeer := make(map[warehouse.Cell]bool)
	if peers != nil {
		for _, p := range peers.Positions() {
			occupied[p.Cell] = true
			for _, n := range p.Cell.Neighbors4() {
				nearPeer[n] = true
			}
		}
	}
	cost := func(c warehouse.Cell) int {
		penalty := 0
		if occupied[c] {
			penalty += 10 * multiplier
		}
		if nearPeer[c] {
			penalty += 5 * multiplier
		}
		return 1 + penalty
	}
	return search(obs, start, goal, nil, cost)
}
