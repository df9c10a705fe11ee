package planner

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

type fakeGrid struct {
	w, h      int
	obstacles map[warehouse.Cell]bool
}

func newFakeGrid(w, h int, obstacles ...warehouse.Cell) *fakeGrid {
	set := make(map[warehouse.Cell]bool, len(obstacles))
	for _, c := range obstacles {
		set[c] = true
	}
	return &fakeGrid{w: w, h: h, obstacles: set}
}

func (g *fakeGrid) IsInside(c warehouse.Cell) bool {
	return c.X >= 0 && c.X < g.w && c.Y >= 0 && c.Y < g.h
}

func (g *fakeGrid) HasObstacle(c warehouse.Cell) bool { return g.obstacles[c] }

type fakePeers []PeerState

func (p fakePeers) Positions() []PeerState { return p }

func pathEndsAt(p Path, c warehouse.Cell) bool {
	return len(p) > 0 && p[len(p)-1] == c
}

func isContiguous(t *testing.T, p Path) {
	t.Helper()
	for i := 1; i < len(p); i++ {
		if p[i-1].Manhattan(p[i]) != 1 {
			t.Fatalf("path not 4-adjacent at step %d: %v -> %v", i, p[i-1], p[i])
		}
	}
}

func TestPlainFindsShortestPath(t *testing.T) {
	g := newFakeGrid(5, 5)
	start := warehouse.Cell{X: 0, Y: 0}
	goal := warehouse.Cell{X: 3, Y: 0}
	p := Plain(g, nil, start, goal)
	if !pathEndsAt(p, goal) {
		t.Fatalf("Plain() path = %v, want it to end at %v", p, goal)
	}
	if len(p) != 4 {
		t.Fatalf("Plain() path length = %d, want 4 (Manhattan distance 3 + start)", len(p))
	}
	isContiguous(t, p)
}

func TestPlainAvoidsObstacles(t *testing.T) {
	g := newFakeGrid(3, 3, warehouse.Cell{X: 1, Y: 0}, warehouse.Cell{X: 1, Y: 1}, warehouse.Cell{X: 1, Y: 2})
	start := warehouse.Cell{X: 0, Y: 1}
	goal := warehouse.Cell{X: 2, Y: 1}
	p := Plain(g, nil, start, goal)
	if len(p) != 0 {
		t.Fatalf("expected no path through a fully blocked column, got %v", p)
	}
}

func TestPlainAvoidsPeersExceptAtTheirGoal(t *testing.T) {
	g := newFakeGrid(3, 1)
	start := warehouse.Cell{X: 0, Y: 0}
	goal := warehouse.Cell{X: 2, Y: 0}
	blocking := fakePeers{{Cell: warehouse.Cell{X: 1, Y: 0}, AtGoal: false}}

	p := Plain(g, blocking, start, goal)
	if len(p) != 0 {
		t.Fatalf("peer occupying the only route should block the plan, got %v", p)
	}

	atGoal := fakePeers{{Cell: goal, AtGoal: true}}
	p2 := Plain(g, atGoal, start, goal)
	if !pathEndsAt(p2, goal) {
		t.Fatalf("a peer resting at its own goal should not block others from ending there, got %v", p2)
	}
}

func TestPlainBlocksPeerPassingThroughSearcherGoal(t *testing.T) {
	// A peer sitting on the searcher's own goal cell, but not resting at
	// its own goal, must still block: the exemption is conditioned on the
	// occupying peer's own AtGoal, not on whose goal the cell happens to be.
	g := newFakeGrid(3, 1)
	start := warehouse.Cell{X: 0, Y: 0}
	goal := warehouse.Cell{X: 2, Y: 0}
	passingThrough := fakePeers{{Cell: goal, AtGoal: false}}

	p := Plain(g, passingThrough, start, goal)
	if len(p) != 0 {
		t.Fatalf("a peer merely passing through the searcher's goal should still block arrival, got %v", p)
	}
}

func TestRobotPenalizedPrefersDetourOverPeerCell(t *testing.T) {
	g := newFakeGrid(3, 3)
	start := warehouse.Cell{X: 0, Y: 1}
	goal := warehouse.Cell{X: 2, Y: 1}
	peers := fakePeers{{Cell: warehouse.Cell{X: 1, Y: 1}, AtGoal: false}}

	p := RobotPenalized(g, peers, start, goal, 1)
	if !pathEndsAt(p, goal) {
		t.Fatalf("RobotPenalized() = %v, want a path to %v", p, goal)
	}
	blockedCell := warehouse.Cell{X: 1, Y: 1}
	for _, c := range p {
		if c == blockedCell {
			t.Fatalf("RobotPenalized() routed through the peer-occupied cell: %v", p)
		}
	}
}

func TestEmergencyIgnoresPeers(t *testing.T) {
	g := newFakeGrid(3, 1)
	start := warehouse.Cell{X: 0, Y: 0}
	goal := warehouse.Cell{X: 2, Y: 0}
	p := Emergency(g, start, goal)
	if len(p) != 3 {
		t.Fatalf("Emergency() path = %v, want length 3", p)
	}
}

func TestDetourComposesAroundAPeer(t *testing.T) {
	g := newFakeGrid(9, 9)
	start := warehouse.Cell{X: 1, Y: 4}
	goal := warehouse.Cell{X: 7, Y: 4}
	peers := fakePeers{{Cell: warehouse.Cell{X: 4, Y: 4}, AtGoal: false}}
	rng := rand.New(rand.NewSource(1))

	p := Detour(g, peers, start, goal, rng)
	if !pathEndsAt(p, goal) {
		t.Fatalf("Detour() = %v, want a path ending at %v", p, goal)
	}
	isContiguous(t, p)
}

func TestSearchDispatchesByMode(t *testing.T) {
	g := newFakeGrid(5, 5)
	start := warehouse.Cell{X: 0, Y: 0}
	goal := warehouse.Cell{X: 2, Y: 0}
	rng := rand.New(rand.NewSource(1))

	for _, mode := range []Mode{ModePlain, ModeRobotPenalized, ModeDetour, ModeEmergency} {
		p := Search(g, nil, start, goal, mode, 1, rng)
		if !pathEndsAt(p, goal) {
			t.Errorf("Search(mode=%v) = %v, want a path ending at %v", mode, p, goal)
		}
	}
}

func TestEqual(t *testing.T) {
	a := Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	b := Path{{X: 0, Y: 0}, {X: 1, Y: 0}}
	c := Path{{X: 0, Y: 0}, {X: 0, Y: 1}}
	if !Equal(a, b) {
		t.Fatalf("Equal(a, b) = false, want true")
	}
	if Equal(a, c) {
		t.Fatalf("Equal(a, c) = true, want false")
	}
}
