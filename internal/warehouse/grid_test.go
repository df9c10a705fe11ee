package warehouse

import (
	"errors"
	"testing"
)

func TestGridPlaceRemoveObstacleRoundTrip(t *testing.T) {
	g := NewGrid(5, 5)
	c := Cell{X: 2, Y: 2}

	if g.HasObstacle(c) {
		t.Fatalf("fresh grid should have no obstacles")
	}
	if err := g.PlaceObstacle(c); err != nil {
		t.Fatalf("PlaceObstacle: %v", err)
	}
	if !g.HasObstacle(c) {
		t.Fatalf("expected obstacle at %v", c)
	}
	g.RemoveObstacle(c)
	if g.HasObstacle(c) {
		t.Fatalf("expected obstacle to be cleared at %v", c)
	}
	// Removing again is a no-op, not an error.
	g.RemoveObstacle(c)
}

func TestGridPlaceObstacleConflicts(t *testing.T) {
	g := NewGrid(3, 3)
	out := Cell{X: 10, Y: 10}
	if err := g.PlaceObstacle(out); !errors.Is(err, ErrValidation) {
		t.Fatalf("out-of-bounds obstacle: got %v, want ErrValidation", err)
	}

	occupied := Cell{X: 1, Y: 1}
	g.PlaceRobot(RobotID(1), occupied)
	if err := g.PlaceObstacle(occupied); !errors.Is(err, ErrPlacementConflict) {
		t.Fatalf("obstacle on occupied cell: got %v, want ErrPlacementConflict", err)
	}

	free := Cell{X: 0, Y: 0}
	if err := g.PlaceObstacle(free); err != nil {
		t.Fatalf("PlaceObstacle: %v", err)
	}
	if err := g.PlaceObstacle(free); !errors.Is(err, ErrPlacementConflict) {
		t.Fatalf("duplicate obstacle: got %v, want ErrPlacementConflict", err)
	}
}

func TestGridMoveRobot(t *testing.T) {
	g := NewGrid(3, 3)
	start := Cell{X: 0, Y: 0}
	g.PlaceRobot(RobotID(1), start)

	target := Cell{X: 1, Y: 0}
	if err := g.MoveRobot(RobotID(1), start, target); err != nil {
		t.Fatalf("MoveRobot: %v", err)
	}
	if _, ok := g.RobotAt(start); ok {
		t.Fatalf("expected %v to be vacated", start)
	}
	if id, ok := g.RobotAt(target); !ok || id != RobotID(1) {
		t.Fatalf("expected robot 1 at %v, got %v %v", target, id, ok)
	}

	g.PlaceRobot(RobotID(2), Cell{X: 2, Y: 0})
	if err := g.MoveRobot(RobotID(1), target, Cell{X: 2, Y: 0}); !errors.Is(err, ErrPlacementConflict) {
		t.Fatalf("move onto occupied cell: got %v, want ErrPlacementConflict", err)
	}
}

func TestGridObstaclesEnumeration(t *testing.T) {
	g := NewGrid(4, 4)
	want := []Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	for _, c := range want {
		if err := g.PlaceObstacle(c); err != nil {
			t.Fatalf("PlaceObstacle(%v): %v", c, err)
		}
	}
	got := g.Obstacles()
	if len(got) != len(want) {
		t.Fatalf("Obstacles() len = %d, want %d", len(got), len(want))
	}
	seen := make(map[Cell]bool, len(got))
	for _, c := range got {
		seen[c] = true
	}
	for _, c := range want {
		if !seen[c] {
			t.Errorf("missing obstacle %v in Obstacles()", c)
		}
	}
}

func TestNeighbors4Order(t *testing.T) {
	c := Cell{X: 1, Y: 1}
	want := [4]Cell{{X: 2, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 0}}
	got := c.Neighbors4()
	if got != want {
		t.Fatalf("Neighbors4() = %v, want %v", got, want)
	}
}

func TestManhattan(t *testing.T) {
	a := Cell{X: 0, Y: 0}
	b := Cell{X: 3, Y: 4}
	if d := a.Manhattan(b); d != 7 {
		t.Fatalf("Manhattan() = %d, want 7", d)
	}
}
