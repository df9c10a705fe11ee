package warehouse

import "fmt"

// Cell is a grid coordinate. Distance between cells is Manhattan.
type Cell struct {
	X, Y int
}

// Manhattan returns the Manhattan distance between c and other.
func (c Cell) Manhattan(other Cell) int {
	return abs(c.X-other.X) + abs(c.Y-other.Y)
}

// Add returns c translated by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Neighbors4 returns the 4-connected neighbors of c, in a fixed order
// (right, left, up, down), so planner tie-breaking is deterministic.
func (c Cell) Neighbors4() [4]Cell {
	return [4]Cell{
		c.Add(1, 0),
		c.Add(-1, 0),
		c.Add(0, 1),
		c.Add(0, -1),
	}
}

// Grid is a finite, non-toroidal W×H cell lattice. It tracks two occupant
// kinds at the cell level (static obstacles and mobile robots) as a tagged
// variant rather than a class hierarchy: the engine never needs to dispatch
// on a richer "agent" type, only ask "is this an obstacle or a robot".
type Grid struct {
	Width, Height int

	obstacles map[Cell]bool
	robots    map[Cell]RobotID
}

// RobotID identifies a robot. Declared here (not in package robot) so Grid
// can track robot occupancy without importing the robot package.
type RobotID int

// NewGrid creates an empty width×height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:     width,
		Height:    height,
		obstacles: make(map[Cell]bool),
		robots:    make(map[Cell]RobotID),
	}
}

// IsInside reports whether c is within grid bounds.
func (g *Grid) IsInside(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// HasObstacle reports whether c holds a static obstacle.
func (g *Grid) HasObstacle(c Cell) bool {
	return g.obstacles[c]
}

// RobotAt returns the robot occupying c, if any.
func (g *Grid) RobotAt(c Cell) (RobotID, bool) {
	id, ok := g.robots[c]
	return id, ok
}

// PlaceObstacle marks c as a static obstacle. It fails with ErrValidation
// if c is out of bounds, and with ErrPlacementConflict if c is already an
// obstacle or currently occupied by a robot. Reserved-cell checks (robot home/goal,
// station overlays) are the caller's responsibility (internal/model),
// since Grid has no notion of goals or stations.
func (g *Grid) PlaceObstacle(c Cell) error {
	if !g.IsInside(c) {
		return fmt.Errorf("place obstacle at %v: %w", c, ErrValidation)
	}
	if g.obstacles[c] {
		return fmt.Errorf("place obstacle at %v: %w", c, ErrPlacementConflict)
	}
	if _, occupied := g.robots[c]; occupied {
		return fmt.Errorf("place obstacle at %v: %w", c, ErrPlacementConflict)
	}
	g.obstacles[c] = true
	return nil
}

// RemoveObstacle clears a previously placed obstacle. No-op if absent.
func (g *Grid) RemoveObstacle(c Cell) {
	delete(g.obstacles, c)
}

// Obstacles returns every currently placed obstacle cell, in no particular
// order; used by snapshot/export operations.
func (g *Grid) Obstacles() []Cell {
	out := make([]Cell, 0, len(g.obstacles))
	for c := range g.obstacles {
		out = append(out, c)
	}
	return out
}

// PlaceRobot registers r at c unconditionally; used at creation time.
// MoveRobot updates occupancy itself after validating the target cell.
func (g *Grid) PlaceRobot(r RobotID, c Cell) {
	g.robots[c] = r
}

// MoveRobot moves r from its current cell to target. It fails if target is
// out of bounds, an obstacle, or already occupied by a different robot.
// Any cell the robot previously occupied is vacated.
func (g *Grid) MoveRobot(r RobotID, from, target Cell) error {
	if !g.IsInside(target) {
		return fmt.Errorf("move robot %d to %v: %w", r, target, ErrValidation)
	}
	if g.obstacles[target] {
		return fmt.Errorf("move robot %d to %v: %w", r, target, ErrPlacementConflict)
	}
	if occupant, ok := g.robots[target]; ok && occupant != r {
		return fmt.Errorf("move robot %d to %v: %w", r, target, ErrPlacementConflict)
	}
	delete(g.robots, from)
	g.robots[target] = r
	return nil
}

// VacateRobot removes any robot occupancy of c without placing that robot
// elsewhere.
func (g *Grid) VacateRobot(c Cell) {
	delete(g.robots, c)
}
