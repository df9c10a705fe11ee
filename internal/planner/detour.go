package planner

import (
	"math/rand"

	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// Detour picks a waypoint from a fixed offset set plus two random offsets,
// and returns the first successful concatenation of plain(start, waypoint)
// and plain(waypoint, goal). rng is caller-injected so scenario tests stay
// deterministic, the way the teacher's tools/gen_instances and
// internal/algo/lognormal.go thread a seeded *rand.Rand rather than using
// the global source.
func Detour(obs Obstacles, peers Peers, start, goal warehouse.Cell, rng *rand.Rand) Path {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	dx := goal.X - start.X
	dy := goal.Y - start.Y
	// Perpendicular unit offset to the start->goal vector, scaled by 3.
	perpX, perpY := -dy, dx
	norm := perpX*perpX + perpY*perpY
	if norm == 0 {
		perpX, perpY = 1, 0
		norm = 1
	}

	candidates := []warehouse.Cell{
		offsetTowards(start, goal, perpX, perpY, 3, norm),
		offsetTowards(start, goal, -perpX, -perpY, 3, norm),
		{X: start.X + rng.Intn(11) - 5, Y: start.Y + rng.Intn(11) - 5},
		{X: start.X + rng.Intn(11) - 5, Y: start.Y + rng.Intn(11) - 5},
	}

	for _, waypoint := range candidates {
		if !obs.IsInside(waypoint) || obs.HasObstacle(waypoint) {
			continue
		}
		first := Plain(obs, peers, start, waypoint)
		if len(first) == 0 {
			continue
		}
		second := Plain(obs, peers, waypoint, goal)
		if len(second) == 0 {
			continue
		}
		composite := make(Path, 0, len(first)+len(second)-1)
		composite = append(composite, first...)
		composite = append(composite, second[1:]...)
		return composite
	}
	return nil
}

// offsetTowards places a waypoint near the start->goal midpoint, displaced
// perpendicular by `dist` cells.
func offsetTowards(start, goal warehouse.Cell, px, py, dist, norm int) warehouse.Cell {
	midX := (start.X + goal.X) / 2
	midY := (start.Y + goal.Y) / 2
	// Scale the perpendicular unit vector (approximated with integer math)
	// to roughly `dist` cells.
	scale := dist
	if norm > 1 {
		scale = dist
	}
	return warehouse.Cell{
		X: midX + sign(px)*scale,
		Y: midY + sign(py)*scale,
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
