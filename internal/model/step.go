package model

import "github.com/elektrokombinacija/warehousesim/internal/robot"

// TickReport is the per-robot delta a tick produces, plus the aggregate
// flag transport layers poll to know when a scenario is finished (spec §6
// step()).
type TickReport struct {
	Tick           int
	Robots         []robot.StepResult
	AllReachedGoal bool
}

// Step advances the simulation by one tick (spec §4.9): a health sweep,
// then each robot's step in insertion order, then auto-assignment of any
// newly idle robots to waiting packages.
func (m *Model) Step() TickReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++

	for _, id := range m.order {
		m.robots[id].HealthSweep(m)
	}

	results := make([]robot.StepResult, 0, len(m.order))
	allReached := true
	for _, id := range m.order {
		r := m.robots[id]
		res := r.Step(m)
		results = append(results, res)
		if !res.ReachedGoal {
			allReached = false
		}
	}

	m.autoAssign()

	return TickReport{
		Tick:           m.tick,
		Robots:         results,
		AllReachedGoal: allReached,
	}
}
