package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/warehousesim/internal/model"
	"github.com/elektrokombinacija/warehousesim/internal/robot"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [name]",
	Short: "Run one of the built-in end-to-end scenarios headless and report the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenario,
}

type scenarioFunc func() (*model.Model, int, error)

var scenarios = map[string]scenarioFunc{
	"S1": scenarioS1,
	"S2": scenarioS2,
	"S3": scenarioS3,
	"S4": scenarioS4,
	"S5": scenarioS5,
	"S6": scenarioS6,
}

func runScenario(cmd *cobra.Command, args []string) error {
	name := args[0]
	fn, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q (known: S1..S6)", name)
	}
	m, ticks, err := fn()
	if err != nil {
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	for i := 0; i < ticks; i++ {
		m.Step()
	}
	snap := m.GetState()
	fmt.Printf("scenario %s: tick=%d robots=%d delivered=%d active=%d\n",
		name, snap.Tick, len(snap.Robots), len(snap.Delivered), len(snap.Active))
	for _, r := range snap.Robots {
		fmt.Printf("  robot %d: cur=%v battery=%d/%d idle=%v charging=%v stepsTaken=%d reachedGoal=%v\n",
			r.ID, r.Cur, r.Battery, r.MaxBattery, r.Idle, r.Charging, r.StepsTaken, r.ReachedGoal)
	}
	return nil
}

// scenarioS1 — straight pickup & delivery (spec.md S1).
func scenarioS1() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 10, Height: 10, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.AddChargingStation(warehouse.Cell{X: 9, Y: 9}, 10); err != nil {
		return nil, 0, err
	}
	if _, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true); err != nil {
		return nil, 0, err
	}
	pkg, err := m.CreatePackage(warehouse.Cell{X: 5, Y: 0}, warehouse.Cell{X: 5, Y: 9})
	if err != nil {
		return nil, 0, err
	}
	if err := m.AssignPackage(pkg.ID, 1); err != nil {
		return nil, 0, err
	}
	return m, 14, nil
}

// scenarioS2 — obstacle forces replan (spec.md S2).
func scenarioS2() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 10, Height: 10, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 5}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(id, warehouse.Cell{X: 9, Y: 5}); err != nil {
		return nil, 0, err
	}
	for i := 0; i < 3; i++ {
		m.Step()
	}
	if err := m.AddObstacle(warehouse.Cell{X: 4, Y: 5}); err != nil {
		return nil, 0, err
	}
	return m, 8, nil
}

// scenarioS3 — collision arbitration (spec.md S3).
func scenarioS3() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 5, Height: 5, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	r1, err := m.AddRobot(warehouse.Cell{X: 0, Y: 2}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		return nil, 0, err
	}
	r2, err := m.AddRobot(warehouse.Cell{X: 4, Y: 2}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(r1, warehouse.Cell{X: 4, Y: 2}); err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(r2, warehouse.Cell{X: 0, Y: 2}); err != nil {
		return nil, 0, err
	}
	return m, 10, nil
}

// scenarioS4 — battery-triggered station detour (spec.md S4).
func scenarioS4() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 20, Height: 20, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.AddChargingStation(warehouse.Cell{X: 10, Y: 10}, 10); err != nil {
		return nil, 0, err
	}
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{
		MaxBattery:          100,
		BatteryLevel:        30,
		BatteryDrainRate:    1,
		LowBatteryThreshold: 30,
	}, true)
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(id, warehouse.Cell{X: 19, Y: 19}); err != nil {
		return nil, 0, err
	}
	return m, 80, nil
}

// scenarioS5 — charge queue FIFO (spec.md S5).
func scenarioS5() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 11, Height: 11, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.AddChargingStation(warehouse.Cell{X: 5, Y: 5}, 10); err != nil {
		return nil, 0, err
	}
	r1, err := m.AddRobot(warehouse.Cell{X: 4, Y: 5}, robot.Config{MaxBattery: 100, BatteryLevel: 20, BatteryDrainRate: 1, LowBatteryThreshold: 30}, true)
	if err != nil {
		return nil, 0, err
	}
	r2, err := m.AddRobot(warehouse.Cell{X: 6, Y: 5}, robot.Config{MaxBattery: 100, BatteryLevel: 20, BatteryDrainRate: 1, LowBatteryThreshold: 30}, true)
	if err != nil {
		return nil, 0, err
	}
	_ = r1
	_ = r2
	return m, 20, nil
}

// scenarioS6 — deadlock reset (spec.md S6).
func scenarioS6() (*model.Model, int, error) {
	m, err := model.New(model.Config{Width: 3, Height: 3, Seed: 1})
	if err != nil {
		return nil, 0, err
	}
	r1, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		return nil, 0, err
	}
	r2, err := m.AddRobot(warehouse.Cell{X: 2, Y: 2}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		return nil, 0, err
	}
	if err := m.AddObstacle(warehouse.Cell{X: 1, Y: 1}); err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(r1, warehouse.Cell{X: 2, Y: 2}); err != nil {
		return nil, 0, err
	}
	if _, err := m.ChangeGoal(r2, warehouse.Cell{X: 0, Y: 0}); err != nil {
		return nil, 0, err
	}
	return m, 20, nil
}
