package model

import (
	"errors"
	"testing"

	"github.com/elektrokombinacija/warehousesim/internal/robot"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

func mustNewModel(t *testing.T, w, h int) *Model {
	t.Helper()
	m, err := New(Config{Width: w, Height: h, Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewValidatesDimensions(t *testing.T) {
	if _, err := New(Config{Width: 0, Height: 5}); !errors.Is(err, warehouse.ErrValidation) {
		t.Fatalf("New with zero width: got %v, want ErrValidation", err)
	}
}

func TestAddRobotAndStep(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}

	if _, err := m.ChangeGoal(id, warehouse.Cell{X: 3, Y: 0}); err != nil {
		t.Fatalf("ChangeGoal: %v", err)
	}

	for i := 0; i < 3; i++ {
		m.Step()
	}

	snap := m.GetState()
	if len(snap.Robots) != 1 {
		t.Fatalf("GetState().Robots len = %d, want 1", len(snap.Robots))
	}
	r := snap.Robots[0]
	if r.Cur != (warehouse.Cell{X: 3, Y: 0}) {
		t.Fatalf("robot cell = %v, want (3,0)", r.Cur)
	}
	if !r.ReachedGoal {
		t.Fatalf("expected robot to have reached its goal")
	}
	if snap.Tick != 3 {
		t.Fatalf("Tick = %d, want 3", snap.Tick)
	}
}

func TestAddObstacleRejectsReservedCell(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 1, Y: 1}, robot.Config{}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	r := m.robots[id]
	if err := m.AddObstacle(r.Home); !errors.Is(err, warehouse.ErrPlacementConflict) {
		t.Fatalf("AddObstacle on a robot's home: got %v, want ErrPlacementConflict", err)
	}
}

func TestAddObstacleRollsBackOnUnreachableReplan(t *testing.T) {
	m := mustNewModel(t, 3, 1)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	if _, err := m.ChangeGoal(id, warehouse.Cell{X: 2, Y: 0}); err != nil {
		t.Fatalf("ChangeGoal: %v", err)
	}

	blocker := warehouse.Cell{X: 1, Y: 0}
	err = m.AddObstacle(blocker)
	if !errors.Is(err, warehouse.ErrUnreachableGoal) {
		t.Fatalf("AddObstacle on the only corridor: got %v, want ErrUnreachableGoal", err)
	}
	if m.grid.HasObstacle(blocker) {
		t.Fatalf("expected obstacle placement to be rolled back")
	}
}

func TestAssignPackageValidation(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	pkg, err := m.CreatePackage(warehouse.Cell{X: 2, Y: 2}, warehouse.Cell{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	if err := m.AssignPackage(pkg.ID, id); err != nil {
		t.Fatalf("AssignPackage: %v", err)
	}
	if pkg.Status != warehouse.StatusAssigned {
		t.Fatalf("package status = %v, want assigned", pkg.Status)
	}

	// A second assignment of the same (now non-waiting) package must fail.
	if err := m.AssignPackage(pkg.ID, id); !errors.Is(err, warehouse.ErrInvalidAssignment) {
		t.Fatalf("re-assigning an already-assigned package: got %v, want ErrInvalidAssignment", err)
	}
}

func TestCreatePackagesCyclesPools(t *testing.T) {
	m := mustNewModel(t, 10, 10)
	pools := [][2]warehouse.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 1}},
		{{X: 2, Y: 2}, {X: 3, Y: 3}},
	}
	pkgs, err := m.CreatePackages(3, pools)
	if err != nil {
		t.Fatalf("CreatePackages: %v", err)
	}
	if len(pkgs) != 3 {
		t.Fatalf("CreatePackages returned %d packages, want 3", len(pkgs))
	}
	if pkgs[0].Pickup != pools[0][0] || pkgs[1].Pickup != pools[1][0] || pkgs[2].Pickup != pools[0][0] {
		t.Fatalf("CreatePackages did not cycle through pools as expected: %+v", pkgs)
	}
}

func TestAutoAssignPairsWaitingPackageWithIdleRobot(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	pkg, err := m.CreatePackage(warehouse.Cell{X: 2, Y: 2}, warehouse.Cell{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	m.Step()

	if pkg.Status == warehouse.StatusWaiting {
		t.Fatalf("expected autoAssign to pick up the waiting package with the idle robot %d", id)
	}
}

func TestAutoAssignIsDeterministicAcrossSimultaneousWaitingPackages(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	// Create several packages waiting at once; regardless of map iteration
	// order, autoAssign must always claim the lowest package ID first.
	pkgFirst, err := m.CreatePackage(warehouse.Cell{X: 3, Y: 3}, warehouse.Cell{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	pkgSecond, err := m.CreatePackage(warehouse.Cell{X: 1, Y: 1}, warehouse.Cell{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}
	if pkgFirst.ID >= pkgSecond.ID {
		t.Fatalf("expected CreatePackage to hand out increasing IDs, got %d then %d", pkgFirst.ID, pkgSecond.ID)
	}

	m.Step()

	if pkgFirst.Status != warehouse.StatusAssigned {
		t.Fatalf("expected the lowest-ID waiting package (%d) to be assigned first, got status %v", pkgFirst.ID, pkgFirst.Status)
	}
	if pkgFirst.AssignedRobot == nil || *pkgFirst.AssignedRobot != id {
		t.Fatalf("pkgFirst.AssignedRobot = %v, want %v", pkgFirst.AssignedRobot, id)
	}
	if pkgSecond.Status != warehouse.StatusWaiting {
		t.Fatalf("expected the higher-ID package (%d) to remain waiting since the only robot was claimed, got %v", pkgSecond.ID, pkgSecond.Status)
	}
}

func TestExportPathCoordinatesFormat(t *testing.T) {
	m := mustNewModel(t, 5, 5)
	id, err := m.AddRobot(warehouse.Cell{X: 0, Y: 0}, robot.Config{MaxBattery: 100, BatteryLevel: 100, BatteryDrainRate: 1}, true)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	if _, err := m.ChangeGoal(id, warehouse.Cell{X: 2, Y: 0}); err != nil {
		t.Fatalf("ChangeGoal: %v", err)
	}

	out := m.ExportPathCoordinates()
	want := "0,1,2\n0,0,0\n\n"
	if out != want {
		t.Fatalf("ExportPathCoordinates() = %q, want %q", out, want)
	}
}
