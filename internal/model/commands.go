package model

import (
	"fmt"
	"sort"

	"github.com/elektrokombinacija/warehousesim/internal/planner"
	"github.com/elektrokombinacija/warehousesim/internal/robot"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// AddObstacle places a static obstacle (spec §4.1, §4.10). If the cell is
// reserved (a robot's home/goal, or a station) it fails with
// ErrPlacementConflict. Otherwise every robot that is not idle, charging,
// or waiting for a charge is replanned from its current cell to its current
// destination; if any replan fails, the obstacle is rolled back and
// ErrUnreachableGoal is returned, leaving the world exactly as it was.
// Robots that are charging or heading to a station keep their current
// plans and are not checked against the new obstacle.
func (m *Model) AddObstacle(c warehouse.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reservedCell(c) {
		return fmt.Errorf("add obstacle at %v: %w", c, warehouse.ErrPlacementConflict)
	}
	if err := m.grid.PlaceObstacle(c); err != nil {
		return fmt.Errorf("add obstacle at %v: %w", c, err)
	}

	type saved struct {
		id   warehouse.RobotID
		path planner.Path
	}
	var backups []saved
	for _, id := range m.order {
		r := m.robots[id]
		if r.Idle || r.Charging || r.WaitingForCharge {
			continue
		}
		backups = append(backups, saved{id: id, path: r.Path})
		dest := r.Goal
		if r.PackageDestination != nil {
			dest = *r.PackageDestination
		}
		peers := robot.PeerView(m.Peers(id))
		path := planner.Plain(m, peers, r.Cur, dest)
		if len(path) == 0 {
			path = planner.RobotPenalized(m, peers, r.Cur, dest, 1)
		}
		if len(path) == 0 {
			m.grid.RemoveObstacle(c)
			for _, b := range backups {
				m.robots[b.id].Path = b.path
			}
			return fmt.Errorf("add obstacle at %v: %w", c, warehouse.ErrUnreachableGoal)
		}
		r.Path = path
	}
	return nil
}

// RemoveObstacle clears a previously placed obstacle (round-trip support
// for spec §8's placeObstacle/removeObstacle law). It never fails: absence
// is a no-op, matching warehouse.Grid.RemoveObstacle.
func (m *Model) RemoveObstacle(c warehouse.Cell) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grid.RemoveObstacle(c)
}

// AddChargingStation places a station overlay at c (spec §4.3). Fails with
// ErrValidation if c is out of bounds, and with ErrPlacementConflict if c
// is an obstacle or already a station.
func (m *Model) AddChargingStation(c warehouse.Cell, chargingRate int) (warehouse.StationID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grid.IsInside(c) {
		return 0, fmt.Errorf("add station at %v: %w", c, warehouse.ErrValidation)
	}
	if m.grid.HasObstacle(c) {
		return 0, fmt.Errorf("add station at %v: %w", c, warehouse.ErrPlacementConflict)
	}
	for _, s := range m.stations {
		if s.Cell == c {
			return 0, fmt.Errorf("add station at %v: %w", c, warehouse.ErrPlacementConflict)
		}
	}
	if chargingRate <= 0 {
		chargingRate = 10
	}
	m.nextStationID++
	id := m.nextStationID
	m.stations[id] = warehouse.NewStation(id, c, chargingRate)
	return id, nil
}

// AddRobot creates a new robot at cell c (spec §6 addRobot). If idle is
// false, the caller is expected to assign a task afterward (goal defaults
// to its start cell, matching idle semantics, until an assignment or
// ChangeGoal moves it).
func (m *Model) AddRobot(c warehouse.Cell, cfg robot.Config, idle bool) (warehouse.RobotID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grid.IsInside(c) {
		return 0, fmt.Errorf("add robot at %v: %w", c, warehouse.ErrValidation)
	}
	if m.grid.HasObstacle(c) {
		return 0, fmt.Errorf("add robot at %v: %w", c, warehouse.ErrPlacementConflict)
	}
	if _, occupied := m.grid.RobotAt(c); occupied {
		return 0, fmt.Errorf("add robot at %v: %w", c, warehouse.ErrPlacementConflict)
	}

	m.nextRobotID++
	id := m.nextRobotID
	cfg.Idle = idle
	r := robot.New(id, c, c, cfg)
	m.robots[id] = r
	m.order = append(m.order, id)
	m.grid.PlaceRobot(warehouse.RobotID(id), c)
	return id, nil
}

// ChangeGoal replans robot id toward a new goal cell (spec §6 changeGoal).
// On failure the robot is left exactly where it was, per spec §7.
func (m *Model) ChangeGoal(id warehouse.RobotID, goal warehouse.Cell) (planner.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.robots[id]
	if !ok {
		return nil, fmt.Errorf("change goal for robot %d: %w", id, warehouse.ErrValidation)
	}
	if !m.grid.IsInside(goal) {
		return nil, fmt.Errorf("change goal for robot %d to %v: %w", id, goal, warehouse.ErrValidation)
	}
	peers := robot.PeerView(m.Peers(id))
	if !r.ChangeGoal(m, peers, goal) {
		return nil, fmt.Errorf("change goal for robot %d to %v: %w", id, goal, warehouse.ErrUnreachableGoal)
	}
	r.Idle = false
	return r.Path, nil
}

// CreatePackage creates a single waiting package (spec §6 createPackage).
func (m *Model) CreatePackage(pickup, delivery warehouse.Cell) (*warehouse.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPackageLocked(pickup, delivery)
}

func (m *Model) createPackageLocked(pickup, delivery warehouse.Cell) (*warehouse.Package, error) {
	if !m.grid.IsInside(pickup) || !m.grid.IsInside(delivery) {
		return nil, fmt.Errorf("create package %v->%v: %w", pickup, delivery, warehouse.ErrValidation)
	}
	m.nextPackageID++
	id := m.nextPackageID
	pkg := warehouse.NewPackage(id, pickup, delivery)
	m.packages[id] = pkg
	return pkg, nil
}

// CreatePackages creates `count` packages, cycling through the given
// pickup/delivery pools (spec §6 createPackages(count, fromPools)).
func (m *Model) CreatePackages(count int, pools [][2]warehouse.Cell) ([]*warehouse.Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(pools) == 0 {
		return nil, fmt.Errorf("create %d packages: %w", count, warehouse.ErrValidation)
	}
	out := make([]*warehouse.Package, 0, count)
	for i := 0; i < count; i++ {
		pair := pools[i%len(pools)]
		pkg, err := m.createPackageLocked(pair[0], pair[1])
		if err != nil {
			return out, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// AssignPackage matches a waiting package to an idle, non-charging robot
// (spec §4.4): orders the robot's goal to the pickup cell and replans.
func (m *Model) AssignPackage(pkgID warehouse.PackageID, robotID warehouse.RobotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignLocked(pkgID, robotID)
}

func (m *Model) assignLocked(pkgID warehouse.PackageID, robotID warehouse.RobotID) error {
	pkg, ok := m.packages[pkgID]
	if !ok || pkg.Status != warehouse.StatusWaiting {
		return fmt.Errorf("assign package %d to robot %d: %w", pkgID, robotID, warehouse.ErrInvalidAssignment)
	}
	r, ok := m.robots[robotID]
	if !ok || !r.Idle || r.Charging || r.CarryingPackage != nil {
		return fmt.Errorf("assign package %d to robot %d: %w", pkgID, robotID, warehouse.ErrInvalidAssignment)
	}

	peers := robot.PeerView(m.Peers(robotID))
	if !r.ChangeGoal(m, peers, pkg.Pickup) {
		return fmt.Errorf("assign package %d to robot %d: %w", pkgID, robotID, warehouse.ErrUnreachableGoal)
	}
	pkg.Assign(robotID)
	dest := pkg.Pickup
	r.CarryingPackage = pkg
	r.PackageDestination = &dest
	r.Idle = false
	return nil
}

// autoAssign greedily pairs every waiting package with an idle,
// non-charging robot in insertion order (spec §4.9(d)).
func (m *Model) autoAssign() {
	var waiting []warehouse.PackageID
	for id, pkg := range m.packages {
		if pkg.Status == warehouse.StatusWaiting {
			waiting = append(waiting, id)
		}
	}
	if len(waiting) == 0 {
		return
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i] < waiting[j] })
	for _, pkgID := range waiting {
		for _, robotID := range m.order {
			r := m.robots[robotID]
			if !r.Idle || r.Charging || r.CarryingPackage != nil {
				continue
			}
			if m.assignLocked(pkgID, robotID) == nil {
				break
			}
		}
	}
}

// ExportPathCoordinates renders every robot's remaining path in the
// plain-text coordinate format of spec §6.
func (m *Model) ExportPathCoordinates() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	robots := make([]*robot.Robot, 0, len(m.order))
	for _, id := range m.order {
		robots = append(robots, m.robots[id])
	}
	return exportCoordinates(robots)
}
