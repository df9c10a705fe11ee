package model

import (
	"sort"

	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// RobotSnapshot is the externally visible state of one robot (spec §6
// getState()).
type RobotSnapshot struct {
	ID                     warehouse.RobotID
	Color                  string
	Home                   warehouse.Cell
	Cur                    warehouse.Cell
	Goal                   warehouse.Cell
	Path                   []warehouse.Cell
	Battery                int
	MaxBattery             int
	Idle                   bool
	Charging               bool
	WaitingForCharge       bool
	CriticalBattery        bool
	EmergencyRoute         bool
	EnergySavingMode       bool
	CarryingPackage        *warehouse.PackageID
	Priority               int
	StepsTaken             int
	TotalPackagesDelivered int
	ReachedGoal            bool
}

// StationSnapshot is the externally visible state of one charging station.
type StationSnapshot struct {
	ID         warehouse.StationID
	Cell       warehouse.Cell
	Rate       int
	Queue      []warehouse.RobotID
	Active     *warehouse.RobotID
	Occupation int
}

// Snapshot is the full state returned by GetState (spec §6 getState()).
type Snapshot struct {
	Tick      int
	Width     int
	Height    int
	Robots    []RobotSnapshot
	Obstacles []warehouse.Cell
	Stations  []StationSnapshot
	Active    []*warehouse.Package
	Delivered []*warehouse.Package
}

// GetState returns a full snapshot: grid size, robots, obstacles, stations,
// active and delivered packages, aggregate stats (spec §6 getState()).
func (m *Model) GetState() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	robots := make([]RobotSnapshot, 0, len(m.order))
	for _, id := range m.order {
		r := m.robots[id]
		path := make([]warehouse.Cell, len(r.Path))
		copy(path, r.Path)
		var carrying *warehouse.PackageID
		if r.CarryingPackage != nil {
			pid := r.CarryingPackage.ID
			carrying = &pid
		}
		robots = append(robots, RobotSnapshot{
			ID:                     r.ID,
			Color:                  r.Color,
			Home:                   r.Home,
			Cur:                    r.Cur,
			Goal:                   r.Goal,
			Path:                   path,
			Battery:                r.BatteryLevel,
			MaxBattery:             r.MaxBattery,
			Idle:                   r.Idle,
			Charging:               r.Charging,
			WaitingForCharge:       r.WaitingForCharge,
			CriticalBattery:        r.CriticalBattery,
			EmergencyRoute:         r.EmergencyRoute,
			EnergySavingMode:       r.EnergySavingMode,
			CarryingPackage:        carrying,
			Priority:               r.Priority,
			StepsTaken:             r.StepsTaken,
			TotalPackagesDelivered: r.TotalPackagesDelivered,
			ReachedGoal:            r.ReachedGoal,
		})
	}

	stationIDs := make([]warehouse.StationID, 0, len(m.stations))
	for id := range m.stations {
		stationIDs = append(stationIDs, id)
	}
	sort.Slice(stationIDs, func(i, j int) bool { return stationIDs[i] < stationIDs[j] })
	stations := make([]StationSnapshot, 0, len(stationIDs))
	for _, id := range stationIDs {
		s := m.stations[id]
		queue := s.Queue()
		var activeID *warehouse.RobotID
		if a, ok := s.Active(); ok {
			activeID = &a
		}
		stations = append(stations, StationSnapshot{
			ID:         id,
			Cell:       s.Cell,
			Rate:       s.ChargingRate,
			Queue:      queue,
			Active:     activeID,
			Occupation: s.Occupation(),
		})
	}

	var active, delivered []*warehouse.Package
	pkgIDs := make([]warehouse.PackageID, 0, len(m.packages))
	for id := range m.packages {
		pkgIDs = append(pkgIDs, id)
	}
	sort.Slice(pkgIDs, func(i, j int) bool { return pkgIDs[i] < pkgIDs[j] })
	for _, id := range pkgIDs {
		pkg := m.packages[id]
		if pkg.Status == warehouse.StatusDelivered {
			delivered = append(delivered, pkg)
		} else {
			active = append(active, pkg)
		}
	}

	return Snapshot{
		Tick:      m.tick,
		Width:     m.grid.Width,
		Height:    m.grid.Height,
		Robots:    robots,
		Obstacles: m.grid.Obstacles(),
		Stations:  stations,
		Active:    active,
		Delivered: delivered,
	}
}
