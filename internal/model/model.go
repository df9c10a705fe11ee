// Package model is the orchestrator: it owns the grid, the charging
// stations, the packages, and every robot in an arena-like fashion, and
// drives the per-tick coordination loop (spec §4.9). Robots never hold a
// reference into this package; they look peers and stations up through the
// narrow robot.ModelView interface that *Model satisfies, following the
// teacher's avoidance of core.Robot -> core.Instance back-references.
package model

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/elektrokombinacija/warehousesim/internal/robot"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// Config configures a Model at construction time (spec §6 initialize()).
type Config struct {
	Width  int
	Height int
	Seed   int64
}

// Model is a single simulation instance. The transport layer (outside this
// module's scope) must serialize every call behind one dispatcher; Model
// itself only guards against concurrent misuse with a mutex, it does not
// attempt to be lock-free or reentrant-safe for overlapping calls.
type Model struct {
	mu sync.Mutex

	grid     *warehouse.Grid
	stations map[warehouse.StationID]*warehouse.Station
	packages map[warehouse.PackageID]*warehouse.Package
	robots   map[warehouse.RobotID]*robot.Robot

	order []warehouse.RobotID // insertion order; the tiebreak for a tick

	nextRobotID   warehouse.RobotID
	nextPackageID warehouse.PackageID
	nextStationID warehouse.StationID

	tick      int
	delivered []*warehouse.Package

	rng *rand.Rand
}

// New creates an empty model over a width x height grid (spec §6
// initialize(width, height, ...); robots/stations/obstacles are added via
// the dedicated Add* operations so each can be validated independently).
func New(cfg Config) (*Model, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("new model %dx%d: %w", cfg.Width, cfg.Height, warehouse.ErrValidation)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	return &Model{
		grid:     warehouse.NewGrid(cfg.Width, cfg.Height),
		stations: make(map[warehouse.StationID]*warehouse.Station),
		packages: make(map[warehouse.PackageID]*warehouse.Package),
		robots:   make(map[warehouse.RobotID]*robot.Robot),
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Tick implements robot.ModelView.
func (m *Model) Tick() int { return m.tick }

// IsInside implements planner.Obstacles (embedded in robot.ModelView).
func (m *Model) IsInside(c warehouse.Cell) bool { return m.grid.IsInside(c) }

// HasObstacle implements planner.Obstacles.
func (m *Model) HasObstacle(c warehouse.Cell) bool { return m.grid.HasObstacle(c) }

// Peers implements robot.ModelView: a snapshot of every other robot's
// relevant state, never a live reference.
func (m *Model) Peers(self warehouse.RobotID) []robot.PeerInfo {
	out := make([]robot.PeerInfo, 0, len(m.robots))
	for _, id := range m.order {
		if id == self {
			continue
		}
		r, ok := m.robots[id]
		if !ok {
			continue
		}
		out = append(out, robot.PeerInfo{
			ID:               r.ID,
			Cell:             r.Cur,
			Goal:             r.Goal,
			AtGoal:           r.Cur == r.Goal,
			Battery:          r.BatteryLevel,
			MaxBattery:       r.MaxBattery,
			CriticalBattery:  r.CriticalBattery,
			WaitingForCharge: r.WaitingForCharge,
			Priority:         r.Priority,
			CarryingPicked:   r.CarryingPackage != nil && r.CarryingPackage.Status == warehouse.StatusPicked,
		})
	}
	return out
}

// CommitMove implements robot.ModelView: moves self on the grid if `to` is
// currently free of other robots.
func (m *Model) CommitMove(self warehouse.RobotID, from, to warehouse.Cell) bool {
	if err := m.grid.MoveRobot(warehouse.RobotID(self), from, to); err != nil {
		return false
	}
	return true
}

// Stations implements robot.ModelView: every station candidate (except
// `exclude`) in station-ID order, each with its occupation and its distance
// to `from`. Ranking (spec §4.6's canReach filter and ETA) is left to the
// robot package, since it needs the robot's own battery state.
func (m *Model) Stations(from warehouse.Cell, exclude warehouse.StationID) []robot.StationCandidate {
	out := make([]robot.StationCandidate, 0, len(m.stations))
	for id, s := range m.stations {
		if id == exclude {
			continue
		}
		out = append(out, robot.StationCandidate{
			ID:           id,
			Cell:         s.Cell,
			Occupation:   s.Occupation(),
			DistanceToIt: from.Manhattan(s.Cell),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Model) StationEnqueue(id warehouse.StationID, self warehouse.RobotID) bool {
	s, ok := m.stations[id]
	if !ok {
		return false
	}
	return s.Enqueue(self)
}

func (m *Model) StationDequeue(id warehouse.StationID, self warehouse.RobotID) {
	if s, ok := m.stations[id]; ok {
		s.Dequeue(self)
	}
}

func (m *Model) StationIsNextInQueue(id warehouse.StationID, self warehouse.RobotID) bool {
	s, ok := m.stations[id]
	return ok && s.IsNextInQueue(self)
}

func (m *Model) StationStartCharging(id warehouse.StationID, self warehouse.RobotID) bool {
	s, ok := m.stations[id]
	if !ok {
		return false
	}
	return s.StartCharging(self)
}

func (m *Model) StationFinishCharging(id warehouse.StationID, self warehouse.RobotID) {
	if s, ok := m.stations[id]; ok {
		s.FinishCharging(self)
	}
}

func (m *Model) StationChargingRate(id warehouse.StationID) int {
	if s, ok := m.stations[id]; ok {
		return s.ChargingRate
	}
	return 0
}

func (m *Model) StationCell(id warehouse.StationID) (warehouse.Cell, bool) {
	s, ok := m.stations[id]
	if !ok {
		return warehouse.Cell{}, false
	}
	return s.Cell, true
}

// RecordDelivery implements robot.ModelView: appends a delivered package to
// the model-level stats used by GetState's aggregates.
func (m *Model) RecordDelivery(pkg *warehouse.Package) {
	m.delivered = append(m.delivered, pkg)
}

// Rand implements robot.ModelView: the model's seeded source of randomness,
// shared by every robot's detour and random-probe searches so a scenario
// replayed with the same seed is reproducible.
func (m *Model) Rand() *rand.Rand {
	return m.rng
}

// reservedCell reports whether c is a robot's home/goal or a station cell,
// and therefore ineligible for obstacle placement (spec §4.1).
func (m *Model) reservedCell(c warehouse.Cell) bool {
	for _, s := range m.stations {
		if s.Cell == c {
			return true
		}
	}
	for _, r := range m.robots {
		if r.Home == c || r.Goal == c {
			return true
		}
	}
	return false
}

// exportCoordinates renders the plain-text path-coordinate format (spec
// §6): per robot, an x-series line, a y-series line, and a blank separator.
func exportCoordinates(robots []*robot.Robot) string {
	var b strings.Builder
	for _, r := range robots {
		xs := make([]string, len(r.Path))
		ys := make([]string, len(r.Path))
		for i, c := range r.Path {
			xs[i] = fmt.Sprintf("%d", c.X)
			ys[i] = fmt.Sprintf("%d", c.Y)
		}
		b.WriteString(strings.Join(xs, ","))
		b.WriteByte('\n')
		b.WriteString(strings.Join(ys, ","))
		b.WriteByte('\n')
		b.WriteByte('\n')
	}
	return b.String()
}
