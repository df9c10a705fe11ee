// Package robot implements the per-agent robot step machine (spec §4.5):
// idle / tasked / charging / emergency state, interleaved with battery
// management, emergency rerouting, and charge-queue acquisition.
//
// A Robot never holds a direct reference to its peers or to the model; it
// looks them up through the narrow ModelView interface passed into Step,
// following the teacher's own avoidance of back-references (core.Robot
// never points at core.Instance in the retrieval pack) and the design
// note that robots should use stable ids through an arena-owning Model
// rather than mutable aliasing.
package robot

import (
	"github.com/elektrokombinacija/warehousesim/internal/planner"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

const (
	// alternativePathsHistory bounds the re-proposal rejection history
	// (spec §3, §4.8).
	alternativePathsHistory = 3

	justChargedCooldownTicks = 5

	lowBatteryThresholdDefault      = 30
	criticalBatteryThresholdDefault = 20
	emergencyBatteryThresholdDefault = 10
	energySavingThreshold            = 20
)

// Config holds the per-robot battery/behavior parameters recognized at
// creation time (spec §6 initialize-time configuration).
type Config struct {
	MaxBattery               int
	BatteryDrainRate         int
	BatteryLevel             int
	LowBatteryThreshold      int // percent
	CriticalBatteryThreshold int // percent
	EmergencyBatteryThreshold int // percent
	EnergySavingDrainRate    int
	Color                    string
	Idle                     bool
}

// DefaultConfig fills in the documented defaults for any zero fields.
func DefaultConfig(c Config) Config {
	if c.MaxBattery == 0 {
		c.MaxBattery = 100
	}
	if c.BatteryDrainRate == 0 {
		c.BatteryDrainRate = 1
	}
	if c.BatteryLevel == 0 {
		c.BatteryLevel = c.MaxBattery
	}
	if c.LowBatteryThreshold == 0 {
		c.LowBatteryThreshold = lowBatteryThresholdDefault
	}
	if c.CriticalBatteryThreshold == 0 {
		c.CriticalBatteryThreshold = criticalBatteryThresholdDefault
	}
	if c.EmergencyBatteryThreshold == 0 {
		c.EmergencyBatteryThreshold = emergencyBatteryThresholdDefault
	}
	if c.EnergySavingDrainRate == 0 {
		c.EnergySavingDrainRate = c.BatteryDrainRate
	}
	if c.Color == "" {
		c.Color = "red"
	}
	return c
}

// Robot is one mobile agent. Every field named in spec §3 is represented.
type Robot struct {
	ID    warehouse.RobotID
	Color string
	Home  warehouse.Cell

	Cur     warehouse.Cell
	Goal    warehouse.Cell
	Path    planner.Path // planner output; Path[0] == Cur whenever non-empty

	MaxBattery       int
	BatteryLevel     int
	DrainRate        int
	EnergySavingRate int

	LowBatteryThreshold       int
	CriticalBatteryThreshold  int
	EmergencyBatteryThreshold int

	// Behavioral flags (spec §3).
	Idle              bool
	Charging          bool
	WaitingForCharge  bool
	CriticalBattery   bool
	EmergencyRoute    bool
	EnergySavingMode  bool
	JustCharged       bool
	JustChargedTicks  int
	ReachedGoal       bool
	ReturningToTask   bool

	CarryingPackage     *warehouse.Package
	PackageDestination  *warehouse.Cell

	Priority int

	BlockedCount           int
	PositionUnchangedCount int
	WaitingTime            int
	LastCell               warehouse.Cell

	AlternativePathsTried []planner.Path

	StepsTaken             int
	TotalPackagesDelivered int

	// CurrentStation is set while charging or traveling to a station, so
	// the robot can locate the station it queued at without scanning all
	// stations every tick.
	CurrentStation *warehouse.StationID
}

// New creates a robot at start with the given goal and config; the robot
// is idle only if cfg.Idle is set.
// If cfg.Idle is false and start != goal, the caller is expected to follow
// up with a plan (e.g. via an assignment); New itself never plans.
func New(id warehouse.RobotID, start, goal warehouse.Cell, cfg Config) *Robot {
	cfg = DefaultConfig(cfg)
	return &Robot{
		ID:                        id,
		Color:                     cfg.Color,
		Home:                      start,
		Cur:                       start,
		Goal:                      goal,
		LastCell:                  start,
		MaxBattery:                cfg.MaxBattery,
		BatteryLevel:              cfg.BatteryLevel,
		DrainRate:                 cfg.BatteryDrainRate,
		EnergySavingRate:          cfg.EnergySavingDrainRate,
		LowBatteryThreshold:       cfg.LowBatteryThreshold,
		CriticalBatteryThreshold:  cfg.CriticalBatteryThreshold,
		EmergencyBatteryThreshold: cfg.EmergencyBatteryThreshold,
		Idle:                      cfg.Idle,
	}
}

// BatteryPercentage returns the current battery level as a percentage of max.
func (r *Robot) BatteryPercentage() float64 {
	if r.MaxBattery == 0 {
		return 0
	}
	return float64(r.BatteryLevel) / float64(r.MaxBattery) * 100
}

// pushAlternativePath records a newly committed alternative plan, bounded
// to alternativePathsHistory entries (spec §4.8).
func (r *Robot) pushAlternativePath(p planner.Path) {
	r.AlternativePathsTried = append(r.AlternativePathsTried, p)
	if len(r.AlternativePathsTried) > alternativePathsHistory {
		r.AlternativePathsTried = r.AlternativePathsTried[len(r.AlternativePathsTried)-alternativePathsHistory:]
	}
}

// wasRecentlyTried reports whether p matches the current path or any
// recently committed alternative.
func (r *Robot) wasRecentlyTried(p planner.Path) bool {
	if planner.Equal(p, r.Path) {
		return true
	}
	for _, prev := range r.AlternativePathsTried {
		if planner.Equal(p, prev) {
			return true
		}
	}
	return false
}

// ChangeGoal sets a new goal and replans from the robot's current cell.
// Resets ReachedGoal/ReturningToTask (supplemented from the original
// pathfinding_model.py's change_goal). Returns false (ErrUnreachableGoal
// semantics are the model's to report) if no path exists; the robot is
// left on its prior plan in that case, per spec §7.
func (r *Robot) ChangeGoal(obs planner.Obstacles, peers planner.Peers, goal warehouse.Cell) bool {
	path := planner.Plain(obs, peers, r.Cur, goal)
	if len(path) == 0 {
		path = planner.RobotPenalized(obs, peers, r.Cur, goal, 1)
	}
	if len(path) == 0 {
		return false
	}
	r.Goal = goal
	r.Path = path
	r.ReachedGoal = false
	r.ReturningToTask = false
	return true
}
