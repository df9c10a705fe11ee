package robot

import (
	"math/rand"

	"github.com/elektrokombinacija/warehousesim/internal/planner"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// PeerInfo is what a robot is allowed to know about another robot: enough
// to arbitrate collisions (spec §4.7) and to avoid cells in planning, but
// never a direct reference to the peer's Robot struct.
type PeerInfo struct {
	ID               warehouse.RobotID
	Cell             warehouse.Cell
	Goal             warehouse.Cell
	AtGoal           bool
	Battery          int
	MaxBattery       int
	CriticalBattery  bool
	WaitingForCharge bool
	Priority         int
	CarryingPicked   bool
}

// BatteryPercentage is (Battery/MaxBattery)*100, or 0 if MaxBattery is 0.
func (p PeerInfo) BatteryPercentage() float64 {
	if p.MaxBattery == 0 {
		return 0
	}
	return float64(p.Battery) / float64(p.MaxBattery) * 100
}

// peerView adapts a []PeerInfo slice to planner.Peers.
type peerView []PeerInfo

func (v peerView) Positions() []planner.PeerState {
	out := make([]planner.PeerState, len(v))
	for i, p := range v {
		out[i] = planner.PeerState{Cell: p.Cell, AtGoal: p.AtGoal}
	}
	return out
}

// StationCandidate is a station ranked for battery-driven selection
// (spec §4.6).
type StationCandidate struct {
	ID           warehouse.StationID
	Cell         warehouse.Cell
	Occupation   int
	DistanceToIt int
}

// ModelView is the narrow surface of the model a robot's Step needs: grid
// queries, a snapshot of peers, station operations, and the ability to
// commit a move. It exists so package robot never imports package model,
// mirroring the teacher's avoidance of core.Robot -> core.Instance
// back-references (spec §9 design note).
type ModelView interface {
	planner.Obstacles

	// Tick returns the current model tick counter.
	Tick() int

	// Peers returns a snapshot of every other robot's relevant state.
	Peers(self warehouse.RobotID) []PeerInfo

	// CommitMove moves self from `from` to `to` if `to` is currently free
	// of other robots. Returns false if the target is occupied.
	CommitMove(self warehouse.RobotID, from, to warehouse.Cell) bool

	// Stations returns every station candidate except `exclude`, each with
	// its occupation and its distance to `from`. The order is not a ranking;
	// the caller ranks candidates (spec §4.6) since that depends on the
	// robot's own state.
	Stations(from warehouse.Cell, exclude warehouse.StationID) []StationCandidate

	// StationEnqueue/Dequeue/IsNextInQueue/StartCharging/FinishCharging
	// delegate to the named station's queue (spec §4.3).
	StationEnqueue(id warehouse.StationID, self warehouse.RobotID) bool
	StationDequeue(id warehouse.StationID, self warehouse.RobotID)
	StationIsNextInQueue(id warehouse.StationID, self warehouse.RobotID) bool
	StationStartCharging(id warehouse.StationID, self warehouse.RobotID) bool
	StationFinishCharging(id warehouse.StationID, self warehouse.RobotID)
	StationChargingRate(id warehouse.StationID) int
	StationCell(id warehouse.StationID) (warehouse.Cell, bool)

	// RecordDelivery appends a delivered package to model-level stats.
	RecordDelivery(pkg *warehouse.Package)

	// Rand returns the model's source of randomness, for detour waypoint
	// offsets (spec §4.2) and random-probe alternative routes (spec §4.8).
	Rand() *rand.Rand
}

// plannerPeers builds the planner.Peers view for self from a ModelView.
func plannerPeers(mv ModelView, self warehouse.RobotID) planner.Peers {
	return peerView(mv.Peers(self))
}

// PeerView adapts a []PeerInfo slice to planner.Peers, for callers outside
// this package (internal/model) that need to replan a robot using the same
// peer-avoidance rules Step uses.
func PeerView(infos []PeerInfo) planner.Peers {
	return peerView(infos)
}
