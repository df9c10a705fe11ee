package warehouse

// PackageID identifies a parcel. Monotonically increasing, never reused.
type PackageID int

// PackageStatus is the parcel lifecycle state. Transitions are monotonic:
// waiting -> assigned -> picked -> delivered. Once delivered, a Package is
// never mutated again.
type PackageStatus int

const (
	StatusWaiting PackageStatus = iota
	StatusAssigned
	StatusPicked
	StatusDelivered
)

func (s PackageStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusAssigned:
		return "assigned"
	case StatusPicked:
		return "picked"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Package is a parcel moving through the pickup -> delivery lifecycle.
type Package struct {
	ID       PackageID
	Pickup   Cell
	Delivery Cell
	Status   PackageStatus

	AssignedRobot *RobotID
	PickupTick    *int
	DeliveryTick  *int
}

// NewPackage creates a waiting package with the given pickup/delivery cells.
func NewPackage(id PackageID, pickup, delivery Cell) *Package {
	return &Package{
		ID:       id,
		Pickup:   pickup,
		Delivery: delivery,
		Status:   StatusWaiting,
	}
}

// Assign transitions the package to assigned and records the owning robot.
// Caller (the model) is responsible for checking Status == StatusWaiting
// first; this method does not re-validate, to keep the lifecycle mutation
// itself unconditional and auditable.
func (p *Package) Assign(robot RobotID) {
	id := robot
	p.AssignedRobot = &id
	p.Status = StatusAssigned
}

// Pick transitions the package to picked, recording the tick.
func (p *Package) Pick(tick int) {
	t := tick
	p.PickupTick = &t
	p.Status = StatusPicked
}

// Deliver transitions the package to delivered, recording the tick.
func (p *Package) Deliver(tick int) {
	t := tick
	p.DeliveryTick = &t
	p.Status = StatusDelivered
}

// Revert reverts an assigned-but-unpicked package back to waiting, clearing
// its assignment. Used by deadlock reset (spec §4.5 step 13) and by failed
// charge-return (spec §4.5 step 8).
func (p *Package) Revert() {
	p.AssignedRobot = nil
	p.Status = StatusWaiting
}
