package robot

import "github.com/elektrokombinacija/warehousesim/internal/warehouse"

// StepResult is the per-robot delta a tick produces (spec §6 step()).
type StepResult struct {
	ID          warehouse.RobotID
	Cell        warehouse.Cell
	Battery     int
	Path        []warehouse.Cell
	Charging    bool
	Carrying    bool
	ReachedGoal bool
	StepsTaken  int
}

func (r *Robot) snapshot() StepResult {
	path := make([]warehouse.Cell, len(r.Path))
	copy(path, r.Path)
	return StepResult{
		ID:          r.ID,
		Cell:        r.Cur,
		Battery:     r.BatteryLevel,
		Path:        path,
		Charging:    r.Charging,
		Carrying:    r.CarryingPackage != nil,
		ReachedGoal: r.ReachedGoal,
		StepsTaken:  r.StepsTaken,
	}
}
