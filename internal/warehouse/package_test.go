package warehouse

import "testing"

func TestPackageLifecycle(t *testing.T) {
	pkg := NewPackage(1, Cell{X: 0, Y: 0}, Cell{X: 5, Y: 5})
	if pkg.Status != StatusWaiting {
		t.Fatalf("new package status = %v, want waiting", pkg.Status)
	}

	pkg.Assign(RobotID(7))
	if pkg.Status != StatusAssigned {
		t.Fatalf("status after Assign = %v, want assigned", pkg.Status)
	}
	if pkg.AssignedRobot == nil || *pkg.AssignedRobot != RobotID(7) {
		t.Fatalf("AssignedRobot = %v, want 7", pkg.AssignedRobot)
	}

	pkg.Pick(3)
	if pkg.Status != StatusPicked {
		t.Fatalf("status after Pick = %v, want picked", pkg.Status)
	}
	if pkg.PickupTick == nil || *pkg.PickupTick != 3 {
		t.Fatalf("PickupTick = %v, want 3", pkg.PickupTick)
	}

	pkg.Deliver(14)
	if pkg.Status != StatusDelivered {
		t.Fatalf("status after Deliver = %v, want delivered", pkg.Status)
	}
	if pkg.DeliveryTick == nil || *pkg.DeliveryTick != 14 {
		t.Fatalf("DeliveryTick = %v, want 14", pkg.DeliveryTick)
	}
}

func TestPackageRevert(t *testing.T) {
	pkg := NewPackage(1, Cell{X: 0, Y: 0}, Cell{X: 5, Y: 5})
	pkg.Assign(RobotID(2))
	pkg.Revert()
	if pkg.Status != StatusWaiting {
		t.Fatalf("status after Revert = %v, want waiting", pkg.Status)
	}
	if pkg.AssignedRobot != nil {
		t.Fatalf("AssignedRobot after Revert = %v, want nil", pkg.AssignedRobot)
	}
}

func TestPackageStatusString(t *testing.T) {
	tests := []struct {
		status PackageStatus
		want   string
	}{
		{StatusWaiting, "waiting"},
		{StatusAssigned, "assigned"},
		{StatusPicked, "picked"},
		{StatusDelivered, "delivered"},
		{PackageStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("PackageStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
