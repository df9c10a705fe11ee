package robot

import (
	"github.com/elektrokombinacija/warehousesim/internal/planner"
	"github.com/elektrokombinacija/warehousesim/internal/warehouse"
)

// Step advances the robot by one tick. It is implemented as a flat
// sequence of guarded stages, ordered exactly as spec §4.5 lists them,
// rather than nested conditionals, so each invariant in spec §8 can be
// audited against a single numbered stage.
func (r *Robot) Step(mv ModelView) StepResult {
	if r.repairChargingInconsistency(mv) {
		return r.snapshot()
	}

	if r.emergencyOverride(mv) {
		return r.snapshot()
	}

	if r.Idle {
		return r.snapshot()
	}

	// Stage 13 (deadlock full reset) supersedes stages 4-12 when it fires
	// at stage 4's entry point.
	if r.fullDeadlockReset(mv) {
		return r.snapshot()
	}

	r.consistencySweep()

	if r.arrivedForTaskProgress(mv) {
		return r.snapshot()
	}

	if r.waitingForChargeAtStation(mv) {
		return r.snapshot()
	}

	if r.ReachedGoal && !r.Charging {
		return r.snapshot()
	}

	if r.Charging {
		r.chargeAtStation(mv)
		return r.snapshot()
	}

	// Stage 9: post-charge cooldown tick. Does not consume the tick.
	r.tickCooldown()

	if r.batteryInsufficientHandled(mv) {
		return r.snapshot()
	}

	r.drainAndMove(mv)
	r.updateDeadlockCounters(mv)
	r.nearStationDeadlockCheck(mv)

	return r.snapshot()
}

// HealthSweep implements the periodic health check the model runs before
// each tick's robot steps (spec §4.9(a)): a low-battery robot not already
// charging or station-bound is forced toward the nearest station using
// Emergency search, and a long-stuck robot is kicked into an alternative
// route with its priority raised.
func (r *Robot) HealthSweep(mv ModelView) {
	if !r.Charging && !r.WaitingForCharge && r.BatteryPercentage() < 15 {
		r.routeToNearestStation(mv, planner.ModeEmergency, 1)
	}
	if r.PositionUnchangedCount > 10 {
		r.alternativeRouteSearch(mv)
		r.Priority += 5
	}
}

// --- Stage 1: inconsistency repair -----------------------------------

func (r *Robot) repairChargingInconsistency(mv ModelView) bool {
	if !r.Charging {
		return false
	}
	stationCell, ok := r.currentStationCell(mv)
	if ok && r.Cur == stationCell {
		return false
	}
	r.Charging = false
	r.WaitingForCharge = false
	if r.BatteryPercentage() < 40 {
		r.routeToNearestStation(mv, planner.ModePlain, 1)
	}
	return true
}

func (r *Robot) currentStationCell(mv ModelView) (warehouse.Cell, bool) {
	if r.CurrentStation == nil {
		return warehouse.Cell{}, false
	}
	return mv.StationCell(*r.CurrentStation)
}

// --- Stage 2: emergency override --------------------------------------

func (r *Robot) emergencyOverride(mv ModelView) bool {
	if r.Charging {
		return false
	}
	if r.BatteryPercentage() > float64(r.EmergencyBatteryThreshold) {
		return false
	}
	r.Priority = 20
	r.CriticalBattery = true
	r.EmergencyRoute = true
	candidates := mv.Stations(r.Cur, 0)
	if len(candidates) == 0 {
		return true
	}
	nearest := nearestByDistance(candidates)
	path := planner.Emergency(mv, r.Cur, nearest.Cell)
	if len(path) == 0 {
		return true
	}
	r.Path = path
	id := nearest.ID
	r.CurrentStation = &id
	r.WaitingForCharge = true
	mv.StationEnqueue(nearest.ID, r.ID)
	return true
}

// --- Stage 4: state consistency sweep ----------------------------------

func (r *Robot) consistencySweep() {
	if len(r.Path) == 0 || r.Path[0] != r.Cur {
		r.Path = planner.Path{r.Cur}
	}
	if r.Charging && r.Idle {
		r.Idle = false
	}
	if r.BatteryPercentage() > 15 {
		r.CriticalBattery = false
		r.EmergencyRoute = false
	}
}

// --- Stage 5: arrived for task progress ---------------------------------

func (r *Robot) arrivedForTaskProgress(mv ModelView) bool {
	if r.CarryingPackage == nil || r.PackageDestination == nil {
		return false
	}
	if r.Cur != *r.PackageDestination {
		return false
	}
	switch r.CarryingPackage.Status {
	case warehouse.StatusAssigned:
		r.CarryingPackage.Pick(mv.Tick())
		dest := r.CarryingPackage.Delivery
		r.PackageDestination = &dest
		r.Priority++
		r.ChangeGoal(mv, plannerPeers(mv, r.ID), dest)
		return true
	case warehouse.StatusPicked:
		r.CarryingPackage.Deliver(mv.Tick())
		mv.RecordDelivery(r.CarryingPackage)
		r.TotalPackagesDelivered++
		r.CarryingPackage = nil
		r.PackageDestination = nil
		r.Idle = true
		r.Path = nil
		return true
	}
	return false
}

// --- Stage 6: waiting for charge, at the station cell --------------------

func (r *Robot) waitingForChargeAtStation(mv ModelView) bool {
	if !r.WaitingForCharge || r.CurrentStation == nil {
		return false
	}
	stationCell, ok := r.currentStationCell(mv)
	if !ok || r.Cur != stationCell {
		return false
	}
	if mv.StationIsNextInQueue(*r.CurrentStation, r.ID) {
		mv.StationStartCharging(*r.CurrentStation, r.ID)
		r.Charging = true
		r.WaitingForCharge = false
		return true
	}
	return true // still queued; idle this tick
}

// --- Stage 8: charging at a station --------------------------------------

func (r *Robot) chargeAtStation(mv ModelView) {
	if r.CurrentStation == nil {
		r.Charging = false
		return
	}
	rate := mv.StationChargingRate(*r.CurrentStation)
	r.BatteryLevel += rate
	if r.BatteryLevel > r.MaxBattery {
		r.BatteryLevel = r.MaxBattery
	}
	if float64(r.BatteryLevel) < float64(r.MaxBattery)*0.95 {
		return
	}

	mv.StationFinishCharging(*r.CurrentStation, r.ID)
	r.Charging = false
	r.WaitingForCharge = false
	r.JustCharged = true
	r.JustChargedTicks = 0
	r.ReturningToTask = true
	r.CurrentStation = nil

	dest := r.taskDestination()
	peers := plannerPeers(mv, r.ID)
	path := planner.Plain(mv, peers, r.Cur, dest)
	if len(path) == 0 {
		path = planner.RobotPenalized(mv, peers, r.Cur, dest, 1)
	}
	if len(path) == 0 {
		path = planner.Detour(mv, peers, r.Cur, dest, mv.Rand())
	}
	if len(path) == 0 {
		if r.CarryingPackage != nil {
			r.CarryingPackage.Revert()
			r.CarryingPackage = nil
			r.PackageDestination = nil
		}
		r.Idle = true
		r.Path = nil
		return
	}
	r.Path = path
	r.Goal = dest
	if len(path) >= 2 {
		next := path[1]
		if mv.CommitMove(r.ID, r.Cur, next) {
			r.Path = r.Path[1:]
			r.Cur = next
			r.StepsTaken++
			r.checkArrival()
		}
	}
}

// taskDestination picks the next place the robot should go: its package
// destination if carrying one, else its original goal.
func (r *Robot) taskDestination() warehouse.Cell {
	if r.PackageDestination != nil {
		return *r.PackageDestination
	}
	return r.Goal
}

func (r *Robot) checkArrival() {
	if r.Cur == r.Goal && !r.Charging && !r.ReturningToTask {
		r.ReachedGoal = true
	}
}

// --- Stage 9: post-charge cooldown ---------------------------------------

func (r *Robot) tickCooldown() {
	if !r.JustCharged {
		return
	}
	r.JustChargedTicks++
	if r.JustChargedTicks > justChargedCooldownTicks {
		r.JustCharged = false
		r.JustChargedTicks = 0
	}
}

// --- Stage 10: battery-sufficiency check ----------------------------------

func (r *Robot) batteryInsufficientHandled(mv ModelView) bool {
	if r.Charging || r.WaitingForCharge || r.JustCharged {
		return false
	}
	if r.CurrentStation != nil {
		return false
	}
	if r.feasibleRemainingPlan(mv) {
		return false
	}
	r.prioritizeStation(mv)
	return r.CurrentStation != nil
}

func (r *Robot) feasibleRemainingPlan(mv ModelView) bool {
	remaining := len(r.Path) - 1
	if remaining < 0 {
		remaining = 0
	}
	battery := r.BatteryPercentage()
	if remaining < 20 && battery > 40 {
		return true
	}
	if remaining < 40 && battery > 60 {
		return true
	}

	// A nearby station overrides the longer-plan check regardless of plan
	// length, per spec §4.5 step 10 and the documented open question
	// (spec §9(a)): this shortcut can pass even a long remaining plan.
	candidates := mv.Stations(r.Cur, 0)
	for _, c := range candidates {
		if c.DistanceToIt <= 3 {
			return true
		}
	}

	drain := r.DrainRate
	if battery < energySavingThreshold {
		drain = r.EnergySavingRate
	}
	safetyMargin := 1.2
	postTripMargin := 0
	if len(candidates) > 0 {
		postTripMargin = nearestByDistance(candidates).DistanceToIt
	}
	needed := float64(remaining+postTripMargin) * float64(drain) * safetyMargin
	return float64(r.BatteryLevel) >= needed
}

func (r *Robot) prioritizeStation(mv ModelView) {
	candidates := mv.Stations(r.Cur, 0)
	if len(candidates) == 0 {
		return
	}
	chosen := r.rankStationsForSelf(candidates)
	path := planner.Plain(mv, plannerPeers(mv, r.ID), r.Cur, chosen.Cell)
	if len(path) == 0 {
		return
	}
	r.Path = path
	id := chosen.ID
	r.CurrentStation = &id
	r.WaitingForCharge = true
	mv.StationEnqueue(chosen.ID, r.ID)
}

// routeToNearestStation is used by stage 1's self-repair: plan toward the
// nearest station using the given search mode.
func (r *Robot) routeToNearestStation(mv ModelView, mode planner.Mode, multiplier int) {
	candidates := mv.Stations(r.Cur, 0)
	if len(candidates) == 0 {
		return
	}
	nearest := nearestByDistance(candidates)
	path := planner.Search(mv, plannerPeers(mv, r.ID), r.Cur, nearest.Cell, mode, multiplier, nil)
	if len(path) == 0 {
		return
	}
	r.Path = path
	id := nearest.ID
	r.CurrentStation = &id
	r.WaitingForCharge = true
	mv.StationEnqueue(nearest.ID, r.ID)
}

// --- Stage 11/12: battery drain, move, collision arbitration --------------

func (r *Robot) drainAndMove(mv ModelView) {
	if len(r.Path) < 2 {
		if len(r.Path) == 1 && r.Cur == r.Path[0] {
			r.arriveAtPathEnd(mv)
		}
		return
	}

	drain := r.DrainRate
	if r.BatteryPercentage() < energySavingThreshold {
		drain = r.EnergySavingRate
		r.EnergySavingMode = true
	} else {
		r.EnergySavingMode = false
	}
	if r.BatteryLevel <= 0 {
		return
	}
	r.BatteryLevel -= drain
	if r.BatteryLevel < 0 {
		r.BatteryLevel = 0
	}
	if r.BatteryLevel == 0 {
		return
	}

	next := r.Path[1]
	if peer, blocked := r.peerAt(mv, next); blocked {
		r.collisionArbitration(mv, peer, next)
		return
	}

	if !mv.CommitMove(r.ID, r.Cur, next) {
		r.collisionArbitration(mv, PeerInfo{}, next)
		return
	}
	r.Path = r.Path[1:]
	r.Cur = next
	r.StepsTaken++
	r.BlockedCount = 0
	r.WaitingTime = 0

	if stationID, ok := r.stationAtCell(mv, r.Cur); ok && r.WaitingForCharge {
		id := stationID
		r.CurrentStation = &id
	} else if r.Cur == r.Goal && !r.Charging && !r.ReturningToTask {
		r.ReachedGoal = true
	}
}

func (r *Robot) arriveAtPathEnd(mv ModelView) {
	if r.Cur == r.Goal && !r.ReturningToTask {
		r.ReachedGoal = true
	}
	if stationID, ok := r.stationAtCell(mv, r.Cur); ok && !r.Charging && r.WaitingForCharge {
		id := stationID
		r.CurrentStation = &id
	}
}

func (r *Robot) stationAtCell(mv ModelView, c warehouse.Cell) (warehouse.StationID, bool) {
	for _, cand := range mv.Stations(c, 0) {
		if cand.Cell == c {
			return cand.ID, true
		}
	}
	return 0, false
}

func (r *Robot) peerAt(mv ModelView, c warehouse.Cell) (PeerInfo, bool) {
	for _, p := range mv.Peers(r.ID) {
		if p.Cell == c {
			return p, true
		}
	}
	return PeerInfo{}, false
}

// collisionArbitration implements spec §4.7's priority comparison and,
// on loss, spec §4.8's alternative-route search.
func (r *Robot) collisionArbitration(mv ModelView, peer PeerInfo, blockedCell warehouse.Cell) {
	if r.winsCollision(peer) && r.BlockedCount < 3 {
		r.BlockedCount++
		r.WaitingTime++
		return
	}
	r.BlockedCount++
	r.WaitingTime++
	r.alternativeRouteSearch(mv)
}

func (r *Robot) winsCollision(peer PeerInfo) bool {
	selfLowBattery := r.CriticalBattery || r.BatteryPercentage() < 8
	peerLowBattery := peer.CriticalBattery || peer.BatteryPercentage() < 8
	if selfLowBattery != peerLowBattery {
		return selfLowBattery
	}

	selfStationUrgent := r.WaitingForCharge && r.BatteryPercentage() < 20
	peerStationUrgent := peer.WaitingForCharge && peer.BatteryPercentage() < 20
	if selfStationUrgent != peerStationUrgent {
		return selfStationUrgent
	}

	if r.WaitingForCharge && peer.WaitingForCharge {
		return r.BatteryPercentage() < peer.BatteryPercentage()
	}

	selfCarrying := r.CarryingPackage != nil && r.CarryingPackage.Status == warehouse.StatusPicked
	if selfCarrying != peer.CarryingPicked {
		return selfCarrying
	}

	if r.Priority != peer.Priority {
		return r.Priority > peer.Priority
	}

	return int(r.ID) < int(peer.ID)
}

// --- Stage 4.8: alternative route search ----------------------------------

func (r *Robot) alternativeRouteSearch(mv ModelView) {
	peers := plannerPeers(mv, r.ID)
	dest := currentDestination(r)

	if p := planner.Plain(mv, peers, r.Cur, dest); len(p) > 0 && !r.wasRecentlyTried(p) {
		r.commitAlternative(p)
		return
	}
	multiplier := 1
	if r.CriticalBattery {
		multiplier = 2
	}
	if p := planner.RobotPenalized(mv, peers, r.Cur, dest, multiplier); len(p) > 0 && !r.wasRecentlyTried(p) {
		r.commitAlternative(p)
		return
	}
	if p := planner.Detour(mv, peers, r.Cur, dest, mv.Rand()); len(p) > 0 && !r.wasRecentlyTried(p) {
		r.commitAlternative(p)
		return
	}
	// Random probe: up to five random cells, or cells adjacent to known
	// stations when critical.
	probes := r.probeCells(mv)
	for _, probe := range probes {
		if !mv.IsInside(probe) || mv.HasObstacle(probe) {
			continue
		}
		first := planner.Plain(mv, peers, r.Cur, probe)
		if len(first) == 0 {
			continue
		}
		second := planner.Plain(mv, peers, probe, dest)
		if len(second) == 0 {
			continue
		}
		composite := append(append(planner.Path{}, first...), second[1:]...)
		if !r.wasRecentlyTried(composite) {
			r.commitAlternative(composite)
			return
		}
	}
}

func currentDestination(r *Robot) warehouse.Cell {
	if r.PackageDestination != nil {
		return *r.PackageDestination
	}
	return r.Goal
}

func (r *Robot) commitAlternative(p planner.Path) {
	r.pushAlternativePath(p)
	r.Path = p
	r.BlockedCount = 0
	r.WaitingTime = 0
}

func (r *Robot) probeCells(mv ModelView) []warehouse.Cell {
	if r.CriticalBattery {
		var cells []warehouse.Cell
		for _, c := range mv.Stations(r.Cur, 0) {
			ring := c.Cell.Neighbors4()
			cells = append(cells, ring[:]...)
		}
		if len(cells) > 5 {
			cells = cells[:5]
		}
		return cells
	}
	rng := mv.Rand()
	cells := make([]warehouse.Cell, 0, 5)
	for i := 0; i < 5; i++ {
		dx := rng.Intn(11) - 5
		dy := rng.Intn(11) - 5
		cells = append(cells, r.Cur.Add(dx, dy))
	}
	return cells
}

// --- Stage 13: deadlock counters and full reset ---------------------------

func (r *Robot) fullDeadlockReset(mv ModelView) bool {
	if r.PositionUnchangedCount <= 20 {
		return false
	}
	if r.CarryingPackage != nil && r.CarryingPackage.Status != warehouse.StatusDelivered {
		r.CarryingPackage.Revert()
	}
	r.CarryingPackage = nil
	r.PackageDestination = nil
	if r.CurrentStation != nil {
		mv.StationDequeue(*r.CurrentStation, r.ID)
		r.CurrentStation = nil
	}
	r.Charging = false
	r.WaitingForCharge = false
	r.CriticalBattery = false
	r.EmergencyRoute = false
	r.Idle = true
	r.Path = nil
	r.ReachedGoal = false
	r.BlockedCount = 0
	r.PositionUnchangedCount = 0
	r.WaitingTime = 0
	return true
}

func (r *Robot) updateDeadlockCounters(mv ModelView) {
	if r.Cur == r.LastCell {
		r.PositionUnchangedCount++
	} else {
		r.PositionUnchangedCount = 0
		r.LastCell = r.Cur
	}

	// The three thresholds compound as the count climbs rather than override
	// one another: a robot stuck past 10 ticks still needs the priority bump
	// from raising past 5 to win collision arbitration against whatever is
	// blocking it.
	if r.PositionUnchangedCount > 5 {
		r.Priority++
	}
	if r.PositionUnchangedCount > 10 {
		r.alternativeRouteSearch(mv)
	}
	if r.PositionUnchangedCount > 20 {
		r.fullDeadlockReset(mv)
	}
}

// --- Stage 14: near-station deadlock ---------------------------------------

func (r *Robot) nearStationDeadlockCheck(mv ModelView) {
	if !r.WaitingForCharge || r.CurrentStation == nil {
		return
	}
	stationCell, ok := mv.StationCell(*r.CurrentStation)
	if !ok {
		return
	}
	if r.Cur.Manhattan(stationCell) > 3 || r.WaitingTime < 3 {
		return
	}

	failedStation := *r.CurrentStation
	mv.StationDequeue(failedStation, r.ID)
	r.CurrentStation = nil
	r.WaitingForCharge = false

	candidates := mv.Stations(r.Cur, failedStation)
	if len(candidates) > 0 {
		chosen := r.rankStationsForSelf(candidates)
		path := planner.Plain(mv, plannerPeers(mv, r.ID), r.Cur, chosen.Cell)
		if len(path) > 0 {
			r.Path = path
			id := chosen.ID
			r.CurrentStation = &id
			r.WaitingForCharge = true
			mv.StationEnqueue(chosen.ID, r.ID)
			return
		}
	}

	if r.BatteryPercentage() < 8 {
		for _, ring := range stationCell.Neighbors4() {
			if !mv.IsInside(ring) || mv.HasObstacle(ring) {
				continue
			}
			path := planner.Plain(mv, plannerPeers(mv, r.ID), r.Cur, ring)
			if len(path) > 0 {
				r.Path = path
				return
			}
		}
	}
}

// --- shared station ranking helpers ----------------------------------------

func nearestByDistance(candidates []StationCandidate) StationCandidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.DistanceToIt < best.DistanceToIt {
			best = c
		}
	}
	return best
}

// rankStationsForSelf implements spec §4.6: below 8% battery, ignore
// occupation and pick the nearest reachable station (or nearest at all if
// none reachable); otherwise pick the reachable station (or, if none is
// reachable, any station) with the lowest occupation + distance.
func (r *Robot) rankStationsForSelf(candidates []StationCandidate) StationCandidate {
	if r.BatteryPercentage() < 8 {
		reachable := filterReachable(candidates, r.BatteryLevel, r.DrainRate)
		if len(reachable) > 0 {
			return nearestByDistance(reachable)
		}
		return nearestByDistance(candidates)
	}

	reachable := filterReachable(candidates, r.BatteryLevel, r.DrainRate)
	pool := reachable
	if len(pool) == 0 {
		pool = candidates
	}
	best := pool[0]
	bestETA := best.Occupation + best.DistanceToIt
	for _, c := range pool[1:] {
		eta := c.Occupation + c.DistanceToIt
		if eta < bestETA {
			best = c
			bestETA = eta
		}
	}
	return best
}

func filterReachable(candidates []StationCandidate, battery, drainRate int) []StationCandidate {
	var out []StationCandidate
	for _, c := range candidates {
		if float64(battery) >= 1.1*float64(c.DistanceToIt)*float64(drainRate) {
			out = append(out, c)
		}
	}
	return out
}

