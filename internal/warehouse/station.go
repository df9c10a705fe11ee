package warehouse

// StationID identifies a charging station.
type StationID int

// Station is a fixed charging point with a FIFO wait queue and a single
// active charging slot. Stations are a parallel overlay, not grid occupants:
// a robot can stand on a station cell without the grid ever knowing it is
// "a station".
type Station struct {
	ID            StationID
	Cell          Cell
	ChargingRate  int // battery units per tick

	queue    []RobotID
	queueSet map[RobotID]bool
	active   *RobotID
}

// NewStation creates a station with an empty queue.
func NewStation(id StationID, cell Cell, chargingRate int) *Station {
	return &Station{
		ID:           id,
		Cell:         cell,
		ChargingRate: chargingRate,
		queueSet:     make(map[RobotID]bool),
	}
}

// Occupation is the station's current load: queued robots plus the active
// slot, used to rank candidate stations (spec §4.6).
func (s *Station) Occupation() int {
	n := len(s.queue)
	if s.active != nil {
		n++
	}
	return n
}

// InQueue reports whether r is currently waiting in the queue.
func (s *Station) InQueue(r RobotID) bool {
	return s.queueSet[r]
}

// IsActive reports whether r currently holds the charging slot.
func (s *Station) IsActive(r RobotID) bool {
	return s.active != nil && *s.active == r
}

// Active returns the robot currently charging, if any.
func (s *Station) Active() (RobotID, bool) {
	if s.active == nil {
		return 0, false
	}
	return *s.active, true
}

// Enqueue adds r to the tail of the wait queue. Duplicate enqueues are
// rejected in O(1) via the membership set; a robot already in the active
// slot is also rejected (invariant: a robot is in at most one of queue or
// slot, across at most one station).
func (s *Station) Enqueue(r RobotID) bool {
	if s.queueSet[r] || s.IsActive(r) {
		return false
	}
	s.queue = append(s.queue, r)
	s.queueSet[r] = true
	return true
}

// Dequeue removes r from the wait queue, if present. Revocable per spec §5.
func (s *Station) Dequeue(r RobotID) {
	if !s.queueSet[r] {
		return
	}
	delete(s.queueSet, r)
	for i, id := range s.queue {
		if id == r {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
}

// IsNextInQueue reports whether the slot is empty and r is at the head of
// the queue.
func (s *Station) IsNextInQueue(r RobotID) bool {
	return s.active == nil && len(s.queue) > 0 && s.queue[0] == r
}

// StartCharging moves r from the head of the queue into the active slot.
// No-op (returns false) if r is not next in line.
func (s *Station) StartCharging(r RobotID) bool {
	if !s.IsNextInQueue(r) {
		return false
	}
	s.queue = s.queue[1:]
	delete(s.queueSet, r)
	id := r
	s.active = &id
	return true
}

// FinishCharging clears the active slot if r currently holds it.
func (s *Station) FinishCharging(r RobotID) {
	if s.active != nil && *s.active == r {
		s.active = nil
	}
}

// QueueLen reports the number of robots currently waiting (excludes the
// active slot).
func (s *Station) QueueLen() int {
	return len(s.queue)
}

// Queue returns a defensive copy of the wait queue, head first.
func (s *Station) Queue() []RobotID {
	out := make([]RobotID, len(s.queue))
	copy(out, s.queue)
	return out
}
