package sim

// Timer represents a scheduled event in virtual time
type Timer struct {
	WakeTime uint64
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler is a virtual-time timer list. Handlers run in WakeTime order;
// timers due at the same time run in the order they were scheduled.
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	timerList *Timer
	now       uint64
}

// Now returns the current virtual time
func (s *Scheduler) Now() uint64 {
	return s.now
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) {
	s.insertTimer(t)
}

// CancelTimer removes t from the schedule. Returns false if it was not queued.
func (s *Scheduler) CancelTimer(t *Timer) bool {
	if s.timerList == t {
		s.timerList = t.Next
		t.Next = nil
		return true
	}
	for current := s.timerList; current != nil; current = current.Next {
		if current.Next == t {
			current.Next = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// Pending returns the number of queued timers
func (s *Scheduler) Pending() int {
	n := 0
	for current := s.timerList; current != nil; current = current.Next {
		n++
	}
	return n
}

// insertTimer inserts a timer in sorted order by WakeTime, after any timer
// due at the same time
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timerList == nil || t.WakeTime < s.timerList.WakeTime {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Step advances time to the next timer due at or before deadline and runs it.
// Returns false, with time moved to deadline, when no such timer exists.
func (s *Scheduler) Step(deadline uint64) bool {
	timer := s.timerList
	if timer == nil || timer.WakeTime > deadline {
		if deadline > s.now {
			s.now = deadline
		}
		return false
	}

	s.timerList = timer.Next
	timer.Next = nil // Clear Next pointer to avoid circular references
	if timer.WakeTime > s.now {
		s.now = timer.WakeTime
	}

	// Reschedule if requested
	if timer.Handler(timer) == SF_RESCHEDULE {
		s.insertTimer(timer)
	}
	return true
}

// RunUntil processes all timers due at or before deadline
func (s *Scheduler) RunUntil(deadline uint64) {
	for s.Step(deadline) {
	}
}
