package clock

// Timer is a one-shot millisecond timer. Arming an already-armed timer
// replaces its deadline; a fired timer stays idle until re-armed.
type Timer struct {
	sched    *Scheduler
	cb       func()
	deadline uint64
	armed    bool
}

// Scheduler owns a set of one-shot timers against a single Clock and
// fires the due ones in deadline order. The pending set stays sorted on
// insert, the way the S/370 event queue keeps its list ordered.
//
// The scheduler itself is not goroutine safe; the machine loop calls it
// under the device lock.
type Scheduler struct {
	clk     Clock
	pending []*Timer // sorted by deadline, earliest first
}

// NewScheduler creates a scheduler over the given clock
func NewScheduler(clk Clock) *Scheduler {
	return &Scheduler{clk: clk}
}

// Clock returns the scheduler's time source
func (s *Scheduler) Clock() Clock {
	return s.clk
}

// NewTimer creates an unarmed timer that will invoke cb when due
func (s *Scheduler) NewTimer(cb func()) *Timer {
	return &Timer{sched: s, cb: cb}
}

// Mod arms the timer to fire at the given absolute deadline in
// milliseconds of the scheduler's clock
func (t *Timer) Mod(deadlineMs uint64) {
	t.Del()
	t.deadline = deadlineMs
	t.armed = true

	s := t.sched
	idx := len(s.pending)
	for i, p := range s.pending {
		if deadlineMs < p.deadline {
			idx = i
			break
		}
	}
	s.pending = append(s.pending, nil)
	copy(s.pending[idx+1:], s.pending[idx:])
	s.pending[idx] = t
}

// Del cancels the timer if armed
func (t *Timer) Del() {
	if !t.armed {
		return
	}
	t.armed = false
	s := t.sched
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
}

// Armed reports whether the timer is pending
func (t *Timer) Armed() bool {
	return t.armed
}

// Deadline returns the armed deadline in milliseconds
func (t *Timer) Deadline() uint64 {
	return t.deadline
}

// RunDue fires every timer whose deadline has passed, in deadline
// order. A callback may re-arm its own timer; the new deadline is only
// honored in this pass if it is still due.
func (s *Scheduler) RunDue() {
	now := s.clk.NowMs()
	for len(s.pending) > 0 && s.pending[0].deadline <= now {
		t := s.pending[0]
		s.pending = s.pending[1:]
		t.armed = false
		t.cb()
	}
}

// NextDeadline returns the earliest pending deadline, if any
func (s *Scheduler) NextDeadline() (uint64, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	return s.pending[0].deadline, true
}
