package clock

import (
	"testing"
)

func TestManualClock(t *testing.T) {
	clk := NewManual()

	if clk.NowNs() != 0 || clk.NowMs() != 0 {
		t.Fatalf("manual clock must start at zero")
	}

	clk.AdvanceNs(1500)
	if got := clk.NowNs(); got != 1500 {
		t.Errorf("NowNs = %d, expected 1500", got)
	}

	clk.AdvanceMs(3)
	if got := clk.NowMs(); got != 3 {
		t.Errorf("NowMs = %d, expected 3", got)
	}
	if got := clk.NowNs(); got != 3_001_500 {
		t.Errorf("NowNs = %d, expected 3001500", got)
	}
}

func TestWallClockMonotonic(t *testing.T) {
	clk := NewWall()
	last := clk.NowNs()
	for i := 0; i < 100; i++ {
		now := clk.NowNs()
		if now < last {
			t.Fatalf("wall clock went backwards: %d -> %d", last, now)
		}
		last = now
	}
}

func TestTimerFiresInDeadlineOrder(t *testing.T) {
	clk := NewManual()
	sched := NewScheduler(clk)

	var order []int
	t1 := sched.NewTimer(func() { order = append(order, 1) })
	t2 := sched.NewTimer(func() { order = append(order, 2) })
	t3 := sched.NewTimer(func() { order = append(order, 3) })

	t1.Mod(30)
	t2.Mod(10)
	t3.Mod(20)

	clk.AdvanceMs(25)
	sched.RunDue()

	if len(order) != 2 || order[0] != 2 || order[1] != 3 {
		t.Errorf("fired order = %v, expected [2 3]", order)
	}
	if !t1.Armed() {
		t.Errorf("t1 should still be pending")
	}

	clk.AdvanceMs(10)
	sched.RunDue()
	if len(order) != 3 || order[2] != 1 {
		t.Errorf("fired order = %v, expected [2 3 1]", order)
	}
}

func TestTimerModReplacesDeadline(t *testing.T) {
	clk := NewManual()
	sched := NewScheduler(clk)

	fired := 0
	tm := sched.NewTimer(func() { fired++ })
	tm.Mod(10)
	tm.Mod(50)

	clk.AdvanceMs(20)
	sched.RunDue()
	if fired != 0 {
		t.Errorf("timer fired at replaced deadline")
	}

	clk.AdvanceMs(40)
	sched.RunDue()
	if fired != 1 {
		t.Errorf("timer fired %d times, expected 1", fired)
	}
}

func TestTimerDel(t *testing.T) {
	clk := NewManual()
	sched := NewScheduler(clk)

	fired := 0
	tm := sched.NewTimer(func() { fired++ })
	tm.Mod(10)
	tm.Del()

	clk.AdvanceMs(20)
	sched.RunDue()
	if fired != 0 {
		t.Errorf("deleted timer fired")
	}
	if tm.Armed() {
		t.Errorf("deleted timer still armed")
	}

	// Del on an idle timer is harmless
	tm.Del()
}

func TestTimerRearmFromCallback(t *testing.T) {
	clk := NewManual()
	sched := NewScheduler(clk)

	fired := 0
	var tm *Timer
	tm = sched.NewTimer(func() {
		fired++
		tm.Mod(clk.NowMs() + 10)
	})
	tm.Mod(10)

	// A callback that re-arms into the future fires once per pass
	clk.AdvanceMs(10)
	sched.RunDue()
	if fired != 1 {
		t.Errorf("timer fired %d times in one pass, expected 1", fired)
	}
	if !tm.Armed() {
		t.Errorf("timer not re-armed from its callback")
	}

	clk.AdvanceMs(10)
	sched.RunDue()
	if fired != 2 {
		t.Errorf("timer fired %d times after two passes, expected 2", fired)
	}
}

func TestNextDeadline(t *testing.T) {
	clk := NewManual()
	sched := NewScheduler(clk)

	if _, ok := sched.NextDeadline(); ok {
		t.Errorf("empty scheduler reports a deadline")
	}

	tm := sched.NewTimer(func() {})
	tm.Mod(42)
	if dl, ok := sched.NextDeadline(); !ok || dl != 42 {
		t.Errorf("NextDeadline = %d/%v, expected 42/true", dl, ok)
	}
}
