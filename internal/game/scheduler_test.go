package game

import "testing"

func TestSchedulerAfterFiresOnce(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.After(1.0, "p1", nil, func() { fired++ })

	s.Advance(0.5)
	if fired != 0 {
		t.Fatalf("fired early at t=%.2f", s.Now())
	}
	s.Advance(0.5)
	s.Advance(5)
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
	if s.Len() != 0 {
		t.Errorf("one-shot task still queued")
	}
}

func TestSchedulerEveryCatchesUpMissedIntervals(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.Every(0.1, "p1", nil, func() bool {
		runs++
		return true
	})

	// a single long step still fires once per elapsed interval
	s.Advance(1.05)
	if runs != 10 {
		t.Errorf("runs = %d, want 10", runs)
	}
}

func TestSchedulerEveryStopsWhenTaskReturnsFalse(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.Every(0.1, "p1", nil, func() bool {
		runs++
		return runs < 3
	})
	s.Advance(2)
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if s.Pending("p1") != 0 {
		t.Errorf("stopped task still pending")
	}
}

func TestSchedulerValidityCheckDropsStaleTasks(t *testing.T) {
	s := NewScheduler()
	valid := true
	fired := false
	s.After(1, "p1", func() bool { return valid }, func() { fired = true })

	valid = false
	s.Advance(2)
	if fired {
		t.Error("task fired after its validity check failed")
	}
	if s.Len() != 0 {
		t.Error("invalid task was not dropped")
	}
}

func TestSchedulerRunsInDueOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(0.3, "a", nil, func() { order = append(order, "late") })
	s.After(0.1, "b", nil, func() { order = append(order, "early") })
	s.After(0.1, "c", nil, func() { order = append(order, "tie") })

	s.Advance(1)
	want := []string{"early", "tie", "late"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestSchedulerCancelOwner(t *testing.T) {
	s := NewScheduler()
	s.After(1, "p1", nil, func() { t.Error("cancelled task fired") })
	s.Every(0.5, "p1", nil, func() bool { t.Error("cancelled task fired"); return true })
	kept := false
	s.After(1, "p2", nil, func() { kept = true })

	if n := s.CancelOwner("p1"); n != 2 {
		t.Errorf("CancelOwner = %d, want 2", n)
	}
	s.Advance(2)
	if !kept {
		t.Error("other owner's task was dropped")
	}
}

func TestSchedulerClockOnlyMovesOnAdvance(t *testing.T) {
	s := NewScheduler()
	s.Advance(-1)
	if s.Now() != 0 {
		t.Errorf("negative advance moved clock to %.2f", s.Now())
	}
	s.Advance(0.25)
	s.Reset()
	if s.Now() != 0.25 {
		t.Errorf("Reset changed the clock: %.2f", s.Now())
	}
}
