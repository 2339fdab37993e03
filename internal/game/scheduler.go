package game

import "sort"

// TaskID identifies a scheduled task.
type TaskID uint64

type task struct {
	id       TaskID
	owner    PlayerID
	due      float64
	interval float64 // 0 for one-shot
	valid    func() bool
	run      func() bool // repeating tasks return false to stop
}

// Scheduler is the match's game clock and timer arena. Time only moves
// when Advance is called, so a paused match freezes every timer.
//
// Before a task runs, and again before a repeating task is re-armed, its
// validity check is evaluated; a task whose owner left or whose phase moved
// on is dropped instead of firing.
type Scheduler struct {
	now    float64
	nextID TaskID
	tasks  map[TaskID]*task
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[TaskID]*task)}
}

// Now is elapsed game time in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// After runs fn once, delay seconds from now, if valid still holds.
func (s *Scheduler) After(delay float64, owner PlayerID, valid func() bool, fn func()) TaskID {
	return s.add(&task{
		owner: owner,
		due:   s.now + delay,
		valid: valid,
		run: func() bool {
			fn()
			return false
		},
	})
}

// Every runs fn each interval seconds until fn returns false or valid fails.
func (s *Scheduler) Every(interval float64, owner PlayerID, valid func() bool, fn func() bool) TaskID {
	if interval <= 0 {
		interval = FastTickInterval
	}
	return s.add(&task{
		owner:    owner,
		due:      s.now + interval,
		interval: interval,
		valid:    valid,
		run:      fn,
	})
}

func (s *Scheduler) add(t *task) TaskID {
	s.nextID++
	t.id = s.nextID
	s.tasks[t.id] = t
	return t.id
}

func (s *Scheduler) Cancel(id TaskID) {
	delete(s.tasks, id)
}

// CancelOwner drops every task belonging to owner.
func (s *Scheduler) CancelOwner(owner PlayerID) int {
	n := 0
	for id, t := range s.tasks {
		if t.owner == owner {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// Pending reports how many tasks owner has queued.
func (s *Scheduler) Pending(owner PlayerID) int {
	n := 0
	for _, t := range s.tasks {
		if t.owner == owner {
			n++
		}
	}
	return n
}

func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Reset drops all tasks and keeps the clock.
func (s *Scheduler) Reset() {
	s.tasks = make(map[TaskID]*task)
}

// Advance moves the clock by dt and fires every task that came due, in due
// order (ties by registration order). A repeating task that falls several
// intervals behind fires once per missed interval.
func (s *Scheduler) Advance(dt float64) {
	if dt < 0 {
		return
	}
	target := s.now + dt
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		if t.due > s.now {
			s.now = t.due
		}
		if t.valid != nil && !t.valid() {
			delete(s.tasks, t.id)
			continue
		}
		again := t.run()
		if _, still := s.tasks[t.id]; !still {
			continue // cancelled itself
		}
		if t.interval > 0 && again && (t.valid == nil || t.valid()) {
			t.due += t.interval
			continue
		}
		delete(s.tasks, t.id)
	}
	s.now = target
}

func (s *Scheduler) nextDue(limit float64) *task {
	var due []*task
	for _, t := range s.tasks {
		if t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})
	return due[0]
}
