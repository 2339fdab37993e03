package game

import (
	"errors"
	"testing"
	"time"
)

func TestRosterGroupsFillInOrder(t *testing.T) {
	r := NewRoster(10)
	now := time.Now()
	for i := 0; i < 9; i++ {
		g, err := r.Add(PlayerID(rune('a'+i)), "golfer", now)
		if err != nil {
			t.Fatal(err)
		}
		if want := i / GroupSize; g.Group != want {
			t.Errorf("golfer %d in group %d, want %d", i, g.Group, want)
		}
	}

	// a freed seat is reused before a new group opens
	r.Remove("b")
	g, _ := r.Add("z", "late", now)
	if g.Group != 0 {
		t.Errorf("late golfer in group %d, want 0", g.Group)
	}
}

func TestRosterLimits(t *testing.T) {
	r := NewRoster(1)
	if _, err := r.Add("p1", "one", time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add("p1", "again", time.Now()); !errors.Is(err, ErrPlayerExists) {
		t.Errorf("duplicate add: %v", err)
	}
	if _, err := r.Add("p2", "two", time.Now()); !errors.Is(err, ErrMatchFull) {
		t.Errorf("add to full roster: %v", err)
	}
	if r.Remove("nobody") {
		t.Error("removed an unknown golfer")
	}
}

func TestRosterHoledOut(t *testing.T) {
	r := NewRoster(8)
	hole := straightHole(300)
	a := teedUp(r, "a", hole)
	b := teedUp(r, "b", hole)

	if r.AllHoledOut() {
		t.Fatal("holed out before anyone finished")
	}
	a.HolePhase = HoleComplete
	if r.GroupHoledOut("a") {
		t.Error("group holed out with b still playing")
	}

	// a disconnected golfer does not hold up the match
	r.SetConnected("b", false)
	if !r.AllHoledOut() {
		t.Error("disconnected golfer blocked the hole")
	}

	b.HolePhase = HoleComplete
	if !r.GroupHoledOut("a") {
		t.Error("group not holed out")
	}

	r.SetConnected("a", false)
	if r.AllHoledOut() {
		t.Error("an empty match counts as holed out")
	}
	if r.ConnectedCount() != 0 {
		t.Errorf("connected = %d", r.ConnectedCount())
	}
}

func TestRosterPrepareAndReset(t *testing.T) {
	r := NewRoster(8)
	g, _ := r.Add("a", "Ace", time.Now())
	g.Strokes, g.Penalties, g.TotalStrokes, g.Points = 5, 1, 20, 300
	g.HoleStrokes[1] = 5

	hole := DefaultCourse().Holes[1]
	r.PrepareHole(hole)
	if g.CurrentHole != 2 || g.Ball != hole.Tee || g.Lie != LieTee || g.HolePhase != HoleTeeoff {
		t.Errorf("prepared golfer = %+v", g)
	}
	if g.Strokes != 0 || g.Penalties != 0 || g.TotalStrokes != 20 {
		t.Errorf("hole card not cleared: strokes %d penalties %d total %d", g.Strokes, g.Penalties, g.TotalStrokes)
	}

	r.Reset()
	if g.TotalStrokes != 0 || g.Points != 0 || len(g.HoleStrokes) != 0 {
		t.Errorf("reset golfer = %+v", g)
	}
}

func TestRosterLeaderboard(t *testing.T) {
	r := NewRoster(8)
	now := time.Now()
	a, _ := r.Add("a", "A", now)
	b, _ := r.Add("b", "B", now)
	c, _ := r.Add("c", "C", now)
	a.TotalStrokes, a.Points = 40, 100
	b.TotalStrokes, b.Points = 36, 50
	c.TotalStrokes, c.Points = 40, 300

	board := r.Leaderboard()
	want := []PlayerID{"b", "c", "a"}
	for i, id := range want {
		if board[i].PlayerID != id {
			t.Fatalf("leaderboard = %+v, want order %v", board, want)
		}
	}
}
