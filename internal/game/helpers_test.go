package game

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fakeGate lets engine tests open and close the playing phase by hand.
type fakeGate struct {
	playing bool
	hole    int
}

func (g *fakeGate) CanTakeShots() bool { return g.playing }
func (g *fakeGate) CurrentHole() int   { return g.hole }

// straightHole runs along +X from the origin with no hazards.
func straightHole(length float64, hazards ...HazardSpec) Hole {
	return Hole{
		Number:       1,
		Name:         "Test",
		Par:          4,
		Distance:     length,
		Tee:          Vec3{},
		Green:        Vec3{X: length},
		GreenRadius:  15,
		FairwayWidth: 40,
		Hazards:      hazards,
	}
}

func singleHoleCourse(h Hole) *Course {
	return &Course{Name: "Test Links", Holes: []Hole{h}}
}

// quietEnv is an environment with no random destructibles.
func quietEnv() *Environment {
	return NewEnvironment(nil, zerolog.Nop(),
		WithSeed(7),
		WithHazardConfig(HazardDestructible, HazardConfig{Enabled: false}),
	)
}

// teedUp adds a golfer to roster standing on the tee of h.
func teedUp(r *Roster, id PlayerID, h Hole) *Golfer {
	g, err := r.Add(id, string(id), time.Now())
	if err != nil {
		panic(err)
	}
	PrepareGolfer(g, h)
	return g
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Publish(_ string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) ofType(typ string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// notices returns the text of every notice event.
func (s *recordingSink) notices() []string {
	var out []string
	for _, ev := range s.ofType("notice") {
		if m, ok := ev.Data.(map[string]string); ok {
			out = append(out, m["text"])
		}
	}
	return out
}

// memRecorder keeps match history in memory.
type memRecorder struct {
	mu       sync.Mutex
	started  []string
	shots    []ShotRecord
	holes    []HoleResult
	finished [][]Standing
}

func (r *memRecorder) RecordMatchStarted(matchID, _ string, _ int, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, matchID)
	return nil
}

func (r *memRecorder) RecordShot(rec ShotRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shots = append(r.shots, rec)
	return nil
}

func (r *memRecorder) RecordHoleResult(res HoleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holes = append(r.holes, res)
	return nil
}

func (r *memRecorder) RecordMatchFinished(_ string, standings []Standing, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, standings)
	return nil
}

// memSnapshots counts stored snapshots.
type memSnapshots struct {
	mu    sync.Mutex
	saved []Snapshot
}

func (s *memSnapshots) SaveSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snap)
	return nil
}

func (s *memSnapshots) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}
