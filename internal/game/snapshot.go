package game

import "time"

// Snapshot is a point-in-time copy of a match. It is safe to hand to
// other goroutines.
type Snapshot struct {
	MatchID       string                          `json:"match_id"`
	Course        string                          `json:"course"`
	State         SessionState                    `json:"state"`
	Paused        bool                            `json:"paused"`
	PhaseTimer    float64                         `json:"phase_timer"`
	CurrentHole   int                             `json:"current_hole"`
	TotalHoles    int                             `json:"total_holes"`
	Hole          *Hole                           `json:"hole,omitempty"`
	Wind          *Wind                           `json:"wind,omitempty"`
	Hazards       []HazardInstance                `json:"hazards,omitempty"`
	Destructibles []DestructibleObstacle          `json:"destructibles,omitempty"`
	Golfers       []Golfer                        `json:"golfers"`
	Leaderboard   []Standing                      `json:"leaderboard"`
	Shots         map[PlayerID]PlayerShotState    `json:"shots,omitempty"`
	Putts         map[PlayerID]PlayerPuttingState `json:"putts,omitempty"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

// Golfer returns the snapshot row for id.
func (s Snapshot) Golfer(id PlayerID) (Golfer, bool) {
	for _, g := range s.Golfers {
		if g.ID == id {
			return g, true
		}
	}
	return Golfer{}, false
}

func copyGolfer(g *Golfer) Golfer {
	out := *g
	out.HoleStrokes = make(map[int]int, len(g.HoleStrokes))
	for k, v := range g.HoleStrokes {
		out.HoleStrokes[k] = v
	}
	return out
}

func (m *Match) snapshot() Snapshot {
	s := Snapshot{
		MatchID:     m.ID,
		Course:      m.course.Name,
		State:       m.session.State(),
		Paused:      m.session.IsPaused(),
		PhaseTimer:  m.session.PhaseTimer(),
		CurrentHole: m.session.CurrentHole(),
		TotalHoles:  m.session.TotalHoles(),
		Leaderboard: m.roster.Leaderboard(),
		Shots:       make(map[PlayerID]PlayerShotState),
		Putts:       make(map[PlayerID]PlayerPuttingState),
		UpdatedAt:   m.now(),
	}
	if hole, ok := m.course.Hole(s.CurrentHole); ok {
		s.Hole = &hole
	}
	if m.env.Active() {
		w := m.env.CurrentWind()
		s.Wind = &w
		s.Hazards = m.env.Hazards()
		s.Destructibles = m.env.Destructibles()
	}
	for _, g := range m.roster.All() {
		s.Golfers = append(s.Golfers, copyGolfer(g))
		if st, ok := m.shots.State(g.ID); ok {
			s.Shots[g.ID] = st
		}
		if st, ok := m.putts.State(g.ID); ok {
			s.Putts[g.ID] = st
		}
	}
	return s
}
