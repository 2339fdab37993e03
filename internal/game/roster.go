package game

import (
	"errors"
	"sort"
	"time"
)

// GroupSize is how many golfers share a tee group.
const GroupSize = 4

var (
	ErrMatchFull     = errors.New("match is full")
	ErrPlayerExists  = errors.New("player already in match")
	ErrPlayerUnknown = errors.New("player not in match")
)

// Golfer is a player's standing in the match. The engines read and write
// the lie, hole-phase and ball fields; nothing else does during play.
type Golfer struct {
	ID        PlayerID  `json:"id"`
	Name      string    `json:"name"`
	Group     int       `json:"group"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`

	CurrentHole int       `json:"current_hole"`
	HolePhase   HolePhase `json:"hole_phase"`
	Lie         Lie       `json:"lie"`
	Ball        Vec3      `json:"ball"`
	LastStrike  Vec3      `json:"-"`

	Strokes      int         `json:"strokes"`
	Penalties    int         `json:"penalties"`
	TotalStrokes int         `json:"total_strokes"`
	Points       int         `json:"points"`
	HoleStrokes  map[int]int `json:"hole_strokes"`
}

// Players is what the engines need to know about golfers.
type Players interface {
	Golfer(id PlayerID) (*Golfer, bool)
	GroupHoledOut(id PlayerID) bool
}

// Roster holds the golfers of one match. It is owned by the match goroutine.
type Roster struct {
	golfers    map[PlayerID]*Golfer
	order      []PlayerID
	maxPlayers int
}

func NewRoster(maxPlayers int) *Roster {
	if maxPlayers <= 0 {
		maxPlayers = 32
	}
	return &Roster{
		golfers:    make(map[PlayerID]*Golfer),
		maxPlayers: maxPlayers,
	}
}

// Add registers a golfer and places them in the first group with room.
func (r *Roster) Add(id PlayerID, name string, now time.Time) (*Golfer, error) {
	if g, ok := r.golfers[id]; ok {
		return g, ErrPlayerExists
	}
	if len(r.golfers) >= r.maxPlayers {
		return nil, ErrMatchFull
	}
	g := &Golfer{
		ID:          id,
		Name:        name,
		Group:       r.openGroup(),
		Connected:   true,
		JoinedAt:    now,
		HolePhase:   HoleTeeoff,
		Lie:         LieTee,
		HoleStrokes: make(map[int]int),
	}
	r.golfers[id] = g
	r.order = append(r.order, id)
	return g, nil
}

func (r *Roster) openGroup() int {
	counts := make(map[int]int)
	for _, g := range r.golfers {
		counts[g.Group]++
	}
	for group := 0; ; group++ {
		if counts[group] < GroupSize {
			return group
		}
	}
}

func (r *Roster) Remove(id PlayerID) bool {
	if _, ok := r.golfers[id]; !ok {
		return false
	}
	delete(r.golfers, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Roster) Golfer(id PlayerID) (*Golfer, bool) {
	g, ok := r.golfers[id]
	return g, ok
}

func (r *Roster) Len() int {
	return len(r.golfers)
}

// ConnectedCount counts golfers with a live connection.
func (r *Roster) ConnectedCount() int {
	n := 0
	for _, g := range r.golfers {
		if g.Connected {
			n++
		}
	}
	return n
}

// All returns golfers in join order.
func (r *Roster) All() []*Golfer {
	out := make([]*Golfer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.golfers[id])
	}
	return out
}

// GroupHoledOut reports whether every golfer in id's group finished the hole.
func (r *Roster) GroupHoledOut(id PlayerID) bool {
	g, ok := r.golfers[id]
	if !ok {
		return false
	}
	for _, other := range r.golfers {
		if other.Group == g.Group && other.HolePhase != HoleComplete {
			return false
		}
	}
	return true
}

// AllHoledOut reports whether every connected golfer finished the hole.
// Disconnected golfers do not hold up the match; with nobody connected
// the hole is never finished.
func (r *Roster) AllHoledOut() bool {
	live := 0
	for _, g := range r.golfers {
		if !g.Connected {
			continue
		}
		live++
		if g.HolePhase != HoleComplete {
			return false
		}
	}
	return live > 0
}

// SetConnected flips a golfer's connection flag.
func (r *Roster) SetConnected(id PlayerID, connected bool) bool {
	g, ok := r.golfers[id]
	if !ok {
		return false
	}
	g.Connected = connected
	return true
}

// PrepareHole puts every golfer on the tee of h.
func (r *Roster) PrepareHole(h Hole) {
	for _, g := range r.golfers {
		PrepareGolfer(g, h)
	}
}

// PrepareGolfer puts one golfer on the tee of h with a clean hole card.
func PrepareGolfer(g *Golfer, h Hole) {
	g.CurrentHole = h.Number
	g.HolePhase = HoleTeeoff
	g.Lie = LieTee
	g.Ball = h.Tee
	g.LastStrike = h.Tee
	g.Strokes = 0
	g.Penalties = 0
}

// Reset clears scores for a fresh match in the same lobby.
func (r *Roster) Reset() {
	for _, g := range r.golfers {
		g.CurrentHole = 0
		g.HolePhase = HoleTeeoff
		g.Lie = LieTee
		g.Ball = Vec3{}
		g.Strokes = 0
		g.Penalties = 0
		g.TotalStrokes = 0
		g.Points = 0
		g.HoleStrokes = make(map[int]int)
	}
}

// Standing is one leaderboard row.
type Standing struct {
	PlayerID PlayerID `json:"player_id"`
	Name     string   `json:"name"`
	Strokes  int      `json:"strokes"`
	Points   int      `json:"points"`
}

// Leaderboard orders golfers by fewest strokes, then most points.
func (r *Roster) Leaderboard() []Standing {
	out := make([]Standing, 0, len(r.golfers))
	for _, id := range r.order {
		g := r.golfers[id]
		out = append(out, Standing{PlayerID: g.ID, Name: g.Name, Strokes: g.TotalStrokes, Points: g.Points})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Strokes != out[j].Strokes {
			return out[i].Strokes < out[j].Strokes
		}
		return out[i].Points > out[j].Points
	})
	return out
}
