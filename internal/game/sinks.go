package game

import (
	"fmt"
	"time"
)

// Notifier delivers player-facing text. Delivery is fire-and-forget.
type Notifier interface {
	NotifyPlayer(id PlayerID, text string)
	NotifyAll(text string)
}

// Handle identifies something a Spawner created. The core never inspects it.
type Handle string

// Spawner places visual effects (explosions, markers) in the world.
type Spawner interface {
	Spawn(kind string, pos Vec3) Handle
}

// Recorder persists completed shots and holes. Implementations must not
// block the match loop for long; errors are logged and dropped by callers.
type Recorder interface {
	RecordMatchStarted(matchID string, courseName string, players int, at time.Time) error
	RecordShot(rec ShotRecord) error
	RecordHoleResult(res HoleResult) error
	RecordMatchFinished(matchID string, standings []Standing, at time.Time) error
}

// Event is a structured message for clients. An empty Player means
// everyone in the match.
type Event struct {
	Type   string   `json:"type"`
	Player PlayerID `json:"-"`
	Data   any      `json:"data,omitempty"`
}

// EventSink fans events out to connected clients.
type EventSink interface {
	Publish(matchID string, ev Event)
}

// SnapshotSink stores the latest match snapshot.
type SnapshotSink interface {
	SaveSnapshot(s Snapshot) error
}

// ShotRecord describes one executed stroke.
type ShotRecord struct {
	MatchID   string    `json:"match_id" db:"match_id"`
	PlayerID  PlayerID  `json:"player_id" db:"player_id"`
	Hole      int       `json:"hole" db:"hole"`
	Stroke    int       `json:"stroke" db:"stroke"`
	Kind      string    `json:"kind" db:"kind"`
	Club      ClubType  `json:"club" db:"club"`
	Power     float64   `json:"power" db:"power"`
	Spin      float64   `json:"spin" db:"spin"`
	Direction float64   `json:"direction" db:"direction"`
	Landing   Vec3      `json:"landing" db:"-"`
	Lie       Lie       `json:"lie" db:"lie"`
	Penalty   int       `json:"penalty" db:"penalty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HoleResult is a golfer's final tally on one hole.
type HoleResult struct {
	MatchID   string    `json:"match_id" db:"match_id"`
	PlayerID  PlayerID  `json:"player_id" db:"player_id"`
	Name      string    `json:"name" db:"display_name"`
	Hole      int       `json:"hole" db:"hole"`
	Par       int       `json:"par" db:"par"`
	Strokes   int       `json:"strokes" db:"strokes"`
	Result    string    `json:"result" db:"result"`
	Points    int       `json:"points" db:"points"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type nopNotifier struct{}

func (nopNotifier) NotifyPlayer(PlayerID, string) {}
func (nopNotifier) NotifyAll(string)              {}

type nopSpawner struct{}

func (nopSpawner) Spawn(kind string, _ Vec3) Handle { return Handle(kind) }

type nopRecorder struct{}

func (nopRecorder) RecordMatchStarted(string, string, int, time.Time) error { return nil }
func (nopRecorder) RecordShot(ShotRecord) error                             { return nil }
func (nopRecorder) RecordHoleResult(HoleResult) error                       { return nil }
func (nopRecorder) RecordMatchFinished(string, []Standing, time.Time) error { return nil }

type nopEvents struct{}

func (nopEvents) Publish(string, Event) {}

// eventNotifier turns notices into "notice" events.
type eventNotifier struct {
	matchID string
	sink    EventSink
}

func (n eventNotifier) NotifyPlayer(id PlayerID, text string) {
	n.sink.Publish(n.matchID, Event{Type: "notice", Player: id, Data: map[string]string{"text": text}})
}

func (n eventNotifier) NotifyAll(text string) {
	n.sink.Publish(n.matchID, Event{Type: "notice", Data: map[string]string{"text": text}})
}

// eventSpawner announces effects as "spawn" events and hands back a
// sequential handle.
type eventSpawner struct {
	matchID string
	sink    EventSink
	next    *int
}

func (s eventSpawner) Spawn(kind string, pos Vec3) Handle {
	*s.next++
	h := Handle(fmt.Sprintf("%s-%d", kind, *s.next))
	s.sink.Publish(s.matchID, Event{Type: "spawn", Data: map[string]any{"handle": h, "kind": kind, "position": pos.Rounded()}})
	return h
}