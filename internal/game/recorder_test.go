package game

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mortargolf/backend/internal/database"
	"github.com/mortargolf/backend/internal/migrations"
)

func newTestRecorder(t *testing.T) (*SQLRecorder, *sqlx.DB) {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db.DB, "sqlite", "../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLRecorder(db), db
}

func TestSQLRecorderMatchLifecycle(t *testing.T) {
	rec, db := newTestRecorder(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := rec.RecordMatchStarted("m1", "Fort Fairway", 3, start); err != nil {
		t.Fatalf("start: %v", err)
	}
	// a second round on the same match id replaces the first
	if err := rec.RecordMatchStarted("m1", "Fort Fairway", 4, start.Add(time.Hour)); err != nil {
		t.Fatalf("restart: %v", err)
	}

	standings := []Standing{
		{PlayerID: "p2", Name: "Birdie", Strokes: 33, Points: 1200},
		{PlayerID: "p1", Name: "Ace", Strokes: 36, Points: 800},
	}
	if err := rec.RecordMatchFinished("m1", standings, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("finish: %v", err)
	}

	var row struct {
		Players int    `db:"player_count"`
		Status  string `db:"status"`
		Winner  string `db:"winner_id"`
		Strokes int    `db:"winner_strokes"`
	}
	if err := db.Get(&row, `SELECT player_count, status, winner_id, winner_strokes FROM matches WHERE id = 'm1'`); err != nil {
		t.Fatal(err)
	}
	if row.Players != 4 || row.Status != "FINISHED" || row.Winner != "p2" || row.Strokes != 33 {
		t.Errorf("match row = %+v", row)
	}

	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM matches`); err != nil || count != 1 {
		t.Errorf("matches = %d, %v", count, err)
	}
}

func TestSQLRecorderScorecard(t *testing.T) {
	rec, _ := newTestRecorder(t)
	now := time.Now()

	results := []HoleResult{
		{MatchID: "m1", PlayerID: "p1", Name: "Ace", Hole: 2, Par: 3, Strokes: 3, Result: string(ScorePar), Points: PointsPar, CreatedAt: now},
		{MatchID: "m1", PlayerID: "p1", Name: "Ace", Hole: 1, Par: 4, Strokes: 5, Result: string(ScoreBogey), Points: PointsBogey, CreatedAt: now},
		{MatchID: "m1", PlayerID: "p2", Name: "Birdie", Hole: 1, Par: 4, Strokes: 3, Result: string(ScoreBirdie), Points: PointsBirdie, CreatedAt: now},
	}
	for _, r := range results {
		if err := rec.RecordHoleResult(r); err != nil {
			t.Fatalf("record hole: %v", err)
		}
	}
	// rescoring a hole overwrites it
	fixed := results[1]
	fixed.Strokes = 4
	fixed.Result = string(ScorePar)
	if err := rec.RecordHoleResult(fixed); err != nil {
		t.Fatal(err)
	}

	card, err := rec.Scorecard("m1", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(card) != 2 {
		t.Fatalf("scorecard rows = %d", len(card))
	}
	if card[0].Hole != 1 || card[0].Strokes != 4 || card[0].Result != string(ScorePar) || card[0].Name != "Ace" {
		t.Errorf("hole 1 = %+v", card[0])
	}
	if card[1].Hole != 2 || card[1].Par != 3 {
		t.Errorf("hole 2 = %+v", card[1])
	}

	empty, err := rec.Scorecard("m1", "nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty scorecard = %v, %v", empty, err)
	}
}

func TestSQLRecorderShots(t *testing.T) {
	rec, _ := newTestRecorder(t)
	now := time.Now()

	shots := []ShotRecord{
		{MatchID: "m1", PlayerID: "p1", Hole: 1, Stroke: 2, Kind: string(ProjectileMortar), Club: ClubIron, Power: 0.6, Spin: -0.2, Direction: 12, Lie: LieFairway, Penalty: 1, CreatedAt: now},
		{MatchID: "m1", PlayerID: "p1", Hole: 1, Stroke: 1, Kind: string(ProjectileMortar), Club: ClubDriver, Power: 0.9, Lie: LieTee, CreatedAt: now},
		{MatchID: "m1", PlayerID: "p1", Hole: 2, Stroke: 1, Kind: string(ProjectileDart), Club: ClubPutter, Power: 1, Lie: LieGreen, CreatedAt: now},
	}
	for _, s := range shots {
		if err := rec.RecordShot(s); err != nil {
			t.Fatalf("record shot: %v", err)
		}
	}

	got, err := rec.Shots("m1", "p1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("shots = %d", len(got))
	}
	if got[0].Stroke != 1 || got[0].Club != ClubDriver || got[0].Lie != LieTee {
		t.Errorf("first stroke = %+v", got[0])
	}
	second := got[1]
	if second.Club != ClubIron || !approx(second.Spin, -0.2, 1e-9) || second.Penalty != 1 || second.Direction != 12 {
		t.Errorf("second stroke = %+v", second)
	}
}
