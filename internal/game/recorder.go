package game

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLRecorder writes match history through sqlx. Queries are written with
// ? placeholders and rebound for the connected driver.
type SQLRecorder struct {
	db *sqlx.DB
}

func NewSQLRecorder(db *sqlx.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

func (r *SQLRecorder) RecordMatchStarted(matchID, courseName string, players int, at time.Time) error {
	q := r.db.Rebind(`
		INSERT INTO matches (id, course_name, player_count, status, started_at)
		VALUES (?, ?, ?, 'PLAYING', ?)
		ON CONFLICT (id) DO UPDATE SET
			course_name = excluded.course_name,
			player_count = excluded.player_count,
			status = 'PLAYING',
			started_at = excluded.started_at,
			finished_at = NULL,
			winner_id = NULL,
			winner_name = NULL,
			winner_strokes = NULL
	`)
	if _, err := r.db.Exec(q, matchID, courseName, players, at.UTC()); err != nil {
		return fmt.Errorf("record match start: %w", err)
	}
	return nil
}

func (r *SQLRecorder) RecordShot(rec ShotRecord) error {
	rec.CreatedAt = rec.CreatedAt.UTC()
	q := r.db.Rebind(`
		INSERT INTO shot_records (match_id, player_id, hole, stroke, kind, club, power, spin, direction, lie, penalty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.Exec(q, rec.MatchID, rec.PlayerID, rec.Hole, rec.Stroke, rec.Kind, rec.Club,
		rec.Power, rec.Spin, rec.Direction, rec.Lie, rec.Penalty, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("record shot: %w", err)
	}
	return nil
}

func (r *SQLRecorder) RecordHoleResult(res HoleResult) error {
	q := r.db.Rebind(`
		INSERT INTO hole_results (match_id, player_id, display_name, hole, par, strokes, result, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_id, player_id, hole) DO UPDATE SET
			display_name = excluded.display_name,
			par = excluded.par,
			strokes = excluded.strokes,
			result = excluded.result,
			points = excluded.points,
			created_at = excluded.created_at
	`)
	_, err := r.db.Exec(q, res.MatchID, res.PlayerID, res.Name, res.Hole, res.Par, res.Strokes,
		res.Result, res.Points, res.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("record hole result: %w", err)
	}
	return nil
}

func (r *SQLRecorder) RecordMatchFinished(matchID string, standings []Standing, at time.Time) error {
	var winnerID, winnerName any
	var winnerStrokes any
	if len(standings) > 0 {
		winnerID = string(standings[0].PlayerID)
		winnerName = standings[0].Name
		winnerStrokes = standings[0].Strokes
	}
	q := r.db.Rebind(`
		UPDATE matches
		SET status = 'FINISHED', finished_at = ?, winner_id = ?, winner_name = ?, winner_strokes = ?
		WHERE id = ?
	`)
	if _, err := r.db.Exec(q, at.UTC(), winnerID, winnerName, winnerStrokes, matchID); err != nil {
		return fmt.Errorf("record match finish: %w", err)
	}
	return nil
}

// Scorecard returns a player's recorded holes for a match, in hole order.
func (r *SQLRecorder) Scorecard(matchID string, playerID PlayerID) ([]HoleResult, error) {
	var out []HoleResult
	q := r.db.Rebind(`
		SELECT match_id, player_id, display_name, hole, par, strokes, result, points, created_at
		FROM hole_results
		WHERE match_id = ? AND player_id = ?
		ORDER BY hole
	`)
	if err := r.db.Select(&out, q, matchID, playerID); err != nil {
		return nil, fmt.Errorf("load scorecard: %w", err)
	}
	return out, nil
}

// Shots returns the recorded strokes of a player on one hole.
func (r *SQLRecorder) Shots(matchID string, playerID PlayerID, hole int) ([]ShotRecord, error) {
	var out []ShotRecord
	q := r.db.Rebind(`
		SELECT match_id, player_id, hole, stroke, kind, club, power, spin, direction, lie, penalty, created_at
		FROM shot_records
		WHERE match_id = ? AND player_id = ? AND hole = ?
		ORDER BY stroke
	`)
	if err := r.db.Select(&out, q, matchID, playerID, hole); err != nil {
		return nil, fmt.Errorf("load shots: %w", err)
	}
	return out, nil
}
