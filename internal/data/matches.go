package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"CricketScoreApi/internal/engine"

	"github.com/lib/pq"
)

type MatchModel struct {
	db *sql.DB
}

// MatchSummary is the listing row: match metadata without the ball history.
type MatchSummary struct {
	ID         string             `json:"id"`
	TeamA      string             `json:"team_a"`
	TeamB      string             `json:"team_b"`
	Venue      string             `json:"venue,omitempty"`
	TotalOvers int64              `json:"total_overs"`
	Status     engine.MatchStatus `json:"status"`
	Result     string             `json:"result,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Insert stores a newly created match. The full aggregate, innings and ball
// history included, is kept as a JSON document alongside the queryable
// columns.
func (m *MatchModel) Insert(ctx context.Context, match *engine.Match) error {
	state, err := json.Marshal(match)
	if err != nil {
		return err
	}

	stmt := `
		INSERT INTO matches (id, team_a, team_b, venue, total_overs, status, result, state,
			created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	args := []any{
		match.ID,
		match.TeamA,
		match.TeamB,
		match.Venue,
		match.TotalOvers,
		int64(match.Status),
		match.Result,
		state,
		match.CreatedAt,
		match.Version,
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = m.db.ExecContext(ctx, stmt, args...)
	return err
}

// Get loads the full match aggregate. Callers replay the history with
// Recompute before scoring against it.
func (m *MatchModel) Get(ctx context.Context, matchID string) (*engine.Match, error) {
	stmt := `
		SELECT state, version
		FROM matches
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var state []byte
	var version int64
	err := m.db.QueryRowContext(ctx, stmt, matchID).Scan(&state, &version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, engine.ErrMatchNotFound
		default:
			return nil, err
		}
	}

	var match engine.Match
	if err := json.Unmarshal(state, &match); err != nil {
		return nil, err
	}
	match.Version = version

	return &match, nil
}

// Update saves the aggregate with optimistic locking: the engine bumps the
// version once per applied operation, so the stored row must still be at
// the immediately preceding version.
func (m *MatchModel) Update(ctx context.Context, match *engine.Match) error {
	state, err := json.Marshal(match)
	if err != nil {
		return err
	}

	stmt := `
		UPDATE matches
		SET status = $1, result = $2, state = $3, version = $4
		WHERE id = $5 AND version = $4 - 1`

	args := []any{
		int64(match.Status),
		match.Result,
		state,
		match.Version,
		match.ID,
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEditConflict
	}

	return nil
}

// AppendBall writes one delivery to the append-only ball log.
func (m *MatchModel) AppendBall(ctx context.Context, matchID string, innings int64,
	ev engine.BallEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	stmt := `
		INSERT INTO balls (match_id, innings, seq, over_num, ball_in_over, bowler, striker,
			non_striker, legal, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	args := []any{
		matchID,
		innings,
		ev.Seq,
		ev.Over,
		ev.BallInOver,
		ev.Bowler,
		ev.Striker,
		ev.NonStriker,
		ev.Legal,
		payload,
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = m.db.ExecContext(ctx, stmt, args...)
	return err
}

// MarkUndone tombstones the most recent live row for the sequence number.
// The row is kept: undone deliveries stay auditable, and a re-recorded ball
// at the same sequence gets its own row.
func (m *MatchModel) MarkUndone(ctx context.Context, matchID string, innings, seq int64) error {
	stmt := `
		UPDATE balls
		SET is_undone = TRUE
		WHERE id = (
			SELECT id FROM balls
			WHERE match_id = $1 AND innings = $2 AND seq = $3 AND is_undone = FALSE
			ORDER BY id DESC
			LIMIT 1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, matchID, innings, seq)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// GetAll lists match summaries, newest first, optionally filtered by status
// and team.
func (m *MatchModel) GetAll(ctx context.Context, statuses []engine.MatchStatus, team string,
	limit, offset int) ([]MatchSummary, error) {
	stmt := `
		SELECT id, team_a, team_b, venue, total_overs, status, result, created_at
		FROM matches
		WHERE (cardinality($1::bigint[]) = 0 OR status = ANY($1::bigint[]))
		AND ($2 = '' OR team_a = $2 OR team_b = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	statusInts := make([]int64, 0, len(statuses))
	for _, s := range statuses {
		statusInts = append(statusInts, int64(s))
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, pq.Array(statusInts), team, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]MatchSummary, 0)
	for rows.Next() {
		var s MatchSummary
		var status int64
		err := rows.Scan(
			&s.ID,
			&s.TeamA,
			&s.TeamB,
			&s.Venue,
			&s.TotalOvers,
			&status,
			&s.Result,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Status = engine.MatchStatus(status)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// Delete removes a match and its ball log.
func (m *MatchModel) Delete(ctx context.Context, matchID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM balls WHERE match_id = $1`, matchID)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, matchID)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}
	if rows == 0 {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return engine.ErrMatchNotFound
	}

	return tx.Commit()
}
