package data

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PinModel struct {
	db *sql.DB
}

// GetHash returns the stored bcrypt hash for a pin scope ("manager" or
// "scorer").
func (m *PinModel) GetHash(ctx context.Context, scope string) (string, error) {
	stmt := `
		SELECT hash
		FROM club_pins
		WHERE scope = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var hash string
	err := m.db.QueryRowContext(ctx, stmt, scope).Scan(&hash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrRecordNotFound
		default:
			return "", err
		}
	}

	return hash, nil
}

// SetHash stores or rotates the hash for a scope.
func (m *PinModel) SetHash(ctx context.Context, scope, hash string) error {
	stmt := `
		INSERT INTO club_pins (scope, hash)
		VALUES ($1, $2)
		ON CONFLICT (scope)
		DO UPDATE SET hash = EXCLUDED.hash`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := m.db.ExecContext(ctx, stmt, scope, hash)
	return err
}
