package data

import (
	"context"
	"database/sql"
	"time"

	"CricketScoreApi/internal/validator"
)

type SubscriptionModel struct {
	db *sql.DB
}

// Subscription is a web-push registration, keyed by its endpoint URL.
type Subscription struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidateSubscription(v *validator.Validator, s *Subscription) {
	v.Check(s.Endpoint != "", "endpoint", "must be provided")
	v.Check(len(s.Endpoint) <= 1000, "endpoint", "must not be more than 1000 characters")
	v.Check(s.P256dh != "", "p256dh", "must be provided")
	v.Check(s.Auth != "", "auth", "must be provided")
}

// Insert upserts by endpoint: re-registering a browser refreshes its keys.
func (m *SubscriptionModel) Insert(ctx context.Context, s *Subscription) error {
	stmt := `
		INSERT INTO push_subscriptions (endpoint, p256dh, auth)
		VALUES ($1, $2, $3)
		ON CONFLICT (endpoint)
		DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, s.Endpoint, s.P256dh, s.Auth).Scan(&s.ID, &s.CreatedAt)
}

func (m *SubscriptionModel) Delete(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`,
		endpoint)
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

func (m *SubscriptionModel) GetAll(ctx context.Context) ([]Subscription, error) {
	stmt := `
		SELECT id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		ORDER BY id ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]Subscription, 0)
	for rows.Next() {
		var s Subscription
		err := rows.Scan(&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subs, nil
}
