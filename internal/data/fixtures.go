package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"CricketScoreApi/internal/validator"
)

type FixtureModel struct {
	db *sql.DB
}

// Fixture is an upcoming game on the club calendar, before any scoring
// exists for it.
type Fixture struct {
	ID        int64     `json:"id"`
	Opponent  string    `json:"opponent"`
	Venue     string    `json:"venue,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Version   int64     `json:"-"`
}

// Availability is one member's reply for a fixture, keyed by a device
// fingerprint so a member can change their reply without an account.
type Availability struct {
	FixtureID  int64     `json:"fixture_id"`
	PlayerName string    `json:"player_name"`
	Reply      string    `json:"reply"`
	DeviceFp   string    `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AvailabilitySummary aggregates the replies for one fixture.
type AvailabilitySummary struct {
	FixtureID int64    `json:"fixture_id"`
	Yes       []string `json:"yes"`
	No        []string `json:"no"`
	Maybe     []string `json:"maybe"`
}

func ValidateFixture(v *validator.Validator, f *Fixture) {
	v.Check(f.Opponent != "", "opponent", "must be provided")
	v.Check(len(f.Opponent) <= 100, "opponent", "must not be more than 100 characters")
	v.Check(!f.StartsAt.IsZero(), "starts_at", "must be provided")
	v.Check(len(f.Notes) <= 500, "notes", "must not be more than 500 characters")
}

func ValidateAvailability(v *validator.Validator, a *Availability) {
	v.Check(a.PlayerName != "", "player_name", "must be provided")
	v.Check(len(a.PlayerName) <= 60, "player_name", "must not be more than 60 characters")
	v.Check(validator.PermittedValue(a.Reply, "yes", "no", "maybe"), "reply",
		`must be one of "yes", "no" or "maybe"`)
	v.Check(a.DeviceFp != "", "device_fp", "must be provided")
}

func (m *FixtureModel) Insert(ctx context.Context, f *Fixture) error {
	stmt := `
		INSERT INTO fixtures (opponent, venue, starts_at, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, f.Opponent, f.Venue, f.StartsAt, f.Notes).Scan(
		&f.ID,
		&f.CreatedAt,
		&f.Version,
	)
}

func (m *FixtureModel) Get(ctx context.Context, id int64) (*Fixture, error) {
	stmt := `
		SELECT id, opponent, venue, starts_at, notes, created_at, version
		FROM fixtures
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var f Fixture
	err := m.db.QueryRowContext(ctx, stmt, id).Scan(
		&f.ID,
		&f.Opponent,
		&f.Venue,
		&f.StartsAt,
		&f.Notes,
		&f.CreatedAt,
		&f.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &f, nil
}

// GetUpcoming lists fixtures from the start of today onwards, soonest first.
func (m *FixtureModel) GetUpcoming(ctx context.Context, within DateRange) ([]Fixture, error) {
	stmt := `
		SELECT id, opponent, venue, starts_at, notes, created_at, version
		FROM fixtures
		WHERE starts_at >= $1 AND ($2::timestamptz IS NULL OR starts_at <= $2)
		ORDER BY starts_at ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var end any
	if !within.End.IsZero() {
		end = within.End
	}

	rows, err := m.db.QueryContext(ctx, stmt, within.Start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]Fixture, 0)
	for rows.Next() {
		var f Fixture
		err := rows.Scan(
			&f.ID,
			&f.Opponent,
			&f.Venue,
			&f.StartsAt,
			&f.Notes,
			&f.CreatedAt,
			&f.Version,
		)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fixtures, nil
}

func (m *FixtureModel) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, `DELETE FROM fixtures WHERE id = $1`, id)
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

// SetAvailability upserts a member's reply, keyed on the device
// fingerprint.
func (m *FixtureModel) SetAvailability(ctx context.Context, a *Availability) error {
	stmt := `
		INSERT INTO availability (fixture_id, player_name, reply, device_fp, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (fixture_id, device_fp)
		DO UPDATE SET player_name = EXCLUDED.player_name, reply = EXCLUDED.reply,
			updated_at = now()
		RETURNING updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, a.FixtureID, a.PlayerName, a.Reply, a.DeviceFp).
		Scan(&a.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRecordNotFound
		}
		return err
	}

	return nil
}

// GetAvailability aggregates the replies for a fixture into named lists.
func (m *FixtureModel) GetAvailability(ctx context.Context, fixtureID int64) (*AvailabilitySummary, error) {
	stmt := `
		SELECT player_name, reply
		FROM availability
		WHERE fixture_id = $1
		ORDER BY player_name ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, fixtureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &AvailabilitySummary{
		FixtureID: fixtureID,
		Yes:       []string{},
		No:        []string{},
		Maybe:     []string{},
	}
	for rows.Next() {
		var name, reply string
		if err := rows.Scan(&name, &reply); err != nil {
			return nil, err
		}
		switch reply {
		case "yes":
			summary.Yes = append(summary.Yes, name)
		case "no":
			summary.No = append(summary.No, name)
		case "maybe":
			summary.Maybe = append(summary.Maybe, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}
