package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"CricketScoreApi/internal/validator"

	"github.com/lib/pq"
)

type FinanceModel struct {
	db *sql.DB
}

// Period is one month of club accounts. A period is unique per year and
// month.
type Period struct {
	ID        int64     `json:"id"`
	Year      int64     `json:"year"`
	Month     int64     `json:"month"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a single income or expense line inside a period. Amounts are
// stored in the smallest currency unit.
type Entry struct {
	ID          int64     `json:"id"`
	PeriodID    int64     `json:"period_id"`
	Member      string    `json:"member,omitempty"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}

// PeriodSummary is the aggregate for one period.
type PeriodSummary struct {
	Period        Period `json:"period"`
	IncomeCents   int64  `json:"income_cents"`
	ExpenseCents  int64  `json:"expense_cents"`
	BalanceCents  int64  `json:"balance_cents"`
	EntryCount    int64  `json:"entry_count"`
	PayingMembers int64  `json:"paying_members"`
}

func ValidatePeriod(v *validator.Validator, p *Period) {
	v.Check(p.Year >= 2000 && p.Year <= 2100, "year", "must be between 2000 and 2100")
	v.Check(p.Month >= 1 && p.Month <= 12, "month", "must be between 1 and 12")
}

func ValidateEntry(v *validator.Validator, e *Entry) {
	v.Check(e.Description != "", "description", "must be provided")
	v.Check(len(e.Description) <= 200, "description", "must not be more than 200 characters")
	v.Check(e.AmountCents > 0, "amount_cents", "must be greater than zero")
	v.Check(validator.PermittedValue(e.Kind, "income", "expense"), "kind",
		`must be "income" or "expense"`)
}

// InsertPeriod creates the period, or returns the existing one for the same
// year and month.
func (m *FinanceModel) InsertPeriod(ctx context.Context, p *Period) error {
	stmt := `
		INSERT INTO finance_periods (year, month)
		VALUES ($1, $2)
		ON CONFLICT (year, month)
		DO UPDATE SET year = EXCLUDED.year
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, p.Year, p.Month).Scan(&p.ID, &p.CreatedAt)
}

func (m *FinanceModel) GetPeriod(ctx context.Context, year, month int64) (*Period, error) {
	stmt := `
		SELECT id, year, month, created_at
		FROM finance_periods
		WHERE year = $1 AND month = $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p Period
	err := m.db.QueryRowContext(ctx, stmt, year, month).Scan(&p.ID, &p.Year, &p.Month, &p.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &p, nil
}

// InsertEntries batch-inserts entries into a period with a single unnest
// statement.
func (m *FinanceModel) InsertEntries(ctx context.Context, periodID int64, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	members := make([]string, 0, len(entries))
	descriptions := make([]string, 0, len(entries))
	amounts := make([]int64, 0, len(entries))
	kinds := make([]string, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.Member)
		descriptions = append(descriptions, e.Description)
		amounts = append(amounts, e.AmountCents)
		kinds = append(kinds, e.Kind)
	}

	stmt := `
		INSERT INTO finance_entries (period_id, member, description, amount_cents, kind)
		SELECT $1, m, d, a, k
		FROM unnest($2::text[], $3::text[], $4::bigint[], $5::text[]) AS t(m, d, a, k)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := m.db.ExecContext(ctx, stmt, periodID,
		pq.Array(members), pq.Array(descriptions), pq.Array(amounts), pq.Array(kinds))
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrRecordNotFound
		}
		return err
	}

	return nil
}

func (m *FinanceModel) GetEntries(ctx context.Context, periodID int64) ([]Entry, error) {
	stmt := `
		SELECT id, period_id, member, description, amount_cents, kind, created_at
		FROM finance_entries
		WHERE period_id = $1
		ORDER BY created_at ASC, id ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.PeriodID,
			&e.Member,
			&e.Description,
			&e.AmountCents,
			&e.Kind,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetSummary aggregates one period's totals in the database.
func (m *FinanceModel) GetSummary(ctx context.Context, year, month int64) (*PeriodSummary, error) {
	p, err := m.GetPeriod(ctx, year, month)
	if err != nil {
		return nil, err
	}

	stmt := `
		SELECT
			COALESCE(SUM(amount_cents) FILTER (WHERE kind = 'income'), 0),
			COALESCE(SUM(amount_cents) FILTER (WHERE kind = 'expense'), 0),
			COUNT(*),
			COUNT(DISTINCT member) FILTER (WHERE kind = 'income' AND member <> '')
		FROM finance_entries
		WHERE period_id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	summary := &PeriodSummary{Period: *p}
	err = m.db.QueryRowContext(ctx, stmt, p.ID).Scan(
		&summary.IncomeCents,
		&summary.ExpenseCents,
		&summary.EntryCount,
		&summary.PayingMembers,
	)
	if err != nil {
		return nil, err
	}
	summary.BalanceCents = summary.IncomeCents - summary.ExpenseCents

	return summary, nil
}
