package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/goalcoach/internal/model"
)

var (
	ErrGoalDayNotFound = errors.New("goal day not found")
	ErrUnknownDayField = errors.New("unknown goal day field")
)

// Column names are interpolated into SQL, so only these are accepted.
var dayColumns = map[string]string{
	model.DayFieldIntent: "intent",
	model.DayFieldAction: "action",
}

type GoalDayRepository interface {
	EnsureWindow(ctx context.Context, goalID string, dates []string) error
	DaysBetween(ctx context.Context, goalID, from, to string) ([]*model.GoalDay, error)
	Days(ctx context.Context, goalID string) ([]*model.GoalDay, error)
	Day(ctx context.Context, goalID, date string) (*model.GoalDay, error)
	UpsertField(ctx context.Context, goalID, date, field, value string) (*model.GoalDay, error)
	SetNotes(ctx context.Context, goalID, date, notes string) error
}

type goalDayRepository struct {
	db *sqlx.DB
}

func NewGoalDayRepository(db *sqlx.DB) GoalDayRepository {
	return &goalDayRepository{db: db}
}

// EnsureWindow creates an empty row for every date that has none. Existing
// rows are left untouched.
func (r *goalDayRepository) EnsureWindow(ctx context.Context, goalID string, dates []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO goal_days (id, goal_id, date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (goal_id, date) DO NOTHING`

	now := time.Now().UTC()
	for _, date := range dates {
		_, err := tx.ExecContext(ctx, query, uuid.New().String(), goalID, date, now, now)
		if err != nil {
			return fmt.Errorf("failed to ensure day %s: %w", date, err)
		}
	}

	return tx.Commit()
}

// DaysBetween returns the days in [from, to] ordered by date. ISO dates sort
// lexically.
func (r *goalDayRepository) DaysBetween(ctx context.Context, goalID, from, to string) ([]*model.GoalDay, error) {
	days := []*model.GoalDay{}
	query := `SELECT * FROM goal_days WHERE goal_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &days, query, goalID, from, to)
	if err != nil {
		return nil, err
	}

	return days, nil
}

func (r *goalDayRepository) Days(ctx context.Context, goalID string) ([]*model.GoalDay, error) {
	days := []*model.GoalDay{}
	query := `SELECT * FROM goal_days WHERE goal_id = $1 ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &days, query, goalID)
	if err != nil {
		return nil, err
	}

	return days, nil
}

func (r *goalDayRepository) Day(ctx context.Context, goalID, date string) (*model.GoalDay, error) {
	day := &model.GoalDay{}
	query := `SELECT * FROM goal_days WHERE goal_id = $1 AND date = $2`

	err := r.db.GetContext(ctx, day, query, goalID, date)
	if err == sql.ErrNoRows {
		return nil, ErrGoalDayNotFound
	}
	if err != nil {
		return nil, err
	}

	return day, nil
}

// UpsertField sets one text field of the (goal, date) row, creating the row
// when missing. Concurrent writers never produce a second row for the date.
func (r *goalDayRepository) UpsertField(ctx context.Context, goalID, date, field, value string) (*model.GoalDay, error) {
	column, ok := dayColumns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDayField, field)
	}

	query := fmt.Sprintf(`INSERT INTO goal_days (id, goal_id, date, %[1]s, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (goal_id, date) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = excluded.updated_at`, column)

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), goalID, date, value, now, now)
	if err != nil {
		return nil, err
	}

	return r.Day(ctx, goalID, date)
}

func (r *goalDayRepository) SetNotes(ctx context.Context, goalID, date, notes string) error {
	query := `UPDATE goal_days SET notes = $1, updated_at = $2 WHERE goal_id = $3 AND date = $4`

	result, err := r.db.ExecContext(ctx, query, notes, time.Now().UTC(), goalID, date)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalDayNotFound
	}

	return nil
}
