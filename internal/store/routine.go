package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/recurrence"
)

type RoutineStore struct {
	db *sqlx.DB
}

func NewRoutineStore(db *sql.DB) *RoutineStore {
	return &RoutineStore{db: wrap(db)}
}

const routineCols = `id, user_id, title, description, priority, frequency, days, weeks, months,
	workdays_only, is_active, due_time, end_time, last_generated_date, created_at, updated_at`

func (s *RoutineStore) Create(ctx context.Context, r model.Routine) (*model.Routine, error) {
	if r.Priority == "" {
		r.Priority = model.PriorityMedium
	}
	days, err := recurrence.ParseDays(r.Days)
	if err != nil {
		return nil, fmt.Errorf("routine days: %w", err)
	}
	r.Days = days
	for _, t := range []*string{r.DueTime, r.EndTime} {
		if t == nil || *t == "" {
			continue
		}
		if _, err := recurrence.ParseTimeOfDay(*t); err != nil {
			return nil, fmt.Errorf("routine time: %w", err)
		}
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO routines (user_id, title, description, priority, frequency, days, weeks, months, workdays_only, is_active, due_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Title, r.Description, r.Priority, r.Frequency, r.Days, r.Weeks, r.Months,
		r.WorkdaysOnly, r.IsActive, nullString(r.DueTime), nullString(r.EndTime),
	)
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RoutineStore) GetByID(ctx context.Context, id int64) (*model.Routine, error) {
	var r model.Routine
	err := s.db.GetContext(ctx, &r, `SELECT `+routineCols+` FROM routines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return &r, nil
}

func (s *RoutineStore) ListActive(ctx context.Context) ([]model.Routine, error) {
	var routines []model.Routine
	err := s.db.SelectContext(ctx, &routines,
		`SELECT `+routineCols+` FROM routines WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active routines: %w", err)
	}
	return routines, nil
}
