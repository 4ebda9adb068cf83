package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dukerupert/taskminder/internal/model"
)

type TaskStore struct {
	db *sqlx.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: wrap(db)}
}

const taskCols = `id, user_id, title, description, priority, status, due_date, overdue_notification_sent,
	is_auto_generated, routine_id, target_date, created_at, updated_at`

// TaskFilter is a predicate over task rows. Zero-valued fields are ignored.
// DueFrom and DueTo are inclusive.
type TaskFilter struct {
	Statuses        []model.TaskStatus
	HasDueDate      bool
	DueFrom         *time.Time
	DueTo           *time.Time
	OverdueNotified *bool
	RoutineID       *int64
	TargetDate      string
}

func (f TaskFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if len(f.Statuses) > 0 {
		clauses = append(clauses, "status IN (?)")
		args = append(args, f.Statuses)
	}
	if f.HasDueDate {
		clauses = append(clauses, "due_date IS NOT NULL")
	}
	if f.DueFrom != nil {
		clauses = append(clauses, "due_date >= ?")
		args = append(args, dbTime(*f.DueFrom))
	}
	if f.DueTo != nil {
		clauses = append(clauses, "due_date <= ?")
		args = append(args, dbTime(*f.DueTo))
	}
	if f.OverdueNotified != nil {
		clauses = append(clauses, "overdue_notification_sent = ?")
		args = append(args, *f.OverdueNotified)
	}
	if f.RoutineID != nil {
		clauses = append(clauses, "routine_id = ?")
		args = append(args, *f.RoutineID)
	}
	if f.TargetDate != "" {
		clauses = append(clauses, "target_date = ?")
		args = append(args, f.TargetDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *TaskStore) List(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	where, args := f.where()
	query := `SELECT ` + taskCols + ` FROM tasks` + where + ` ORDER BY due_date ASC, id ASC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("expand task filter: %w", err)
	}

	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	err := s.db.GetContext(ctx, &t, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func (s *TaskStore) Create(ctx context.Context, t model.Task) (*model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusToDo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, status, due_date, overdue_notification_sent, is_auto_generated, routine_id, target_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description, t.Priority, t.Status, nullTime(t.DueDate),
		t.OverdueNotificationSent, t.IsAutoGenerated, nullInt(t.RoutineID), nullString(t.TargetDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// CreateGenerated inserts a routine-generated task and records the routine's
// last generated date in one transaction. If a task already exists for the
// same routine and target date nothing is written and created is false.
func (s *TaskStore) CreateGenerated(ctx context.Context, t model.Task) (task *model.Task, created bool, err error) {
	if t.RoutineID == nil || t.TargetDate == nil {
		return nil, false, fmt.Errorf("create generated task: routine id and target date are required")
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, status, due_date, is_auto_generated, routine_id, target_date)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
		 ON CONFLICT (routine_id, target_date) DO NOTHING`,
		t.UserID, t.Title, t.Description, t.Priority, model.StatusToDo, nullTime(t.DueDate),
		*t.RoutineID, *t.TargetDate,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert generated task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, false, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE routines SET last_generated_date = ? WHERE id = ?`,
		*t.TargetDate, *t.RoutineID,
	); err != nil {
		return nil, false, fmt.Errorf("update last generated date: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	task, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, true, err
	}
	return task, true, nil
}

func (s *TaskStore) ExistsForRoutineDate(ctx context.Context, routineID int64, date string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM tasks WHERE routine_id = ? AND target_date = ?`, routineID, date)
	if err != nil {
		return false, fmt.Errorf("check generated task: %w", err)
	}
	return n > 0, nil
}

// ClaimOverdueNotification flips overdue_notification_sent from 0 to 1.
// It returns false when another run already holds the flag.
func (s *TaskStore) ClaimOverdueNotification(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET overdue_notification_sent = 1 WHERE id = ? AND overdue_notification_sent = 0`, id)
	if err != nil {
		return false, fmt.Errorf("claim overdue notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ReleaseOverdueNotification undoes a claim after a failed send so the next run retries.
func (s *TaskStore) ReleaseOverdueNotification(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET overdue_notification_sent = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("release overdue notification: %w", err)
	}
	return nil
}

// ResetOverdueNotification is the maintenance action that re-arms a task
// for another overdue email.
func (s *TaskStore) ResetOverdueNotification(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET overdue_notification_sent = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reset overdue notification: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return fmt.Errorf("reset overdue notification %d: %w", id, err)
	}
	return nil
}
