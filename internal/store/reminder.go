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

type ReminderStore struct {
	db *sqlx.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: wrap(db)}
}

const reminderCols = `id, user_id, task_id, title, date, time, email_sent, sent_at, created_at`

// ReminderFilter is a predicate over reminder rows. Dates are YYYY-MM-DD
// strings, so range comparisons are lexical and inclusive.
type ReminderFilter struct {
	EmailSent *bool
	Date      string
	DateTo    string
	TaskID    *int64
}

func (f ReminderFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.EmailSent != nil {
		clauses = append(clauses, "email_sent = ?")
		args = append(args, *f.EmailSent)
	}
	if f.Date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, f.Date)
	}
	if f.DateTo != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.DateTo)
	}
	if f.TaskID != nil {
		clauses = append(clauses, "task_id = ?")
		args = append(args, *f.TaskID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *ReminderStore) Create(ctx context.Context, r model.Reminder) (*model.Reminder, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, task_id, title, date, time, email_sent) VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, nullInt(r.TaskID), r.Title, r.Date, r.Time, r.EmailSent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ReminderStore) GetByID(ctx context.Context, id int64) (*model.Reminder, error) {
	var r model.Reminder
	err := s.db.GetContext(ctx, &r, `SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return &r, nil
}

func (s *ReminderStore) List(ctx context.Context, f ReminderFilter) ([]model.Reminder, error) {
	where, args := f.where()
	var reminders []model.Reminder
	err := s.db.SelectContext(ctx, &reminders,
		`SELECT `+reminderCols+` FROM reminders`+where+` ORDER BY date ASC, time ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// ClaimEmail marks a pending reminder as sent. It returns false when the
// reminder was already claimed by another run.
func (s *ReminderStore) ClaimEmail(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET email_sent = 1, sent_at = ? WHERE id = ? AND email_sent = 0`, dbTime(at), id)
	if err != nil {
		return false, fmt.Errorf("claim reminder email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *ReminderStore) ReleaseEmail(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET email_sent = 0, sent_at = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("release reminder email: %w", err)
	}
	return nil
}

// MarkExpired flags the given pending reminders as sent without recording a
// send time. Reminders already sent are left untouched.
func (s *ReminderStore) MarkExpired(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE reminders SET email_sent = 1 WHERE email_sent = 0 AND id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("expand reminder ids: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("mark reminders expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
