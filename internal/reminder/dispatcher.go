// Package reminder sends preventive reminder emails inside a trailing window
// and retires reminders that were never dispatched in time.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/taskminder/internal/clock"
	"github.com/dukerupert/taskminder/internal/email"
	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/notify"
	"github.com/dukerupert/taskminder/internal/recurrence"
	"github.com/dukerupert/taskminder/internal/store"
)

const (
	DefaultWindow      = 30 * time.Minute
	defaultSendTimeout = 15 * time.Second
)

type ReminderStore interface {
	List(ctx context.Context, f store.ReminderFilter) ([]model.Reminder, error)
	ClaimEmail(ctx context.Context, id int64, at time.Time) (bool, error)
	ReleaseEmail(ctx context.Context, id int64) error
	MarkExpired(ctx context.Context, ids []int64) (int64, error)
}

type TaskLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
}

type Recipients interface {
	Resolve(ctx context.Context, userID int64) (model.User, error)
}

// Stats summarizes one ProcessDueReminders run.
type Stats struct {
	RunID       string
	Processed   int
	Sent        int
	OutOfWindow int
	AlreadySent int
	Errors      int
}

type Config struct {
	Window      time.Duration
	Location    *time.Location
	BaseURL     string
	SendTimeout time.Duration
}

type Dispatcher struct {
	reminders  ReminderStore
	tasks      TaskLookup
	recipients Recipients
	mailer     email.Mailer
	publisher  notify.Publisher
	cfg        Config
	logger     *slog.Logger
}

func NewDispatcher(reminders ReminderStore, tasks TaskLookup, recipients Recipients, mailer email.Mailer, publisher notify.Publisher, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Dispatcher{
		reminders:  reminders,
		tasks:      tasks,
		recipients: recipients,
		mailer:     mailer,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With("component", "reminder"),
	}
}

// ScheduledAt combines the reminder's date and time in loc.
func ScheduledAt(r model.Reminder, loc *time.Location) (time.Time, error) {
	day, err := clock.ParseDate(r.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse reminder date %q: %w", r.Date, err)
	}
	tod, err := recurrence.ParseTimeOfDay(r.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse reminder time: %w", err)
	}
	return tod.On(day), nil
}

// InWindow reports whether at falls in [now - window, now].
func InWindow(at, now time.Time, window time.Duration) bool {
	return !at.Before(now.Add(-window)) && !at.After(now)
}

// ProcessDueReminders emails today's pending reminders whose scheduled time
// is inside the trailing window.
func (d *Dispatcher) ProcessDueReminders(ctx context.Context, now time.Time) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	logger := d.logger.With("run_id", stats.RunID)
	now = now.In(d.cfg.Location)

	pending := false
	candidates, err := d.reminders.List(ctx, store.ReminderFilter{
		EmailSent: &pending,
		Date:      clock.DateString(now),
	})
	if err != nil {
		return stats, fmt.Errorf("list due reminders: %w", err)
	}

	for _, r := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("process due reminders: %w", err)
		}
		stats.Processed++

		at, err := ScheduledAt(r, d.cfg.Location)
		if err != nil {
			stats.Errors++
			logger.Error("invalid reminder schedule", "reminder_id", r.ID, "error", err)
			continue
		}
		if !InWindow(at, now, d.cfg.Window) {
			stats.OutOfWindow++
			logger.Debug("reminder out of window", "reminder_id", r.ID, "scheduled_at", at)
			continue
		}

		claimed, err := d.reminders.ClaimEmail(ctx, r.ID, now)
		if err != nil {
			stats.Errors++
			logger.Error("claim reminder", "reminder_id", r.ID, "error", err)
			continue
		}
		if !claimed {
			stats.AlreadySent++
			continue
		}

		if err := d.send(ctx, r, at); err != nil {
			stats.Errors++
			if rerr := d.reminders.ReleaseEmail(context.WithoutCancel(ctx), r.ID); rerr != nil {
				err = errors.Join(err, rerr)
			}
			logger.Error("reminder email failed", "reminder_id", r.ID, "error", err)
			continue
		}

		stats.Sent++
		logger.Info("reminder sent", "reminder_id", r.ID, "user_id", r.UserID)

		ev := notify.NewEvent(notify.EntityReminder, notify.ActionSent, r.UserID, r.ID, r.Title)
		if r.TaskID != nil {
			ev.Extra = map[string]any{"task_id": *r.TaskID}
		}
		if err := d.publisher.Publish(ctx, ev); err != nil {
			logger.Warn("publish reminder event", "reminder_id", r.ID, "error", err)
		}
	}

	logger.Info("reminder run complete",
		"processed", stats.Processed,
		"sent", stats.Sent,
		"out_of_window", stats.OutOfWindow,
		"already_sent", stats.AlreadySent,
		"errors", stats.Errors,
	)
	return stats, nil
}

func (d *Dispatcher) send(ctx context.Context, r model.Reminder, at time.Time) error {
	user, err := d.recipients.Resolve(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	data := email.ReminderEmail{
		To:       user.Email,
		UserName: user.Name,
		Title:    r.Title,
		At:       at,
		BaseURL:  d.cfg.BaseURL,
	}
	if r.TaskID != nil {
		task, err := d.tasks.GetByID(ctx, *r.TaskID)
		if err != nil {
			return fmt.Errorf("load reminder task: %w", err)
		}
		if task != nil {
			data.TaskID = task.ID
			data.TaskTitle = task.Title
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()
	if err := d.mailer.Send(sendCtx, email.RenderReminder(data)); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}
	return nil
}

// CleanExpired marks pending reminders scheduled before now - Window as sent
// without emailing them. Reminders still inside the dispatch window are
// never touched.
func (d *Dispatcher) CleanExpired(ctx context.Context, now time.Time) (int, error) {
	now = now.In(d.cfg.Location)
	cutoff := now.Add(-d.cfg.Window)

	pending := false
	candidates, err := d.reminders.List(ctx, store.ReminderFilter{
		EmailSent: &pending,
		DateTo:    clock.DateString(cutoff),
	})
	if err != nil {
		return 0, fmt.Errorf("list expired reminders: %w", err)
	}

	var ids []int64
	for _, r := range candidates {
		at, err := ScheduledAt(r, d.cfg.Location)
		if err != nil {
			d.logger.Warn("skipping reminder with invalid schedule", "reminder_id", r.ID, "error", err)
			continue
		}
		if at.Before(cutoff) {
			ids = append(ids, r.ID)
		}
	}

	n, err := d.reminders.MarkExpired(ctx, ids)
	if err != nil {
		return 0, err
	}
	d.logger.Info("expired reminders cleaned", "count", n, "cutoff", cutoff)
	return int(n), nil
}
