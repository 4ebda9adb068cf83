package overdue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/taskminder/internal/email"
	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/notify"
	"github.com/dukerupert/taskminder/internal/store"
)

const defaultSendTimeout = 15 * time.Second

type TaskStore interface {
	List(ctx context.Context, f store.TaskFilter) ([]model.Task, error)
	ClaimOverdueNotification(ctx context.Context, id int64) (bool, error)
	ReleaseOverdueNotification(ctx context.Context, id int64) error
}

type Recipients interface {
	Resolve(ctx context.Context, userID int64) (model.User, error)
}

type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeAlreadyNotified
	OutcomeSkipped
)

// Stats summarizes one ProcessOverdueTasks run.
type Stats struct {
	RunID           string
	Processed       int
	Sent            int
	AlreadyNotified int
	Skipped         int
	Errors          int
}

type Config struct {
	Policy      Policy
	BaseURL     string
	SendTimeout time.Duration
}

type Notifier struct {
	tasks      TaskStore
	recipients Recipients
	mailer     email.Mailer
	publisher  notify.Publisher
	cfg        Config
	logger     *slog.Logger
}

func NewNotifier(tasks TaskStore, recipients Recipients, mailer email.Mailer, publisher notify.Publisher, cfg Config, logger *slog.Logger) *Notifier {
	if cfg.Policy.Delay == 0 {
		cfg.Policy.Delay = DefaultDelay
	}
	if cfg.Policy.Tolerance == 0 {
		cfg.Policy.Tolerance = DefaultTolerance
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Notifier{
		tasks:      tasks,
		recipients: recipients,
		mailer:     mailer,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger.With("component", "overdue"),
	}
}

// Policy returns the detection policy the notifier runs with.
func (n *Notifier) Policy() Policy {
	return n.cfg.Policy
}

// ProcessOverdueTasks notifies every open task that became overdue around now.
// Per-task failures are counted and logged; only a failure to load the
// candidates aborts the run.
func (n *Notifier) ProcessOverdueTasks(ctx context.Context, now time.Time) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	logger := n.logger.With("run_id", stats.RunID)
	policy := n.cfg.Policy

	filter := store.TaskFilter{
		Statuses:   model.OpenStatuses,
		HasDueDate: true,
	}
	if policy.CatchUp {
		to := now.Add(-policy.Delay)
		notified := false
		filter.DueTo = &to
		filter.OverdueNotified = &notified
	} else {
		w := policy.DetectionWindow(now)
		filter.DueFrom = &w.From
		filter.DueTo = &w.To
	}

	candidates, err := n.tasks.List(ctx, filter)
	if err != nil {
		return stats, fmt.Errorf("list overdue candidates: %w", err)
	}

	for _, task := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("process overdue tasks: %w", err)
		}
		if !policy.InWindow(task, now) {
			continue
		}
		stats.Processed++

		if task.OverdueNotificationSent {
			stats.AlreadyNotified++
			continue
		}

		outcome, err := n.notify(ctx, logger, task, now)
		if err != nil {
			stats.Errors++
			logger.Error("overdue notification failed", "task_id", task.ID, "error", err)
			continue
		}
		switch outcome {
		case OutcomeSent:
			stats.Sent++
		case OutcomeAlreadyNotified:
			stats.AlreadyNotified++
		case OutcomeSkipped:
			stats.Skipped++
		}
	}

	logger.Info("overdue run complete",
		"processed", stats.Processed,
		"sent", stats.Sent,
		"already_notified", stats.AlreadyNotified,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
	)
	return stats, nil
}

// NotifyTask sends the overdue email for a single task if it is eligible and
// not yet claimed by another run.
func (n *Notifier) NotifyTask(ctx context.Context, task model.Task, now time.Time) (Outcome, error) {
	return n.notify(ctx, n.logger, task, now)
}

func (n *Notifier) notify(ctx context.Context, logger *slog.Logger, task model.Task, now time.Time) (Outcome, error) {
	if !n.cfg.Policy.IsOverdue(task, now) {
		logger.Warn("task not eligible for overdue notification",
			"task_id", task.ID, "status", task.Status, "due_date", task.DueDate)
		return OutcomeSkipped, nil
	}

	claimed, err := n.tasks.ClaimOverdueNotification(ctx, task.ID)
	if err != nil {
		return 0, err
	}
	if !claimed {
		return OutcomeAlreadyNotified, nil
	}

	if err := n.send(ctx, task, now); err != nil {
		// release even when the run itself was cancelled
		if rerr := n.tasks.ReleaseOverdueNotification(context.WithoutCancel(ctx), task.ID); rerr != nil {
			return 0, errors.Join(err, rerr)
		}
		return 0, err
	}

	logger.Info("overdue notification sent", "task_id", task.ID, "user_id", task.UserID)

	ev := notify.NewEvent(notify.EntityTask, notify.ActionOverdue, task.UserID, task.ID, task.Title)
	ev.Extra = map[string]any{"minutes_overdue": MinutesOverdue(task, now)}
	if err := n.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("publish overdue event", "task_id", task.ID, "error", err)
	}

	return OutcomeSent, nil
}

func (n *Notifier) send(ctx context.Context, task model.Task, now time.Time) error {
	user, err := n.recipients.Resolve(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	msg := email.RenderOverdue(email.OverdueEmail{
		To:             user.Email,
		UserName:       user.Name,
		TaskID:         task.ID,
		TaskTitle:      task.Title,
		Priority:       string(task.Priority),
		DueDate:        task.DueDate.In(now.Location()),
		MinutesOverdue: MinutesOverdue(task, now),
		BaseURL:        n.cfg.BaseURL,
	})

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
	defer cancel()
	if err := n.mailer.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("send overdue email: %w", err)
	}
	return nil
}
