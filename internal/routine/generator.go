// Package routine materializes tasks from active routines, at most one per
// routine per calendar date.
package routine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/taskminder/internal/clock"
	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/notify"
	"github.com/dukerupert/taskminder/internal/recurrence"
)

const DefaultReminderLead = 2 * time.Hour

type RoutineStore interface {
	ListActive(ctx context.Context) ([]model.Routine, error)
}

type TaskStore interface {
	ExistsForRoutineDate(ctx context.Context, routineID int64, date string) (bool, error)
	CreateGenerated(ctx context.Context, t model.Task) (*model.Task, bool, error)
}

type ReminderStore interface {
	Create(ctx context.Context, r model.Reminder) (*model.Reminder, error)
}

type RoutineError struct {
	RoutineID int64
	Title     string
	Err       error
}

func (e RoutineError) Error() string {
	return fmt.Sprintf("routine %d (%s): %v", e.RoutineID, e.Title, e.Err)
}

func (e RoutineError) Unwrap() error { return e.Err }

// Result summarizes generation for a single date.
type Result struct {
	Date              string
	RoutinesProcessed int
	TasksGenerated    int
	GeneratedTasks    []model.Task
	Errors            []RoutineError
}

type RangeResult struct {
	Start             string
	End               string
	Days              []Result
	RoutinesProcessed int
	TasksGenerated    int
	Errors            int
}

type Config struct {
	Location     *time.Location
	ReminderLead time.Duration
}

type Generator struct {
	routines  RoutineStore
	tasks     TaskStore
	reminders ReminderStore
	publisher notify.Publisher
	cfg       Config
	logger    *slog.Logger
}

func NewGenerator(routines RoutineStore, tasks TaskStore, reminders ReminderStore, publisher notify.Publisher, cfg Config, logger *slog.Logger) *Generator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ReminderLead <= 0 {
		cfg.ReminderLead = DefaultReminderLead
	}
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Generator{
		routines:  routines,
		tasks:     tasks,
		reminders: reminders,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With("component", "routine"),
	}
}

// GenerateForDate creates the tasks active routines owe for date's calendar
// day. Running it twice for the same day creates nothing new.
func (g *Generator) GenerateForDate(ctx context.Context, date time.Time) (Result, error) {
	day := clock.StartOfDay(date.In(g.cfg.Location))
	res := Result{Date: clock.DateString(day)}
	logger := g.logger.With("date", res.Date)

	routines, err := g.routines.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("list active routines: %w", err)
	}

	for _, r := range routines {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("generate routine tasks: %w", err)
		}
		res.RoutinesProcessed++

		if !recurrence.ShouldFire(r, day) {
			continue
		}

		task, err := g.generate(ctx, logger, r, day, res.Date)
		if err != nil {
			res.Errors = append(res.Errors, RoutineError{RoutineID: r.ID, Title: r.Title, Err: err})
			logger.Error("routine generation failed", "routine_id", r.ID, "error", err)
			continue
		}
		if task != nil {
			res.TasksGenerated++
			res.GeneratedTasks = append(res.GeneratedTasks, *task)
		}
	}

	logger.Info("routine generation complete",
		"routines_processed", res.RoutinesProcessed,
		"tasks_generated", res.TasksGenerated,
		"errors", len(res.Errors),
	)
	return res, nil
}

func (g *Generator) generate(ctx context.Context, logger *slog.Logger, r model.Routine, day time.Time, date string) (*model.Task, error) {
	exists, err := g.tasks.ExistsForRoutineDate(ctx, r.ID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Debug("task already generated", "routine_id", r.ID)
		return nil, nil
	}

	due, err := recurrence.DueDateTime(r, day)
	if err != nil {
		return nil, err
	}

	routineID := r.ID
	target := date
	task, created, err := g.tasks.CreateGenerated(ctx, model.Task{
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     &due,
		RoutineID:   &routineID,
		TargetDate:  &target,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		// a concurrent run won the insert
		return nil, nil
	}

	logger.Info("task generated", "routine_id", r.ID, "task_id", task.ID, "due_date", due)

	// The task is authoritative; a missing reminder is only logged.
	remindAt := due.Add(-g.cfg.ReminderLead)
	if _, err := g.reminders.Create(ctx, model.Reminder{
		UserID: r.UserID,
		TaskID: &task.ID,
		Title:  r.Title,
		Date:   clock.DateString(remindAt),
		Time:   remindAt.Format(clock.TimeLayout),
	}); err != nil {
		logger.Warn("create reminder for generated task", "routine_id", r.ID, "task_id", task.ID, "error", err)
	}

	ev := notify.NewEvent(notify.EntityRoutine, notify.ActionGenerated, r.UserID, task.ID, task.Title)
	ev.Extra = map[string]any{"routine_id": r.ID, "target_date": date}
	if err := g.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("publish generated event", "task_id", task.ID, "error", err)
	}

	return task, nil
}

// GenerateForRange runs GenerateForDate for every day from start to end inclusive.
func (g *Generator) GenerateForRange(ctx context.Context, start, end time.Time) (RangeResult, error) {
	first := clock.StartOfDay(start.In(g.cfg.Location))
	last := clock.StartOfDay(end.In(g.cfg.Location))
	rr := RangeResult{Start: clock.DateString(first), End: clock.DateString(last)}
	if last.Before(first) {
		return rr, fmt.Errorf("generate range: end %s is before start %s", rr.End, rr.Start)
	}

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		res, err := g.GenerateForDate(ctx, day)
		if err != nil {
			return rr, err
		}
		rr.Days = append(rr.Days, res)
		rr.RoutinesProcessed += res.RoutinesProcessed
		rr.TasksGenerated += res.TasksGenerated
		rr.Errors += len(res.Errors)
	}
	return rr, nil
}
