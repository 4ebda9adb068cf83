// Package overdue finds open tasks whose due date passed the escalation
// delay and emails their owner exactly once.
package overdue

import (
	"time"

	"github.com/dukerupert/taskminder/internal/model"
)

const (
	// DefaultDelay is how long after its due date a task is escalated.
	DefaultDelay = 30 * time.Minute
	// DefaultTolerance is the half-width of the detection window around
	// now - DefaultDelay.
	DefaultTolerance = 5 * time.Minute
)

// Policy holds the detection constants. With CatchUp set, every overdue task
// that was never notified is eligible, not only those inside the window.
type Policy struct {
	Delay     time.Duration
	Tolerance time.Duration
	CatchUp   bool
}

// DefaultPolicy is the narrow-window policy used when nothing is configured.
var DefaultPolicy = Policy{Delay: DefaultDelay, Tolerance: DefaultTolerance}

// Window is an inclusive time range.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// IsOverdue reports whether task is open and now is at least Delay past its due date.
func (p Policy) IsOverdue(task model.Task, now time.Time) bool {
	if task.DueDate == nil || task.IsCompleted() {
		return false
	}
	return !now.Before(task.DueDate.Add(p.Delay))
}

// DetectionWindow is the band of due dates a run at now considers:
// now - Delay, plus or minus Tolerance.
func (p Policy) DetectionWindow(now time.Time) Window {
	target := now.Add(-p.Delay)
	return Window{From: target.Add(-p.Tolerance), To: target.Add(p.Tolerance)}
}

// InWindow reports whether task's due date is a candidate for a run at now.
func (p Policy) InWindow(task model.Task, now time.Time) bool {
	if task.DueDate == nil {
		return false
	}
	if p.CatchUp {
		return !task.DueDate.After(now.Add(-p.Delay))
	}
	return p.DetectionWindow(now).Contains(*task.DueDate)
}

func IsOverdue(task model.Task, now time.Time) bool {
	return DefaultPolicy.IsOverdue(task, now)
}

func DetectionWindow(now time.Time) Window {
	return DefaultPolicy.DetectionWindow(now)
}

// MinutesOverdue returns whole minutes elapsed since the due date, never negative.
func MinutesOverdue(task model.Task, now time.Time) int {
	if task.DueDate == nil {
		return 0
	}
	d := now.Sub(*task.DueDate)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
