package overdue

import (
	"testing"
	"time"

	"github.com/dukerupert/taskminder/internal/model"
)

func at(h, m int) time.Time {
	return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC)
}

func taskDue(due time.Time, status model.TaskStatus) model.Task {
	return model.Task{ID: 1, Status: status, DueDate: &due}
}

func TestIsOverdueBoundary(t *testing.T) {
	due := at(10, 0)
	tests := []struct {
		name string
		task model.Task
		now  time.Time
		want bool
	}{
		{"29 minutes", taskDue(due, model.StatusToDo), at(10, 29), false},
		{"30 minutes", taskDue(due, model.StatusToDo), at(10, 30), true},
		{"one second short", taskDue(due, model.StatusToDo), at(10, 30).Add(-time.Second), false},
		{"in progress", taskDue(due, model.StatusInProgress), at(11, 0), true},
		{"completed", taskDue(due, model.StatusCompleted), at(11, 0), false},
		{"no due date", model.Task{Status: model.StatusToDo}, at(11, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.task, tt.now); got != tt.want {
				t.Errorf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinutesOverdue(t *testing.T) {
	due := at(10, 0)
	tests := []struct {
		now  time.Time
		want int
	}{
		{at(9, 0), 0},
		{at(10, 0), 0},
		{at(10, 30).Add(59 * time.Second), 30},
		{at(13, 0), 180},
	}
	for _, tt := range tests {
		if got := MinutesOverdue(taskDue(due, model.StatusToDo), tt.now); got != tt.want {
			t.Errorf("MinutesOverdue(now=%s) = %d, want %d", tt.now.Format("15:04:05"), got, tt.want)
		}
	}
	if got := MinutesOverdue(model.Task{}, at(10, 0)); got != 0 {
		t.Errorf("MinutesOverdue(no due) = %d, want 0", got)
	}
}

func TestDetectionWindow(t *testing.T) {
	w := DetectionWindow(at(10, 30))
	if !w.From.Equal(at(9, 55)) || !w.To.Equal(at(10, 5)) {
		t.Fatalf("window = [%s, %s], want [09:55, 10:05]", w.From.Format("15:04"), w.To.Format("15:04"))
	}
	for _, edge := range []time.Time{at(9, 55), at(10, 0), at(10, 5)} {
		if !w.Contains(edge) {
			t.Errorf("window should contain %s", edge.Format("15:04"))
		}
	}
	for _, out := range []time.Time{at(9, 54), at(10, 6)} {
		if w.Contains(out) {
			t.Errorf("window should not contain %s", out.Format("15:04"))
		}
	}
}

func TestInWindowCatchUp(t *testing.T) {
	task := taskDue(at(7, 0), model.StatusToDo)
	now := at(10, 0)

	if DefaultPolicy.InWindow(task, now) {
		t.Error("three-hour-late task should be outside the narrow window")
	}

	p := DefaultPolicy
	p.CatchUp = true
	if !p.InWindow(task, now) {
		t.Error("catch-up should include the late task")
	}
	if p.InWindow(taskDue(at(9, 45), model.StatusToDo), now) {
		t.Error("catch-up should not include tasks not yet past the delay")
	}
}
