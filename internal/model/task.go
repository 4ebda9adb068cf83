package model

import "time"

type TaskStatus string

const (
	StatusToDo       TaskStatus = "to_do"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// OpenStatuses are the states still eligible for overdue and reminder processing.
var OpenStatuses = []TaskStatus{StatusToDo, StatusInProgress}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	ID                      int64      `db:"id" json:"id"`
	UserID                  int64      `db:"user_id" json:"user_id"`
	Title                   string     `db:"title" json:"title"`
	Description             string     `db:"description" json:"description"`
	Priority                Priority   `db:"priority" json:"priority"`
	Status                  TaskStatus `db:"status" json:"status"`
	DueDate                 *time.Time `db:"due_date" json:"due_date"`
	OverdueNotificationSent bool       `db:"overdue_notification_sent" json:"overdue_notification_sent"`
	IsAutoGenerated         bool       `db:"is_auto_generated" json:"is_auto_generated"`
	RoutineID               *int64     `db:"routine_id" json:"routine_id,omitempty"`
	TargetDate              *string    `db:"target_date" json:"target_date,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
