package model

import "time"

// Reminder is a preventive notification. Date and Time are wall-clock
// values in the service timezone and are combined before comparison.
type Reminder struct {
	ID        int64      `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	TaskID    *int64     `db:"task_id" json:"task_id,omitempty"`
	Title     string     `db:"title" json:"title"`
	Date      string     `db:"date" json:"date"`
	Time      string     `db:"time" json:"time"`
	EmailSent bool       `db:"email_sent" json:"email_sent"`
	SentAt    *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
