package model

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Routine is a recurrence rule that materializes one Task per matching day.
// Days holds lowercase weekday names, Weeks ISO week numbers and Months
// month numbers; which one applies depends on Frequency.
type Routine struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	Priority          Priority  `db:"priority" json:"priority"`
	Frequency         Frequency `db:"frequency" json:"frequency"`
	Days              StringSet `db:"days" json:"days"`
	Weeks             IntSet    `db:"weeks" json:"weeks"`
	Months            IntSet    `db:"months" json:"months"`
	WorkdaysOnly      bool      `db:"workdays_only" json:"workdays_only"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	DueTime           *string   `db:"due_time" json:"due_time,omitempty"`
	EndTime           *string   `db:"end_time" json:"end_time,omitempty"`
	LastGeneratedDate *string   `db:"last_generated_date" json:"last_generated_date,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
