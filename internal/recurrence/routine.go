package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/taskminder/internal/model"
)

// endOfDay is the due time used when a routine has neither due_time nor end_time.
var endOfDay = TimeOfDay{Hour: 23, Minute: 59}

// ShouldFire reports whether routine produces a task on date's calendar day.
func ShouldFire(r model.Routine, date time.Time) bool {
	if !r.IsActive {
		return false
	}

	wd := date.Weekday()
	if r.WorkdaysOnly && (wd == time.Saturday || wd == time.Sunday) {
		return false
	}

	switch r.Frequency {
	case model.FrequencyDaily:
		return r.Days.Contains(DayName(wd))
	case model.FrequencyWeekly:
		_, week := date.ISOWeek()
		return r.Weeks.Contains(week)
	case model.FrequencyMonthly:
		return r.Months.Contains(int(date.Month()))
	}
	return false
}

// DueDateTime returns date's calendar day at the routine's due time, falling
// back to end_time and then to 23:59. The result is in date's location.
func DueDateTime(r model.Routine, date time.Time) (time.Time, error) {
	tod := endOfDay
	for _, s := range []*string{r.DueTime, r.EndTime} {
		if s == nil || strings.TrimSpace(*s) == "" {
			continue
		}
		d, err := ParseTimeOfDay(*s)
		if err != nil {
			return time.Time{}, fmt.Errorf("routine %d: %w", r.ID, err)
		}
		tod = d
		break
	}

	return tod.On(date), nil
}

// Describe returns a human-readable description of when the routine fires.
func Describe(r model.Routine) string {
	var s string
	switch r.Frequency {
	case model.FrequencyDaily:
		if len(r.Days) == 0 {
			s = "Never (no days selected)"
		} else {
			names := make([]string, len(r.Days))
			for i, d := range r.Days {
				if len(d) >= 3 {
					names[i] = strings.ToUpper(d[:1]) + d[1:3]
				} else {
					names[i] = d
				}
			}
			s = "Every " + strings.Join(names, ", ")
		}
	case model.FrequencyWeekly:
		s = "ISO weeks " + joinInts(r.Weeks)
	case model.FrequencyMonthly:
		names := make([]string, len(r.Months))
		for i, m := range r.Months {
			if m >= 1 && m <= 12 {
				names[i] = time.Month(m).String()[:3]
			} else {
				names[i] = strconv.Itoa(m)
			}
		}
		s = "Every day in " + strings.Join(names, ", ")
	default:
		return fmt.Sprintf("Unknown frequency %q", r.Frequency)
	}

	if r.WorkdaysOnly {
		s += ", workdays only"
	}
	if r.DueTime != nil && *r.DueTime != "" {
		s += " at " + *r.DueTime
	} else if r.EndTime != nil && *r.EndTime != "" {
		s += " by " + *r.EndTime
	}
	if !r.IsActive {
		s += " (paused)"
	}
	return s
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
