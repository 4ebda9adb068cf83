package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned when a routine's due or end time cannot be parsed.
var ErrInvalidTime = errors.New("invalid time of day")

var dayNames = map[string]time.Weekday{
	"su": time.Sunday,
	"mo": time.Monday,
	"tu": time.Tuesday,
	"we": time.Wednesday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
}

// DayName returns the lowercase English weekday name stored in routine day sets.
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseDays normalizes weekday names to the lowercase full form. It accepts
// full names ("Monday"), three-letter ("mon") and two-letter ("MO") forms.
func ParseDays(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[time.Weekday]bool)
	for _, n := range names {
		s := strings.ToLower(strings.TrimSpace(n))
		if len(s) < 2 {
			return nil, fmt.Errorf("unknown day: %q", n)
		}
		wd, ok := dayNames[s[:2]]
		if !ok || !strings.HasPrefix(DayName(wd), s) {
			return nil, fmt.Errorf("unknown day: %q", n)
		}
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, DayName(wd))
	}
	return out, nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour, Minute, Second int
}

// On returns date's calendar day at t in date's location. The wall clock is
// kept across DST transitions; a time skipped by a spring-forward gap is
// normalized by time.Date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] || len(p) > 2 {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		vals[i] = n
	}

	return TimeOfDay{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}
