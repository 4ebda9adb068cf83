package clock

import "time"

// Clock supplies the current time. Batch jobs take one instead of calling
// time.Now so boundary minutes can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock in a fixed location.
type Real struct {
	Location *time.Location
}

// New returns a Real clock for loc, defaulting to UTC.
func New(loc *time.Location) Real {
	if loc == nil {
		loc = time.UTC
	}
	return Real{Location: loc}
}

func (r Real) Now() time.Time {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateString formats the calendar date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
