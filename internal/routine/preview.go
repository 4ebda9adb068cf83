package routine

import (
	"time"

	"github.com/dukerupert/taskminder/internal/clock"
	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/recurrence"
)

// Preview is a task the generator would create, without persisting it.
type Preview struct {
	Date        string
	DayName     string
	DueDateTime time.Time
	Priority    model.Priority
}

// PreviewRoutine lists the days in [from, from+daysAhead) on which r fires.
// Days whose due time cannot be computed are left out, as generation would
// fail for them too.
func PreviewRoutine(r model.Routine, from time.Time, daysAhead int) []Preview {
	var out []Preview
	start := clock.StartOfDay(from)
	for i := 0; i < daysAhead; i++ {
		day := start.AddDate(0, 0, i)
		if !recurrence.ShouldFire(r, day) {
			continue
		}
		due, err := recurrence.DueDateTime(r, day)
		if err != nil {
			continue
		}
		out = append(out, Preview{
			Date:        clock.DateString(day),
			DayName:     day.Weekday().String(),
			DueDateTime: due,
			Priority:    r.Priority,
		})
	}
	return out
}

// Preview projects every active routine daysAhead days from from, in the
// generator's timezone.
func (g *Generator) Preview(routines []model.Routine, from time.Time, daysAhead int) map[int64][]Preview {
	out := make(map[int64][]Preview, len(routines))
	for _, r := range routines {
		out[r.ID] = PreviewRoutine(r, from.In(g.cfg.Location), daysAhead)
	}
	return out
}
