// Package report renders batch run summaries as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/overdue"
	"github.com/dukerupert/taskminder/internal/recurrence"
	"github.com/dukerupert/taskminder/internal/reminder"
	"github.com/dukerupert/taskminder/internal/routine"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Printer writes styled summaries to w. Colors are dropped automatically
// when w is not a terminal.
type Printer struct {
	w       io.Writer
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	errCell lipgloss.Style
	okCell  lipgloss.Style
	muted   lipgloss.Style
	border  lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(colorBlue),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		errCell: r.NewStyle().Padding(0, 1).Foreground(colorRed),
		okCell:  r.NewStyle().Padding(0, 1).Foreground(colorGreen),
		muted:   r.NewStyle().Foreground(colorGray).Italic(true),
		border:  r.NewStyle().Foreground(colorBorder),
	}
}

func (p *Printer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.border).
		Headers(headers...)
}

// countTable renders label/value rows, coloring the Sent and Errors rows
// when they are non-zero.
func (p *Printer) countTable(rows [][2]string) string {
	t := p.newTable("Metric", "Count")
	for _, r := range rows {
		t.Row(r[0], r[1])
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return p.header
		}
		if col == 1 && row >= 0 && row < len(rows) && rows[row][1] != "0" {
			switch rows[row][0] {
			case "Errors":
				return p.errCell
			case "Sent", "Generated", "Removed":
				return p.okCell
			}
		}
		return p.cell
	})
	return t.String()
}

func (p *Printer) section(title, body string) {
	fmt.Fprintln(p.w, p.title.Render(title))
	fmt.Fprintln(p.w, body)
}

func itoa(n int) string { return strconv.Itoa(n) }

// Overdue prints an overdue notification run and the detection policy it used.
func (p *Printer) Overdue(s overdue.Stats, policy overdue.Policy) {
	p.section("Overdue notifications "+p.muted.Render(s.RunID+" "+describePolicy(policy)), p.countTable([][2]string{
		{"Processed", itoa(s.Processed)},
		{"Sent", itoa(s.Sent)},
		{"Already notified", itoa(s.AlreadyNotified)},
		{"Skipped", itoa(s.Skipped)},
		{"Errors", itoa(s.Errors)},
	}))
}

func describePolicy(p overdue.Policy) string {
	if p.CatchUp {
		return fmt.Sprintf("(catch-up, due %s+ ago)", p.Delay)
	}
	return fmt.Sprintf("(due %s ago ±%s)", p.Delay, p.Tolerance)
}

// Reminders prints a reminder dispatch run.
func (p *Printer) Reminders(s reminder.Stats) {
	p.section("Reminder emails "+p.muted.Render(s.RunID), p.countTable([][2]string{
		{"Processed", itoa(s.Processed)},
		{"Sent", itoa(s.Sent)},
		{"Out of window", itoa(s.OutOfWindow)},
		{"Already sent", itoa(s.AlreadySent)},
		{"Errors", itoa(s.Errors)},
	}))
}

// Cleanup prints the number of expired reminders removed.
func (p *Printer) Cleanup(removed int) {
	p.section("Expired reminder cleanup", p.countTable([][2]string{
		{"Removed", itoa(removed)},
	}))
}

// Generation prints a single-day routine generation result.
func (p *Printer) Generation(res routine.Result) {
	p.section("Routine generation for "+res.Date, p.countTable([][2]string{
		{"Routines", itoa(res.RoutinesProcessed)},
		{"Generated", itoa(res.TasksGenerated)},
		{"Errors", itoa(len(res.Errors))},
	}))

	if len(res.GeneratedTasks) > 0 {
		t := p.newTable("Task", "Title", "Priority", "Due").
			StyleFunc(p.plainStyle)
		for _, task := range res.GeneratedTasks {
			due := ""
			if task.DueDate != nil {
				due = task.DueDate.Format("2006-01-02 15:04")
			}
			t.Row(itoa64(task.ID), task.Title, string(task.Priority), due)
		}
		fmt.Fprintln(p.w, t.String())
	}

	p.routineErrors(res.Errors)
}

// GenerationRange prints a multi-day generation result with one row per day.
func (p *Printer) GenerationRange(res routine.RangeResult) {
	t := p.newTable("Date", "Routines", "Generated", "Errors")
	for _, day := range res.Days {
		t.Row(day.Date, itoa(day.RoutinesProcessed), itoa(day.TasksGenerated), itoa(len(day.Errors)))
	}
	t.Row("total", itoa(res.RoutinesProcessed), itoa(res.TasksGenerated), itoa(res.Errors))
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow || row == len(res.Days) {
			return p.header
		}
		return p.cell
	})
	p.section(fmt.Sprintf("Routine generation %s to %s", res.Start, res.End), t.String())

	for _, day := range res.Days {
		p.routineErrors(day.Errors)
	}
}

func (p *Printer) routineErrors(errs []routine.RoutineError) {
	if len(errs) == 0 {
		return
	}
	t := p.newTable("Routine", "Title", "Error").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col == 2 {
				return p.errCell
			}
			return p.cell
		})
	for _, e := range errs {
		t.Row(itoa64(e.RoutineID), e.Title, e.Err.Error())
	}
	fmt.Fprintln(p.w, t.String())
}

// Preview prints upcoming occurrences per routine, ordered by routine ID.
func (p *Printer) Preview(routines []model.Routine, previews map[int64][]routine.Preview) {
	byID := make(map[int64]model.Routine, len(routines))
	ids := make([]int64, 0, len(routines))
	for _, r := range routines {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	t := p.newTable("Routine", "Schedule", "Date", "Day", "Due", "Priority").
		StyleFunc(p.plainStyle)
	rows := 0
	for _, id := range ids {
		r := byID[id]
		for _, pv := range previews[id] {
			t.Row(r.Title, recurrence.Describe(r), pv.Date, pv.DayName,
				pv.DueDateTime.Format("15:04"), string(pv.Priority))
			rows++
		}
	}

	if rows == 0 {
		p.section("Routine preview", p.muted.Render("no occurrences in range"))
		return
	}
	p.section("Routine preview", t.String())
}

func (p *Printer) plainStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return p.header
	}
	return p.cell
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
