package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const displayLayout = "Mon Jan 2, 2006 at 15:04"

// OverdueEmail carries what the overdue notification needs to render.
type OverdueEmail struct {
	To             string
	UserName       string
	TaskID         int64
	TaskTitle      string
	Priority       string
	DueDate        time.Time
	MinutesOverdue int
	BaseURL        string
}

func RenderOverdue(d OverdueEmail) Message {
	subject := fmt.Sprintf("Overdue: %s", d.TaskTitle)
	due := d.DueDate.Format(displayLayout)
	late := formatMinutes(d.MinutesOverdue)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", greetingName(d.UserName))
	fmt.Fprintf(&text, "Your task %q was due %s and is now %s overdue.\n", d.TaskTitle, due, late)
	if d.Priority != "" {
		fmt.Fprintf(&text, "Priority: %s\n", d.Priority)
	}
	if link := taskLink(d.BaseURL, d.TaskID); link != "" {
		fmt.Fprintf(&text, "\nOpen the task: %s\n", link)
	}

	htmlBody := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your task <strong>%s</strong> was due %s and is now %s overdue.</p>`,
		html.EscapeString(greetingName(d.UserName)), html.EscapeString(d.TaskTitle), html.EscapeString(due), late,
	)
	if d.Priority != "" {
		htmlBody += fmt.Sprintf(`<p>Priority: %s</p>`, html.EscapeString(d.Priority))
	}
	if link := taskLink(d.BaseURL, d.TaskID); link != "" {
		htmlBody += fmt.Sprintf(`<p><a href="%s">Open the task</a></p>`, html.EscapeString(link))
	}

	return Message{To: d.To, Subject: subject, TextBody: text.String(), HTMLBody: htmlBody}
}

// ReminderEmail carries what a preventive reminder needs to render.
// TaskTitle is set when the reminder is linked to a task.
type ReminderEmail struct {
	To        string
	UserName  string
	Title     string
	TaskID    int64
	TaskTitle string
	At        time.Time
	BaseURL   string
}

func RenderReminder(d ReminderEmail) Message {
	subject := "Reminder"
	switch {
	case d.TaskTitle != "":
		subject = "Reminder: " + d.TaskTitle
	case d.Title != "":
		subject = "Reminder: " + d.Title
	}
	at := d.At.Format(displayLayout)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", greetingName(d.UserName))
	if d.Title != "" {
		fmt.Fprintf(&text, "%s\n", d.Title)
	}
	if d.TaskTitle != "" {
		fmt.Fprintf(&text, "Task: %s\n", d.TaskTitle)
	}
	fmt.Fprintf(&text, "Scheduled for %s.\n", at)
	if link := taskLink(d.BaseURL, d.TaskID); link != "" {
		fmt.Fprintf(&text, "\nOpen the task: %s\n", link)
	}

	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>`, html.EscapeString(greetingName(d.UserName)))
	if d.Title != "" {
		htmlBody += fmt.Sprintf(`<p>%s</p>`, html.EscapeString(d.Title))
	}
	if d.TaskTitle != "" {
		htmlBody += fmt.Sprintf(`<p>Task: <strong>%s</strong></p>`, html.EscapeString(d.TaskTitle))
	}
	htmlBody += fmt.Sprintf(`<p>Scheduled for %s.</p>`, html.EscapeString(at))
	if link := taskLink(d.BaseURL, d.TaskID); link != "" {
		htmlBody += fmt.Sprintf(`<p><a href="%s">Open the task</a></p>`, html.EscapeString(link))
	}

	return Message{To: d.To, Subject: subject, TextBody: text.String(), HTMLBody: htmlBody}
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}

func taskLink(baseURL string, taskID int64) string {
	if baseURL == "" || taskID == 0 {
		return ""
	}
	return fmt.Sprintf("%s/tasks/%d", strings.TrimRight(baseURL, "/"), taskID)
}

// formatMinutes renders a lateness like "45 minutes" or "3 hours 5 minutes".
func formatMinutes(m int) string {
	if m < 60 {
		return plural(m, "minute")
	}
	h, rem := m/60, m%60
	if rem == 0 {
		return plural(h, "hour")
	}
	return plural(h, "hour") + " " + plural(rem, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
