package notify

import (
	"context"
	"errors"
	"fmt"
)

const (
	EntityTask     = "task"
	EntityReminder = "reminder"
	EntityRoutine  = "routine"

	ActionOverdue   = "overdue"
	ActionSent      = "sent"
	ActionGenerated = "generated"
)

// Event is a real-time notification pushed to connected clients.
// Type is derived from Entity and Action, e.g. "task_overdue".
type Event struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	UserID int64          `json:"user_id,omitempty"`
	Title  string         `json:"title,omitempty"`
	Body   string         `json:"body,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

func NewEvent(entity, action string, userID, id int64, title string) Event {
	return Event{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		UserID: userID,
		Title:  title,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
