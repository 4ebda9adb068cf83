package notify

import (
	"context"
	"errors"
	"testing"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EntityTask, ActionOverdue, 3, 42, "Pay rent")
	if ev.Type != "task_overdue" {
		t.Errorf("type = %q, want task_overdue", ev.Type)
	}
	if ev.UserID != 3 || ev.ID != 42 || ev.Title != "Pay rent" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestFanoutDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	c := &recorder{}

	err := Fanout{a, nil, b, c}.Publish(context.Background(), NewEvent(EntityReminder, ActionSent, 1, 1, ""))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	for i, r := range []*recorder{a, b, c} {
		if len(r.events) != 1 {
			t.Errorf("publisher %d got %d events, want 1", i, len(r.events))
		}
	}
}

func TestFanoutEmpty(t *testing.T) {
	if err := (Fanout{}).Publish(context.Background(), Event{}); err != nil {
		t.Errorf("empty fanout err = %v", err)
	}
	if err := (Nop{}).Publish(context.Background(), Event{}); err != nil {
		t.Errorf("nop err = %v", err)
	}
}
