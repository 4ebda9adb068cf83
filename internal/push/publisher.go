package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/taskminder/internal/model"
	"github.com/dukerupert/taskminder/internal/notify"
)

type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload Payload) error
}

// Publisher sends events to every browser subscription of the event's user
// and prunes subscriptions the push service reports as gone.
type Publisher struct {
	service sender
	subs    SubscriptionStore
	logger  *slog.Logger
}

func NewPublisher(svc *Service, subs SubscriptionStore, logger *slog.Logger) *Publisher {
	return &Publisher{service: svc, subs: subs, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, ev notify.Event) error {
	if ev.UserID == 0 {
		return nil
	}

	subs, err := p.subs.ListByUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}

	payload := payloadFor(ev)
	var errs []error
	for i := range subs {
		sub := &subs[i]
		err := p.service.Send(ctx, sub, payload)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrExpired) {
			if derr := p.subs.DeleteByEndpoint(ctx, sub.Endpoint); derr != nil {
				p.logger.Error("delete expired push subscription", "endpoint", sub.Endpoint, "error", derr)
			}
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func payloadFor(ev notify.Event) Payload {
	p := Payload{Title: ev.Title, Body: ev.Body, Tag: fmt.Sprintf("%s-%d", ev.Type, ev.ID)}
	switch ev.Type {
	case "task_overdue":
		p.Title = "Task overdue"
		p.Body = ev.Title
		p.URL = fmt.Sprintf("/tasks/%d", ev.ID)
	case "reminder_sent":
		p.Title = "Reminder"
		p.Body = ev.Title
	case "routine_generated":
		p.Title = "New task from routine"
		p.Body = ev.Title
		p.URL = fmt.Sprintf("/tasks/%d", ev.ID)
	}
	return p
}
