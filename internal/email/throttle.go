package email

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled limits the send rate of the wrapped mailer.
type Throttled struct {
	next    Mailer
	limiter *rate.Limiter
}

// NewThrottled allows perSecond sends per second with the given burst.
// A non-positive perSecond disables limiting.
func NewThrottled(next Mailer, perSecond float64, burst int) *Throttled {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) Send(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}
	return t.next.Send(ctx, msg)
}
