package recipient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dukerupert/taskminder/internal/model"
)

// ErrNoRecipient is returned when the user is missing or has no email address.
var ErrNoRecipient = errors.New("no recipient")

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Resolver maps user ids to email recipients, caching hits so a batch that
// touches many tasks of one user queries the store once.
type Resolver struct {
	users UserLookup
	cache *expirable.LRU[int64, model.User]
}

func NewResolver(users UserLookup, size int, ttl time.Duration) *Resolver {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		users: users,
		cache: expirable.NewLRU[int64, model.User](size, nil, ttl),
	}
}

func (r *Resolver) Resolve(ctx context.Context, userID int64) (model.User, error) {
	if u, ok := r.cache.Get(userID); ok {
		return u, nil
	}

	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return model.User{}, fmt.Errorf("user %d: %w", userID, ErrNoRecipient)
	}

	r.cache.Add(userID, *u)
	return *u, nil
}
