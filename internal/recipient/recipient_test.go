package recipient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/taskminder/internal/model"
)

type countingUsers struct {
	users map[int64]*model.User
	calls int
}

func (c *countingUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	c.calls++
	return c.users[id], nil
}

func TestResolveCaches(t *testing.T) {
	users := &countingUsers{users: map[int64]*model.User{
		1: {ID: 1, Name: "Alice", Email: "alice@example.com"},
	}}
	r := NewResolver(users, 10, time.Minute)

	for i := 0; i < 3; i++ {
		u, err := r.Resolve(context.Background(), 1)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if u.Email != "alice@example.com" {
			t.Errorf("email = %q", u.Email)
		}
	}
	if users.calls != 1 {
		t.Errorf("store calls = %d, want 1", users.calls)
	}
}

func TestResolveMissing(t *testing.T) {
	users := &countingUsers{users: map[int64]*model.User{
		2: {ID: 2, Name: "No Mail"},
	}}
	r := NewResolver(users, 0, 0)

	for _, id := range []int64{2, 3} {
		_, err := r.Resolve(context.Background(), id)
		if !errors.Is(err, ErrNoRecipient) {
			t.Errorf("resolve(%d) err = %v, want ErrNoRecipient", id, err)
		}
	}

	// misses are not cached
	r.Resolve(context.Background(), 3)
	if users.calls != 3 {
		t.Errorf("store calls = %d, want 3", users.calls)
	}
}
