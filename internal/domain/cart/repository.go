package cart

import (
	"context"
	"time"
)

// Store persists carts per session.
type Store interface {
	// Get returns the session cart, or ErrCartNotFound
	Get(ctx context.Context, sessionID string) (*Cart, error)

	// Save writes the cart with the given TTL
	Save(ctx context.Context, c *Cart, ttl time.Duration) error

	// Delete drops the session cart
	Delete(ctx context.Context, sessionID string) error
}
