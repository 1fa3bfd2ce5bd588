package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
)

var (
	ErrCacheMiss = errors.New("cache miss")
)

const availabilityGenerationKey = "availability:gen"

// AvailabilityCacheInterface stores booked units per product, keyed by window
// start. Remaining stock is derived from these and the current catalog.
//
// GetConsumed also reports the generation it looked under, including on a
// miss. A snapshot built after that miss must be stored with SetConsumed under
// the same generation, so an Invalidate that lands in between discards it.
type AvailabilityCacheInterface interface {
	GetConsumed(ctx context.Context, start time.Time) (map[string]int, int64, error)
	SetConsumed(ctx context.Context, gen int64, start time.Time, consumed map[string]int, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// AvailabilityCache keys snapshots under a generation counter. Invalidate
// bumps the counter so every older snapshot becomes unreachable at once and
// expires on its own TTL.
type AvailabilityCache struct {
	client *redis.Client
}

func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

func (c *AvailabilityCache) GetConsumed(ctx context.Context, start time.Time) (map[string]int, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	data, err := c.client.Get(ctx, snapshotKey(gen, start)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, ErrCacheMiss
		}
		return nil, gen, fmt.Errorf("get availability cache: %w", err)
	}
	var consumed map[string]int
	if err := json.Unmarshal(data, &consumed); err != nil {
		return nil, gen, fmt.Errorf("decode availability cache: %w", err)
	}
	return consumed, gen, nil
}

// SetConsumed stores a snapshot under gen. A gen that has already been
// superseded is skipped.
func (c *AvailabilityCache) SetConsumed(ctx context.Context, gen int64, start time.Time, consumed map[string]int, ttl time.Duration) error {
	current, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}
	data, err := json.Marshal(consumed)
	if err != nil {
		return fmt.Errorf("encode availability cache: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(gen, start), data, ttl).Err(); err != nil {
		return fmt.Errorf("set availability cache: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, availabilityGenerationKey).Err(); err != nil {
		return fmt.Errorf("invalidate availability cache: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, availabilityGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("get availability generation: %w", err)
	}
	return gen, nil
}

func snapshotKey(gen int64, start time.Time) string {
	return fmt.Sprintf("availability:%d:%s", gen, calendar.FormatDate(start))
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)
