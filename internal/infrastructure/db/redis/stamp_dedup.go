package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// stampDedupTTL bounds the double-submit window. Wider than any realistic
// double click, narrower than a legitimate correction cycle.
const stampDedupTTL = 10 * time.Second

// StampDedup provides short-window duplicate-stamp checks backed by Redis.
// Key format: stamp:<user_id>:<date>:<field>
type StampDedup struct {
	client *redis.Client
}

// NewStampDedup creates a StampDedup wrapping the given Redis client.
func NewStampDedup(client *redis.Client) *StampDedup {
	return &StampDedup{client: client}
}

// IsDuplicate reports whether the same stamp was submitted within the TTL.
func (d *StampDedup) IsDuplicate(ctx context.Context, userID, date, field string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(userID, date, field)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this stamp has been submitted (expires after the TTL).
func (d *StampDedup) Mark(ctx context.Context, userID, date, field string) error {
	return d.client.Set(ctx, d.key(userID, date, field), "1", stampDedupTTL).Err()
}

func (d *StampDedup) key(userID, date, field string) string {
	return fmt.Sprintf("stamp:%s:%s:%s", userID, date, field)
}
