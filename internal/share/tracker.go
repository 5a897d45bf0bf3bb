package share

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker counts public-link opens per access token. Counts live in Redis so
// the management surface can show "viewed" without touching the quotation row
// on every open.
type Tracker struct {
	rdb *redis.Client
}

// NewTracker constructs a Tracker.
func NewTracker(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb}
}

func viewsKey(token string) string     { return fmt.Sprintf("share:views:%s", token) }
func firstSeenKey(token string) string { return fmt.Sprintf("share:first_seen:%s", token) }

// Record registers one open of the public link.
func (t *Tracker) Record(ctx context.Context, token string, at time.Time) error {
	pipe := t.rdb.TxPipeline()
	pipe.Incr(ctx, viewsKey(token))
	pipe.SetNX(ctx, firstSeenKey(token), at.UTC().Format(time.RFC3339Nano), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// Stats returns the open count and the first-open timestamp, if any.
func (t *Tracker) Stats(ctx context.Context, token string) (int64, *time.Time, error) {
	views, err := t.rdb.Get(ctx, viewsKey(token)).Int64()
	if err == redis.Nil {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("load view count: %w", err)
	}

	raw, err := t.rdb.Get(ctx, firstSeenKey(token)).Result()
	if err == redis.Nil {
		return views, nil, nil
	}
	if err != nil {
		return 0, nil, fmt.Errorf("load first seen: %w", err)
	}
	first, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return 0, nil, fmt.Errorf("parse first seen: %w", err)
	}
	return views, &first, nil
}
