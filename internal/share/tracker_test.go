package share

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTracker(rdb)
}

func TestTrackerCountsViews(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	first := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, tracker.Record(ctx, "tok-1", first))
	require.NoError(t, tracker.Record(ctx, "tok-1", first.Add(2*time.Hour)))
	require.NoError(t, tracker.Record(ctx, "tok-1", first.Add(4*time.Hour)))

	views, firstSeen, err := tracker.Stats(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), views)
	require.NotNil(t, firstSeen)
	// First open wins; later opens never move it.
	assert.True(t, firstSeen.Equal(first))
}

func TestTrackerUnseenToken(t *testing.T) {
	tracker := newTestTracker(t)

	views, firstSeen, err := tracker.Stats(context.Background(), "never-opened")
	require.NoError(t, err)
	assert.Zero(t, views)
	assert.Nil(t, firstSeen)
}

func TestTrackerIsolatesTokens(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, tracker.Record(ctx, "tok-a", now))
	require.NoError(t, tracker.Record(ctx, "tok-b", now))
	require.NoError(t, tracker.Record(ctx, "tok-b", now))

	viewsA, _, err := tracker.Stats(ctx, "tok-a")
	require.NoError(t, err)
	viewsB, _, err := tracker.Stats(ctx, "tok-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewsA)
	assert.Equal(t, int64(2), viewsB)
}
