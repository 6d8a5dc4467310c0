package metrics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/lib/logger/sl"
)

func TestRedisSink_KeyUsesLocalDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s := NewRedisSink(nil, sl.Discard(), berlin, 0)
	// 23:30 UTC is already the next day in Berlin.
	s.clock = func() time.Time { return time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, "moevius:fired:game:20240305", s.key("fired", "game"))
	assert.Equal(t, DefaultActivityRetention, s.retention)
}

func TestRedisSink_Counters(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisSink(client, sl.Discard(), time.UTC, time.Hour)
	s.prefix = "moevius_test_" + gofakeit.LetterN(8)

	s.EventFired("stream")
	s.EventFired("stream")
	s.MemberJoined("joined")
	s.TickStarted()

	ctx := context.Background()
	fired, err := client.Get(ctx, s.key("fired", "stream")).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, fired)

	ttl, err := client.TTL(ctx, s.key("join", "joined")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	keys, err := client.Keys(ctx, s.prefix+":*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 2, "ticks are not recorded")
	require.NoError(t, client.Del(ctx, keys...).Err())
}

func TestRedisSink_UnreachableDoesNotPanic(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisSink(client, sl.Discard(), time.UTC, time.Hour)
	assert.NotPanics(t, func() {
		s.EventFired("game")
		s.ConfirmationResolved("saved")
	})
}
