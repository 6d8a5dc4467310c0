package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"moevius/internal/lib/logger/sl"
)

const (
	DefaultActivityRetention = 90 * 24 * time.Hour
	redisWriteTimeout        = 500 * time.Millisecond
)

// RedisSink keeps daily activity counters in Redis, e.g.
// "moevius:fired:game:20240304". Scheduler ticks are not recorded.
type RedisSink struct {
	client    redis.Cmdable
	log       *slog.Logger
	prefix    string
	retention time.Duration
	loc       *time.Location
	clock     func() time.Time
}

var _ Sink = (*RedisSink)(nil)

func NewRedisSink(client redis.Cmdable, log *slog.Logger, loc *time.Location, retention time.Duration) *RedisSink {
	if retention <= 0 {
		retention = DefaultActivityRetention
	}
	if loc == nil {
		loc = time.Local
	}
	return &RedisSink{
		client:    client,
		log:       log,
		prefix:    "moevius",
		retention: retention,
		loc:       loc,
		clock:     time.Now,
	}
}

func (s *RedisSink) TickStarted()                                               {}
func (s *RedisSink) TickCompleted(duration time.Duration, fired int, err error) {}

func (s *RedisSink) EventFired(eventType string) {
	s.incr("fired", eventType)
}

func (s *RedisSink) NotificationFailed(channelKey string) {
	s.incr("notify_failed", channelKey)
}

func (s *RedisSink) ConfirmationResolved(state string) {
	s.incr("confirmation", state)
}

func (s *RedisSink) MemberJoined(result string) {
	s.incr("join", result)
}

func (s *RedisSink) key(kind, label string) string {
	return fmt.Sprintf("%s:%s:%s:%s", s.prefix, kind, label, s.clock().In(s.loc).Format("20060102"))
}

func (s *RedisSink) incr(kind, label string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	key := s.key(kind, label)
	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("redis activity counter", slog.String("key", key), sl.Err(err))
	}
}
