package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/metrics"
	"moevius/internal/ports/output"
)

const DefaultTickInterval = 5 * time.Second

type SchedulerConfig struct {
	TickInterval time.Duration
	// CatchUp fires every due event whose bucket is at or before the
	// current one. When false only exact bucket matches fire, and events
	// missed while the process was down never fire.
	CatchUp  bool
	Location *time.Location
}

// Scheduler fires announced events once their minute has come. The durable
// started flag is the only dedup mechanism; lastBucket just saves store
// round trips within a minute.
type Scheduler struct {
	config         SchedulerConfig
	log            *slog.Logger
	eventRepo      output.EventRepository
	attendanceRepo output.AttendanceRepository
	notifier       output.Notifier
	metrics        metrics.Sink
	clock          func() time.Time
	lastBucket     time.Time
}

func NewScheduler(
	config SchedulerConfig,
	log *slog.Logger,
	eventRepo output.EventRepository,
	attendanceRepo output.AttendanceRepository,
	notifier output.Notifier,
	sink metrics.Sink,
) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Scheduler{
		config:         config,
		log:            log,
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		metrics:        sink,
		clock:          time.Now,
	}
}

// Run ticks until ctx is cancelled. Cancellation is only observed between
// ticks, so a started tick always finishes its store transitions.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	s.log.Info("scheduler started",
		slog.Duration("tick", s.config.TickInterval),
		slog.Bool("catch_up", s.config.CatchUp),
		slog.String("zone", s.config.Location.String()),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.tick(context.WithoutCancel(ctx)); err != nil {
				s.log.Error("scheduler tick", sl.Err(err))
			}
		}
	}
}

// tick processes the current minute bucket. A bucket that was already
// processed successfully costs no store calls.
func (s *Scheduler) tick(ctx context.Context) error {
	bucket := entities.MinuteBucket(s.clock(), s.config.Location)
	if bucket.Equal(s.lastBucket) {
		return nil
	}

	start := time.Now()
	s.metrics.TickStarted()

	fired, err := s.processBucket(ctx, bucket)
	s.metrics.TickCompleted(time.Since(start), fired, err)
	if err != nil {
		// lastBucket stays put so the next tick retries this minute.
		return err
	}
	s.lastBucket = bucket
	return nil
}

func (s *Scheduler) processBucket(ctx context.Context, bucket time.Time) (int, error) {
	events, err := s.eventRepo.FindUpcoming(ctx)
	if err != nil {
		return 0, fmt.Errorf("find upcoming events: %w", err)
	}
	sortBySchedule(events)

	// A failed transition fails the bucket so the next tick retries it;
	// events that already started are skipped then by MarkStarted.
	fired := 0
	var errs []error
	for i := range events {
		event := &events[i]
		if !s.due(event, bucket) {
			continue
		}
		ok, err := s.fire(ctx, event)
		if err != nil {
			s.log.Error("fire event", slog.Uint64("event_id", uint64(event.ID)), sl.Err(err))
			errs = append(errs, fmt.Errorf("fire event %d: %w", event.ID, err))
			continue
		}
		if ok {
			fired++
		}
	}
	return fired, errors.Join(errs...)
}

func (s *Scheduler) due(event *entities.Event, bucket time.Time) bool {
	if !event.IsUpcoming() {
		return false
	}
	eventBucket := event.Bucket(s.config.Location)
	if s.config.CatchUp {
		return !eventBucket.After(bucket)
	}
	return eventBucket.Equal(bucket)
}

// fire reports whether this call performed the started transition.
func (s *Scheduler) fire(ctx context.Context, event *entities.Event) (bool, error) {
	log := s.log.With(slog.Uint64("event_id", uint64(event.ID)), slog.String("type", event.Type.String()))

	transitioned, err := s.eventRepo.MarkStarted(ctx, event.ID)
	if errors.Is(err, domain.ErrEventNotAnnounced) || errors.Is(err, domain.ErrEventNotFound) {
		log.Warn("event no longer fireable", sl.Err(err))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !transitioned {
		log.Debug("event already started")
		return false, nil
	}
	event.Started = true
	s.metrics.EventFired(event.Type.String())
	log.Info("event started", slog.Time("scheduled_at", event.ScheduledAt))

	members, err := s.attendanceRepo.MemberIDs(ctx, event.ID)
	if err != nil {
		// The transition is committed; announce without mentions.
		log.Warn("load attendance list", sl.Err(err))
	}

	key := event.Type.ChannelKey()
	if err := s.notifier.Notify(ctx, key, entities.Notification{
		Kind:     entities.NotificationStarting,
		Events:   []entities.Event{*event},
		Mentions: members,
	}); err != nil {
		s.metrics.NotificationFailed(key)
		log.Error("starting notification dropped", slog.String("channel", key), sl.Err(err))
	}
	return true, nil
}
