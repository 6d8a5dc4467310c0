package application

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/ports/input"
	"moevius/internal/ports/output"
	"moevius/pkg/tz"
)

var _ input.EventUseCase = (*EventService)(nil)

// EventService persists drafts, announces events and answers the
// "what's next" queries.
type EventService struct {
	log            *slog.Logger
	eventRepo      output.EventRepository
	attendanceRepo output.AttendanceRepository
	notifier       output.Notifier
	validate       *validator.Validate
	loc            *time.Location
	clock          func() time.Time
}

func NewEventService(
	log *slog.Logger,
	eventRepo output.EventRepository,
	attendanceRepo output.AttendanceRepository,
	notifier output.Notifier,
	loc *time.Location,
) *EventService {
	if loc == nil {
		loc = time.Local
	}
	return &EventService{
		log:            log,
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		notifier:       notifier,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		loc:            loc,
		clock:          time.Now,
	}
}

// ValidateDraft rejects a draft before any store interaction. The
// past-time rule applies only here, when the draft is created.
func (s *EventService) ValidateDraft(d entities.Draft) error {
	if err := s.validateStructure(d); err != nil {
		return err
	}
	if entities.MinuteBucket(d.ScheduledAt, s.loc).Before(entities.MinuteBucket(s.clock(), s.loc)) {
		return domain.ErrDateTimeInPast
	}
	return nil
}

// validateStructure checks the rules that do not depend on the clock.
// A confirmed draft whose minute passed while the prompt was open still
// passes it.
func (s *EventService) validateStructure(d entities.Draft) error {
	if !d.Type.Valid() {
		return domain.ErrInvalidEventType
	}
	if d.ScheduledAt.IsZero() {
		return domain.ErrDateTimeRequired
	}
	if strings.TrimSpace(d.CreatorID) == "" {
		return domain.ErrCreatorRequired
	}
	if err := s.validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDraft, err)
	}
	return nil
}

// Save persists a draft that already passed ValidateDraft, unannounced.
func (s *EventService) Save(ctx context.Context, d entities.Draft) (*entities.Event, error) {
	return s.persist(ctx, d, false)
}

// Announce persists the draft already announced and broadcasts it. The
// event is written once, so a failed call leaves nothing behind to
// duplicate on retry.
func (s *EventService) Announce(ctx context.Context, d entities.Draft) (*entities.Event, error) {
	event, err := s.persist(ctx, d, true)
	if err != nil {
		return nil, err
	}
	s.log.Info("event announced", slog.Uint64("event_id", uint64(event.ID)))
	s.broadcast(ctx, event.Type.ChannelKey(), entities.Notification{
		Kind:   entities.NotificationAnnouncement,
		Events: []entities.Event{*event},
	})
	return event, nil
}

func (s *EventService) persist(ctx context.Context, d entities.Draft, announced bool) (*entities.Event, error) {
	if err := s.validateStructure(d); err != nil {
		return nil, err
	}
	event := d.Event()
	event.Announced = announced
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	if _, err := s.attendanceRepo.Add(ctx, &entities.Attendance{
		EventID:  event.ID,
		MemberID: event.CreatorID,
		JoinedAt: s.clock(),
	}); err != nil {
		// The event is durable already; a missing creator entry only
		// costs a mention.
		s.log.Warn("add creator to attendance list", slog.Uint64("event_id", uint64(event.ID)), sl.Err(err))
	}
	s.log.Info("event saved",
		slog.Uint64("event_id", uint64(event.ID)),
		slog.String("type", event.Type.String()),
		slog.Time("scheduled_at", event.ScheduledAt),
		slog.Bool("announced", event.Announced),
	)
	return event, nil
}

// AnnounceNow flips an existing event to announced. Only the caller that
// performed the transition broadcasts.
func (s *EventService) AnnounceNow(ctx context.Context, id uint) (*entities.Event, error) {
	transitioned, err := s.eventRepo.MarkAnnounced(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		s.log.Debug("event already announced", slog.Uint64("event_id", uint64(id)))
		return event, nil
	}
	s.log.Info("event announced", slog.Uint64("event_id", uint64(id)))
	s.broadcast(ctx, event.Type.ChannelKey(), entities.Notification{
		Kind:   entities.NotificationAnnouncement,
		Events: []entities.Event{*event},
	})
	return event, nil
}

// AnnounceNext announces the unannounced event that happens first.
func (s *EventService) AnnounceNext(ctx context.Context) (*entities.Event, error) {
	next, err := s.NextToAnnounce(ctx)
	if err != nil {
		return nil, err
	}
	return s.AnnounceNow(ctx, next.ID)
}

// AnnounceThisWeek announces every unannounced event of the current week
// and posts one digest per output channel.
func (s *EventService) AnnounceThisWeek(ctx context.Context, description string) ([]entities.Event, error) {
	weekStart, weekEnd := tz.WeekBounds(s.clock(), s.loc)
	candidates, err := s.ThisWeekUnannounced(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNothingToAnnounce
	}

	announced := make([]entities.Event, 0, len(candidates))
	byChannel := make(map[string][]entities.Event)
	var channels []string
	var markErr error
	for _, e := range candidates {
		ok, err := s.eventRepo.MarkAnnounced(ctx, e.ID)
		if err != nil {
			// Events marked so far are committed and still get their digest.
			markErr = fmt.Errorf("mark event %d announced: %w", e.ID, err)
			break
		}
		if !ok {
			continue
		}
		e.Announced = true
		announced = append(announced, e)
		key := e.Type.ChannelKey()
		if _, seen := byChannel[key]; !seen {
			channels = append(channels, key)
		}
		byChannel[key] = append(byChannel[key], e)
	}

	for _, key := range channels {
		s.broadcast(ctx, key, entities.Notification{
			Kind:        entities.NotificationWeekly,
			Events:      byChannel[key],
			Description: strings.TrimSpace(description),
		})
	}
	s.log.Info("weekly announcement", slog.Int("events", len(announced)), slog.Time("week_start", weekStart))
	return announced, markErr
}

func (s *EventService) broadcast(ctx context.Context, channelKey string, n entities.Notification) {
	if err := s.notifier.Notify(ctx, channelKey, n); err != nil {
		s.log.Error("broadcast failed",
			slog.String("channel", channelKey),
			slog.String("kind", string(n.Kind)),
			sl.Err(err),
		)
	}
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*entities.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// UnannouncedEvents returns every event that has not been announced yet,
// earliest first.
func (s *EventService) UnannouncedEvents(ctx context.Context) ([]entities.Event, error) {
	events, err := s.eventRepo.FindUnannounced(ctx)
	if err != nil {
		return nil, err
	}
	sortBySchedule(events)
	return events, nil
}

// NextToAnnounce picks the earliest unannounced event; ties go to the
// lowest id.
func (s *EventService) NextToAnnounce(ctx context.Context) (*entities.Event, error) {
	events, err := s.UnannouncedEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, domain.ErrNothingToAnnounce
	}
	return &events[0], nil
}

// UpcomingEvents returns announced events that have not started, earliest
// first.
func (s *EventService) UpcomingEvents(ctx context.Context) ([]entities.Event, error) {
	events, err := s.eventRepo.FindUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	events = slices.DeleteFunc(events, func(e entities.Event) bool { return !e.IsUpcoming() })
	sortBySchedule(events)
	return events, nil
}

// ThisWeekUnannounced returns unannounced events in [weekStart, weekEnd).
func (s *EventService) ThisWeekUnannounced(ctx context.Context, weekStart, weekEnd time.Time) ([]entities.Event, error) {
	if !weekStart.Before(weekEnd) {
		return nil, fmt.Errorf("%w: week start %s is not before end %s", domain.ErrInvalidDateTime, weekStart, weekEnd)
	}
	events, err := s.eventRepo.FindUnannouncedBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	events = slices.DeleteFunc(events, func(e entities.Event) bool {
		return e.Announced || e.ScheduledAt.Before(weekStart) || !e.ScheduledAt.Before(weekEnd)
	})
	sortBySchedule(events)
	return events, nil
}

// NextUpcomingEventID resolves the event a join without id refers to.
func (s *EventService) NextUpcomingEventID(ctx context.Context) (uint, error) {
	events, err := s.UpcomingEvents(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, domain.ErrNoUpcomingEvent
	}
	return events[0].ID, nil
}

func sortBySchedule(events []entities.Event) {
	slices.SortStableFunc(events, func(a, b entities.Event) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
