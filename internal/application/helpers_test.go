package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/infrastructure/memory"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/metrics"
	"moevius/internal/ports/output"
	"moevius/pkg/tz"
)

// fakeClock is a settable clock shared by every service of a fixture.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// countingEvents counts every call that reaches the event store.
type countingEvents struct {
	output.EventRepository
	calls atomic.Int64
}

func (c *countingEvents) Create(ctx context.Context, e *entities.Event) error {
	c.calls.Add(1)
	return c.EventRepository.Create(ctx, e)
}

func (c *countingEvents) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	c.calls.Add(1)
	return c.EventRepository.FindByID(ctx, id)
}

func (c *countingEvents) FindUnannounced(ctx context.Context) ([]entities.Event, error) {
	c.calls.Add(1)
	return c.EventRepository.FindUnannounced(ctx)
}

func (c *countingEvents) FindUnannouncedBetween(ctx context.Context, from, to time.Time) ([]entities.Event, error) {
	c.calls.Add(1)
	return c.EventRepository.FindUnannouncedBetween(ctx, from, to)
}

func (c *countingEvents) FindUpcoming(ctx context.Context) ([]entities.Event, error) {
	c.calls.Add(1)
	return c.EventRepository.FindUpcoming(ctx)
}

func (c *countingEvents) MarkAnnounced(ctx context.Context, id uint) (bool, error) {
	c.calls.Add(1)
	return c.EventRepository.MarkAnnounced(ctx, id)
}

func (c *countingEvents) MarkStarted(ctx context.Context, id uint) (bool, error) {
	c.calls.Add(1)
	return c.EventRepository.MarkStarted(ctx, id)
}

type sentNotification struct {
	channel string
	n       entities.Notification
}

// recordingNotifier keeps every notification. Channels listed in missing
// behave like unconfigured outputs.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []sentNotification
	missing map[string]bool
}

func (r *recordingNotifier) Notify(ctx context.Context, channelKey string, n entities.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missing[channelKey] {
		return domain.ErrOutputUnavailable
	}
	r.sent = append(r.sent, sentNotification{channel: channelKey, n: n})
	return nil
}

func (r *recordingNotifier) byKind(kind entities.NotificationKind) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, s := range r.sent {
		if s.n.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	loc        *time.Location
	clock      *fakeClock
	store      *memory.Store
	events     *countingEvents
	notifier   *recordingNotifier
	eventSvc   *EventService
	attendance *AttendanceService
	scheduler  *Scheduler
}

func newFixture(t *testing.T, now time.Time, catchUp bool) *fixture {
	t.Helper()
	loc, err := tz.Load(tz.DefaultZone)
	require.NoError(t, err)

	f := &fixture{
		loc:      loc,
		clock:    &fakeClock{now: now},
		store:    memory.NewStore(),
		notifier: &recordingNotifier{missing: map[string]bool{}},
	}
	f.events = &countingEvents{EventRepository: f.store.Events()}
	log := sl.Discard()
	sink := metrics.NewNoopSink()

	f.eventSvc = NewEventService(log, f.events, f.store.Attendance(), f.notifier, loc)
	f.eventSvc.clock = f.clock.Now
	f.attendance = NewAttendanceService(log, f.store.Attendance(), f.eventSvc, sink)
	f.attendance.clock = f.clock.Now
	f.scheduler = NewScheduler(SchedulerConfig{CatchUp: catchUp, Location: loc}, log, f.events, f.store.Attendance(), f.notifier, sink)
	f.scheduler.clock = f.clock.Now
	return f
}

func (f *fixture) draft(typ entities.EventType, at time.Time) entities.Draft {
	return entities.Draft{
		Type:        typ,
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(8),
		ScheduledAt: at,
		CreatorID:   gofakeit.Numerify("##########"),
	}
}

func (f *fixture) save(t *testing.T, typ entities.EventType, at time.Time) *entities.Event {
	t.Helper()
	e, err := f.eventSvc.Save(context.Background(), f.draft(typ, at))
	require.NoError(t, err)
	return e
}

func (f *fixture) announce(t *testing.T, typ entities.EventType, at time.Time) *entities.Event {
	t.Helper()
	e, err := f.eventSvc.Announce(context.Background(), f.draft(typ, at))
	require.NoError(t, err)
	return e
}

var errStoreDown = errors.New("connection reset by peer")

// failingEvents lets individual store calls fail. MarkAnnounced fails
// once announceOK calls succeeded (negative disables it); MarkStarted
// fails for the first startFailures calls.
type failingEvents struct {
	*countingEvents
	mu            sync.Mutex
	announceOK    int
	startFailures int
	findByIDDown  bool
}

func (f *failingEvents) MarkAnnounced(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	if f.announceOK == 0 {
		f.mu.Unlock()
		return false, errStoreDown
	}
	f.announceOK--
	f.mu.Unlock()
	return f.countingEvents.MarkAnnounced(ctx, id)
}

func (f *failingEvents) MarkStarted(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	if f.startFailures > 0 {
		f.startFailures--
		f.mu.Unlock()
		return false, errStoreDown
	}
	f.mu.Unlock()
	return f.countingEvents.MarkStarted(ctx, id)
}

func (f *failingEvents) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	f.mu.Lock()
	down := f.findByIDDown
	f.mu.Unlock()
	if down {
		return nil, errStoreDown
	}
	return f.countingEvents.FindByID(ctx, id)
}

// useEvents routes both services of the fixture through repo.
func (f *fixture) useEvents(repo output.EventRepository) {
	f.eventSvc.eventRepo = repo
	f.scheduler.eventRepo = repo
}
