package memory

import (
	"context"
	"time"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	s *Store
}

// Create assigns the next id (highest id ever used plus one) and stores a
// copy of event. The announced flag is kept; new events never start out
// started.
func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.clock()
	r.s.lastID++
	event.ID = r.s.lastID
	event.Started = false
	event.CreatedAt = now
	event.UpdatedAt = now

	stored := *event
	r.s.events[event.ID] = &stored
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	out := *e
	return &out, nil
}

func (r *EventRepository) FindUnannounced(ctx context.Context) ([]entities.Event, error) {
	return r.filter(func(e *entities.Event) bool { return !e.Announced }), nil
}

func (r *EventRepository) FindUnannouncedBetween(ctx context.Context, from, to time.Time) ([]entities.Event, error) {
	return r.filter(func(e *entities.Event) bool {
		return !e.Announced && !e.ScheduledAt.Before(from) && e.ScheduledAt.Before(to)
	}), nil
}

func (r *EventRepository) FindUpcoming(ctx context.Context) ([]entities.Event, error) {
	return r.filter(func(e *entities.Event) bool { return e.IsUpcoming() }), nil
}

func (r *EventRepository) MarkAnnounced(ctx context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if e.Announced {
		return false, nil
	}
	e.Announced = true
	e.UpdatedAt = r.s.clock()
	return true, nil
}

func (r *EventRepository) MarkStarted(ctx context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if !e.Announced {
		return false, domain.ErrEventNotAnnounced
	}
	if e.Started {
		return false, nil
	}
	e.Started = true
	e.UpdatedAt = r.s.clock()
	return true, nil
}

// filter returns copies in id order.
func (r *EventRepository) filter(keep func(*entities.Event) bool) []entities.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.Event, 0, len(r.s.events))
	for id := uint(1); id <= r.s.lastID; id++ {
		e, ok := r.s.events[id]
		if ok && keep(e) {
			out = append(out, *e)
		}
	}
	return out
}
