package output

import (
	"context"
	"time"

	"moevius/internal/domain/entities"
)

// EventRepository owns event durability and id assignment.
//
// Create stores the event with its Announced flag, so an announcement can
// be persisted in a single write. MarkAnnounced and MarkStarted are atomic check-and-set operations: they
// report true only to the caller that performed the transition.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id uint) (*entities.Event, error)
	FindUnannounced(ctx context.Context) ([]entities.Event, error)
	FindUnannouncedBetween(ctx context.Context, from, to time.Time) ([]entities.Event, error)
	FindUpcoming(ctx context.Context) ([]entities.Event, error)
	MarkAnnounced(ctx context.Context, id uint) (bool, error)
	MarkStarted(ctx context.Context, id uint) (bool, error)
}
