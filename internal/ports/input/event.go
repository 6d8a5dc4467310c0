package input

import (
	"context"
	"time"

	"moevius/internal/domain/entities"
)

type EventUseCase interface {
	GetEvent(ctx context.Context, id uint) (*entities.Event, error)
	UnannouncedEvents(ctx context.Context) ([]entities.Event, error)
	NextToAnnounce(ctx context.Context) (*entities.Event, error)
	UpcomingEvents(ctx context.Context) ([]entities.Event, error)
	ThisWeekUnannounced(ctx context.Context, weekStart, weekEnd time.Time) ([]entities.Event, error)
	NextUpcomingEventID(ctx context.Context) (uint, error)
	AnnounceNow(ctx context.Context, id uint) (*entities.Event, error)
	AnnounceNext(ctx context.Context) (*entities.Event, error)
	AnnounceThisWeek(ctx context.Context, description string) ([]entities.Event, error)
}
