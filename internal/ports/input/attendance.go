package input

import (
	"context"

	"moevius/internal/domain/entities"
)

type JoinOutcome struct {
	EventID uint
	Result  entities.JoinResult
}

type AttendanceUseCase interface {
	// Join adds memberID to the event. A zero eventID selects the next
	// upcoming event; the resolved id is returned in the outcome.
	Join(ctx context.Context, memberID string, eventID uint) (JoinOutcome, error)
	ListMembers(ctx context.Context, eventID uint) ([]string, error)
	MissingMembers(ctx context.Context, eventID uint, candidates []string) ([]string, error)
}
