package input

import (
	"context"
	"time"

	"github.com/google/uuid"

	"moevius/internal/domain/entities"
)

// ConfirmAction is one of the three buttons of a draft prompt.
type ConfirmAction string

const (
	ActionSave     ConfirmAction = "save"
	ActionAnnounce ConfirmAction = "announce"
	ActionAbort    ConfirmAction = "abort"
)

func ParseConfirmAction(s string) (ConfirmAction, bool) {
	switch a := ConfirmAction(s); a {
	case ActionSave, ActionAnnounce, ActionAbort:
		return a, true
	}
	return "", false
}

// ConfirmationState is the state of a draft prompt. Every state but
// StatePending is terminal.
type ConfirmationState int

const (
	StatePending ConfirmationState = iota
	StateSaved
	StateAnnounced
	StateAborted
	StateTimedOut
)

func (s ConfirmationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSaved:
		return "saved"
	case StateAnnounced:
		return "announced"
	case StateAborted:
		return "aborted"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

type PendingDraft struct {
	ID        uuid.UUID
	Draft     entities.Draft
	ExpiresAt time.Time
}

type ConfirmationResult struct {
	State ConfirmationState
	// Event is set for StateSaved and StateAnnounced.
	Event *entities.Event
}

type ConfirmationUseCase interface {
	CreateDraft(ctx context.Context, draft entities.Draft) (*PendingDraft, error)
	Confirm(ctx context.Context, draftID uuid.UUID, action ConfirmAction) (*ConfirmationResult, error)
}
