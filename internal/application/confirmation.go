package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/metrics"
	"moevius/internal/ports/input"
)

// DefaultConfirmTimeout is how long a draft prompt waits for a decision.
const DefaultConfirmTimeout = 180 * time.Second

var _ input.ConfirmationUseCase = (*ConfirmationService)(nil)

// TimeoutHandler is called once for every draft that expired unanswered.
// It runs on a timer goroutine.
type TimeoutHandler func(id uuid.UUID, draft entities.Draft)

type pendingDraft struct {
	input.PendingDraft
	stop func() bool
}

// ConfirmationService holds drafts between creation and the Save /
// Announce / Abort decision. Each draft is resolved exactly once: the
// first action or the timeout claims it, later attempts get
// domain.ErrDraftNotFound.
type ConfirmationService struct {
	log       *slog.Logger
	events    *EventService
	metrics   metrics.Sink
	timeout   time.Duration
	clock     func() time.Time
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	mu        sync.Mutex
	pending   map[uuid.UUID]*pendingDraft
	onTimeout TimeoutHandler
}

func NewConfirmationService(log *slog.Logger, events *EventService, sink metrics.Sink, timeout time.Duration) *ConfirmationService {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &ConfirmationService{
		log:     log,
		events:  events,
		metrics: sink,
		timeout: timeout,
		clock:   time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		pending: make(map[uuid.UUID]*pendingDraft),
	}
}

// OnTimeout registers the handler invoked for expired drafts.
func (s *ConfirmationService) OnTimeout(h TimeoutHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTimeout = h
}

// CreateDraft validates d and keeps it pending until Confirm or timeout.
// Nothing is persisted.
func (s *ConfirmationService) CreateDraft(ctx context.Context, d entities.Draft) (*input.PendingDraft, error) {
	if err := s.events.ValidateDraft(d); err != nil {
		return nil, err
	}

	p := &pendingDraft{PendingDraft: input.PendingDraft{
		ID:        uuid.New(),
		Draft:     d,
		ExpiresAt: s.clock().Add(s.timeout),
	}}
	id := p.ID

	s.mu.Lock()
	s.pending[id] = p
	p.stop = s.afterFunc(s.timeout, func() { s.expire(id) })
	s.mu.Unlock()

	s.log.Debug("draft pending",
		slog.String("draft_id", id.String()),
		slog.String("type", d.Type.String()),
		slog.String("creator_id", d.CreatorID),
	)
	out := p.PendingDraft
	return &out, nil
}

// Confirm resolves a pending draft. Announce persists before it
// broadcasts, so members reacting to the announcement always find the
// event.
func (s *ConfirmationService) Confirm(ctx context.Context, draftID uuid.UUID, action input.ConfirmAction) (*input.ConfirmationResult, error) {
	if _, ok := input.ParseConfirmAction(string(action)); !ok {
		return nil, domain.ErrInvalidAction
	}
	p := s.claim(draftID)
	if p == nil {
		return nil, domain.ErrDraftNotFound
	}

	log := s.log.With(slog.String("draft_id", draftID.String()), slog.String("action", string(action)))

	var (
		result input.ConfirmationResult
		err    error
	)
	switch action {
	case input.ActionAbort:
		result.State = input.StateAborted
	case input.ActionSave:
		result.State = input.StateSaved
		result.Event, err = s.events.Save(ctx, p.Draft)
	case input.ActionAnnounce:
		result.State = input.StateAnnounced
		result.Event, err = s.events.Announce(ctx, p.Draft)
	}
	if err != nil {
		log.Error("confirm draft", sl.Err(err))
		return nil, err
	}

	s.metrics.ConfirmationResolved(result.State.String())
	log.Info("draft resolved", slog.String("state", result.State.String()))
	return &result, nil
}

// Pending returns the draft if it is still waiting for a decision.
func (s *ConfirmationService) Pending(draftID uuid.UUID) (*input.PendingDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[draftID]
	if !ok {
		return nil, false
	}
	out := p.PendingDraft
	return &out, true
}

// Close drops every pending draft without persisting it.
func (s *ConfirmationService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.pending {
		if p.stop != nil {
			p.stop()
		}
		delete(s.pending, id)
	}
}

func (s *ConfirmationService) claim(id uuid.UUID) *pendingDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok {
		return nil
	}
	delete(s.pending, id)
	if p.stop != nil {
		p.stop()
	}
	return p
}

func (s *ConfirmationService) expire(id uuid.UUID) {
	p := s.claim(id)
	if p == nil {
		return
	}
	s.mu.Lock()
	h := s.onTimeout
	s.mu.Unlock()

	s.metrics.ConfirmationResolved(input.StateTimedOut.String())
	s.log.Info("draft timed out", slog.String("draft_id", id.String()), slog.String("creator_id", p.Draft.CreatorID))
	if h != nil {
		h(id, p.Draft)
	}
}
