package application

import (
	"context"
	"log/slog"
	"time"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/metrics"
	"moevius/internal/ports/input"
	"moevius/internal/ports/output"
)

var _ input.AttendanceUseCase = (*AttendanceService)(nil)

type AttendanceService struct {
	log            *slog.Logger
	attendanceRepo output.AttendanceRepository
	events         *EventService
	metrics        metrics.Sink
	clock          func() time.Time
}

func NewAttendanceService(
	log *slog.Logger,
	attendanceRepo output.AttendanceRepository,
	events *EventService,
	sink metrics.Sink,
) *AttendanceService {
	return &AttendanceService{
		log:            log,
		attendanceRepo: attendanceRepo,
		events:         events,
		metrics:        sink,
		clock:          time.Now,
	}
}

// Join puts memberID on the attendance list. With eventID == 0 the next
// upcoming event is used. A repeated join is reported as
// entities.AlreadyJoined, not as an error.
func (s *AttendanceService) Join(ctx context.Context, memberID string, eventID uint) (input.JoinOutcome, error) {
	if memberID == "" {
		return input.JoinOutcome{}, domain.ErrMemberRequired
	}
	if eventID == 0 {
		next, err := s.events.NextUpcomingEventID(ctx)
		if err != nil {
			return input.JoinOutcome{}, err
		}
		eventID = next
	}

	created, err := s.attendanceRepo.Add(ctx, &entities.Attendance{
		EventID:  eventID,
		MemberID: memberID,
		JoinedAt: s.clock(),
	})
	if err != nil {
		return input.JoinOutcome{EventID: eventID}, err
	}

	result := entities.Joined
	if !created {
		result = entities.AlreadyJoined
	}
	s.metrics.MemberJoined(result.String())
	s.log.Info("join",
		slog.String("member_id", memberID),
		slog.Uint64("event_id", uint64(eventID)),
		slog.String("result", result.String()),
	)
	return input.JoinOutcome{EventID: eventID, Result: result}, nil
}

func (s *AttendanceService) ListMembers(ctx context.Context, eventID uint) ([]string, error) {
	return s.attendanceRepo.MemberIDs(ctx, eventID)
}

// MissingMembers returns the candidates that are not on the list yet, in
// candidate order.
func (s *AttendanceService) MissingMembers(ctx context.Context, eventID uint, candidates []string) ([]string, error) {
	members, err := s.attendanceRepo.MemberIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	joined := make(map[string]struct{}, len(members))
	for _, m := range members {
		joined[m] = struct{}{}
	}
	missing := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := joined[c]; ok {
			continue
		}
		joined[c] = struct{}{}
		missing = append(missing, c)
	}
	return missing, nil
}
