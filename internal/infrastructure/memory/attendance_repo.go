package memory

import (
	"context"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/ports/output"
)

var _ output.AttendanceRepository = (*AttendanceRepository)(nil)

type AttendanceRepository struct {
	s *Store
}

func (r *AttendanceRepository) Add(ctx context.Context, a *entities.Attendance) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[a.EventID]; !ok {
		return false, domain.ErrEventNotFound
	}
	for _, existing := range r.s.attendance[a.EventID] {
		if existing.MemberID == a.MemberID {
			return false, nil
		}
	}
	if a.JoinedAt.IsZero() {
		a.JoinedAt = r.s.clock()
	}
	r.s.attendance[a.EventID] = append(r.s.attendance[a.EventID], *a)
	return true, nil
}

// MemberIDs returns the members in join order.
func (r *AttendanceRepository) MemberIDs(ctx context.Context, eventID uint) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[eventID]; !ok {
		return nil, domain.ErrEventNotFound
	}
	list := r.s.attendance[eventID]
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.MemberID)
	}
	return ids, nil
}
