package output

import (
	"context"

	"moevius/internal/domain/entities"
)

type AttendanceRepository interface {
	// Add stores the attendance unless it exists. It returns false when the
	// member was already on the list and domain.ErrEventNotFound when the
	// event does not exist.
	Add(ctx context.Context, attendance *entities.Attendance) (bool, error)
	MemberIDs(ctx context.Context, eventID uint) ([]string, error)
}
