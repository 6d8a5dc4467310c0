package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/ports/output"
)

var _ output.AttendanceRepository = (*AttendanceRepository)(nil)

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Add relies on the (event_id, member_id) primary key: a conflicting row
// is left alone and reported as not created.
func (r *AttendanceRepository) Add(ctx context.Context, a *entities.Attendance) (bool, error) {
	const op = "database.AttendanceRepository.Add"

	tag, err := r.pool.Exec(ctx, queryInsertAttendance,
		int64(a.EventID),
		a.MemberID,
		timeToTimestamptz(a.JoinedAt),
	)
	if err != nil {
		return false, wrapErr(op, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AttendanceRepository) MemberIDs(ctx context.Context, eventID uint) ([]string, error) {
	const op = "database.AttendanceRepository.MemberIDs"

	var exists bool
	if err := r.pool.QueryRow(ctx, queryEventExists, int64(eventID)).Scan(&exists); err != nil {
		return nil, wrapErr(op, err)
	}
	if !exists {
		return nil, wrapErr(op, domain.ErrEventNotFound)
	}

	rows, err := r.pool.Query(ctx, queryListMemberIDs, int64(eventID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return ids, nil
}
