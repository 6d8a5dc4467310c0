package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	const op = "database.EventRepository.Create"

	var createdAt, updatedAt pgtype.Timestamptz
	var id int64
	err := r.pool.QueryRow(ctx, queryInsertEvent,
		string(event.Type),
		event.Title,
		event.Description,
		timeToTimestamptz(event.ScheduledAt),
		event.CreatorID,
		event.Announced,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return wrapErr(op, err)
	}
	event.ID = uint(id)
	event.Started = false
	event.CreatedAt = pgtypeTimestamptzToTime(createdAt)
	event.UpdatedAt = pgtypeTimestamptzToTime(updatedAt)
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*entities.Event, error) {
	const op = "database.EventRepository.FindByID"

	rows, err := r.pool.Query(ctx, queryGetEventByID, int64(id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, wrapErr(op, err)
	}
	e := eventToDomain(row)
	return &e, nil
}

func (r *EventRepository) FindUnannounced(ctx context.Context) ([]entities.Event, error) {
	return r.list(ctx, "database.EventRepository.FindUnannounced", queryListUnannounced)
}

func (r *EventRepository) FindUnannouncedBetween(ctx context.Context, from, to time.Time) ([]entities.Event, error) {
	return r.list(ctx, "database.EventRepository.FindUnannouncedBetween", queryListUnannouncedBetween,
		timeToTimestamptz(from), timeToTimestamptz(to))
}

func (r *EventRepository) FindUpcoming(ctx context.Context) ([]entities.Event, error) {
	return r.list(ctx, "database.EventRepository.FindUpcoming", queryListUpcoming)
}

func (r *EventRepository) list(ctx context.Context, op, query string, args ...any) ([]entities.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return eventsToDomain(collected), nil
}

// MarkAnnounced locks the row and flips announced. It reports false when
// the event was already announced.
func (r *EventRepository) MarkAnnounced(ctx context.Context, id uint) (bool, error) {
	const op = "database.EventRepository.MarkAnnounced"

	var transitioned bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var announced, started bool
		if err := tx.QueryRow(ctx, queryLockEventState, int64(id)).Scan(&announced, &started); err != nil {
			return err
		}
		if announced {
			return nil
		}
		if _, err := tx.Exec(ctx, queryMarkAnnounced, int64(id)); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return false, wrapErr(op, err)
	}
	return transitioned, nil
}

// MarkStarted locks the row and flips started. Concurrent callers
// serialize on the row lock, so exactly one of them sees true.
func (r *EventRepository) MarkStarted(ctx context.Context, id uint) (bool, error) {
	const op = "database.EventRepository.MarkStarted"

	var transitioned bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var announced, started bool
		if err := tx.QueryRow(ctx, queryLockEventState, int64(id)).Scan(&announced, &started); err != nil {
			return err
		}
		if !announced {
			return domain.ErrEventNotAnnounced
		}
		if started {
			return nil
		}
		tag, err := tx.Exec(ctx, queryMarkStarted, int64(id))
		if err != nil {
			return err
		}
		transitioned = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, wrapErr(op, err)
	}
	return transitioned, nil
}
