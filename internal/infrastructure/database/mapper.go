package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
)

const pgForeignKeyViolation = "23503"

type eventRow struct {
	ID          int64              `db:"id"`
	Type        string             `db:"type"`
	Title       string             `db:"title"`
	Description string             `db:"description"`
	ScheduledAt pgtype.Timestamptz `db:"scheduled_at"`
	CreatorID   string             `db:"creator_id"`
	Announced   bool               `db:"announced"`
	Started     bool               `db:"started"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
	UpdatedAt   pgtype.Timestamptz `db:"updated_at"`
}

// pgtypeTimestamptzToTime returns t.Time when Valid, else zero time.
func pgtypeTimestamptzToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func eventToDomain(r eventRow) entities.Event {
	return entities.Event{
		ID:          uint(r.ID),
		Type:        entities.EventType(r.Type),
		Title:       r.Title,
		Description: r.Description,
		ScheduledAt: pgtypeTimestamptzToTime(r.ScheduledAt),
		CreatorID:   r.CreatorID,
		Announced:   r.Announced,
		Started:     r.Started,
		CreatedAt:   pgtypeTimestamptzToTime(r.CreatedAt),
		UpdatedAt:   pgtypeTimestamptzToTime(r.UpdatedAt),
	}
}

func eventsToDomain(rows []eventRow) []entities.Event {
	out := make([]entities.Event, len(rows))
	for i := range rows {
		out[i] = eventToDomain(rows[i])
	}
	return out
}

// wrapErr maps driver errors onto domain errors. Domain errors pass
// through, missing rows become ErrEventNotFound and everything else is a
// persistence failure.
func wrapErr(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrEventNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrEventNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
