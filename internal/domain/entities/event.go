package entities

import (
	"strings"
	"time"

	"moevius/internal/domain"
)

// EventType is the closed set of things the bot can remind about.
type EventType string

const (
	EventTypeStream EventType = "stream"
	EventTypeGame   EventType = "game"
)

// ParseEventType accepts the lower- or upper-case name of a type.
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case EventTypeStream:
		return EventTypeStream, nil
	case EventTypeGame:
		return EventTypeGame, nil
	}
	return "", domain.ErrInvalidEventType
}

func (t EventType) Valid() bool {
	return t == EventTypeStream || t == EventTypeGame
}

// ChannelKey is the output channel an event of this type is posted to.
func (t EventType) ChannelKey() string {
	return string(t)
}

func (t EventType) String() string {
	return string(t)
}

type Event struct {
	ID          uint
	Type        EventType
	Title       string
	Description string
	ScheduledAt time.Time
	CreatorID   string
	Announced   bool
	Started     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsUpcoming reports whether the scheduler still has to fire the event.
func (e *Event) IsUpcoming() bool {
	return e.Announced && !e.Started
}

// Bucket returns the scheduled time in loc truncated to the minute.
func (e *Event) Bucket(loc *time.Location) time.Time {
	return MinuteBucket(e.ScheduledAt, loc)
}

// MinuteBucket truncates t to the minute in loc. Dates are kept, so a
// bucket is never ambiguous across midnight.
func MinuteBucket(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// Draft is an event that has not been persisted yet.
type Draft struct {
	Type        EventType `validate:"required,oneof=stream game"`
	Title       string    `validate:"max=200"`
	Description string    `validate:"max=2000"`
	ScheduledAt time.Time `validate:"required"`
	CreatorID   string    `validate:"required"`
}

func (d Draft) Event() *Event {
	return &Event{
		Type:        d.Type,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		ScheduledAt: d.ScheduledAt,
		CreatorID:   d.CreatorID,
	}
}
