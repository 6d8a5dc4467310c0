package discord

import (
	"fmt"
	"strings"
	"time"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
)

const (
	DateLayout = "02.01.2006"
	TimeLayout = "15:04"
)

// ParseEventDateTime parses time (HH:MM) and an optional date (TT.MM.JJJJ)
// in loc. Without a date the event is today in loc. Times before the
// current minute are rejected.
func ParseEventDateTime(dateStr, timeStr string, loc *time.Location, now time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return time.Time{}, domain.ErrDateTimeRequired
	}

	tTime, err := time.Parse(TimeLayout, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", domain.ErrInvalidDateTime, timeStr)
	}

	day := now.In(loc)
	if dateStr != "" {
		if day, err = time.ParseInLocation(DateLayout, dateStr, loc); err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrInvalidDateTime, dateStr)
		}
	}

	dt := time.Date(day.Year(), day.Month(), day.Day(), tTime.Hour(), tTime.Minute(), 0, 0, loc)
	if dt.Before(entities.MinuteBucket(now, loc)) {
		return time.Time{}, domain.ErrDateTimeInPast
	}
	return dt, nil
}

// FormatDate renders t as TT.MM.JJJJ in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DateLayout)
}

// FormatTime renders t as HH:MM in loc.
func FormatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}
