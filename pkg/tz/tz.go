package tz

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the zone the bot lives in unless TIMEZONE says otherwise.
const DefaultZone = "Europe/Berlin"

// Load resolves name to a location, falling back to DefaultZone for "".
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %s: %w", name, err)
	}
	return loc, nil
}

// WeekBounds returns the half-open week [Monday 00:00, next Monday 00:00)
// containing t, computed in loc.
func WeekBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	start = time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
	end = time.Date(start.Year(), start.Month(), start.Day()+7, 0, 0, 0, 0, loc)
	return start, end
}
