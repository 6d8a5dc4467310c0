package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/domain"
	"moevius/pkg/tz"
)

func TestParseEventDateTime(t *testing.T) {
	loc, err := tz.Load("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2026, 10, 20, 17, 30, 42, 0, loc)

	tests := []struct {
		name    string
		date    string
		time    string
		want    time.Time
		wantErr error
	}{
		{name: "today", time: "18:00", want: time.Date(2026, 10, 20, 18, 0, 0, 0, loc)},
		{name: "explicit date", date: "25.10.2026", time: " 02:30 ", want: time.Date(2026, 10, 25, 2, 30, 0, 0, loc)},
		{name: "current minute", time: "17:30", want: time.Date(2026, 10, 20, 17, 30, 0, 0, loc)},
		{name: "earlier today", time: "17:29", wantErr: domain.ErrDateTimeInPast},
		{name: "yesterday", date: "19.10.2026", time: "20:00", wantErr: domain.ErrDateTimeInPast},
		{name: "missing time", date: "25.10.2026", wantErr: domain.ErrDateTimeRequired},
		{name: "bad time", time: "6pm", wantErr: domain.ErrInvalidDateTime},
		{name: "bad date", date: "2026-10-25", time: "18:00", wantErr: domain.ErrInvalidDateTime},
		{name: "impossible date", date: "31.02.2027", time: "18:00", wantErr: domain.ErrInvalidDateTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventDateTime(tt.date, tt.time, loc, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	loc, err := tz.Load("Europe/Berlin")
	require.NoError(t, err)
	at := time.Date(2026, 10, 20, 16, 5, 0, 0, time.UTC)

	assert.Equal(t, "20.10.2026", FormatDate(at, loc))
	assert.Equal(t, "18:05", FormatTime(at, loc))
	assert.Empty(t, FormatTime(time.Time{}, loc))
}
