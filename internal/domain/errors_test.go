package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		code string
	}{
		{"sentinel", ErrEventNotFound, KindNotFound, "event_not_found"},
		{"wrapped", fmt.Errorf("find event 3: %w", ErrEventNotFound), KindNotFound, "event_not_found"},
		{"validation", fmt.Errorf("%w: date %q", ErrInvalidDateTime, "31.02.2024"), KindValidation, "invalid_datetime"},
		{"conflict", ErrEventNotAnnounced, KindConflict, "event_not_announced"},
		{"persistence wins over cause", fmt.Errorf("mark started: %w: %w", ErrPersistence, errors.New("conn reset")), KindPersistence, "persistence"},
		{"foreign", errors.New("boom"), KindUnknown, ""},
		{"nil", nil, KindUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsValidation(ErrDateTimeInPast))
	assert.False(t, IsValidation(ErrDraftNotFound))
	assert.True(t, IsNotFound(ErrNoUpcomingEvent))
	assert.True(t, IsNotFound(fmt.Errorf("join: %w", ErrNothingToAnnounce)))
	assert.False(t, IsNotFound(ErrOutputUnavailable))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "output_unavailable", KindOutputUnavailable.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
