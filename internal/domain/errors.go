package domain

import "errors"

// Kind classifies a domain error so adapters can decide how to react
// without matching every sentinel.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindPersistence
	KindOutputUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	case KindOutputUnavailable:
		return "output_unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified domain error. Code is stable and used as the
// translation key suffix ("errors.<code>").
type Error struct {
	Code string
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(code string, kind Kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, msg: msg}
}

// Domain errors.
var (
	ErrInvalidEventType  = newError("invalid_event_type", KindValidation, "unknown event type")
	ErrInvalidDateTime   = newError("invalid_datetime", KindValidation, "invalid date or time")
	ErrDateTimeRequired  = newError("datetime_required", KindValidation, "date and time are required")
	ErrDateTimeInPast    = newError("datetime_in_past", KindValidation, "date and time must be in the future")
	ErrCreatorRequired   = newError("creator_required", KindValidation, "creator is required")
	ErrMemberRequired    = newError("member_required", KindValidation, "member is required")
	ErrInvalidDraft      = newError("invalid_draft", KindValidation, "invalid draft")
	ErrInvalidAction     = newError("invalid_action", KindValidation, "unknown confirmation action")
	ErrEventNotFound     = newError("event_not_found", KindNotFound, "event not found")
	ErrDraftNotFound     = newError("draft_not_found", KindNotFound, "draft not found or already resolved")
	ErrNoUpcomingEvent   = newError("no_upcoming_event", KindNotFound, "no upcoming event")
	ErrNothingToAnnounce = newError("nothing_to_announce", KindNotFound, "no unannounced event")
	ErrEventNotAnnounced = newError("event_not_announced", KindConflict, "event has not been announced")
	ErrPersistence       = newError("persistence", KindPersistence, "storage failure")
	ErrOutputUnavailable = newError("output_unavailable", KindOutputUnavailable, "output channel unavailable")
	ErrNotSuperUser      = newError("not_super_user", KindValidation, "only privileged members may do this")
)

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
