package entities

import "time"

// Attendance records that a member intends to take part in an event.
type Attendance struct {
	EventID  uint
	MemberID string
	JoinedAt time.Time
}

// JoinResult distinguishes a fresh join from a repeated one.
type JoinResult int

const (
	Joined JoinResult = iota + 1
	AlreadyJoined
)

func (r JoinResult) String() string {
	switch r {
	case Joined:
		return "joined"
	case AlreadyJoined:
		return "already_joined"
	default:
		return "unknown"
	}
}
