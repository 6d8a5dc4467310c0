package metrics

import "time"

// Sink records reminder metrics. Implementations must return quickly and never
// return errors; a broken backend only loses samples.
type Sink interface {
	// Scheduler
	TickStarted()
	TickCompleted(duration time.Duration, fired int, err error)
	EventFired(eventType string)
	NotificationFailed(channelKey string)

	// Confirmation workflow
	ConfirmationResolved(state string)

	// Attendance
	MemberJoined(result string)
}
