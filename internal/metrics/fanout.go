package metrics

import "time"

// Fanout forwards every sample to each sink in order.
type Fanout []Sink

var _ Sink = Fanout(nil)

func (f Fanout) TickStarted() {
	for _, s := range f {
		s.TickStarted()
	}
}

func (f Fanout) TickCompleted(duration time.Duration, fired int, err error) {
	for _, s := range f {
		s.TickCompleted(duration, fired, err)
	}
}

func (f Fanout) EventFired(eventType string) {
	for _, s := range f {
		s.EventFired(eventType)
	}
}

func (f Fanout) NotificationFailed(channelKey string) {
	for _, s := range f {
		s.NotificationFailed(channelKey)
	}
}

func (f Fanout) ConfirmationResolved(state string) {
	for _, s := range f {
		s.ConfirmationResolved(state)
	}
}

func (f Fanout) MemberJoined(result string) {
	for _, s := range f {
		s.MemberJoined(result)
	}
}
