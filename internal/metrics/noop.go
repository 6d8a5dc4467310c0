package metrics

import "time"

// NoopSink discards every sample. Used when metrics are disabled and in
// tests that do not assert on metrics.
type NoopSink struct{}

var _ Sink = (*NoopSink)(nil)

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) TickStarted()                                               {}
func (n *NoopSink) TickCompleted(duration time.Duration, fired int, err error) {}
func (n *NoopSink) EventFired(eventType string)                                {}
func (n *NoopSink) NotificationFailed(channelKey string)                       {}
func (n *NoopSink) ConfirmationResolved(state string)                          {}
func (n *NoopSink) MemberJoined(result string)                                 {}
