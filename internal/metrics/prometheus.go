package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"moevius/internal/lib/logger/sl"
)

// PrometheusSink implements Sink on top of client_golang collectors.
// Registration failures are logged and the collector keeps working
// unregistered.
type PrometheusSink struct {
	log *slog.Logger

	ticksTotal        prometheus.Counter
	tickErrorsTotal   prometheus.Counter
	tickDuration      prometheus.Histogram
	eventsFiredTotal  *prometheus.CounterVec
	notifyFailedTotal *prometheus.CounterVec

	confirmationsTotal *prometheus.CounterVec
	joinsTotal         *prometheus.CounterVec
}

var _ Sink = (*PrometheusSink)(nil)

func NewPrometheusSink(reg prometheus.Registerer, log *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{log: log}
	s.initSchedulerMetrics(reg)
	s.initWorkflowMetrics(reg)
	return s
}

func (s *PrometheusSink) initSchedulerMetrics(reg prometheus.Registerer) {
	s.ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moevius_scheduler_ticks_total",
		Help: "Scheduler ticks that entered a new minute bucket.",
	})
	s.tickErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moevius_scheduler_tick_errors_total",
		Help: "Scheduler ticks that failed to load upcoming events.",
	})
	s.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moevius_scheduler_tick_duration_seconds",
		Help:    "Duration of a scheduler tick in seconds.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	s.eventsFiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moevius_scheduler_events_fired_total",
		Help: "Events transitioned to started by the scheduler.",
	}, []string{"type"})
	s.notifyFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moevius_notifications_failed_total",
		Help: "Notifications that could not be delivered.",
	}, []string{"channel"})

	s.register(reg, s.ticksTotal, "moevius_scheduler_ticks_total")
	s.register(reg, s.tickErrorsTotal, "moevius_scheduler_tick_errors_total")
	s.register(reg, s.tickDuration, "moevius_scheduler_tick_duration_seconds")
	s.register(reg, s.eventsFiredTotal, "moevius_scheduler_events_fired_total")
	s.register(reg, s.notifyFailedTotal, "moevius_notifications_failed_total")
}

func (s *PrometheusSink) initWorkflowMetrics(reg prometheus.Registerer) {
	s.confirmationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moevius_confirmations_total",
		Help: "Draft prompts by final state.",
	}, []string{"state"})
	s.joinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moevius_joins_total",
		Help: "Join requests by result.",
	}, []string{"result"})

	s.register(reg, s.confirmationsTotal, "moevius_confirmations_total")
	s.register(reg, s.joinsTotal, "moevius_joins_total")
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		s.log.Warn("metrics: failed to register collector", slog.String("name", name), sl.Err(err))
	}
}

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) TickCompleted(duration time.Duration, fired int, err error) {
	s.tickDuration.Observe(duration.Seconds())
	if err != nil {
		s.tickErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) EventFired(eventType string) {
	s.eventsFiredTotal.WithLabelValues(eventType).Inc()
}

func (s *PrometheusSink) NotificationFailed(channelKey string) {
	s.notifyFailedTotal.WithLabelValues(channelKey).Inc()
}

func (s *PrometheusSink) ConfirmationResolved(state string) {
	s.confirmationsTotal.WithLabelValues(state).Inc()
}

func (s *PrometheusSink) MemberJoined(result string) {
	s.joinsTotal.WithLabelValues(result).Inc()
}
