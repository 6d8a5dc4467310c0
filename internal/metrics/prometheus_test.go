package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/lib/logger/sl"
)

func newTestSink(t *testing.T) (*PrometheusSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusSink(reg, sl.Discard()), reg
}

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestPrometheusSink_TickCompleted(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.TickStarted()
	sink.TickCompleted(20*time.Millisecond, 1, nil)
	sink.TickStarted()
	sink.TickCompleted(10*time.Millisecond, 0, errors.New("db down"))

	ticks := findMetric(t, reg, "moevius_scheduler_ticks_total", nil)
	require.NotNil(t, ticks)
	assert.Equal(t, 2.0, ticks.GetCounter().GetValue())

	tickErrors := findMetric(t, reg, "moevius_scheduler_tick_errors_total", nil)
	require.NotNil(t, tickErrors)
	assert.Equal(t, 1.0, tickErrors.GetCounter().GetValue())

	duration := findMetric(t, reg, "moevius_scheduler_tick_duration_seconds", nil)
	require.NotNil(t, duration)
	assert.Equal(t, uint64(2), duration.GetHistogram().GetSampleCount())
}

func TestPrometheusSink_LabelledCounters(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.EventFired("stream")
	sink.EventFired("stream")
	sink.EventFired("game")
	sink.NotificationFailed("game")
	sink.ConfirmationResolved("timed_out")
	sink.MemberJoined("already_joined")

	stream := findMetric(t, reg, "moevius_scheduler_events_fired_total", map[string]string{"type": "stream"})
	require.NotNil(t, stream)
	assert.Equal(t, 2.0, stream.GetCounter().GetValue())

	game := findMetric(t, reg, "moevius_scheduler_events_fired_total", map[string]string{"type": "game"})
	require.NotNil(t, game)
	assert.Equal(t, 1.0, game.GetCounter().GetValue())

	failed := findMetric(t, reg, "moevius_notifications_failed_total", map[string]string{"channel": "game"})
	require.NotNil(t, failed)
	assert.Equal(t, 1.0, failed.GetCounter().GetValue())

	timedOut := findMetric(t, reg, "moevius_confirmations_total", map[string]string{"state": "timed_out"})
	require.NotNil(t, timedOut)
	assert.Equal(t, 1.0, timedOut.GetCounter().GetValue())

	joins := findMetric(t, reg, "moevius_joins_total", map[string]string{"result": "already_joined"})
	require.NotNil(t, joins)
	assert.Equal(t, 1.0, joins.GetCounter().GetValue())
}

func TestPrometheusSink_DoubleRegistrationDoesNotPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusSink(reg, sl.Discard())

	assert.NotPanics(t, func() {
		second := NewPrometheusSink(reg, sl.Discard())
		second.TickStarted()
		second.EventFired("stream")
	})
}
