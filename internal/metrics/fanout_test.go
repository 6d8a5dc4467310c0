package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/lib/logger/sl"
)

func TestFanout_ForwardsToEverySink(t *testing.T) {
	regA, regB := prometheus.NewRegistry(), prometheus.NewRegistry()
	f := Fanout{
		NewPrometheusSink(regA, sl.Discard()),
		NewNoopSink(),
		NewPrometheusSink(regB, sl.Discard()),
	}

	f.TickStarted()
	f.TickCompleted(time.Millisecond, 1, nil)
	f.EventFired("game")
	f.NotificationFailed("stream")
	f.ConfirmationResolved("announced")
	f.MemberJoined("joined")

	for _, reg := range []*prometheus.Registry{regA, regB} {
		fired := findMetric(t, reg, "moevius_scheduler_events_fired_total", map[string]string{"type": "game"})
		require.NotNil(t, fired)
		assert.Equal(t, 1.0, fired.GetCounter().GetValue())

		joins := findMetric(t, reg, "moevius_joins_total", map[string]string{"result": "joined"})
		require.NotNil(t, joins)
		assert.Equal(t, 1.0, joins.GetCounter().GetValue())
	}
}

func TestFanout_Empty(t *testing.T) {
	assert.NotPanics(t, func() {
		Fanout(nil).EventFired("stream")
	})
}
