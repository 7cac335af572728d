package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.SyncOutcome(OutcomeDelivered)
	c.SyncOutcome(OutcomeDelivered)
	c.SyncOutcome(OutcomeStale)
	c.FetchError("format")
	c.FlapCheck(false)
	c.AlertFired("30min")
	c.AudioCuePlayed()
	c.SnapshotSize(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.syncs.WithLabelValues(OutcomeDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.syncs.WithLabelValues(OutcomeStale)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetchErrors.WithLabelValues("format")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flapChecks.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.alerts.WithLabelValues("30min")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.audioCues))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.meetings))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.SyncOutcome(OutcomeDelivered)
		c.FetchError("status")
		c.FlapCheck(true)
		c.AlertFired("5min")
		c.AudioCuePlayed()
		c.SnapshotSize(1)
	})
	assert.Nil(t, c.Registry())
}
