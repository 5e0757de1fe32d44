package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncRoll("synced")
	m.IncRoll("synced")
	m.IncRoll("not_published")
	m.AddMissing("bill", 2)
	m.AddMissing("legislator", 0)
	m.ObserveRoll(50 * time.Millisecond)
	m.ObserveRun("incremental", "success", time.Second, true, time.Unix(1700000000, 0))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rolls.WithLabelValues("synced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rolls.WithLabelValues("not_published")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Missing.WithLabelValues("bill")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccess))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Missing))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRoll("synced")
		m.AddMissing("bill", 1)
		m.ObserveRoll(time.Second)
		m.ObserveRun("single", "error", time.Second, false, time.Now())
	})
}
