package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for vote sync runs.
type Metrics struct {
	// Rolls processed by final status: synced, cached, not_published,
	// download_failed, parse_failed, persist_failed
	Rolls *prometheus.CounterVec

	// Unresolved references by kind: legislator, bill, amendment, nomination
	Missing *prometheus.CounterVec

	// Per roll fetch+parse+upsert latency
	RollLatency prometheus.Histogram

	// Whole run latency by mode
	RunDuration *prometheus.HistogramVec

	// Runs by summary level
	Runs *prometheus.CounterVec

	LastSuccess prometheus.Gauge
}

// New registers all vote sync metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Rolls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_rolls_total",
			Help: "Roll call votes processed by status",
		}, []string{"status"}),

		Missing: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_missing_references_total",
			Help: "References that could not be resolved by kind",
		}, []string{"kind"}),

		RollLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_roll_duration_seconds",
			Help:    "Duration of syncing a single roll call vote",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rollcall_run_duration_seconds",
			Help:    "Duration of a full sync run by mode",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"mode"}),

		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_runs_total",
			Help: "Completed sync runs by summary level",
		}, []string{"level"}),

		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "rollcall_last_run_timestamp_seconds",
			Help: "Unix time of the last run that persisted without errors",
		}),
	}
}

// IncRoll records one processed roll.
func (m *Metrics) IncRoll(status string) {
	if m != nil {
		m.Rolls.WithLabelValues(status).Inc()
	}
}

// AddMissing records n unresolved references of kind.
func (m *Metrics) AddMissing(kind string, n int) {
	if m != nil && n > 0 {
		m.Missing.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveRoll records the latency of one roll.
func (m *Metrics) ObserveRoll(d time.Duration) {
	if m != nil {
		m.RollLatency.Observe(d.Seconds())
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(mode, level string, d time.Duration, ok bool, at time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.WithLabelValues(mode).Observe(d.Seconds())
	m.Runs.WithLabelValues(level).Inc()
	if ok {
		m.LastSuccess.Set(float64(at.Unix()))
	}
}
