package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reminder fires, by kind: daily, snooze
	RemindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpal_reminders_fired_total",
			Help: "Total number of reminder prompts fired",
		},
		[]string{"kind"},
	)

	// User decisions on prompts: mark_done, snooze, skip
	ReminderDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpal_reminder_decisions_total",
			Help: "Total number of reminder decisions applied",
		},
		[]string{"decision"},
	)

	ArmedReminders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habitpal_armed_reminders",
			Help: "Number of habits with an armed daily reminder",
		},
	)

	// Full-file rewrites, by file and status: success, failed
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpal_store_writes_total",
			Help: "Total number of flat-file rewrites",
		},
		[]string{"file", "status"},
	)

	StoreSkippedLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habitpal_store_skipped_lines_total",
			Help: "Total number of unparseable habit lines skipped on load",
		},
	)

	// 0 closed, 1 open, 2 half-open
	BrokerCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habitpal_broker_circuit_state",
			Help: "State of the circuit breaker in front of the message broker",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitpal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func IncrementReminderFired(kind string) {
	RemindersFired.WithLabelValues(kind).Inc()
}

func IncrementReminderDecision(decision string) {
	ReminderDecisions.WithLabelValues(decision).Inc()
}

func SetArmedReminders(n int) {
	ArmedReminders.Set(float64(n))
}

func RecordStoreWrite(file string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	StoreWrites.WithLabelValues(file, status).Inc()
}

func IncrementSkippedLines() {
	StoreSkippedLines.Inc()
}

func SetBrokerCircuitState(state int) {
	BrokerCircuitState.Set(float64(state))
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
