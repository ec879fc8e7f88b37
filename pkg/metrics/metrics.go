package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SecretsRotatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotator_secrets_rotated_total",
			Help: "Total number of secrets successfully rotated, by secret name",
		},
		[]string{"secret"},
	)

	SecretsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotator_secrets_skipped_total",
			Help: "Total number of secrets skipped by rotation policy, by secret name",
		},
		[]string{"secret"},
	)

	SecretsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotator_secrets_failed_total",
			Help: "Total number of secrets that failed rotation, by secret name",
		},
		[]string{"secret"},
	)

	UsersRotatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotator_users_rotated_total",
			Help: "Total number of vault users whose password was rotated",
		},
	)

	RotationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rotator_secret_rotation_duration_seconds",
			Help:    "Time taken to rotate a single secret, end to end",
			Buckets: prometheus.DefBuckets,
		},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rotator_run_duration_seconds",
			Help:    "Time taken for a full rotation run across all secrets and users",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)
)

func init() {
	prometheus.MustRegister(SecretsRotatedTotal)
	prometheus.MustRegister(SecretsSkippedTotal)
	prometheus.MustRegister(SecretsFailedTotal)
	prometheus.MustRegister(UsersRotatedTotal)
	prometheus.MustRegister(RotationDuration)
	prometheus.MustRegister(RunDuration)
}

// Handler returns the Prometheus HTTP handler, served when --metrics-addr
// is set.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder is a thin wrapper so orchestrator code doesn't reach into
// package-level metric vars directly; it exists mainly to make the
// metrics dependency explicit and mockable in tests.
type Recorder struct{}

// NewRecorder returns a Recorder backed by the package's registered
// metrics.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordSecretRotated(name string) {
	SecretsRotatedTotal.WithLabelValues(name).Inc()
}

func (r *Recorder) RecordSecretSkipped(name string) {
	SecretsSkippedTotal.WithLabelValues(name).Inc()
}

func (r *Recorder) RecordSecretFailed(name string) {
	SecretsFailedTotal.WithLabelValues(name).Inc()
}

func (r *Recorder) RecordUserRotated() {
	UsersRotatedTotal.Inc()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
