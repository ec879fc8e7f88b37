/*
Package metrics provides Prometheus metrics collection and exposition for
rotator-helper.

The metrics package defines and registers rotator-helper's metrics using
the Prometheus client library, giving observability into how many
secrets and user accounts were rotated, skipped, or failed on a given
run, and how long rotation took. Metrics are exposed via an HTTP
endpoint for scraping by Prometheus servers when the CLI is invoked
with --metrics-addr.

# Metrics Catalog

rotator_secrets_rotated_total{secret}:
  - Type: Counter
  - Description: Secrets successfully rotated, by secret name

rotator_secrets_skipped_total{secret}:
  - Type: Counter
  - Description: Secrets skipped because the rotation policy gate said not due yet

rotator_secrets_failed_total{secret}:
  - Type: Counter
  - Description: Secrets whose rotation failed

rotator_users_rotated_total:
  - Type: Counter
  - Description: Vault user accounts whose password was rotated

rotator_secret_rotation_duration_seconds:
  - Type: Histogram
  - Description: Time to rotate a single secret end to end

rotator_run_duration_seconds:
  - Type: Histogram
  - Description: Time to complete an entire rotate invocation
  - Buckets: 1, 5, 10, 30, 60, 120, 300, 600, 1800

# Usage

	recorder := metrics.NewRecorder()
	recorder.RecordSecretRotated("grafana-admin")

	timer := metrics.NewTimer()
	// ... rotate a secret ...
	timer.ObserveDuration(metrics.RotationDuration)

	http.Handle("/metrics", metrics.Handler())

# Design Patterns

Package Init Registration:
  - All metrics registered in init() via prometheus.MustRegister
  - MustRegister panics on duplicate registration

Recorder Indirection:
  - pkg/orchestrator holds a *Recorder, not the package vars directly,
    so a Rotator can be constructed without metrics wired in (nil-checked)
*/
package metrics
