package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook reconciliation outcomes.
const (
	OutcomeProcessed        = "processed"
	OutcomeDuplicate        = "duplicate"
	OutcomeIgnored          = "ignored"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeFailed           = "failed"
)

// WebhookMetrics counts payment notifications by reconciliation outcome.
// Failed reconciliations are acknowledged to the provider anyway, so this
// counter is the only signal that a payment needs manual attention.
type WebhookMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_reconcile_total",
		Help:      "Payment webhook notifications by reconciliation outcome.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "webhook_reconcile_duration_seconds",
		Help:      "Time spent reconciling a payment notification.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(outcomes, duration)
	return &WebhookMetrics{outcomes: outcomes, duration: duration}
}

// Observe records one reconciliation attempt.
func (w *WebhookMetrics) Observe(provider, outcome string, elapsed time.Duration) {
	if w == nil || w.outcomes == nil {
		return
	}
	w.outcomes.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
	if elapsed > 0 {
		w.duration.WithLabelValues(normalizeLabel(provider)).Observe(elapsed.Seconds())
	}
}
