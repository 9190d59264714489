package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWebhookMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWebhookMetrics(reg)

	metrics.Observe("mercadopago", OutcomeProcessed, 40*time.Millisecond)
	metrics.Observe("mercadopago", OutcomeDuplicate, 0)
	metrics.Observe("mercadopago", OutcomeDuplicate, 0)
	metrics.Observe("mercadopago", OutcomeFailed, time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "cabana_webhook_reconcile_total")
	if mf == nil {
		t.Fatalf("webhook counter not registered")
	}
	want := map[string]float64{OutcomeProcessed: 1, OutcomeDuplicate: 2, OutcomeFailed: 1}
	for outcome, expected := range want {
		var found bool
		for _, metric := range mf.GetMetric() {
			if matchesLabel(metric.GetLabel(), "outcome", outcome) {
				found = true
				if got := metric.GetCounter().GetValue(); got != expected {
					t.Fatalf("outcome %s: expected %f got %f", outcome, expected, got)
				}
			}
		}
		if !found {
			t.Fatalf("outcome %s not exported", outcome)
		}
	}

	if sum, err := fetchHistogramSum(mfs, "cabana_webhook_reconcile_duration_seconds", "provider", "mercadopago"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if sum < 1 {
		t.Fatalf("expected duration sum >= 1s, got %f", sum)
	}
}

func TestNotificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewNotificationMetrics(reg)
	metrics.Inc("email", "sent")
	metrics.Inc("email", "dropped")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cabana_notifications_total", "result", "dropped"); err != nil || got != 1 {
		t.Fatalf("expected one dropped notification, got %f err=%v", got, err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var webhook *WebhookMetrics
	webhook.Observe("mercadopago", OutcomeFailed, time.Second)
	NewWebhookMetrics(nil).Observe("", "", 0)

	var notifications *NotificationMetrics
	notifications.Inc("email", "sent")

	var cron *CronJobMetrics
	cron.ObserveRun("job", time.Second, time.Now(), nil)
	cron.CycleSkipped()
}
