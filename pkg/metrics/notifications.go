package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts outbound customer notifications.
type NotificationMetrics struct {
	results *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification counters on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Outbound notifications by channel and result.",
	}, []string{"channel", "result"})
	reg.MustRegister(results)
	return &NotificationMetrics{results: results}
}

// Inc records one notification result such as sent, failed or dropped.
func (n *NotificationMetrics) Inc(channel, result string) {
	if n == nil || n.results == nil {
		return
	}
	n.results.WithLabelValues(normalizeLabel(channel), normalizeLabel(result)).Inc()
}
