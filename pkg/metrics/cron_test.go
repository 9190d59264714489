package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	end := time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC)

	m.ObserveRun("pickup-release", 250*time.Millisecond, end, nil)
	m.ObserveRun("pickup-release", time.Second, end.Add(time.Hour), errors.New("boom"))
	m.CycleSkipped()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	success, err := fetchCounterValue(mfs, "cabana_cron_job_runs_total", "result", "success")
	require.NoError(t, err)
	assert.Equal(t, 1.0, success)
	failure, err := fetchCounterValue(mfs, "cabana_cron_job_runs_total", "result", "failure")
	require.NoError(t, err)
	assert.Equal(t, 1.0, failure)

	sum, err := fetchHistogramSum(mfs, "cabana_cron_job_duration_seconds", "job", "pickup-release")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, sum, 0.0001)

	last := findMetricFamily(mfs, "cabana_cron_job_last_success_timestamp_seconds")
	require.NotNil(t, last)
	assert.Equal(t, float64(end.Unix()), last.GetMetric()[0].GetGauge().GetValue(), "a failure does not move the gauge")

	skipped := findMetricFamily(mfs, "cabana_cron_cycles_skipped_total")
	require.NotNil(t, skipped)
	assert.Equal(t, 1.0, skipped.GetMetric()[0].GetCounter().GetValue())
}

func TestNilCronMetricsAreNoop(t *testing.T) {
	var m *CronJobMetrics
	assert.NotPanics(t, func() {
		m.ObserveRun("x", time.Second, time.Now(), nil)
		m.CycleSkipped()
		NewCronJobMetrics(nil).ObserveRun("x", time.Second, time.Now(), nil)
	})
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
