package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestBuilderMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBuilderMetrics(reg)
	m.IncRecommendation("ai")
	m.IncRecommendation("fallback")
	m.IncFallback("rate_limited")
	m.ObserveRecommender("error", 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pcforge_build_recommendations_total", "source", "ai"); err != nil || got != 1 {
		t.Fatalf("expected ai=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pcforge_build_fallbacks_total", "reason", "rate_limited"); err != nil || got != 1 {
		t.Fatalf("expected rate_limited=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "pcforge_recommender_duration_seconds", "outcome", "error"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f (%v)", got, err)
	}
}

func TestCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.ObserveOrder(decimal.RequireFromString("741.96"))
	m.IncEvent("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "pcforge_checkout_orders_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one order counted")
	}
	if got, err := fetchCounterValue(mfs, "pcforge_checkout_order_events_total", "result", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty label normalized to unknown, got %f (%v)", got, err)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	var nilMetrics *BuilderMetrics
	nilMetrics.IncFallback("x")
	NewBuilderMetrics(nil).IncRecommendation("ai")
	NewCheckoutMetrics(nil).ObserveOrder(decimal.NewFromInt(1))
	var nilCheckout *CheckoutMetrics
	nilCheckout.IncEvent("published")
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
