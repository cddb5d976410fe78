package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pcforge"

// BuilderMetrics records outcomes of build recommendations.
type BuilderMetrics struct {
	recommendations *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewBuilderMetrics registers the build advisor metrics on reg. A nil
// registerer yields a no-op recorder.
func NewBuilderMetrics(reg prometheus.Registerer) *BuilderMetrics {
	if reg == nil {
		return &BuilderMetrics{}
	}
	recommendations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "build_recommendations_total",
		Help:      "Build recommendations served, by source.",
	}, []string{"source"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "build_fallbacks_total",
		Help:      "Fallback builds served instead of a recommender result, by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommender_duration_seconds",
		Help:      "Latency of calls to the external recommender.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"outcome"})
	reg.MustRegister(recommendations, fallbacks, duration)
	return &BuilderMetrics{
		recommendations: recommendations,
		fallbacks:       fallbacks,
		duration:        duration,
	}
}

// IncRecommendation counts a served build.
func (m *BuilderMetrics) IncRecommendation(source string) {
	if m == nil || m.recommendations == nil {
		return
	}
	m.recommendations.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFallback counts a fallback substitution.
func (m *BuilderMetrics) IncFallback(reason string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveRecommender records how long the recommender call took.
func (m *BuilderMetrics) ObserveRecommender(outcome string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
