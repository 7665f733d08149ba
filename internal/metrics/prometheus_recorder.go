package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	renderDuration prom.Histogram
	renderOutcome  *prom.CounterVec
	deliveries     *prom.CounterVec
	emailResults   *prom.CounterVec
	storeWrites    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "rendergate",
			Name:      "render_duration_seconds",
			Help:      "End-to-end duration of render requests",
			Buckets:   prom.DefBuckets,
		})
		pr.renderOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rendergate",
			Name:      "render_outcomes_total",
			Help:      "Render outcomes by final status",
		}, []string{"outcome"})
		pr.deliveries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rendergate",
			Name:      "deliveries_total",
			Help:      "Primary deliveries by channel",
		}, []string{"mode"})
		pr.emailResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rendergate",
			Name:      "email_results_total",
			Help:      "Email side-channel results",
		}, []string{"result"})
		pr.storeWrites = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rendergate",
			Name:      "store_writes_total",
			Help:      "Artifact store writes by dedup status",
		}, []string{"dedup"})
		reg.MustRegister(pr.renderDuration, pr.renderOutcome, pr.deliveries, pr.emailResults, pr.storeWrites)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(outcome OutcomeLabel) {
	if p == nil || p.renderOutcome == nil {
		return
	}
	p.renderOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncDelivery(mode DeliveryLabel) {
	if p == nil || p.deliveries == nil {
		return
	}
	p.deliveries.WithLabelValues(string(mode)).Inc()
}

func (p *PrometheusRecorder) IncEmailResult(success bool) {
	if p == nil || p.emailResults == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	p.emailResults.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncStoreWrite(deduplicated bool) {
	if p == nil || p.storeWrites == nil {
		return
	}
	dedup := "new"
	if deduplicated {
		dedup = "existing"
	}
	p.storeWrites.WithLabelValues(dedup).Inc()
}
