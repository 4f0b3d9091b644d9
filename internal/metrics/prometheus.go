package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	batchDuration prom.Histogram
	widgetOutcome *prom.CounterVec
	batchOutcome  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mwd",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual widget deploy stages",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mwd",
			Name:      "batch_duration_seconds",
			Help:      "Total duration of a deploy batch",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		widgetOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mwd",
			Name:      "widget_outcomes_total",
			Help:      "Widget results by final stage",
		}, []string{"stage"}),
		batchOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mwd",
			Name:      "batch_outcomes_total",
			Help:      "Batch results by overall status",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.stageDuration, pr.batchDuration, pr.widgetOutcome, pr.batchOutcome)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncWidgetOutcome(stage string) {
	if p == nil || p.widgetOutcome == nil {
		return
	}
	p.widgetOutcome.WithLabelValues(stage).Inc()
}

func (p *PrometheusRecorder) IncBatchOutcome(status string) {
	if p == nil || p.batchOutcome == nil {
		return
	}
	p.batchOutcome.WithLabelValues(status).Inc()
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for the node exporter textfile collector. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
