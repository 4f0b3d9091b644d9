// Package metrics records per-widget stage timings and batch outcomes.
//
// Components take a Recorder and default to NoopRecorder, so metrics can be
// switched on by injecting a PrometheusRecorder without touching call sites.
package metrics

import "time"

// Recorder defines observability hooks for a deploy batch.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncWidgetOutcome(stage string) // stage: "deployed" or the failing stage name
	IncBatchOutcome(status string) // status: success|partial|failure
	ObserveBatchDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncWidgetOutcome(string)                    {}
func (NoopRecorder) IncBatchOutcome(string)                     {}
func (NoopRecorder) ObserveBatchDuration(time.Duration)         {}
