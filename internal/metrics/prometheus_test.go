package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("build", time.Second)
		r.IncWidgetOutcome("deployed")
		r.IncBatchOutcome("success")
		r.ObserveBatchDuration(time.Minute)
	})
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("build", 1500*time.Millisecond)
	pr.ObserveStageDuration("copy", 20*time.Millisecond)
	pr.IncWidgetOutcome("deployed")
	pr.IncWidgetOutcome("deployed")
	pr.IncWidgetOutcome("build_failed")
	pr.IncBatchOutcome("partial")
	pr.ObserveBatchDuration(3 * time.Second)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["mwd_stage_duration_seconds"])
	assert.True(t, names["mwd_batch_duration_seconds"])
	assert.True(t, names["mwd_widget_outcomes_total"])
	assert.True(t, names["mwd_batch_outcomes_total"])

	for _, mf := range mfs {
		if mf.GetName() != "mwd_widget_outcomes_total" {
			continue
		}
		counts := make(map[string]float64)
		for _, m := range mf.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
		assert.Equal(t, 2.0, counts["deployed"])
		assert.Equal(t, 1.0, counts["build_failed"])
	}
}

func TestPrometheusRecorder_NilRegistry(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	require.NotNil(t, pr.Registry())

	pr.IncBatchOutcome("success")
	mfs, err := pr.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveStageDuration("build", time.Second)
		pr.IncWidgetOutcome("deployed")
		pr.IncBatchOutcome("success")
		pr.ObserveBatchDuration(time.Second)
	})
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBatchOutcome("success")
	path := filepath.Join(t.TempDir(), "mwd.prom")

	require.NoError(t, pr.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `mwd_batch_outcomes_total{status="success"} 1`)
}

func TestPrometheusRecorder_WriteTextfileError(t *testing.T) {
	pr := NewPrometheusRecorder(nil)

	err := pr.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "mwd.prom"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write metrics file")
}
