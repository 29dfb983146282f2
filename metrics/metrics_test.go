package metrics

import (
	"testing"

	"github.com/delaneyj/reactivity/reactive"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter)
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	require.True(t, ok, "observer %T does not implement prometheus.Metric", o)
	var m dto.Metric
	require.NoError(t, metric.Write(&m))
	require.NotNil(t, m.Histogram)
	return m.GetHistogram().GetSampleCount()
}

func TestCollectorRecordsEngineEvents(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	rs := reactive.CreateReactiveSystem(reactive.WithInstrumentation(c))

	state := reactive.ReactiveObject(rs, reactive.NewObject(map[string]any{"n": 1}))
	reactive.Effect(rs, func() error {
		state.Get("n")
		return nil
	}, reactive.Deferred())
	state.Set("n", 2)
	reactive.Readonly(rs, state).(*reactive.ObjectProxy).Set("n", 3)

	// the deferred re-run subscribes again after its cleanup
	assert.Equal(t, 2.0, counterValue(t, c.trackedTotal.WithLabelValues("record")))
	assert.Equal(t, 1.0, counterValue(t, c.triggersTotal.WithLabelValues("record", "SET")))
	assert.Equal(t, uint64(1), histogramCount(t, c.triggerFanout.WithLabelValues("record")))
	assert.Equal(t, 2.0, counterValue(t, c.effectRuns.WithLabelValues("ok")))
	assert.Equal(t, uint64(1), histogramCount(t, c.flushedJobs))
	assert.Equal(t, 1.0, counterValue(t, c.readonlyErrors.WithLabelValues("record")))
}

func TestCollectorCountsFailedRuns(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	rs := reactive.CreateReactiveSystem(
		reactive.WithInstrumentation(c),
		reactive.WithOnError(func(*reactive.EffectRunner, error) {}),
	)

	reactive.Effect(rs, func() error {
		return assert.AnError
	})

	assert.Equal(t, 1.0, counterValue(t, c.effectRuns.WithLabelValues("error")))
}

func TestCollectorOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"system": "main"}),
		WithBuckets([]float64{1, 10}),
	)
	c.Flushed(3)
	c.Tracked(reactive.KindMap)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]*dto.MetricFamily{}
	for _, f := range families {
		names[f.GetName()] = f
	}

	require.Contains(t, names, "app_ui_flushed_jobs")
	require.Contains(t, names, "app_ui_tracked_total")
	hist := names["app_ui_flushed_jobs"].GetMetric()[0].GetHistogram()
	assert.Len(t, hist.GetBucket(), 2)
	labels := map[string]string{}
	for _, l := range names["app_ui_tracked_total"].GetMetric()[0].GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, map[string]string{"kind": "map", "system": "main"}, labels)
}
