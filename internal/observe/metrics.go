// Package observe provides OpenTelemetry metrics for the speech-analysis
// pipeline, with a Prometheus exporter bridge so metrics can be scraped via
// the standard /metrics endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all pipeline metrics.
const meterName = "github.com/dacasine/Dictate-windows-sub000"

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per analysis stage ---

	// ProsodyDuration tracks acoustic feature extraction latency. This is
	// the dominant cost of the pipeline (the pitch search is quadratic per
	// window).
	ProsodyDuration metric.Float64Histogram

	// HesitationDuration tracks hesitation analysis latency.
	HesitationDuration metric.Float64Histogram

	// EmotionDuration tracks emotion classification latency.
	EmotionDuration metric.Float64Histogram

	// FormatDuration tracks transcript formatting latency.
	FormatDuration metric.Float64Histogram

	// --- Counters ---

	// AnalysisRuns counts completed pipeline runs. Use with attribute:
	//   attribute.String("status", "ok"|"degraded"|"error")
	AnalysisRuns metric.Int64Counter

	// WindowsProcessed counts prosody windows produced.
	WindowsProcessed metric.Int64Counter

	// PausesDetected counts pause events produced.
	PausesDetected metric.Int64Counter

	// AnnotationsEmitted counts hesitation annotations. Use with attribute:
	//   attribute.String("type", ...)
	AnnotationsEmitted metric.Int64Counter

	// EmotionSegments counts classified segments. Use with attribute:
	//   attribute.String("tag", ...)
	EmotionSegments metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// in-process analysis of utterances up to a few minutes long.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ProsodyDuration, err = m.Float64Histogram("dictate.prosody.duration",
		metric.WithDescription("Latency of acoustic prosody extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HesitationDuration, err = m.Float64Histogram("dictate.hesitation.duration",
		metric.WithDescription("Latency of hesitation analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EmotionDuration, err = m.Float64Histogram("dictate.emotion.duration",
		metric.WithDescription("Latency of emotion classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FormatDuration, err = m.Float64Histogram("dictate.format.duration",
		metric.WithDescription("Latency of transcript formatting."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.AnalysisRuns, err = m.Int64Counter("dictate.analysis.runs",
		metric.WithDescription("Completed pipeline runs by status."),
	); err != nil {
		return nil, err
	}
	if met.WindowsProcessed, err = m.Int64Counter("dictate.prosody.windows",
		metric.WithDescription("Prosody windows produced."),
	); err != nil {
		return nil, err
	}
	if met.PausesDetected, err = m.Int64Counter("dictate.prosody.pauses",
		metric.WithDescription("Pause events detected."),
	); err != nil {
		return nil, err
	}
	if met.AnnotationsEmitted, err = m.Int64Counter("dictate.hesitation.annotations",
		metric.WithDescription("Hesitation annotations by type."),
	); err != nil {
		return nil, err
	}
	if met.EmotionSegments, err = m.Int64Counter("dictate.emotion.segments",
		metric.WithDescription("Classified emotion segments by tag."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: default metrics init: " + err.Error())
		}
	})
	return defaultMetrics
}
