package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "twbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	filesBundled     prom.Gauge
	artifactBytes    prom.Gauge
	watchEvents      *prom.CounterVec
	manifestWarnings prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		filesBundled: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "files_bundled",
			Help:      "Source files bundled by the last successful build",
		}),
		artifactBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of the last written artifact",
		}),
		watchEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Settled filesystem events that triggered a rebuild",
		}, []string{"kind"}),
		manifestWarnings: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_warnings_total",
			Help:      "Builds that fell back to default metadata because the manifest was unusable",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.filesBundled, pr.artifactBytes, pr.watchEvents, pr.manifestWarnings)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetFilesBundled(n int) {
	if p == nil {
		return
	}
	p.filesBundled.Set(float64(n))
}

func (p *PrometheusRecorder) SetArtifactBytes(n int) {
	if p == nil {
		return
	}
	p.artifactBytes.Set(float64(n))
}

func (p *PrometheusRecorder) IncWatchEvent(kind string) {
	if p == nil {
		return
	}
	p.watchEvents.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncManifestWarning() {
	if p == nil {
		return
	}
	p.manifestWarnings.Inc()
}
