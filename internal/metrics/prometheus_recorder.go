package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "cosmodrome"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	fileRoutes    *prom.CounterVec
	pageResults   *prom.CounterVec
	copyResults   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the build metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		fileRoutes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "source_files_total",
			Help:      "Visited source files by route decision",
		}, []string{"route"}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Generated pages by output format and result",
		}, []string{"format", "result"}),
		copyResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "copied_files_total",
			Help:      "Verbatim file copies by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.fileRoutes, pr.pageResults, pr.copyResults)
	return pr
}

// Registry returns the registry the metrics were registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
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

func (p *PrometheusRecorder) IncFileRoute(route string) {
	if p == nil {
		return
	}
	p.fileRoutes.WithLabelValues(route).Inc()
}

func (p *PrometheusRecorder) IncPageResult(format string, result ResultLabel) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(format, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCopyResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.copyResults.WithLabelValues(string(result)).Inc()
}

// WriteTextfile dumps the current metrics in the node_exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
