// Package metrics provides build observability for cosmodrome.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default; PrometheusRecorder is swapped in when the preview server exposes
// /metrics or when a build is asked to write a textfile:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	b := site.NewBuilder(cfg).WithRecorder(rec)
//	report, err := b.Build(ctx)
//	_ = rec.WriteTextfile("/var/lib/node_exporter/cosmodrome.prom")
package metrics
