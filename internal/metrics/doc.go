// Package metrics provides build and watch metrics for twbuild.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless the dev server is enabled:
//
//	builder := assemble.NewBuilder(opts) // NoopRecorder
//	builder.Recorder = metrics.NewPrometheusRecorder(reg)
//
// The Prometheus registry is exposed over HTTP by the dev server (see HTTPHandler).
package metrics
