// Package metrics records per-run stage timings and outcomes.
//
// Components receive a Recorder through injection and default to
// NoopRecorder. When a metrics textfile is configured the CLI swaps in a
// PrometheusRecorder backed by a private registry and writes the registry out
// with WriteTextfile once the run ends, in the format the node_exporter
// textfile collector reads.
package metrics
