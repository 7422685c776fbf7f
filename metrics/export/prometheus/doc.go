// Package prometheus exposes goShield engine counters through client_golang.
//
// [NewPrometheusExporter] registers a [Collector] in a private registry and serves it
// with promhttp. Counter names are goshield_*_total; the one histogram is
// goshield_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
