// Package telemetry wires up the OpenTelemetry metrics pipeline with a
// pluggable exporter: a Prometheus scrape endpoint, periodic stdout dumps
// for local debugging, or none.
package telemetry
