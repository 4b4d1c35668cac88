// Package telemetry provides OpenTelemetry integration for distributed tracing and metrics.
// It enables comprehensive observability for plan compilation with support for:
//   - Distributed tracing spans around each Compile call
//   - Prometheus metrics for compile duration, cache hit/miss ratio, pruned operations and evictions
//   - Custom metrics exporters and collectors
//   - Integration with industry-standard observability platforms
package telemetry
