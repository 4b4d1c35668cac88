package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Service name for telemetry
	serviceName = "graphkit-compiler"

	// Metric names
	metricCompiles         = "plan.compiles.total"
	metricCompileDuration  = "plan.compile.duration"
	metricCompileSuccess   = "plan.compiles.success.total"
	metricCompileFailure   = "plan.compiles.failure.total"
	metricOperationsPruned = "plan.operations.pruned.total"
	metricOperationsKept   = "plan.operations.kept.total"
	metricCacheHits        = "plan.cache.hits.total"
	metricCacheMisses      = "plan.cache.misses.total"
	metricEvictions        = "plan.evictions.total"
)

// Provider manages OpenTelemetry setup and provides access to tracers and meters.
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider trace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	// Metrics instruments
	compiles         metric.Int64Counter
	compileDuration  metric.Float64Histogram
	compileSuccess   metric.Int64Counter
	compileFailure   metric.Int64Counter
	operationsPruned metric.Int64Counter
	operationsKept   metric.Int64Counter
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	evictions        metric.Int64Counter

	mu sync.RWMutex
}

// Config holds telemetry configuration
type Config struct {
	// ServiceName is the name of the service for telemetry
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment (e.g., "production", "staging", "development")
	Environment string

	// EnableTracing enables distributed tracing
	EnableTracing bool

	// EnableMetrics enables metrics collection
	EnableMetrics bool
}

// DefaultConfig returns default telemetry configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
		EnableMetrics:  true,
	}
}

// NewProvider creates a new telemetry provider with Prometheus metrics exporter.
// It initializes OpenTelemetry with the given configuration and returns a provider
// that can be used to create tracers and record metrics.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	provider := &Provider{}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Initialize metrics if enabled
	if config.EnableMetrics {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	// Initialize tracing if enabled
	if config.EnableTracing {
		provider.initTracing()
	}

	return provider, nil
}

// initMetrics initializes the metrics provider with Prometheus exporter
func (p *Provider) initMetrics(res *resource.Resource) error {
	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	// Create meter provider with the exporter
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	// Set as global meter provider
	otel.SetMeterProvider(p.meterProvider)

	// Create meter
	p.meter = p.meterProvider.Meter(serviceName)

	// Create metric instruments
	if err := p.createMetricInstruments(); err != nil {
		return fmt.Errorf("failed to create metric instruments: %w", err)
	}

	return nil
}

// initTracing initializes the tracing provider
func (p *Provider) initTracing() {
	// For now, use the global tracer provider
	// In production, this should be configured with appropriate exporters (OTLP, Jaeger, etc.)
	p.tracerProvider = otel.GetTracerProvider()
	p.tracer = p.tracerProvider.Tracer(serviceName)
}

// createMetricInstruments creates all metric instruments
func (p *Provider) createMetricInstruments() error {
	var err error

	p.compiles, err = p.meter.Int64Counter(
		metricCompiles,
		metric.WithDescription("Total number of plan compiles"),
	)
	if err != nil {
		return err
	}

	p.compileDuration, err = p.meter.Float64Histogram(
		metricCompileDuration,
		metric.WithDescription("Plan compile duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.compileSuccess, err = p.meter.Int64Counter(
		metricCompileSuccess,
		metric.WithDescription("Total number of successful plan compiles"),
	)
	if err != nil {
		return err
	}

	p.compileFailure, err = p.meter.Int64Counter(
		metricCompileFailure,
		metric.WithDescription("Total number of failed plan compiles"),
	)
	if err != nil {
		return err
	}

	p.operationsPruned, err = p.meter.Int64Counter(
		metricOperationsPruned,
		metric.WithDescription("Total number of operations dropped by the pruner"),
	)
	if err != nil {
		return err
	}

	p.operationsKept, err = p.meter.Int64Counter(
		metricOperationsKept,
		metric.WithDescription("Total number of operations retained in a compiled plan"),
	)
	if err != nil {
		return err
	}

	p.cacheHits, err = p.meter.Int64Counter(
		metricCacheHits,
		metric.WithDescription("Total number of plan cache hits"),
	)
	if err != nil {
		return err
	}

	p.cacheMisses, err = p.meter.Int64Counter(
		metricCacheMisses,
		metric.WithDescription("Total number of plan cache misses"),
	)
	if err != nil {
		return err
	}

	p.evictions, err = p.meter.Int64Counter(
		metricEvictions,
		metric.WithDescription("Total number of memory-eviction steps emitted"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Tracer returns the tracer for creating spans
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// Meter returns the meter for recording metrics
func (p *Provider) Meter() metric.Meter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meter
}

// RecordCompile records metrics for a single Compile call: how long it took,
// whether it succeeded, and how the pruner split the network's operations.
func (p *Provider) RecordCompile(ctx context.Context, networkID string, duration time.Duration, success bool, opsKept, opsPruned int) {
	if p.meter == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("network.id", networkID),
	}

	p.compiles.Add(ctx, 1, metric.WithAttributes(attrs...))
	p.compileDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if success {
		p.compileSuccess.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		p.compileFailure.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	p.operationsKept.Add(ctx, int64(opsKept), metric.WithAttributes(attrs...))
	p.operationsPruned.Add(ctx, int64(opsPruned), metric.WithAttributes(attrs...))
}

// RecordCacheLookup records a plan cache hit or miss.
func (p *Provider) RecordCacheLookup(ctx context.Context, hit bool) {
	if p.meter == nil {
		return
	}
	if hit {
		p.cacheHits.Add(ctx, 1)
	} else {
		p.cacheMisses.Add(ctx, 1)
	}
}

// RecordEvictions records how many eviction steps a compiled plan emitted.
func (p *Provider) RecordEvictions(ctx context.Context, planID string, count int) {
	if p.meter == nil || count == 0 {
		return
	}
	p.evictions.Add(ctx, int64(count), metric.WithAttributes(attribute.String("plan.id", planID)))
}

// Shutdown gracefully shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}

	return nil
}
