package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dagkit/graphkit/pkg/observe"
)

// TelemetryObserver implements observe.Observer and records OpenTelemetry
// traces and metrics for compiler diagnostic events.
type TelemetryObserver struct {
	provider *Provider

	mu          sync.Mutex
	compileSpan trace.Span
	compileStart time.Time
}

// NewTelemetryObserver creates a new telemetry observer.
func NewTelemetryObserver(provider *Provider) *TelemetryObserver {
	return &TelemetryObserver{provider: provider}
}

// OnEvent implements observe.Observer.
func (o *TelemetryObserver) OnEvent(ctx context.Context, event observe.Event) {
	switch event.Type {
	case observe.EventCompileStart:
		o.handleCompileStart(ctx, event)
	case observe.EventCompileEnd:
		o.handleCompileEnd(ctx, event)
	case observe.EventCacheHit:
		o.provider.RecordCacheLookup(ctx, true)
	case observe.EventCacheMiss:
		o.provider.RecordCacheLookup(ctx, false)
	case observe.EventEvicted:
		o.provider.RecordEvictions(ctx, event.PlanID, 1)
	}
}

func (o *TelemetryObserver) handleCompileStart(ctx context.Context, event observe.Event) {
	_, span := o.provider.Tracer().Start(ctx, "plan.compile",
		trace.WithAttributes(
			attribute.String("network.id", event.NetworkID),
		),
	)

	o.mu.Lock()
	o.compileSpan = span
	o.compileStart = event.Timestamp
	o.mu.Unlock()
}

func (o *TelemetryObserver) handleCompileEnd(ctx context.Context, event observe.Event) {
	o.mu.Lock()
	span := o.compileSpan
	start := o.compileStart
	o.compileSpan = nil
	o.mu.Unlock()

	duration := event.Duration
	if duration == 0 && !start.IsZero() {
		duration = time.Since(start)
	}

	o.provider.RecordCompile(ctx, event.NetworkID, duration, event.Err == nil, event.OpsKept, event.OpsPruned)

	if span == nil {
		return
	}
	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "compile succeeded")
	}
	span.End()
}
