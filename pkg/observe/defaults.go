package observe

import (
	"context"
	"fmt"

	"github.com/dagkit/graphkit/pkg/logging"
)

// NoOpObserver ignores every event. Useful as an explicit default when no
// diagnostics are wanted.
type NoOpObserver struct{}

// OnEvent implements Observer.
func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// LoggingObserver renders events through a *logging.Logger, matching the
// field names the rest of the package already logs under (network_id,
// plan_id, operation_name).
type LoggingObserver struct {
	logger *logging.Logger
}

// NewLoggingObserver creates an Observer backed by logger.
func NewLoggingObserver(logger *logging.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnEvent implements Observer.
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	l := o.logger
	if event.NetworkID != "" {
		l = l.WithNetworkID(event.NetworkID)
	}
	if event.PlanID != "" {
		l = l.WithPlanID(event.PlanID)
	}
	if event.Operation != "" {
		l = l.WithOperation(event.Operation)
	}

	msg := string(event.Type)

	switch event.Type {
	case EventOperationDropped:
		fields := map[string]interface{}{"reason": string(event.Reason)}
		if event.Err != nil {
			l.WithError(event.Err).WithFields(fields).Warn(msg)
		} else {
			l.WithFields(fields).Debug(msg)
		}
	case EventEvicted:
		l.WithField("data_name", event.DataName).Debug(msg)
	case EventCompileEnd:
		if event.Err != nil {
			l.WithError(event.Err).Error(msg)
		} else {
			l.WithField("duration_ms", event.Duration.Milliseconds()).Info(msg)
		}
	case EventCacheHit, EventCacheMiss, EventCompileStart:
		l.Debug(msg)
	default:
		l.Debug(fmt.Sprintf("unrecognized compiler event: %s", msg))
	}
}
