// Package observe provides an event-driven observer pattern for the graph
// compiler and planner, trimmed from a general execution-observer pattern
// down to the handful of diagnostics a compile pass actually produces:
// operations the pruner dropped, plan-cache outcomes, and eviction steps.
package observe

import (
	"context"
	"time"
)

// EventType identifies the kind of compiler diagnostic an Event carries.
type EventType string

const (
	// EventOperationDropped fires once per operation the Pruner removes
	// from the working DAG, whatever the reason (unsatisfied, predicate
	// exclusion, outside the output ancestor set).
	EventOperationDropped EventType = "operation_dropped"

	// EventCacheHit fires when Compile resolves a Request against an
	// existing Plan Cache entry instead of recompiling.
	EventCacheHit EventType = "cache_hit"

	// EventCacheMiss fires when a Request is not found in the cache and
	// a fresh compile is performed.
	EventCacheMiss EventType = "cache_miss"

	// EventEvicted fires once per eviction step the Step Sequencer emits.
	EventEvicted EventType = "evicted"

	// EventCompileStart and EventCompileEnd bracket a single Compile call.
	EventCompileStart EventType = "compile_start"
	EventCompileEnd   EventType = "compile_end"
)

// DropReason classifies why the Pruner removed an operation, carried on
// Event.Reason for EventOperationDropped events.
type DropReason string

const (
	ReasonUnsatisfied      DropReason = "unsatisfied"
	ReasonPredicateExclude DropReason = "predicate_excluded"
	ReasonOutsideAncestors DropReason = "outside_output_ancestors"
)

// Event carries a single compiler diagnostic.
type Event struct {
	Type      EventType
	Timestamp time.Time

	// NetworkID and PlanID correlate the event back to a Network and, once
	// compilation completes, an ExecutionPlan. PlanID is empty for events
	// that fire before an ExecutionPlan.ID has been stamped.
	NetworkID string
	PlanID    string

	// Operation names the operation an EventOperationDropped or
	// EventEvicted(-adjacent) event concerns; empty otherwise.
	Operation string

	// DataName names the data node an EventEvicted event concerns.
	DataName string

	// Reason explains an EventOperationDropped event.
	Reason DropReason

	// Duration is set on EventCompileEnd.
	Duration time.Duration

	// OpsKept and OpsPruned report how the Pruner split the network's
	// operations; set on EventCompileEnd.
	OpsKept   int
	OpsPruned int

	// Err is set when the event reports a failure (e.g. a predicate error
	// that caused an operation drop, or a failed compile).
	Err error
}

// Observer receives compiler diagnostic events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Manager fans a single event out to every registered Observer. Each
// observer runs in its own goroutine so a slow or panicking observer cannot
// stall or crash the compile path that is emitting events.
type Manager struct {
	observers []Observer
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds an observer. Nil observers are ignored.
func (m *Manager) Register(o Observer) {
	if o != nil {
		m.observers = append(m.observers, o)
	}
}

// HasObservers reports whether any observer is registered.
func (m *Manager) HasObservers() bool {
	return len(m.observers) > 0
}

// Count returns the number of registered observers.
func (m *Manager) Count() int {
	return len(m.observers)
}

// Notify sends event to every registered observer asynchronously, recovering
// from any observer panic so it cannot affect the compile path or other
// observers.
func (m *Manager) Notify(ctx context.Context, event Event) {
	for _, o := range m.observers {
		obs := o
		go func() {
			defer func() {
				_ = recover()
			}()
			obs.OnEvent(ctx, event)
		}()
	}
}
