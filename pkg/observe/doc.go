// Package observe provides an event-driven observer pattern for monitoring
// graph compilation.
//
// # Overview
//
// Compiling a Network into an ExecutionPlan makes several decisions worth
// surfacing to a caller without coupling the compiler to any particular
// logging or metrics backend: which operations the Pruner dropped and why,
// whether a Request hit the Plan Cache, and which eviction steps the Step
// Sequencer emitted. observe carries those as Events to any number of
// registered Observers.
//
// # Basic Usage
//
//	mgr := observe.NewManager()
//	mgr.Register(observe.NewLoggingObserver(logger))
//
//	mgr.Notify(ctx, observe.Event{
//	    Type:      observe.EventCacheMiss,
//	    NetworkID: networkID,
//	})
//
// # Observers
//
//   - NoOpObserver: discards every event
//   - LoggingObserver: renders events through a *logging.Logger
//
// # Thread Safety
//
// Manager.Notify dispatches to each observer in its own goroutine and
// recovers any panic, so a slow or failing observer cannot block or crash
// the compile path emitting the event.
package observe
