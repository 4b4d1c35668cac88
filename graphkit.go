// Package graphkit is a small facade tying the Network builder, the plan
// compiler and the plan cache together into the single entry point most
// callers need: register operations, then Compile a Request into an
// ExecutionPlan, transparently reusing a cached plan when the Request
// repeats.
//
// Callers who need finer control — compiling without the cache, or
// managing their own plancache.Cache — should use pkg/graph, pkg/plan and
// pkg/plancache directly; this package only wraps their common path.
package graphkit

import (
	"context"
	"time"

	"github.com/dagkit/graphkit/pkg/graph"
	"github.com/dagkit/graphkit/pkg/observe"
	"github.com/dagkit/graphkit/pkg/op"
	"github.com/dagkit/graphkit/pkg/plan"
	"github.com/dagkit/graphkit/pkg/plancache"
)

// Network wraps a graph.Network and a plancache.Cache, and notifies a
// registered observe.Manager around each Compile call.
type Network struct {
	id       string
	network  *graph.Network
	cache    *plancache.Cache
	observer *observe.Manager
}

// New creates an empty Network identified by id (used only to correlate
// observe.Events and logs; it plays no role in plan equality or caching).
func New(id string) *Network {
	return &Network{
		id:       id,
		network:  graph.New(),
		cache:    plancache.New(),
		observer: observe.NewManager(),
	}
}

// Observe registers o to receive diagnostic events for every subsequent
// Compile call on this Network.
func (n *Network) Observe(o observe.Observer) {
	n.observer.Register(o)
}

// AddOperation registers a single operation into the network. A
// compose.Pipeline is added by registering each of its Operations.
func (n *Network) AddOperation(o op.Operation) error {
	return n.network.AppendOperation(o)
}

// CacheStats returns the plan cache's hit/miss counters.
func (n *Network) CacheStats() (hits, misses uint64) {
	return n.cache.Stats()
}

// Compile resolves req against the plan cache, compiling a fresh
// ExecutionPlan on a miss. Diagnostic events (cache hit/miss, compile
// start/end, operations pruned, evictions) are sent to every registered
// observer. Every pruned operation is reported with
// observe.ReasonUnsatisfied; predicate exclusion and output restriction
// are not told apart.
func (n *Network) Compile(ctx context.Context, req plan.Request) (*plan.ExecutionPlan, error) {
	start := time.Now()
	n.observer.Notify(ctx, observe.Event{
		Type:      observe.EventCompileStart,
		NetworkID: n.id,
		Timestamp: start,
	})

	key := plancache.NewKey(req)
	if cached, ok := n.cache.Get(key); ok {
		n.observer.Notify(ctx, observe.Event{Type: observe.EventCacheHit, NetworkID: n.id, PlanID: cached.ID})
		n.observer.Notify(ctx, observe.Event{
			Type:      observe.EventCompileEnd,
			NetworkID: n.id,
			PlanID:    cached.ID,
			Duration:  time.Since(start),
			OpsKept:   len(cached.Operations()),
		})
		return cached, nil
	}
	n.observer.Notify(ctx, observe.Event{Type: observe.EventCacheMiss, NetworkID: n.id})

	p, err := plan.Compile(n.network, req)
	if err != nil {
		n.observer.Notify(ctx, observe.Event{
			Type:      observe.EventCompileEnd,
			NetworkID: n.id,
			Duration:  time.Since(start),
			Err:       err,
		})
		return nil, err
	}

	n.reportPrune(ctx, p)
	n.cache.Put(key, p)

	n.observer.Notify(ctx, observe.Event{
		Type:      observe.EventCompileEnd,
		NetworkID: n.id,
		PlanID:    p.ID,
		Duration:  time.Since(start),
		OpsKept:   len(p.Operations()),
		OpsPruned: len(n.network.Operations()) - len(p.Operations()),
	})

	return p, nil
}

func (n *Network) reportPrune(ctx context.Context, p *plan.ExecutionPlan) {
	kept := make(map[string]bool, len(p.Operations()))
	for _, o := range p.Operations() {
		kept[o.Name] = true
	}
	for _, node := range n.network.Operations() {
		if kept[node.Op.Name] {
			continue
		}
		n.observer.Notify(ctx, observe.Event{
			Type:      observe.EventOperationDropped,
			NetworkID: n.id,
			PlanID:    p.ID,
			Operation: node.Op.Name,
			Reason:    observe.ReasonUnsatisfied,
		})
	}
	for _, step := range p.Steps {
		if step.IsEvict() {
			n.observer.Notify(ctx, observe.Event{
				Type:      observe.EventEvicted,
				NetworkID: n.id,
				PlanID:    p.ID,
				DataName:  step.Evict,
			})
		}
	}
}
