package plancache

import (
	"github.com/dagkit/graphkit/pkg/graph"
	"github.com/dagkit/graphkit/pkg/plan"
)

// CompileCached compiles req against n, serving a memoized plan from c
// when the normalized request Key has been seen before, and populating c
// on a miss. Get/Put are independently locked, so a duplicate compile
// racing another goroutine's Put simply overwrites the same value rather
// than blocking: plans for a given Key are deterministic, so the race is
// harmless.
func CompileCached(n *graph.Network, c *Cache, req plan.Request) (*plan.ExecutionPlan, bool, error) {
	key := NewKey(req)
	if p, ok := c.Get(key); ok {
		return p, true, nil
	}
	p, err := plan.Compile(n, req)
	if err != nil {
		return nil, false, err
	}
	c.Put(key, p)
	return p, false, nil
}
