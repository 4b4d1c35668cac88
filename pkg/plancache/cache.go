// Package plancache memoizes compiled plans, keyed on the normalized
// (inputs, outputs, predicate-identity) tuple. It never evicts entries
// itself: callers that need an upper bound wrap Cache or call Reset.
package plancache

import (
	"sort"
	"strings"
	"sync"

	"github.com/dagkit/graphkit/pkg/plan"
)

// Key is the normalized cache identity for a compile request. Two
// requests with the same Key are guaranteed to compile to the same plan
// against the same network.
type Key struct {
	inputs        string
	outputs       string
	hasInputs     bool
	hasOutputs    bool
	predicateTag  string
	skipEvictions bool
}

// NewKey normalizes a plan.Request into a stable cache Key: input and
// output name lists are sorted so that equivalent but differently-ordered
// requests share a cache entry.
func NewKey(req plan.Request) Key {
	return Key{
		inputs:        sortedJoin(req.Inputs),
		outputs:       sortedJoin(req.Outputs),
		hasInputs:     req.HasInputs,
		hasOutputs:    req.HasOutputs,
		predicateTag:  req.Predicate.Tag,
		skipEvictions: req.SkipEvictions,
	}
}

func sortedJoin(names []string) string {
	if len(names) == 0 {
		return ""
	}
	cp := append([]string(nil), names...)
	sort.Strings(cp)
	return strings.Join(cp, "\x1f")
}

// Cache is a sync.RWMutex-guarded map from normalized request Key to
// compiled ExecutionPlan, with cumulative hit/miss counters.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*plan.ExecutionPlan

	hits   uint64
	misses uint64
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*plan.ExecutionPlan)}
}

// Get returns the cached plan for key, if present.
func (c *Cache) Get(key Key) (*plan.ExecutionPlan, bool) {
	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	return p, ok
}

// Put stores p under key, overwriting any previous entry.
func (c *Cache) Put(key Key, p *plan.ExecutionPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
}

// Reset clears every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*plan.ExecutionPlan)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the cumulative hit/miss counters, for telemetry.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
