package plan

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dagkit/graphkit/pkg/graph"
)

// nameCollator orders data node names deterministically when two are
// simultaneously ready during topological sequencing; operation nodes use
// the network's insertion index instead.
var nameCollator = collate.New(language.Und)

// Sequence computes a deterministic topological order over the pruned
// DAG, with eviction instructions interleaved after each operation to
// bound peak memory.
func Sequence(original *graph.Network, pruned *PruneResult, req Request) ([]Step, error) {
	dag := pruned.DAG

	order, err := topoOrderOps(dag)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(order)*2)

	if req.SkipEvictions || len(pruned.Provides) == 0 {
		for _, name := range order {
			on, _ := dag.Operation(name)
			steps = append(steps, opStep(on.Op))
		}
		return steps, nil
	}

	asked := make(map[string]bool, len(pruned.Provides))
	for _, o := range pruned.Provides {
		asked[o] = true
	}

	lastEvicted := ""
	for i, name := range order {
		on, _ := dag.Operation(name)
		steps = append(steps, opStep(on.Op))
		lastEvicted = ""

		for _, victim := range evictionsAfterStep(dag, original, order, i, name, asked) {
			if victim == lastEvicted {
				continue
			}
			steps = append(steps, evictStep(victim))
			lastEvicted = victim
		}
	}
	return steps, nil
}

// topoOrderOps runs Kahn's algorithm over the combined data+operation
// node set of dag, following need (data->op), provide (op->data) and
// subdoc (parent->child) edges as ordering constraints. Ties are broken
// by operation insertion index, then by collated data node name.
func topoOrderOps(dag *graph.Network) ([]string, error) {
	dataKey := func(name string) string { return "d:" + name }
	opKey := func(name string) string { return "o:" + name }

	allData := dag.DataNodes()
	allOps := dag.Operations()

	indegree := make(map[string]int, len(allData)+len(allOps))
	for _, d := range allData {
		deg := len(dag.ProvideEdgesForData(d))
		if _, ok := dag.SubdocParent(d); ok {
			deg++
		}
		indegree[dataKey(d)] = deg
	}
	for _, on := range allOps {
		indegree[opKey(on.Name)] = len(dag.NeedEdgesForOp(on.Name))
	}

	var ready []nodeRef
	for _, d := range allData {
		if indegree[dataKey(d)] == 0 {
			ready = append(ready, nodeRef{name: d})
		}
	}
	for _, on := range allOps {
		if indegree[opKey(on.Name)] == 0 {
			ready = append(ready, nodeRef{isOp: true, name: on.Name})
		}
	}

	var opOrder []string
	visited := 0
	total := len(allData) + len(allOps)

	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if lessReady(dag, ready[i], ready[best]) {
				best = i
			}
		}
		cur := ready[best]
		ready = append(ready[:best:best], ready[best+1:]...)
		visited++

		if cur.isOp {
			opOrder = append(opOrder, cur.name)
			for _, pe := range dag.ProvideEdgesForOp(cur.name) {
				key := dataKey(pe.Data)
				indegree[key]--
				if indegree[key] == 0 {
					ready = append(ready, nodeRef{name: pe.Data})
				}
			}
			continue
		}

		for _, ne := range dag.NeedEdgesForData(cur.name) {
			key := opKey(ne.Op)
			indegree[key]--
			if indegree[key] == 0 {
				ready = append(ready, nodeRef{isOp: true, name: ne.Op})
			}
		}
		for _, child := range dag.SubdocChildren(cur.name) {
			key := dataKey(child)
			indegree[key]--
			if indegree[key] == 0 {
				ready = append(ready, nodeRef{name: child})
			}
		}
	}

	if visited != total {
		return nil, ErrCyclicGraph
	}
	return opOrder, nil
}

func lessReady(dag *graph.Network, a, b nodeRef) bool {
	if a.isOp != b.isOp {
		return a.isOp
	}
	if a.isOp {
		return dag.InsertionIndex(a.name) < dag.InsertionIndex(b.name)
	}
	return nameCollator.CompareString(a.name, b.name) < 0
}

// evictionsAfterStep computes the eviction instructions to emit right
// after operation name runs at position i in order: upstream needs no
// longer used by anything downstream, and provides that existed in the
// original network but were pruned from the working DAG, both targeting
// the chain root of the evicted name.
func evictionsAfterStep(dag, original *graph.Network, order []string, i int, name string, asked map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)

	for _, ne := range dag.NeedEdgesForOp(name) {
		if !evictableNowUnneeded(dag, order, i, ne.Data, asked) {
			continue
		}
		root := dag.ChainRoot(ne.Data)
		if !seen[root] {
			seen[root] = true
			out = append(out, root)
		}
	}

	for _, pe := range original.ProvideEdgesForOp(name) {
		if opStillProvides(dag, name, pe.Data) {
			continue
		}
		root := original.ChainRoot(pe.Data)
		if !seen[root] {
			seen[root] = true
			out = append(out, root)
		}
	}

	return out
}

// evictableNowUnneeded reports whether every member of dataName's subdoc
// chain is free to evict: neither an asked output nor needed by an
// operation that runs strictly later in order.
func evictableNowUnneeded(dag *graph.Network, order []string, i int, dataName string, asked map[string]bool) bool {
	for _, member := range dag.ChainMembers(dataName) {
		if asked[member] {
			return false
		}
		for _, futureName := range order[i+1:] {
			for _, ne := range dag.NeedEdgesForOp(futureName) {
				if ne.Data == member {
					return false
				}
			}
		}
	}
	return true
}

func opStillProvides(dag *graph.Network, opName, dataName string) bool {
	for _, pe := range dag.ProvideEdgesForOp(opName) {
		if pe.Data == dataName {
			return true
		}
	}
	return false
}
