package plan

import (
	"github.com/dagkit/graphkit/pkg/graph"
)

// PruneResult is the pruned working copy of a Network plus the resolved
// needs/provides derived for it.
type PruneResult struct {
	DAG      *graph.Network
	Needs    []string
	Provides []string
}

type nodeRef struct {
	isOp bool
	name string
}

// Prune filters operations through an optional predicate, breaks producer edges at
// every given input, restricts the graph to ancestors of the requested
// outputs, and runs a single unsatisfied-operation sweep before handing
// the surviving sub-graph to the Step Sequencer.
func Prune(n *graph.Network, req Request) (*PruneResult, error) {
	dag := n.Clone()

	if !req.Predicate.IsZero() {
		for _, on := range snapshotOps(dag) {
			ok, err := req.Predicate.Fn(on.Op)
			if err != nil {
				return nil, &PredicateError{Operation: on.Name, Tag: req.Predicate.Tag, Cause: err}
			}
			if !ok {
				dag.RemoveOperation(on.Name)
			}
		}
	}

	satisfiedInputs, outputsResolved, outputsGiven, err := resolvePolicy(n, req)
	if err != nil {
		return nil, err
	}

	if req.HasInputs {
		for _, in := range satisfiedInputs {
			dag.RemoveProvideEdgesTo(in)
		}
	}

	if outputsGiven {
		restrictToAncestors(dag, outputsResolved)
	}

	sweepUnsatisfied(dag, satisfiedInputs)

	tidyIsolatedData(dag)

	resolvedProvides := resolveFinalProvides(dag, outputsResolved, outputsGiven, satisfiedInputs)
	resolvedNeeds := intersectGraphNodes(dag, satisfiedInputs)

	return &PruneResult{DAG: dag, Needs: resolvedNeeds, Provides: resolvedProvides}, nil
}

// resolvePolicy resolves the four (inputs, outputs) branches the compiler
// supports, depending on which of Request.Inputs/Outputs were given.
func resolvePolicy(n *graph.Network, req Request) (satisfiedInputs, outputsResolved []string, outputsGiven bool, err error) {
	switch {
	case !req.HasInputs && !req.HasOutputs:
		reqs := n.Requirements()
		satisfiedInputs = reqs.Needs
		outputsResolved = reqs.Provides
		outputsGiven = false

	case !req.HasInputs && req.HasOutputs:
		reqs := n.Requirements()
		satisfiedInputs = setDiff(reqs.Needs, req.Outputs)
		outputsResolved = req.Outputs
		outputsGiven = true

	case req.HasInputs && !req.HasOutputs:
		satisfiedInputs = intersectGraphNodes(n, req.Inputs)
		outputsResolved = nil
		outputsGiven = false

	default: // req.HasInputs && req.HasOutputs
		satisfiedInputs = intersectGraphNodes(n, req.Inputs)
		outputsResolved = req.Outputs
		outputsGiven = true
	}

	if outputsGiven {
		var missing []string
		for _, o := range outputsResolved {
			if !n.HasData(o) {
				missing = append(missing, o)
			}
		}
		if len(missing) > 0 {
			return nil, nil, false, ErrUnknownOutputs(missing)
		}
	}
	return satisfiedInputs, outputsResolved, outputsGiven, nil
}

func setDiff(a, b []string) []string {
	exclude := make(map[string]bool, len(b))
	for _, x := range b {
		exclude[x] = true
	}
	out := make([]string, 0, len(a))
	for _, x := range a {
		if !exclude[x] {
			out = append(out, x)
		}
	}
	return out
}

func intersectGraphNodes(n *graph.Network, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n.HasData(name) {
			out = append(out, name)
		}
	}
	return out
}

// restrictToAncestors removes every operation and data node that cannot
// reach one of the requested outputs, walking need/provide edges backward
// and subdoc chains in both directions.
func restrictToAncestors(dag *graph.Network, outputs []string) {
	reachableData := make(map[string]bool)
	reachableOps := make(map[string]bool)
	var queue []nodeRef

	markData := func(name string) {
		if !reachableData[name] {
			reachableData[name] = true
			queue = append(queue, nodeRef{name: name})
		}
	}
	markOp := func(name string) {
		if !reachableOps[name] {
			reachableOps[name] = true
			queue = append(queue, nodeRef{isOp: true, name: name})
		}
	}

	for _, o := range outputs {
		if dag.HasData(o) {
			markData(o)
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.isOp {
			for _, ne := range dag.NeedEdgesForOp(item.name) {
				markData(ne.Data)
			}
			continue
		}
		for _, member := range dag.ChainMembers(item.name) {
			markData(member)
		}
		for _, pe := range dag.ProvideEdgesForData(item.name) {
			markOp(pe.Op)
		}
	}

	for _, on := range snapshotOps(dag) {
		if !reachableOps[on.Name] {
			dag.RemoveOperation(on.Name)
			continue
		}
		for _, pe := range dag.ProvideEdgesForOp(on.Name) {
			if !reachableData[pe.Data] {
				dag.RemoveProvideEdge(on.Name, pe.Data)
			}
		}
	}
}

// sweepUnsatisfied runs a single forward pass seeded from satisfiedInputs
// that marks operations satisfied once their
// compulsory needs are met, propagating their provides (and sub-document
// chains) onward; anything left unsatisfied is removed.
func sweepUnsatisfied(dag *graph.Network, satisfiedInputs []string) {
	okData := make(map[string]bool)
	var queue []string
	seedData := func(name string) {
		for _, m := range dag.ChainMembers(name) {
			if !okData[m] {
				okData[m] = true
				queue = append(queue, m)
			}
		}
	}

	satisfiedOps := make(map[string]bool)
	needSatisfied := make(map[string]map[string]bool)

	// Operations with no compulsory needs are trivially satisfied and do
	// not wait on any upstream data to propagate their provides.
	for _, on := range dag.Operations() {
		compulsory := 0
		for _, ne := range dag.NeedEdgesForOp(on.Name) {
			if !ne.Optional {
				compulsory++
			}
		}
		if compulsory == 0 {
			satisfiedOps[on.Name] = true
			for _, pe := range dag.ProvideEdgesForOp(on.Name) {
				seedData(pe.Data)
			}
		}
	}

	for _, in := range satisfiedInputs {
		seedData(in)
	}

	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for _, ne := range dag.NeedEdgesForData(d) {
			o := ne.Op
			if satisfiedOps[o] {
				continue
			}
			if needSatisfied[o] == nil {
				needSatisfied[o] = make(map[string]bool)
			}
			needSatisfied[o][d] = true

			allOK := true
			for _, full := range dag.NeedEdgesForOp(o) {
				if full.Optional {
					continue
				}
				if !needSatisfied[o][full.Data] {
					allOK = false
					break
				}
			}
			if !allOK {
				continue
			}
			satisfiedOps[o] = true
			for _, pe := range dag.ProvideEdgesForOp(o) {
				seedData(pe.Data)
			}
		}
	}

	for _, on := range snapshotOps(dag) {
		unsatisfied := !satisfiedOps[on.Name] || len(dag.ProvideEdgesForOp(on.Name)) == 0
		if unsatisfied {
			dag.RemoveOperation(on.Name)
		}
	}
}

func tidyIsolatedData(dag *graph.Network) {
	for _, name := range dag.DataNodes() {
		dag.RemoveDataNode(name)
	}
}

// resolveFinalProvides computes the plan's resolved provides list,
// excluding given inputs and names produced solely as side effects.
func resolveFinalProvides(dag *graph.Network, outputsResolved []string, outputsGiven bool, satisfiedInputs []string) []string {
	if outputsGiven {
		out := make([]string, 0, len(outputsResolved))
		for _, o := range outputsResolved {
			if dag.HasData(o) {
				out = append(out, o)
			}
		}
		return out
	}

	isInput := make(map[string]bool, len(satisfiedInputs))
	for _, in := range satisfiedInputs {
		isInput[in] = true
	}

	var out []string
	for _, name := range dag.DataNodes() {
		edges := dag.ProvideEdgesForData(name)
		if len(edges) == 0 || isInput[name] {
			continue
		}
		allSideeffect := true
		for _, pe := range edges {
			if !pe.Sideeffect {
				allSideeffect = false
				break
			}
		}
		if allSideeffect {
			continue
		}
		out = append(out, name)
	}
	return out
}

func snapshotOps(dag *graph.Network) []*graph.OpNode {
	ops := dag.Operations()
	out := make([]*graph.OpNode, len(ops))
	copy(out, ops)
	return out
}
