package plan

import (
	"testing"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/graph"
	"github.com/dagkit/graphkit/pkg/op"
)

func diamondNetwork(t *testing.T) *graph.Network {
	t.Helper()
	n := graph.New()
	ops := []op.Operation{
		op.MustNew("op1", []dep.Dep{dep.Plain("a")}, []dep.Dep{dep.Plain("b"), dep.Plain("c")}),
		op.MustNew("op2", []dep.Dep{dep.Plain("b")}, []dep.Dep{dep.Plain("d")}),
		op.MustNew("op3", []dep.Dep{dep.Plain("c")}, []dep.Dep{dep.Plain("e")}),
		op.MustNew("op4", []dep.Dep{dep.Plain("d"), dep.Plain("e")}, []dep.Dep{dep.Plain("f")}),
	}
	for _, o := range ops {
		if err := n.AppendOperation(o); err != nil {
			t.Fatalf("append %s: %v", o.Name, err)
		}
	}
	return n
}

// TestPruneInferBoth covers the no-inputs/no-outputs default: the
// entire diamond survives and every operation is included.
func TestPruneInferBoth(t *testing.T) {
	n := diamondNetwork(t)
	res, err := Prune(n, Request{})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	for _, name := range []string{"op1", "op2", "op3", "op4"} {
		if !res.DAG.HasOperation(name) {
			t.Fatalf("expected %s to survive, got dag=%s", name, res.DAG)
		}
	}
	// satisfiedInputs is seeded from the network's full aggregate needs
	// here, not just names with no producer, so every declared need
	// shows up as "satisfied" even though b/c/d/e are all internally
	// produced.
	want := []string{"a", "b", "c", "d", "e"}
	if len(res.Needs) != len(want) {
		t.Fatalf("expected needs %v, got %v", want, res.Needs)
	}
	for i, name := range want {
		if res.Needs[i] != name {
			t.Fatalf("expected needs %v, got %v", want, res.Needs)
		}
	}
}

// TestPruneRestrictsToOutputAncestors covers asking only for "b": it
// drops op3/op4 (and the data nodes c/d/e/f) since they cannot reach
// the requested output.
func TestPruneRestrictsToOutputAncestors(t *testing.T) {
	n := diamondNetwork(t)
	res, err := Prune(n, Request{Outputs: []string{"b"}, HasOutputs: true})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !res.DAG.HasOperation("op1") {
		t.Fatalf("expected op1 to survive")
	}
	if res.DAG.HasOperation("op3") || res.DAG.HasOperation("op4") {
		t.Fatalf("expected op3/op4 pruned, got dag=%s", res.DAG)
	}
	if len(res.Provides) != 1 || res.Provides[0] != "b" {
		t.Fatalf("expected resolved provides [b], got %v", res.Provides)
	}
}

// TestPruneGivenInputKeepsConsumerSatisfiable covers supplying "c"
// alongside "a": op1's producer edge to "c" is broken, yet op3 stays
// satisfiable from the supplied value.
func TestPruneGivenInputKeepsConsumerSatisfiable(t *testing.T) {
	n := diamondNetwork(t)
	res, err := Prune(n, Request{
		Inputs: []string{"a", "c"}, HasInputs: true,
		Outputs: []string{"f"}, HasOutputs: true,
	})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	// "c" supplied directly breaks op1's edge to c (op1 still provides b);
	// op3/op4 should both remain satisfiable from the supplied c.
	if !res.DAG.HasOperation("op3") {
		t.Fatalf("expected op3 to remain satisfiable from supplied c")
	}
}

func TestPruneUnknownOutputFails(t *testing.T) {
	n := diamondNetwork(t)
	_, err := Prune(n, Request{Outputs: []string{"zzz"}, HasOutputs: true})
	if err == nil {
		t.Fatalf("expected unknown-output error")
	}
	if _, ok := err.(*UnknownOutputsError); !ok {
		t.Fatalf("expected *UnknownOutputsError, got %T: %v", err, err)
	}
}

func TestPrunePredicateExcludesOperation(t *testing.T) {
	n := diamondNetwork(t)
	pred := Predicate{Tag: "skip-op3", Fn: func(o op.Operation) (bool, error) {
		return o.Name != "op3", nil
	}}
	res, err := Prune(n, Request{Predicate: pred})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if res.DAG.HasOperation("op3") {
		t.Fatalf("expected op3 excluded by predicate")
	}
	// "e" is still in the network's aggregate needs even though op3 (its
	// only producer) was excluded by the predicate, so the no-inputs
	// branch folds it into satisfiedInputs as an assumed external input
	// and op4 remains satisfiable.
	if !res.DAG.HasOperation("op4") {
		t.Fatalf("expected op4 to remain satisfiable with e treated as an assumed input")
	}
}

func TestPrunePredicateErrorPropagates(t *testing.T) {
	n := diamondNetwork(t)
	boom := errTestPredicate("boom")
	pred := Predicate{Tag: "explode", Fn: func(o op.Operation) (bool, error) {
		if o.Name == "op2" {
			return false, boom
		}
		return true, nil
	}}
	_, err := Prune(n, Request{Predicate: pred})
	if err == nil {
		t.Fatalf("expected predicate error")
	}
	perr, ok := err.(*PredicateError)
	if !ok {
		t.Fatalf("expected *PredicateError, got %T", err)
	}
	if perr.Operation != "op2" || perr.Tag != "explode" {
		t.Fatalf("unexpected predicate error detail: %+v", perr)
	}
}

type errTestPredicate string

func (e errTestPredicate) Error() string { return string(e) }
