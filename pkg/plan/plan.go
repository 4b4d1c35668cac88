// Package plan implements the Pruner and Step Sequencer: given a Network
// and a compile request, it prunes the graph to what is
// reachable and satisfiable, topologically orders the survivors with a
// deterministic tie-break, and inserts eviction instructions to bound
// peak memory.
package plan

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dagkit/graphkit/pkg/graph"
	"github.com/dagkit/graphkit/pkg/op"
)

// StepKind distinguishes an operation invocation from an eviction
// instruction in an ExecutionPlan's Steps.
type StepKind int

const (
	// StepOperation is an ordinary operation invocation.
	StepOperation StepKind = iota
	// StepEvict is an instruction to discard a data value from the
	// runtime solution, targeting the chain root.
	StepEvict
)

// Step is one entry of a compiled plan: either an Operation invocation
// or an Evict(data) instruction.
type Step struct {
	Kind      StepKind
	Operation op.Operation
	Evict     string
}

func opStep(o op.Operation) Step { return Step{Kind: StepOperation, Operation: o} }
func evictStep(name string) Step { return Step{Kind: StepEvict, Evict: name} }

// IsOperation reports whether s is an operation invocation.
func (s Step) IsOperation() bool { return s.Kind == StepOperation }

// IsEvict reports whether s is an eviction instruction.
func (s Step) IsEvict() bool { return s.Kind == StepEvict }

// Predicate is the optional `predicate(op, attrs) -> bool` callback used
// to exclude operations at compile time. Tag is a stable, caller-supplied
// identity used by the Plan Cache; two Predicates with different Fn but
// equal Tag are treated as cache-identical, so callers that vary Fn per
// call must vary Tag too. A zero-value Predicate (Fn == nil) means "no
// predicate".
type Predicate struct {
	Tag string
	Fn  func(o op.Operation) (bool, error)
}

// IsZero reports whether p represents "no predicate".
func (p Predicate) IsZero() bool { return p.Fn == nil }

// Request is the normalized input to a compile call. Inputs and Outputs
// are used only when HasInputs and HasOutputs are set; a side whose flag
// is false is inferred from the network.
type Request struct {
	Inputs        []string
	Outputs       []string
	HasInputs     bool
	HasOutputs    bool
	Predicate     Predicate
	SkipEvictions bool
}

// ExecutionPlan is the immutable result of compiling a Request against a
// Network.
type ExecutionPlan struct {
	// ID is a unique identifier stamped at compile time for telemetry and
	// log correlation only; it is never part of plan equality or of the
	// Plan Cache key (the cache identity is the normalized request
	// tuple, not a plan ID).
	ID string

	Network *graph.Network
	DAG     *graph.Network

	Needs    []string
	Provides []string
	// AskedOuts records whether Outputs was explicitly supplied by the
	// caller, used by the (external) execution engine to decide defaults.
	AskedOuts bool

	Steps []Step
}

// Operations returns the ordered operation invocations in the plan,
// omitting eviction instructions.
func (p *ExecutionPlan) Operations() []op.Operation {
	out := make([]op.Operation, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.IsOperation() {
			out = append(out, s.Operation)
		}
	}
	return out
}

func (p *ExecutionPlan) String() string {
	parts := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.IsOperation() {
			parts = append(parts, s.Operation.Name)
		} else {
			parts = append(parts, "Evict("+s.Evict+")")
		}
	}
	return "ExecutionPlan(" + strings.Join(parts, " -> ") + ")"
}

// Compile prunes n against req and sequences the survivors into an
// ExecutionPlan. This is the core, cache-agnostic compile path; the
// plancache package wraps it with memoization.
func Compile(n *graph.Network, req Request) (*ExecutionPlan, error) {
	pruned, err := Prune(n, req)
	if err != nil {
		return nil, err
	}
	steps, err := Sequence(n, pruned, req)
	if err != nil {
		return nil, err
	}
	return &ExecutionPlan{
		ID:        uuid.NewString(),
		Network:   n,
		DAG:       pruned.DAG,
		Needs:     pruned.Needs,
		Provides:  pruned.Provides,
		AskedOuts: req.HasOutputs,
		Steps:     steps,
	}, nil
}
