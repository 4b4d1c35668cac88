package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dagkit/graphkit"
	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
	"github.com/dagkit/graphkit/pkg/plan"
)

func main() {
	fmt.Println("=================================================")
	fmt.Println("Graph Compile Demo")
	fmt.Println("=================================================")
	fmt.Println()

	demoDiamondNetwork()
	demoOutputRestriction()
}

// demoDiamondNetwork compiles a classic diamond dependency (op1 feeds op2
// and op3, both of which feed op4) and prints the resulting step sequence,
// including the evictions the Step Sequencer inserts once upstream data is
// no longer needed.
func demoDiamondNetwork() {
	fmt.Println("📋 DEMO 1: Diamond Network, Full Compile")
	fmt.Println("-----------------------------------------")

	net := graphkit.New("diamond-demo")
	mustAdd(net, "op1", needs("a"), provides("b", "c"))
	mustAdd(net, "op2", needs("b"), provides("d"))
	mustAdd(net, "op3", needs("c"), provides("e"))
	mustAdd(net, "op4", needs("d", "e"), provides("f"))

	p, err := net.Compile(context.Background(), plan.Request{})
	if err != nil {
		fail(err)
	}

	printPlan(p)
	fmt.Println()
}

// demoOutputRestriction compiles the same network but asks only for "d",
// showing the Pruner drop op3 and op4, which cannot reach "d", and the
// Step Sequencer evict op1's now-unused provide "c".
func demoOutputRestriction() {
	fmt.Println("📋 DEMO 2: Restricted to a Single Output")
	fmt.Println("-----------------------------------------")

	net := graphkit.New("diamond-demo-restricted")
	mustAdd(net, "op1", needs("a"), provides("b", "c"))
	mustAdd(net, "op2", needs("b"), provides("d"))
	mustAdd(net, "op3", needs("c"), provides("e"))
	mustAdd(net, "op4", needs("d", "e"), provides("f"))

	p, err := net.Compile(context.Background(), plan.Request{
		Outputs:    []string{"d"},
		HasOutputs: true,
	})
	if err != nil {
		fail(err)
	}

	printPlan(p)
}

func needs(names ...string) []dep.Dep    { return plainDeps(names) }
func provides(names ...string) []dep.Dep { return plainDeps(names) }

func plainDeps(names []string) []dep.Dep {
	out := make([]dep.Dep, len(names))
	for i, name := range names {
		out[i] = dep.Plain(name)
	}
	return out
}

func mustAdd(n *graphkit.Network, name string, needs, provides []dep.Dep) {
	o, err := op.New(name, needs, provides)
	if err != nil {
		fail(err)
	}
	if err := n.AddOperation(o); err != nil {
		fail(err)
	}
}

func printPlan(p *plan.ExecutionPlan) {
	fmt.Printf("Plan %s:\n", p.ID)
	for _, step := range p.Steps {
		if step.IsEvict() {
			fmt.Printf("  evict: %s\n", step.Evict)
			continue
		}
		fmt.Printf("  run:   %s\n", step.Operation.Name)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
