// Package predicate compiles the predicate DSL used to selectively
// include operations at compile time: a boolean expr-lang/expr
// expression evaluated against an operation's name and opaque node
// properties.
package predicate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dagkit/graphkit/pkg/op"
	"github.com/dagkit/graphkit/pkg/plan"
)

// Env is the evaluation environment exposed to a compiled predicate: the
// operation's name and its opaque NodeProps, addressable as `Name` and
// `Props` in the expression.
type Env struct {
	Name  string
	Props map[string]interface{}
}

// Compile parses and type-checks src as a boolean expr-lang/expr
// expression and returns a plan.Predicate that evaluates it against each
// operation considered by the Pruner. tag is the predicate's stable cache
// identity; callers that recompile the same src should reuse the same
// tag so Plan Cache entries are shared.
func Compile(tag, src string) (plan.Predicate, error) {
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return plan.Predicate{}, fmt.Errorf("predicate: compile %q: %w", src, err)
	}
	return plan.Predicate{
		Tag: tag,
		Fn:  evalFn(program),
	}, nil
}

func evalFn(program *vm.Program) func(op.Operation) (bool, error) {
	return func(o op.Operation) (bool, error) {
		env := Env{Name: o.Name, Props: map[string]interface{}(o.NodeProps)}
		out, err := expr.Run(program, env)
		if err != nil {
			return false, fmt.Errorf("predicate: evaluate for operation %q: %w", o.Name, err)
		}
		result, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("predicate: expression for operation %q did not return a boolean, got %T", o.Name, out)
		}
		return result, nil
	}
}
