package predicate

import (
	"testing"

	"github.com/dagkit/graphkit/pkg/op"
)

func TestCompileAndEvaluateByName(t *testing.T) {
	pred, err := Compile("skip-op2", `Name != "op2"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok, err := pred.Fn(op.MustNew("op1", nil, nil))
	if err != nil || !ok {
		t.Fatalf("expected op1 to pass, ok=%v err=%v", ok, err)
	}
	ok, err = pred.Fn(op.MustNew("op2", nil, nil))
	if err != nil || ok {
		t.Fatalf("expected op2 to be rejected, ok=%v err=%v", ok, err)
	}
}

func TestCompileInvalidExpressionFails(t *testing.T) {
	if _, err := Compile("bad", "Name +++ nonsense("); err == nil {
		t.Fatalf("expected compile error for malformed expression")
	}
}

func TestEvaluateUsesNodeProps(t *testing.T) {
	pred, err := Compile("by-tier", `Props["tier"] == "gold"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	gold := op.MustNew("op1", nil, nil, op.WithNodeProps(op.NodeProps{"tier": "gold"}))
	silver := op.MustNew("op2", nil, nil, op.WithNodeProps(op.NodeProps{"tier": "silver"}))

	if ok, err := pred.Fn(gold); err != nil || !ok {
		t.Fatalf("expected gold tier to pass, ok=%v err=%v", ok, err)
	}
	if ok, err := pred.Fn(silver); err != nil || ok {
		t.Fatalf("expected silver tier to be rejected, ok=%v err=%v", ok, err)
	}
}
