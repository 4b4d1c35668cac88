package compose

import (
	"testing"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

func TestBuildEarlierEntryWins(t *testing.T) {
	b := New("pipe")
	b.Add(op.MustNew("op1", nil, []dep.Dep{dep.Plain("a")}, op.WithEndured(true)))
	b.Add(op.MustNew("op1", nil, []dep.Dep{dep.Plain("b")})) // later, same name, dropped

	pipe := b.Build()
	if len(pipe.Operations) != 1 {
		t.Fatalf("expected exactly one surviving operation, got %d", len(pipe.Operations))
	}
	if !pipe.Operations[0].Endured {
		t.Fatalf("expected the first (winning) operation's flags to survive")
	}
}

func TestBuildInsertionOrderPreserved(t *testing.T) {
	b := New("pipe")
	b.Add(op.MustNew("op1", nil, []dep.Dep{dep.Plain("a")}))
	b.Add(op.MustNew("op2", nil, []dep.Dep{dep.Plain("b")}))
	pipe := b.Build()
	if pipe.Operations[0].Name != "op1" || pipe.Operations[1].Name != "op2" {
		t.Fatalf("expected insertion order op1,op2, got %v", pipe.Operations)
	}
}

func TestBuildWithNestDefaultRenamer(t *testing.T) {
	renamer := func(tag NodeTag, name string, parent string) RenameDecision { return NestDefault() }
	b := New("outer", WithNestPrefix("inner."), WithRenamer(renamer))
	b.Add(op.MustNew("op1", []dep.Dep{dep.Plain("x")}, []dep.Dep{dep.Plain("y")}))

	pipe := b.Build()
	o := pipe.Operations[0]
	if o.Name != "inner.op1" {
		t.Fatalf("expected nested name inner.op1, got %s", o.Name)
	}
	if o.Needs[0].Name != "inner.x" || o.Provides[0].Name != "inner.y" {
		t.Fatalf("expected needs/provides renamed under inner. prefix, got needs=%v provides=%v", o.Needs, o.Provides)
	}
}

func TestBuildWithExplicitRename(t *testing.T) {
	renamer := func(tag NodeTag, name string, parent string) RenameDecision {
		if name == "x" {
			return Rename("shared")
		}
		return Keep()
	}
	b := New("outer", WithRenamer(renamer))
	b.Add(op.MustNew("op1", []dep.Dep{dep.Plain("x")}, nil))
	pipe := b.Build()
	if pipe.Operations[0].Needs[0].Name != "shared" {
		t.Fatalf("expected explicit rename to 'shared', got %s", pipe.Operations[0].Needs[0].Name)
	}
}

func TestBuildRenamerReceivesTagAndParent(t *testing.T) {
	var gotTags []NodeTag
	var gotParent string
	renamer := func(tag NodeTag, name string, parent string) RenameDecision {
		gotTags = append(gotTags, tag)
		gotParent = parent
		return NestDefault()
	}
	b := New("outer", WithNestPrefix("inner."), WithRenamer(renamer))
	b.Add(op.MustNew("op1", []dep.Dep{dep.Plain("x")}, []dep.Dep{dep.Plain("y")}))

	if gotParent != "inner" {
		t.Fatalf("expected parent %q (nest prefix with trailing separator stripped), got %q", "inner", gotParent)
	}
	sawOp, sawDep := false, false
	for _, tag := range gotTags {
		switch tag {
		case TagOperation:
			sawOp = true
		case TagDependency:
			sawDep = true
		}
	}
	if !sawOp || !sawDep {
		t.Fatalf("expected both TagOperation and TagDependency calls, got %v", gotTags)
	}
}

func TestBuildLeavesJSONPointerDepsUntouchedByRenamer(t *testing.T) {
	renamer := func(tag NodeTag, name string, parent string) RenameDecision { return NestDefault() }
	jp := dep.MustJSONPointer("root/x")
	b := New("outer", WithNestPrefix("inner."), WithRenamer(renamer))
	b.Add(op.MustNew("op1", []dep.Dep{jp}, nil))

	pipe := b.Build()
	got := pipe.Operations[0].Needs[0]
	if got.Name != jp.Name {
		t.Fatalf("expected jsonp dep name untouched, got %q want %q", got.Name, jp.Name)
	}
	chain := got.Chain()
	if len(chain) != 2 || chain[0] != "root" || chain[1] != "root/x" {
		t.Fatalf("expected Chain() still matching untouched JSONPath, got %v", chain)
	}
}

func TestNullOpMarksAbsence(t *testing.T) {
	nop := NullOp("skipped")
	if !IsNullOp(nop) {
		t.Fatalf("expected NullOp to be recognized as a null op")
	}
	b := New("pipe")
	b.Add(op.MustNew("op1", nil, []dep.Dep{dep.Plain("a")}, op.WithEndured(true)))
	b.Add(nop)
	pipe := b.Build()
	if !pipe.Policy().Endured {
		t.Fatalf("expected NullOp to be excluded from policy overlay but op1's flag to still apply")
	}
}

func TestPipelineAggregateNeedsProvidesDeduplicated(t *testing.T) {
	b := New("pipe")
	b.Add(op.MustNew("op1", []dep.Dep{dep.Plain("x")}, []dep.Dep{dep.Plain("a")}))
	b.Add(op.MustNew("op2", []dep.Dep{dep.Plain("x"), dep.Plain("y")}, []dep.Dep{dep.Plain("b")}))
	pipe := b.Build()

	needs := pipe.NeedsOf()
	if len(needs) != 2 || needs[0].Name != "x" || needs[1].Name != "y" {
		t.Fatalf("expected deduplicated needs [x y], got %v", needs)
	}
	provides := pipe.ProvidesOf()
	if len(provides) != 2 || provides[0].Name != "a" || provides[1].Name != "b" {
		t.Fatalf("expected provides [a b], got %v", provides)
	}
}
