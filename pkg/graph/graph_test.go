package graph

import (
	"testing"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

func mustOp(t *testing.T, name string, needs, provides []dep.Dep, opts ...op.Option) op.Operation {
	t.Helper()
	o, err := op.New(name, needs, provides, opts...)
	if err != nil {
		t.Fatalf("op.New(%s): %v", name, err)
	}
	return o
}

func TestAppendOperationBasicEdges(t *testing.T) {
	n := New()
	o := mustOp(t, "op1", []dep.Dep{dep.Plain("x")}, []dep.Dep{dep.Plain("a")})
	if err := n.AppendOperation(o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.HasData("x") || !n.HasData("a") {
		t.Fatalf("expected data nodes x and a")
	}
	if !n.HasOperation("op1") {
		t.Fatalf("expected operation node op1")
	}
	needs := n.NeedEdgesForOp("op1")
	if len(needs) != 1 || needs[0].Data != "x" {
		t.Fatalf("unexpected need edges: %+v", needs)
	}
	provides := n.ProvideEdgesForOp("op1")
	if len(provides) != 1 || provides[0].Data != "a" {
		t.Fatalf("unexpected provide edges: %+v", provides)
	}
}

func TestAppendOperationDuplicateFails(t *testing.T) {
	n := New()
	o := mustOp(t, "op1", nil, []dep.Dep{dep.Plain("a")})
	if err := n.AppendOperation(o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.AppendOperation(o); err == nil {
		t.Fatalf("expected duplicate-operation error")
	}
}

func TestInsertionIndexOrder(t *testing.T) {
	n := New()
	op1 := mustOp(t, "op1", nil, []dep.Dep{dep.Plain("a")})
	op2 := mustOp(t, "op2", nil, []dep.Dep{dep.Plain("b")})
	_ = n.AppendOperation(op1)
	_ = n.AppendOperation(op2)
	if n.InsertionIndex("op1") >= n.InsertionIndex("op2") {
		t.Fatalf("expected op1 inserted before op2")
	}
}

// TestSubdocChain verifies that a jsonp provide materializes all
// prefixes chained by subdoc edges.
func TestSubdocChain(t *testing.T) {
	n := New()
	leaf, err := dep.JSONPointer("root/leaf")
	if err != nil {
		t.Fatalf("jsonp: %v", err)
	}
	op1 := mustOp(t, "op1", nil, []dep.Dep{leaf})
	if err := n.AppendOperation(op1); err != nil {
		t.Fatalf("append: %v", err)
	}
	if !n.HasData("root") || !n.HasData("root/leaf") {
		t.Fatalf("expected both root and root/leaf data nodes")
	}
	parent, ok := n.SubdocParent("root/leaf")
	if !ok || parent != "root" {
		t.Fatalf("expected root/leaf parent == root, got %q ok=%v", parent, ok)
	}
	children := n.SubdocChildren("root")
	if len(children) != 1 || children[0] != "root/leaf" {
		t.Fatalf("expected root's children == [root/leaf], got %v", children)
	}
	if root := n.ChainRoot("root/leaf"); root != "root" {
		t.Fatalf("expected chain root 'root', got %q", root)
	}
}

func TestSubdocChainSharedPrefixStopsEarly(t *testing.T) {
	n := New()
	leaf1, _ := dep.JSONPointer("root/a/leaf1")
	leaf2, _ := dep.JSONPointer("root/a/leaf2")
	op1 := mustOp(t, "op1", nil, []dep.Dep{leaf1})
	op2 := mustOp(t, "op2", nil, []dep.Dep{leaf2})
	_ = n.AppendOperation(op1)
	_ = n.AppendOperation(op2)
	// root->a edge must exist exactly once even though two operations
	// share the "root/a" prefix.
	count := 0
	for _, c := range n.SubdocChildren("root") {
		if c == "root/a" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one root->root/a edge, found %d", count)
	}
}

// TestAliasRoundTrip verifies an alias round-trips to its aliased source.
func TestAliasRoundTrip(t *testing.T) {
	n := New()
	o := mustOp(t, "op1", nil, []dep.Dep{dep.Plain("a")}, op.WithAliases(op.AliasPair{Src: "a", Alias: "b"}))
	if err := n.AppendOperation(o); err != nil {
		t.Fatalf("append: %v", err)
	}
	provides := n.ProvideEdgesForOp("op1")
	var sawA, sawB bool
	for _, e := range provides {
		if e.Data == "a" {
			sawA = true
		}
		if e.Data == "b" {
			sawB = true
			if !e.HasAlias || e.AliasOf != "a" {
				t.Fatalf("expected b to carry alias_of=a, got %+v", e)
			}
		}
	}
	if !sawA || !sawB {
		t.Fatalf("expected both op1->a and op1->b edges")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	n := New()
	_ = n.AppendOperation(mustOp(t, "op1", nil, []dep.Dep{dep.Plain("a")}))
	c := n.Clone()
	c.RemoveOperation("op1")
	if !n.HasOperation("op1") {
		t.Fatalf("removing from clone must not affect original")
	}
	if c.HasOperation("op1") {
		t.Fatalf("expected op1 removed from clone")
	}
}

func TestRemoveProvideEdgesTo(t *testing.T) {
	n := New()
	_ = n.AppendOperation(mustOp(t, "op0", []dep.Dep{dep.Plain("z")}, []dep.Dep{dep.Plain("x")}))
	_ = n.AppendOperation(mustOp(t, "op1", []dep.Dep{dep.Plain("x")}, []dep.Dep{dep.Plain("a")}))
	n.RemoveProvideEdgesTo("x")
	if len(n.ProvideEdgesForOp("op0")) != 0 {
		t.Fatalf("expected op0's provide edge to x removed")
	}
	if len(n.ProvideEdgesForData("x")) != 0 {
		t.Fatalf("expected no remaining producers of x")
	}
	// op1 still needs x, unaffected by the producer-side cut.
	if len(n.NeedEdgesForOp("op1")) != 1 {
		t.Fatalf("expected op1's need for x untouched")
	}
}
