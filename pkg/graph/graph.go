// Package graph implements the Graph Builder and Network: the bipartite
// dependency graph of data nodes and operation nodes that the Pipeline
// Composer assembles and the Pruner/Step Sequencer later consume.
//
// Nodes are a tagged variant (data name vs. operation record) that share
// one graph but are never confused: operation records live in a side
// table keyed by name, reached only through the insertion-ordered
// bookkeeping the Step Sequencer uses as its tie-break.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

// NeedEdge is a data->operation edge: op needs this data, with the
// modifier attributes carried over from the Dep that declared it.
type NeedEdge struct {
	Data       string
	Op         string
	Optional   bool
	Sideeffect bool
	HasKeyword bool
	Keyword    string
}

// ProvideEdge is an operation->data edge: op provides this data.
type ProvideEdge struct {
	Op         string
	Data       string
	Sideeffect bool
	HasAlias   bool
	AliasOf    string
}

// SubdocEdge is a parent_data->child_data edge expressing one step of a
// jsonp sub-document chain.
type SubdocEdge struct {
	Parent string
	Child  string
}

// OpNode is the side-table record for an operation node: its immutable
// Operation value plus the insertion index assigned when it was first
// appended, used as the Step Sequencer's deterministic tie-break.
type OpNode struct {
	Name  string
	Index int
	Op    op.Operation
}

// Network is the immutable (post-construction) bipartite dependency
// graph. It is built once via AppendOperation calls and never mutated
// thereafter by callers outside this module; the plan package clones a
// working copy to prune.
type Network struct {
	dataNodes map[string]bool
	opNodes   map[string]*OpNode
	opOrder   []string // operation names in insertion order
	nextIndex int

	needEdges    []NeedEdge
	provideEdges []ProvideEdge
	subdocEdges  []SubdocEdge

	needsByOp      map[string][]NeedEdge
	needsByData    map[string][]NeedEdge // data -> op edges (data is source)
	providesByOp   map[string][]ProvideEdge
	providesByData map[string][]ProvideEdge // op -> data edges (data is target)
	subdocParent   map[string]string
	subdocChildren map[string][]string
}

// New returns an empty Network ready to accept operations.
func New() *Network {
	return &Network{
		dataNodes:      make(map[string]bool),
		opNodes:        make(map[string]*OpNode),
		needsByOp:      make(map[string][]NeedEdge),
		needsByData:    make(map[string][]NeedEdge),
		providesByOp:   make(map[string][]ProvideEdge),
		providesByData: make(map[string][]ProvideEdge),
		subdocParent:   make(map[string]string),
		subdocChildren: make(map[string][]string),
	}
}

// AppendOperation inserts o and its dependency edges into the network.
// It fails with ErrDuplicateOperation if an operation with the same name
// was already inserted.
func (n *Network) AppendOperation(o op.Operation) error {
	if _, exists := n.opNodes[o.Name]; exists {
		return ErrDuplicateOperation(o.Name)
	}

	// Reverse alias index: aliased_name -> source_name.
	aliasOf := make(map[string]string, len(o.Aliases))
	for _, a := range o.Aliases {
		aliasOf[a.Alias] = a.Src
	}

	for _, need := range o.Needs {
		n.materializeChain(need)
		n.addDataNode(need.Name)
		edge := NeedEdge{
			Data:       need.Name,
			Op:         o.Name,
			Optional:   need.IsOptional(),
			Sideeffect: need.IsSideeffect() || need.IsSideeffected(),
		}
		if need.IsKeyword() {
			edge.HasKeyword = true
			edge.Keyword = need.KeywordName
		}
		n.needEdges = append(n.needEdges, edge)
		n.needsByOp[o.Name] = append(n.needsByOp[o.Name], edge)
		n.needsByData[need.Name] = append(n.needsByData[need.Name], edge)
	}

	index := n.nextIndex
	n.nextIndex++
	node := &OpNode{Name: o.Name, Index: index, Op: o}
	n.opNodes[o.Name] = node
	n.opOrder = append(n.opOrder, o.Name)

	provided := make(map[string]bool, len(o.Provides))
	for _, provide := range o.Provides {
		provided[provide.Name] = true
		n.materializeChain(provide)
		n.addDataNode(provide.Name)
		edge := ProvideEdge{
			Op:         o.Name,
			Data:       provide.Name,
			Sideeffect: provide.IsSideeffect(),
		}
		if src, ok := aliasOf[provide.Name]; ok {
			edge.HasAlias = true
			edge.AliasOf = src
		}
		n.provideEdges = append(n.provideEdges, edge)
		n.providesByOp[o.Name] = append(n.providesByOp[o.Name], edge)
		n.providesByData[provide.Name] = append(n.providesByData[provide.Name], edge)
	}

	// An alias that is not itself a declared provide gets its own
	// op->alias edge carrying alias_of.
	for _, a := range o.Aliases {
		if provided[a.Alias] {
			continue
		}
		provided[a.Alias] = true
		n.addDataNode(a.Alias)
		edge := ProvideEdge{Op: o.Name, Data: a.Alias, HasAlias: true, AliasOf: a.Src}
		n.provideEdges = append(n.provideEdges, edge)
		n.providesByOp[o.Name] = append(n.providesByOp[o.Name], edge)
		n.providesByData[a.Alias] = append(n.providesByData[a.Alias], edge)
	}

	return nil
}

// materializeChain ensures the subdoc chain for a jsonp Dep exists,
// walking from leaf to root and stopping at the first already-present
// edge (any ancestor chain above it is then already inserted).
func (n *Network) materializeChain(d dep.Dep) {
	chain := d.Chain()
	if len(chain) < 2 {
		n.addDataNode(chain[0])
		return
	}
	for i := len(chain) - 1; i > 0; i-- {
		parent, child := chain[i-1], chain[i]
		n.addDataNode(parent)
		n.addDataNode(child)
		if existing, ok := n.subdocParent[child]; ok && existing == parent {
			break
		}
		n.subdocEdges = append(n.subdocEdges, SubdocEdge{Parent: parent, Child: child})
		n.subdocParent[child] = parent
		n.subdocChildren[parent] = append(n.subdocChildren[parent], child)
	}
}

func (n *Network) addDataNode(name string) {
	n.dataNodes[name] = true
}

// HasOperation reports whether name is a known operation node.
func (n *Network) HasOperation(name string) bool {
	_, ok := n.opNodes[name]
	return ok
}

// HasData reports whether name is a known data node.
func (n *Network) HasData(name string) bool {
	return n.dataNodes[name]
}

// Operation returns the operation node for name.
func (n *Network) Operation(name string) (*OpNode, bool) {
	o, ok := n.opNodes[name]
	return o, ok
}

// Operations returns the operation nodes in insertion order.
func (n *Network) Operations() []*OpNode {
	out := make([]*OpNode, 0, len(n.opOrder))
	for _, name := range n.opOrder {
		out = append(out, n.opNodes[name])
	}
	return out
}

// DataNodes returns all data node names, sorted for determinism.
func (n *Network) DataNodes() []string {
	out := make([]string, 0, len(n.dataNodes))
	for name := range n.dataNodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NeedEdgesForOp returns the need edges (data->op) for operation opName.
func (n *Network) NeedEdgesForOp(opName string) []NeedEdge { return n.needsByOp[opName] }

// NeedEdgesForData returns the need edges where dataName is the source
// (i.e. the operations that consume dataName).
func (n *Network) NeedEdgesForData(dataName string) []NeedEdge { return n.needsByData[dataName] }

// ProvideEdgesForOp returns the provide edges (op->data) for opName.
func (n *Network) ProvideEdgesForOp(opName string) []ProvideEdge { return n.providesByOp[opName] }

// ProvideEdgesForData returns the provide edges targeting dataName (i.e.
// the operations that produce dataName).
func (n *Network) ProvideEdgesForData(dataName string) []ProvideEdge {
	return n.providesByData[dataName]
}

// SubdocParent returns the immediate subdoc ancestor of name, if any.
func (n *Network) SubdocParent(name string) (string, bool) {
	p, ok := n.subdocParent[name]
	return p, ok
}

// SubdocChildren returns the immediate subdoc descendants of name.
func (n *Network) SubdocChildren(name string) []string { return n.subdocChildren[name] }

// ChainRoot returns the topmost ancestor of name's subdoc chain, or name
// itself if it is not part of a chain.
func (n *Network) ChainRoot(name string) string {
	cur := name
	for {
		parent, ok := n.subdocParent[cur]
		if !ok {
			return cur
		}
		cur = parent
	}
}

// ChainMembers returns every node in name's subdoc chain (both
// directions: ancestors and descendants) — the conservative reading
// chosen where eviction and ancestor-restriction logic need to treat a
// whole subdoc chain as a single unit.
func (n *Network) ChainMembers(name string) []string {
	seen := map[string]bool{name: true}
	order := []string{name}
	cur := name
	for {
		parent, ok := n.subdocParent[cur]
		if !ok || seen[parent] {
			break
		}
		seen[parent] = true
		order = append(order, parent)
		cur = parent
	}
	var walk func(node string)
	walk = func(node string) {
		for _, child := range n.subdocChildren[node] {
			if !seen[child] {
				seen[child] = true
				order = append(order, child)
				walk(child)
			}
		}
	}
	walk(name)
	return order
}

// InsertionIndex returns the insertion order assigned to opName, used by
// the Step Sequencer as its deterministic tie-break.
func (n *Network) InsertionIndex(opName string) int {
	if node, ok := n.opNodes[opName]; ok {
		return node.Index
	}
	return -1
}

// String renders a compact repr used in error messages.
func (n *Network) String() string {
	ops := append([]string(nil), n.opOrder...)
	data := n.DataNodes()
	return fmt.Sprintf("Network(ops=[%s], data=[%s])", strings.Join(ops, ", "), strings.Join(data, ", "))
}

// Clone returns a deep-enough copy of n for the Pruner to mutate while
// breaking/restricting edges without touching the original network.
func (n *Network) Clone() *Network {
	c := New()
	c.nextIndex = n.nextIndex
	for name := range n.dataNodes {
		c.dataNodes[name] = true
	}
	for name, node := range n.opNodes {
		cp := *node
		c.opNodes[name] = &cp
	}
	c.opOrder = append([]string(nil), n.opOrder...)
	c.needEdges = append([]NeedEdge(nil), n.needEdges...)
	c.provideEdges = append([]ProvideEdge(nil), n.provideEdges...)
	c.subdocEdges = append([]SubdocEdge(nil), n.subdocEdges...)
	for k, v := range n.needsByOp {
		c.needsByOp[k] = append([]NeedEdge(nil), v...)
	}
	for k, v := range n.needsByData {
		c.needsByData[k] = append([]NeedEdge(nil), v...)
	}
	for k, v := range n.providesByOp {
		c.providesByOp[k] = append([]ProvideEdge(nil), v...)
	}
	for k, v := range n.providesByData {
		c.providesByData[k] = append([]ProvideEdge(nil), v...)
	}
	for k, v := range n.subdocParent {
		c.subdocParent[k] = v
	}
	for k, v := range n.subdocChildren {
		c.subdocChildren[k] = append([]string(nil), v...)
	}
	return c
}

// RemoveOperation deletes an operation node and all of its need/provide
// edges. It does not remove now-isolated data nodes; callers should
// follow up with RemoveDataNode once all removals for a pass are done.
func (n *Network) RemoveOperation(name string) {
	if _, ok := n.opNodes[name]; !ok {
		return
	}
	delete(n.opNodes, name)
	for i, on := range n.opOrder {
		if on == name {
			n.opOrder = append(n.opOrder[:i:i], n.opOrder[i+1:]...)
			break
		}
	}
	for _, e := range n.needsByOp[name] {
		n.needsByData[e.Data] = filterNeedEdgesByOp(n.needsByData[e.Data], name)
	}
	delete(n.needsByOp, name)
	for _, e := range n.providesByOp[name] {
		n.providesByData[e.Data] = filterProvideEdgesByOp(n.providesByData[e.Data], name)
	}
	delete(n.providesByOp, name)
}

// RemoveProvideEdgesTo deletes every provide edge (producer) targeting
// dataName, implementing Pruner step 3 ("break incoming non-subdoc edges
// at every given input"). The producing operations themselves are left
// in place; they are dropped later by the unsatisfied-operation sweep if
// they end up with no remaining provides.
func (n *Network) RemoveProvideEdgesTo(dataName string) {
	for _, e := range n.providesByData[dataName] {
		n.providesByOp[e.Op] = filterProvideEdgesByData(n.providesByOp[e.Op], dataName)
	}
	delete(n.providesByData, dataName)
}

// RemoveProvideEdge deletes the single op->dataName provide edge, leaving
// any other edges of op or dataName untouched. Used by the Pruner's
// output-ancestor restriction to drop an op's irrelevant provides without
// removing the operation itself.
func (n *Network) RemoveProvideEdge(opName, dataName string) {
	n.providesByOp[opName] = filterProvideEdgesByData(n.providesByOp[opName], dataName)
	n.providesByData[dataName] = filterProvideEdgesByOp(n.providesByData[dataName], opName)
}

func filterNeedEdgesByOp(edges []NeedEdge, opName string) []NeedEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.Op != opName {
			out = append(out, e)
		}
	}
	return out
}

func filterProvideEdgesByOp(edges []ProvideEdge, opName string) []ProvideEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.Op != opName {
			out = append(out, e)
		}
	}
	return out
}

func filterProvideEdgesByData(edges []ProvideEdge, dataName string) []ProvideEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.Data != dataName {
			out = append(out, e)
		}
	}
	return out
}

// RemoveDataNode deletes a data node that has no remaining edges. It
// returns false (and leaves the node in place) if the node still has
// need/provide/subdoc edges referencing it.
func (n *Network) RemoveDataNode(name string) bool {
	if len(n.needsByData[name]) > 0 || len(n.providesByData[name]) > 0 {
		return false
	}
	if _, ok := n.subdocParent[name]; ok {
		return false
	}
	if len(n.subdocChildren[name]) > 0 {
		return false
	}
	delete(n.dataNodes, name)
	return true
}
