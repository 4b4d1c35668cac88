// Package graph implements the bipartite dependency graph: data nodes and
// operation nodes linked by need, provide, and subdoc edges.
//
// # Overview
//
// A Network is built once, via repeated Network.AppendOperation calls,
// and is read-only thereafter. Node identity is the bare dependency
// name: two Deps with the same name collapse onto the same data node
// regardless of their modifiers, while the modifiers themselves ride
// along on the edge (NeedEdge.Optional, ProvideEdge.AliasOf, ...).
//
// # Invariants
//
//   - No data->data edge except subdoc edges.
//   - No operation->operation edge.
//   - Appending a second operation with the same name fails with
//     ErrDuplicateOperation.
//   - For every alias_of=S edge op->A there exists an op->S edge too.
//   - Subdoc chain edges form a forest rooted at the topmost name.
//
// # Mutation for pruning
//
// Network exposes a small mutation surface (Clone, RemoveOperation,
// RemoveProvideEdgesTo, RemoveDataNode) used exclusively by the plan
// package's Pruner to build a working copy it can cut down; callers
// outside that package should treat a Network as immutable once built.
package graph
