// Package plan implements the Pruner and Step Sequencer: Prune reduces a
// Network to the sub-graph that can actually run given a set of inputs,
// outputs and an optional predicate; Sequence orders the survivors into a
// deterministic list of operation and eviction Steps.
//
// Prune and Sequence are split so the Plan Cache (pkg/plancache) can key
// on the (inputs, outputs, predicate) tuple alone: compiling twice with
// the same tuple against the same network always yields bit-identical
// Steps, since both stages are free of map-iteration-order dependence.
package plan
