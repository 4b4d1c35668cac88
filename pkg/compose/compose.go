// Package compose implements the Pipeline Composer: a name-keyed,
// insertion-ordered merge of Operations where earlier entries
// win, with an optional per-builder renamer for nesting one pipeline
// inside another. Builder.Add takes one op.Operation at a time; a nested
// Pipeline is merged by adding its Operations.
package compose

import (
	"strings"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

// NodeTag distinguishes which kind of name a Renamer is being asked to
// decide on: an operation's own name, or one of its dependency names.
type NodeTag int

const (
	// TagOperation marks a decision about an operation's own name.
	TagOperation NodeTag = iota
	// TagDependency marks a decision about one of an operation's
	// need/provide dependency names.
	TagDependency
)

// RenameDecision is the result of a Renamer call for one data or
// operation name: Rename(newName) gives it an explicit new name,
// NestDefault asks the Composer to apply its default nest prefix, and
// Keep leaves the name untouched.
type RenameDecision struct {
	kind     renameKind
	newName  string
}

type renameKind int

const (
	renameKeep renameKind = iota
	renameExplicit
	renameNestDefault
)

// Rename returns a decision that renames the node to newName.
func Rename(newName string) RenameDecision { return RenameDecision{kind: renameExplicit, newName: newName} }

// NestDefault returns a decision that applies the Composer's default
// nesting prefix to the node.
func NestDefault() RenameDecision { return RenameDecision{kind: renameNestDefault} }

// Keep returns a decision that leaves the node's name untouched.
func Keep() RenameDecision { return RenameDecision{kind: renameKeep} }

// Renamer decides, per data or operation name, how a nested pipeline's
// nodes should be renamed when merged into an outer one. tag says
// whether name is the operation's own name or one of its dependency
// names; parent is the nest prefix configured via WithNestPrefix (with
// its trailing separator stripped), letting a renamer condition its
// decision on which nested pipeline a name came from.
//
// The Composer never calls a Renamer for a JSON-pointer dependency's
// name: renaming one segment of a subdoc chain without rewriting every
// other chained Dep's JSONPath would desynchronize Name from JSONPath,
// so jsonp dependency names always pass through untouched.
type Renamer func(tag NodeTag, name string, parent string) RenameDecision

// NullOp is a sentinel Producer with no needs and no provides, used to
// mark a name as intentionally absent from a merge without
// upsetting downstream code that expects every merged name to resolve to
// a Producer.
func NullOp(name string) op.Operation {
	return op.MustNew(name, nil, nil)
}

// IsNullOp reports whether o is a NullOp sentinel.
func IsNullOp(o op.Operation) bool {
	return len(o.Needs) == 0 && len(o.Provides) == 0 && o.OpNeeds == nil && o.OpProvides == nil
}

// Pipeline is the result of composing one or more Producers: an
// insertion-ordered, name-deduplicated list of Operations plus the
// aggregate policy flags overlaid from its members.
type Pipeline struct {
	Name       string
	Operations []op.Operation
	policy     op.Policy
}

// NeedsOf implements op.Producer, returning the aggregate needs across
// every member operation (deduplicated, insertion-ordered).
func (p Pipeline) NeedsOf() []dep.Dep { return aggregateDeps(p.Operations, func(o op.Operation) []dep.Dep { return o.NeedsOf() }) }

// ProvidesOf implements op.Producer, returning the aggregate provides
// across every member operation (deduplicated, insertion-ordered).
func (p Pipeline) ProvidesOf() []dep.Dep {
	return aggregateDeps(p.Operations, func(o op.Operation) []dep.Dep { return o.ProvidesOf() })
}

// OpName implements op.Producer.
func (p Pipeline) OpName() string { return p.Name }

// AliasesOf implements op.Producer, aggregating every member's aliases.
func (p Pipeline) AliasesOf() []op.AliasPair {
	var out []op.AliasPair
	for _, o := range p.Operations {
		out = append(out, o.AliasesOf()...)
	}
	return out
}

// Policy implements op.Producer, returning the overlaid aggregate policy.
func (p Pipeline) Policy() op.Policy { return p.policy }

func aggregateDeps(ops []op.Operation, pick func(op.Operation) []dep.Dep) []dep.Dep {
	seen := make(map[string]bool)
	var out []dep.Dep
	for _, o := range ops {
		for _, d := range pick(o) {
			if !seen[d.Name] {
				seen[d.Name] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// Builder accumulates Operations into a merged Pipeline.
type Builder struct {
	name       string
	nestPrefix string
	renamer    Renamer

	order []string
	byKey map[string]op.Operation
}

// Option configures a Builder.
type Option func(*Builder)

// WithNestPrefix sets the default prefix applied to nested names when a
// Renamer returns NestDefault.
func WithNestPrefix(prefix string) Option { return func(b *Builder) { b.nestPrefix = prefix } }

// WithRenamer installs a per-name Renamer.
func WithRenamer(r Renamer) Option { return func(b *Builder) { b.renamer = r } }

// New returns a Builder for a pipeline named name.
func New(name string, opts ...Option) *Builder {
	b := &Builder{
		name:  name,
		order: nil,
		byKey: make(map[string]op.Operation),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add merges o into the pipeline. If a Renamer is installed, o's needs,
// provides and name are rewritten through it first. Earlier Add calls win
// on name collisions: a later operation sharing a name with an
// already-added one is dropped, matching the package's "earlier entries
// win" merge rule.
func (b *Builder) Add(o op.Operation) {
	renamed := b.applyRenamer(o)
	if _, exists := b.byKey[renamed.Name]; exists {
		return
	}
	b.byKey[renamed.Name] = renamed
	b.order = append(b.order, renamed.Name)
}

func (b *Builder) applyRenamer(o op.Operation) op.Operation {
	if b.renamer == nil {
		return o
	}
	needRename := make(map[string]string)
	provRename := make(map[string]string)
	for _, d := range o.Needs {
		if d.IsJSONPointer() {
			continue
		}
		if mapped, ok := b.renamed(TagDependency, d.Name); ok {
			needRename[d.Name] = mapped
		}
	}
	for _, d := range o.Provides {
		if d.IsJSONPointer() {
			continue
		}
		if mapped, ok := b.renamed(TagDependency, d.Name); ok {
			provRename[d.Name] = mapped
		}
	}
	renamed := o.WithRenamed(needRename, provRename)
	if mapped, ok := b.renamed(TagOperation, o.Name); ok {
		renamed.Name = mapped
	}
	return renamed
}

func (b *Builder) renamed(tag NodeTag, name string) (string, bool) {
	parent := strings.TrimSuffix(b.nestPrefix, ".")
	decision := b.renamer(tag, name, parent)
	switch decision.kind {
	case renameExplicit:
		return decision.newName, true
	case renameNestDefault:
		return b.nestPrefix + name, true
	default:
		return "", false
	}
}

// Build finalizes the merge into a Pipeline, overlaying the policy flags
// of every non-NullOp member (any member with a flag set turns that flag
// on for the aggregate).
func (b *Builder) Build() Pipeline {
	ops := make([]op.Operation, 0, len(b.order))
	var policy op.Policy
	for _, name := range b.order {
		o := b.byKey[name]
		ops = append(ops, o)
		if IsNullOp(o) {
			continue
		}
		p := o.Policy()
		policy.Endured = policy.Endured || p.Endured
		policy.Rescheduled = policy.Rescheduled || p.Rescheduled
		policy.Parallel = policy.Parallel || p.Parallel
		policy.Marshalled = policy.Marshalled || p.Marshalled
		policy.ReturnsDict = policy.ReturnsDict || p.ReturnsDict
	}
	return Pipeline{Name: b.name, Operations: ops, policy: policy}
}
