// Package op defines the Operation record and the Producer interface that
// the Pipeline Composer merges: the named unit of work declaring ordered
// needs and provides, plus opaque policy flags the core propagates to
// consumers without interpreting.
package op

import (
	"fmt"
	"strings"

	"github.com/dagkit/graphkit/pkg/dep"
)

// AliasPair ties a source provide name to an additional name it should
// also be reachable under.
type AliasPair struct {
	Src   string
	Alias string
}

// NodeProps carries caller-defined, opaque key/value metadata attached to
// an operation node. The core never interprets these; they are surfaced
// to collaborators (plotting, execution engine) verbatim.
type NodeProps map[string]interface{}

// Operation is the immutable unit of work: a name, ordered needs and
// provides, optional aliases, and opaque policy flags.
type Operation struct {
	Name     string
	Needs    []dep.Dep
	Provides []dep.Dep
	Aliases  []AliasPair

	// OpNeeds/OpProvides, when non-nil, override Needs/Provides for
	// aggregate reporting — used by pipelines (a Producer that is itself
	// a merged network) to report their aggregate needs/provides instead
	// of their literal field values.
	OpNeeds    []dep.Dep
	OpProvides []dep.Dep

	// Opaque policy flags, propagated but never interpreted by the core.
	Endured     bool
	Rescheduled bool
	Parallel    bool
	Marshalled  bool
	ReturnsDict bool
	NodeProps   NodeProps
}

// Producer is any object the Pipeline Composer can merge: an Operation,
// or a pipeline reporting an aggregate view via NeedsOf/ProvidesOf.
type Producer interface {
	OpName() string
	NeedsOf() []dep.Dep
	ProvidesOf() []dep.Dep
	AliasesOf() []AliasPair
	Policy() Policy
}

// Policy bundles the opaque flags propagated from a Producer.
type Policy struct {
	Endured     bool
	Rescheduled bool
	Parallel    bool
	Marshalled  bool
	ReturnsDict bool
	NodeProps   NodeProps
}

// New builds an Operation, validating that every alias source is one of
// the declared provides.
func New(name string, needs, provides []dep.Dep, opts ...Option) (Operation, error) {
	o := Operation{Name: name, Needs: needs, Provides: provides}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validateAliases(); err != nil {
		return Operation{}, err
	}
	return o, nil
}

// MustNew is like New but panics on error; for static declarations.
func MustNew(name string, needs, provides []dep.Dep, opts ...Option) Operation {
	o, err := New(name, needs, provides, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

func (o *Operation) validateAliases() error {
	provided := make(map[string]bool, len(o.Provides))
	for _, p := range o.Provides {
		provided[p.Name] = true
	}
	for _, a := range o.Aliases {
		if !provided[a.Src] {
			return ErrUnknownAliasSource(o.Name, a.Src)
		}
	}
	return nil
}

// Option mutates an Operation at construction time.
type Option func(*Operation)

// WithAliases declares aliases for provides of this operation.
func WithAliases(aliases ...AliasPair) Option {
	return func(o *Operation) { o.Aliases = append(o.Aliases, aliases...) }
}

// WithEndured marks the operation as tolerant of its own execution errors.
func WithEndured(v bool) Option { return func(o *Operation) { o.Endured = v } }

// WithRescheduled marks the operation eligible for re-scheduling by the
// (external) execution engine.
func WithRescheduled(v bool) Option { return func(o *Operation) { o.Rescheduled = v } }

// WithParallel marks the operation eligible for parallel dispatch.
func WithParallel(v bool) Option { return func(o *Operation) { o.Parallel = v } }

// WithMarshalled marks the operation's invocation as requiring marshalling
// across a process boundary.
func WithMarshalled(v bool) Option { return func(o *Operation) { o.Marshalled = v } }

// WithReturnsDict marks the operation's single return value as a
// dict-like structure whose keys are already its provide names.
func WithReturnsDict(v bool) Option { return func(o *Operation) { o.ReturnsDict = v } }

// WithNodeProps attaches opaque metadata to the operation node.
func WithNodeProps(props NodeProps) Option { return func(o *Operation) { o.NodeProps = props } }

// OpName implements Producer.
func (o Operation) OpName() string { return o.Name }

// NeedsOf implements Producer, returning OpNeeds when set, else Needs.
func (o Operation) NeedsOf() []dep.Dep {
	if o.OpNeeds != nil {
		return o.OpNeeds
	}
	return o.Needs
}

// ProvidesOf implements Producer, returning OpProvides when set, else Provides.
func (o Operation) ProvidesOf() []dep.Dep {
	if o.OpProvides != nil {
		return o.OpProvides
	}
	return o.Provides
}

// AliasesOf implements Producer.
func (o Operation) AliasesOf() []AliasPair { return o.Aliases }

// Policy implements Producer.
func (o Operation) Policy() Policy {
	return Policy{
		Endured:     o.Endured,
		Rescheduled: o.Rescheduled,
		Parallel:    o.Parallel,
		Marshalled:  o.Marshalled,
		ReturnsDict: o.ReturnsDict,
		NodeProps:   o.NodeProps,
	}
}

// WithRenamed returns a copy of o with its needs/provides renamed
// according to the given maps (old name -> new name); unmapped deps are
// left untouched. Modifiers on renamed deps are preserved. This supports
// the Pipeline Composer's renamer without mutating the shared, immutable
// Operation value (see original_source's rebind-without-mutation pattern).
func (o Operation) WithRenamed(needs, provides map[string]string) Operation {
	out := o
	out.Needs = renameDeps(o.Needs, needs)
	out.Provides = renameDeps(o.Provides, provides)
	if o.OpNeeds != nil {
		out.OpNeeds = renameDeps(o.OpNeeds, needs)
	}
	if o.OpProvides != nil {
		out.OpProvides = renameDeps(o.OpProvides, provides)
	}
	if len(o.Aliases) > 0 {
		aliases := make([]AliasPair, len(o.Aliases))
		for i, a := range o.Aliases {
			na := a
			if n, ok := provides[a.Src]; ok {
				na.Src = n
			}
			if n, ok := provides[a.Alias]; ok {
				na.Alias = n
			}
			aliases[i] = na
		}
		out.Aliases = aliases
	}
	return out
}

// renameDeps rewrites dep names per mapping, leaving a JSON-pointer Dep
// untouched even if mapping names it: its Name is derived from JSONPath,
// and rewriting Name alone without rewriting every chained ancestor's
// JSONPath would desynchronize the two, breaking Chain().
func renameDeps(deps []dep.Dep, mapping map[string]string) []dep.Dep {
	if len(mapping) == 0 {
		return deps
	}
	out := make([]dep.Dep, len(deps))
	for i, d := range deps {
		if d.IsJSONPointer() {
			out[i] = d
			continue
		}
		if newName, ok := mapping[d.Name]; ok {
			renamed := d
			renamed.Name = newName
			out[i] = renamed
		} else {
			out[i] = d
		}
	}
	return out
}

// String renders a compact repr used in error messages.
func (o Operation) String() string {
	needs := make([]string, len(o.Needs))
	for i, n := range o.Needs {
		needs[i] = n.String()
	}
	provides := make([]string, len(o.Provides))
	for i, p := range o.Provides {
		provides[i] = p.String()
	}
	return fmt.Sprintf("Operation(%s, needs=[%s], provides=[%s])",
		o.Name, strings.Join(needs, ", "), strings.Join(provides, ", "))
}
