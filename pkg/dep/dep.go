// Package dep provides the dependency name model used by operations: a
// bare name plus a set of modifiers (optional, sideffect, keyword, jsonp,
// alias) that ride along on graph edges without affecting graph identity.
package dep

import (
	"strings"

	"github.com/xeipuuv/gojsonpointer"
)

// modifier is a bitset of the non-exclusive attributes a Dep may carry.
type modifier uint8

const (
	modOptional modifier = 1 << iota
	modSideeffect
	modKeyword
	modJSONPointer
	modAliasOf
	modSideeffected
)

// Dep is an immutable dependency name plus its modifiers. Two Deps with
// the same Name compare equal as graph identity regardless of modifiers;
// the graph uses Name as the node key, while edges carry the modifier
// attributes (Optional, Sideeffect, Keyword, ...).
type Dep struct {
	Name string

	mods modifier

	// KeywordName is the parameter name the value is delivered under, set
	// when IsKeyword() is true.
	KeywordName string

	// JSONPath holds the parsed sub-document segments when IsJSONPointer()
	// is true. JSONPath[0] is the topmost ancestor; JSONPath[len-1] is
	// Name's jsonp tail. Parsed with gojsonpointer so escaping (~0, ~1) and
	// segment boundaries match RFC 6901 rather than a hand-rolled split.
	JSONPath []string

	// AliasSource is the provide name this Dep aliases, set when
	// AliasOf() is true.
	AliasSource string

	// SideeffectTokens holds the tokens tying a real data name to one or
	// more side-effect tokens, set by Sideeffected.
	SideeffectTokens []string
}

// Plain returns an unmodified dependency on name.
func Plain(name string) Dep {
	return Dep{Name: name}
}

// Optional returns a copy of d tolerant of the input's absence.
func Optional(d Dep) Dep {
	d.mods |= modOptional
	return d
}

// Sideeffect returns a virtual dependency: no value flows, only ordering.
func Sideeffect(name string) Dep {
	return Dep{Name: name, mods: modSideeffect}
}

// Sideeffected ties a real data name to one or more side-effect tokens: it
// behaves as a real value for base but the edge additionally carries the
// given tokens.
func Sideeffected(base string, tokens ...string) Dep {
	return Dep{Name: base, mods: modSideeffected, SideeffectTokens: tokens}
}

// Keyword returns a copy of d delivered under parameter name kw. The core
// ignores kw for graph-identity purposes; it is preserved on the edge for
// the (external) execution engine.
func Keyword(d Dep, kw string) Dep {
	d.mods |= modKeyword
	d.KeywordName = kw
	return d
}

// JSONPointer returns a hierarchical dependency for the `/`-separated
// sub-document path. All proper prefixes of path become first-class data
// nodes chained by subdoc edges when the Graph Builder materializes it.
//
// path is parsed with gojsonpointer's segment tokenizer so RFC 6901
// escaping is honored; a leading "/" is optional and stripped if present.
func JSONPointer(path string) (Dep, error) {
	norm := path
	if !strings.HasPrefix(norm, "/") {
		norm = "/" + norm
	}
	ptr, err := gojsonpointer.NewJsonPointer(norm)
	if err != nil {
		return Dep{}, ErrInvalidJSONPointer(path, err)
	}
	tokens := ptr.DecodedTokens()
	if len(tokens) == 0 || (len(tokens) == 1 && tokens[0] == "") {
		return Dep{}, ErrInvalidJSONPointer(path, errEmptyPointer)
	}
	segs := make([]string, len(tokens))
	copy(segs, tokens)
	return Dep{
		Name:     strings.Join(segs, "/"),
		mods:     modJSONPointer,
		JSONPath: segs,
	}, nil
}

// MustJSONPointer is like JSONPointer but panics on error; intended for
// static dependency declarations at package init time.
func MustJSONPointer(path string) Dep {
	d, err := JSONPointer(path)
	if err != nil {
		panic(err)
	}
	return d
}

// AliasOf returns a provide that duplicates src's value under name: a
// secondary name for an existing provide of the same operation.
func AliasOf(name, src string) Dep {
	return Dep{Name: name, mods: modAliasOf, AliasSource: src}
}

// WithSet returns a copy of d with the given modifiers overridden; nil
// pointers leave the corresponding modifier untouched. This mirrors the
// withset(optional=, keyword=, ...) combinator used by declarative
// operation documents.
func (d Dep) WithSet(optional, sideeffect *bool, keyword *string) Dep {
	out := d
	if optional != nil {
		if *optional {
			out.mods |= modOptional
		} else {
			out.mods &^= modOptional
		}
	}
	if sideeffect != nil {
		if *sideeffect {
			out.mods |= modSideeffect
		} else {
			out.mods &^= modSideeffect
		}
	}
	if keyword != nil {
		out.mods |= modKeyword
		out.KeywordName = *keyword
	}
	return out
}

// IsOptional reports whether the operation tolerates this input's absence.
func (d Dep) IsOptional() bool { return d.mods&modOptional != 0 }

// IsSideeffect reports whether d is a virtual, value-less name.
func (d Dep) IsSideeffect() bool { return d.mods&modSideeffect != 0 }

// IsSideeffected reports whether d ties a real value to side-effect tokens.
func (d Dep) IsSideeffected() bool { return d.mods&modSideeffected != 0 }

// IsKeyword reports whether d carries a keyword delivery name.
func (d Dep) IsKeyword() bool { return d.mods&modKeyword != 0 }

// IsJSONPointer reports whether d is a hierarchical sub-document path.
func (d Dep) IsJSONPointer() bool { return d.mods&modJSONPointer != 0 }

// IsAliasOf reports whether d is an alias of another provide.
func (d Dep) IsAliasOf() bool { return d.mods&modAliasOf != 0 }

// Chain returns the ordered list of ancestor names for a jsonp Dep,
// from the topmost root to Name itself (inclusive). For a non-jsonp Dep
// it returns a single-element slice containing Name.
func (d Dep) Chain() []string {
	if !d.IsJSONPointer() || len(d.JSONPath) == 0 {
		return []string{d.Name}
	}
	chain := make([]string, len(d.JSONPath))
	acc := ""
	for i, seg := range d.JSONPath {
		if i == 0 {
			acc = seg
		} else {
			acc = acc + "/" + seg
		}
		chain[i] = acc
	}
	return chain
}

// Equal reports whether two Deps share the same graph identity (bare
// Name); modifiers are deliberately ignored: two deps with the same base
// name but different modifier sets compare equal as graph identity.
func (d Dep) Equal(other Dep) bool {
	return d.Name == other.Name
}

func (d Dep) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.IsOptional() {
		b.WriteString("?")
	}
	if d.IsSideeffect() {
		b.WriteString("(sfx)")
	}
	if d.IsKeyword() {
		b.WriteString("(kw:" + d.KeywordName + ")")
	}
	if d.IsAliasOf() {
		b.WriteString("(alias_of:" + d.AliasSource + ")")
	}
	return b.String()
}
