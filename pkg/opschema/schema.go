// Package opschema loads a declarative JSON operation document (spec's
// Declarative Operation Documents enrichment) into []op.Operation,
// validating the document against a JSON Schema before building any
// operations.
package opschema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dagkit/graphkit/pkg/dep"
	"github.com/dagkit/graphkit/pkg/op"
)

// documentSchema is the JSON Schema every operation document must
// satisfy before it is parsed into Operations.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["operations"],
  "properties": {
    "operations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "needs": {"type": "array", "items": {"$ref": "#/definitions/dep"}},
          "provides": {"type": "array", "items": {"$ref": "#/definitions/dep"}},
          "endured": {"type": "boolean"},
          "rescheduled": {"type": "boolean"},
          "parallel": {"type": "boolean"}
        }
      }
    }
  },
  "definitions": {
    "dep": {
      "oneOf": [
        {"type": "string", "minLength": 1},
        {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "optional": {"type": "boolean"},
            "sideeffect": {"type": "boolean"},
            "jsonp": {"type": "boolean"},
            "keyword": {"type": "string"}
          }
        }
      ]
    }
  }
}`

// depDoc is one needs/provides entry after JSON unmarshalling; Name is
// always populated whether the source was a bare string or an object.
type depDoc struct {
	Name       string
	Optional   bool
	Sideeffect bool
	JSONP      bool
	Keyword    string
}

func (d *depDoc) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		d.Name = name
		return nil
	}
	var obj struct {
		Name       string `json:"name"`
		Optional   bool   `json:"optional"`
		Sideeffect bool   `json:"sideeffect"`
		JSONP      bool   `json:"jsonp"`
		Keyword    string `json:"keyword"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Name, d.Optional, d.Sideeffect, d.JSONP, d.Keyword = obj.Name, obj.Optional, obj.Sideeffect, obj.JSONP, obj.Keyword
	return nil
}

type operationDoc struct {
	Name        string   `json:"name"`
	Needs       []depDoc `json:"needs"`
	Provides    []depDoc `json:"provides"`
	Endured     bool     `json:"endured"`
	Rescheduled bool     `json:"rescheduled"`
	Parallel    bool     `json:"parallel"`
}

type document struct {
	Operations []operationDoc `json:"operations"`
}

// Load validates raw against documentSchema and converts it into
// operations, in document order.
func Load(raw []byte) ([]op.Operation, error) {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("opschema: validate: %w", err)
	}
	if !result.Valid() {
		return nil, &ValidationError{Errors: result.Errors()}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("opschema: decode: %w", err)
	}

	ops := make([]op.Operation, 0, len(doc.Operations))
	for _, od := range doc.Operations {
		built, err := buildOperation(od)
		if err != nil {
			return nil, err
		}
		ops = append(ops, built)
	}
	return ops, nil
}

func buildOperation(od operationDoc) (op.Operation, error) {
	needs, err := buildDeps(od.Needs)
	if err != nil {
		return op.Operation{}, fmt.Errorf("opschema: operation %q needs: %w", od.Name, err)
	}
	provides, err := buildDeps(od.Provides)
	if err != nil {
		return op.Operation{}, fmt.Errorf("opschema: operation %q provides: %w", od.Name, err)
	}
	opts := []op.Option{
		op.WithEndured(od.Endured),
		op.WithRescheduled(od.Rescheduled),
		op.WithParallel(od.Parallel),
	}
	return op.New(od.Name, needs, provides, opts...)
}

func buildDeps(docs []depDoc) ([]dep.Dep, error) {
	out := make([]dep.Dep, 0, len(docs))
	for _, d := range docs {
		built, err := buildDep(d)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func buildDep(d depDoc) (dep.Dep, error) {
	var built dep.Dep
	var err error
	if d.JSONP {
		built, err = dep.JSONPointer(d.Name)
		if err != nil {
			return dep.Dep{}, err
		}
	} else {
		built = dep.Plain(d.Name)
	}
	if d.Optional {
		built = dep.Optional(built)
	}
	if d.Sideeffect {
		sideeffect := true
		built = built.WithSet(nil, &sideeffect, nil)
	}
	if d.Keyword != "" {
		built = dep.Keyword(built, d.Keyword)
	}
	return built, nil
}
