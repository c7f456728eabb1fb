// Package schema derives JSON Schema descriptors from Go types and enforces
// them on raw capability output.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonschema"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Descriptor is a compiled JSON Schema document.
type Descriptor struct {
	name     string
	raw      []byte
	doc      map[string]any
	compiled *jsonschema.Schema
}

// New compiles a descriptor from a JSON Schema document.
func New(name string, raw []byte) (*Descriptor, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", name, err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Descriptor{name: name, raw: raw, doc: doc, compiled: compiled}, nil
}

// Reflect builds a descriptor from the jsonschema tags of v. Only fields
// tagged `jsonschema:"required"` are required; nested types are inlined.
func Reflect(name string, v any) (*Descriptor, error) {
	r := &invopop.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
	}
	raw, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshaling schema %s: %w", name, err)
	}
	return New(name, raw)
}

var (
	pathwayOnce sync.Once
	pathway     *Descriptor
)

// ForPathway returns the LearningPathway descriptor.
func ForPathway() *Descriptor {
	pathwayOnce.Do(func() {
		d, err := Reflect("learning_pathway", &types.LearningPathway{})
		if err != nil {
			panic(err)
		}
		pathway = d
	})
	return pathway
}

// Name returns the descriptor name.
func (d *Descriptor) Name() string { return d.name }

// Map returns the schema document.
func (d *Descriptor) Map() map[string]any { return d.doc }

// String returns the schema as compact JSON.
func (d *Descriptor) String() string { return string(d.raw) }

// Validate checks raw JSON against the schema. Non-JSON input and any
// violation yield a *types.SchemaValidationError.
func (d *Descriptor) Validate(raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return &types.SchemaValidationError{Err: fmt.Errorf("decoding %s: %w", d.name, err)}
	}

	res := d.compiled.Validate(instance)
	if res.Valid {
		return nil
	}
	return &types.SchemaValidationError{Violations: violations(res)}
}

// Decode validates raw and unmarshals it into v.
func (d *Descriptor) Decode(raw []byte, v any) error {
	if err := d.Validate(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &types.SchemaValidationError{Err: fmt.Errorf("decoding %s: %w", d.name, err)}
	}
	return nil
}

// violations flattens an evaluation tree into sorted "location: message"
// lines. Each result's InstanceLocation is relative to its parent, so the
// absolute pointer is accumulated on the way down.
func violations(res *jsonschema.EvaluationResult) []string {
	seen := map[string]bool{}
	var out []string

	var walk func(r *jsonschema.EvaluationResult, parent string)
	walk = func(r *jsonschema.EvaluationResult, parent string) {
		if r == nil {
			return
		}
		path := parent + r.InstanceLocation
		for _, e := range r.Errors {
			loc := path
			if loc == "" {
				loc = "/"
			}
			msg := fmt.Sprintf("%s: %s", loc, e.Error())
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
		}
		for _, detail := range r.Details {
			walk(detail, path)
		}
	}
	walk(res, "")

	sort.Strings(out)
	if len(out) == 0 {
		out = []string{"/: does not match schema"}
	}
	return out
}
