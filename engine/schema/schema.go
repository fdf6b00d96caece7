package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// -----------------------------------------------------------------------------
// Schema
// -----------------------------------------------------------------------------

type Schema map[string]any
type Result = jsonschema.EvaluationResult

func (s *Schema) String() string {
	bytes, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(bytes)
}

func (s *Schema) Compile() (*jsonschema.Schema, error) {
	if s == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// ValidationError lists the schema violations of a value.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// Validator is a compiled schema, safe for concurrent use.
type Validator struct {
	source   Schema
	compiled *jsonschema.Schema
}

// NewValidator compiles s once.
func NewValidator(s Schema) (*Validator, error) {
	compiled, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return &Validator{source: s, compiled: compiled}, nil
}

// Schema returns the source document.
func (v *Validator) Schema() Schema {
	return v.source
}

// Validate checks value, which must be JSON-shaped (maps, slices, float64,
// strings, bools, nil). A *ValidationError is returned on violations.
func (v *Validator) Validate(_ context.Context, value any) error {
	if v == nil || v.compiled == nil {
		return nil
	}
	result := v.compiled.Validate(value)
	if result.Valid {
		return nil
	}
	violations := collectViolations(result, "", nil)
	sort.Strings(violations)
	violations = slices.Compact(violations)
	if len(violations) == 0 {
		violations = append(violations, "value does not match schema")
	}
	return &ValidationError{Violations: violations}
}

// applicators report a summary when a subschema fails; the failing child
// carries the useful message.
var applicators = map[string]bool{
	"properties":           true,
	"patternProperties":    true,
	"additionalProperties": true,
	"items":                true,
	"prefixItems":          true,
	"allOf":                true,
	"anyOf":                true,
	"oneOf":                true,
	"$ref":                 true,
}

// collectViolations walks the evaluation tree and reports each failure as
// "<instance path>: <keyword>: <message>". Locations in the tree are relative
// to the parent node.
func collectViolations(r *Result, base string, out []string) []string {
	if r == nil || r.Valid {
		return out
	}
	path := base + r.InstanceLocation
	failedChild := false
	for _, d := range r.Details {
		if d != nil && !d.Valid {
			failedChild = true
			out = collectViolations(d, path, out)
		}
	}
	at := path
	if at == "" {
		at = "/"
	}
	for keyword, evalErr := range r.Errors {
		if failedChild && applicators[keyword] {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s: %v", at, keyword, evalErr))
	}
	return out
}
