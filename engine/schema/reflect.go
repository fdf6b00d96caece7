package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// FromType derives a schema from a Go value's JSON shape. Fields without
// omitempty are required; unknown properties are allowed.
func FromType(v any) (Schema, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	reflected := r.Reflect(v)
	bytes, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reflected schema: %w", err)
	}
	var out Schema
	if err := json.Unmarshal(bytes, &out); err != nil {
		return nil, fmt.Errorf("failed to decode reflected schema: %w", err)
	}
	// Identifiers point at Go import paths and are not resolvable documents.
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}

// MustFromType is FromType for types known at compile time.
func MustFromType(v any) Schema {
	s, err := FromType(v)
	if err != nil {
		panic(err)
	}
	return s
}
