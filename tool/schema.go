package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/internal/util"
)

// Schema is a compiled parameter schema. Compilation happens once at
// registration so a broken declaration is rejected before any run starts.
type Schema struct {
	raw      map[string]any
	compiled *openapi3.Schema
	text     string
}

// CompileSchema checks that params is a usable JSON-schema object and
// compiles it. An empty map is treated as an object without properties.
func CompileSchema(params map[string]any) (*Schema, error) {
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}

	if t, ok := params["type"]; ok && t != "object" {
		return nil, fmt.Errorf("%w: top-level type must be \"object\", got %v", core.ErrInvalidSchema, t)
	}

	if props, ok := params["properties"]; ok {
		if _, isMap := props.(map[string]any); !isMap {
			return nil, fmt.Errorf("%w: properties must be an object", core.ErrInvalidSchema)
		}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSchema, err)
	}

	compiled := openapi3.NewSchema()
	if err := compiled.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSchema, err)
	}

	if err := compiled.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSchema, err)
	}

	return &Schema{raw: params, compiled: compiled, text: string(data)}, nil
}

// Raw returns the declared schema map.
func (s *Schema) Raw() map[string]any { return s.raw }

// String returns the schema as compact JSON. Validation failures embed it so
// the model can correct its call.
func (s *Schema) String() string { return s.text }

// Validate checks args against the schema. Required fields and primitive
// types are checked first with util.CheckArgs, which yields the
// friendliest messages; enum and nested constraints are then enforced by the
// compiled schema. Errors wrap core.ErrParameterValidation and name the
// offending parameter.
func (s *Schema) Validate(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	if err := util.CheckArgs(args, s.raw); err != nil {
		var vErr *util.ValidationError
		if errors.As(err, &vErr) {
			return &ParameterError{Parameter: vErr.Field, Reason: vErr.Message, Schema: s.text}
		}
		return &ParameterError{Reason: err.Error(), Schema: s.text}
	}

	normalized, err := normalizeJSON(args)
	if err != nil {
		return &ParameterError{Reason: fmt.Sprintf("arguments are not JSON encodable: %v", err), Schema: s.text}
	}

	if err := s.compiled.VisitJSON(normalized); err != nil {
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			return &ParameterError{
				Parameter: strings.Join(schemaErr.JSONPointer(), "."),
				Reason:    schemaErr.Reason,
				Schema:    s.text,
			}
		}
		return &ParameterError{Reason: err.Error(), Schema: s.text}
	}

	return nil
}

// ParameterError is a validation failure for one tool call.
type ParameterError struct {
	Parameter string
	Reason    string
	Schema    string
}

func (e *ParameterError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("invalid arguments: %s (expected schema: %s)", e.Reason, e.Schema)
	}
	return fmt.Sprintf("invalid parameter %q: %s (expected schema: %s)", e.Parameter, e.Reason, e.Schema)
}

// Unwrap returns core.ErrParameterValidation.
func (e *ParameterError) Unwrap() error { return core.ErrParameterValidation }

// normalizeJSON round-trips v through encoding/json so Go-typed values
// (ints, typed slices, structs) match the JSON types the schema expects.
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
