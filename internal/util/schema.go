package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError names the argument that failed a schema check.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Field, e.Message)
}

// StructSchema describes the exported fields of a struct as a JSON schema
// object. Names come from the json tag; the description and enum tags carry
// over. Fields are required unless they are pointers or tagged omitempty.
// Anything but a struct yields an empty object schema.
func StructSchema(v any) map[string]any {
	props := map[string]any{}
	schema := map[string]any{"type": "object", "properties": props}

	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	var required []string
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, optional, skip := jsonName(f)
		if skip {
			continue
		}

		prop := map[string]any{"type": jsonType(f.Type)}
		if d := f.Tag.Get("description"); d != "" {
			prop["description"] = d
		}
		if e := f.Tag.Get("enum"); e != "" {
			var values []any
			for _, v := range strings.Split(e, ",") {
				values = append(values, strings.TrimSpace(v))
			}
			prop["enum"] = values
		}
		props[name] = prop

		if !optional && f.Type.Kind() != reflect.Pointer {
			required = append(required, name)
		}
	}

	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// jsonName reports the field's JSON name, whether it is omitempty, and
// whether encoding skips it.
func jsonName(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}

// CheckArgs is a quick pass over args: required names must be present and
// top-level values must match their declared primitive type. Undeclared
// arguments and nil values pass.
func CheckArgs(args map[string]any, schema map[string]any) error {
	for _, name := range RequiredFields(schema) {
		if _, ok := args[name]; !ok {
			return &ValidationError{Field: name, Message: "is required"}
		}
	}

	props, _ := schema["properties"].(map[string]any)
	for name, v := range args {
		prop, _ := props[name].(map[string]any)
		want, _ := prop["type"].(string)
		if want == "" || v == nil || hasType(v, want) {
			continue
		}
		return &ValidationError{Field: name, Value: v, Message: fmt.Sprintf("expected type %s, got %T", want, v)}
	}

	return nil
}

// RequiredFields returns the schema's required list whether it was declared
// in Go ([]string) or decoded from JSON ([]any).
func RequiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// hasType reports whether v fits a JSON schema type. A float64 counts as an
// integer when it has no fraction, since decoded JSON numbers are float64.
func hasType(v any, want string) bool {
	k := reflect.TypeOf(v).Kind()
	switch want {
	case "string":
		return k == reflect.String
	case "boolean":
		return k == reflect.Bool
	case "integer":
		if f, ok := v.(float64); ok {
			return f == float64(int64(f))
		}
		return isInt(k)
	case "number":
		return isInt(k) || k == reflect.Float32 || k == reflect.Float64
	case "array":
		return k == reflect.Slice || k == reflect.Array
	case "object":
		return k == reflect.Map
	default:
		return true
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}
