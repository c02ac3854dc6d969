package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chan-Developer/ReAct-agent/core"
)

func styleSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []any{"list", "select", "match"},
			},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"font_size": map[string]any{"type": "number", "minimum": 8},
				},
			},
		},
		"required": []string{"action"},
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	tests := map[string]map[string]any{
		"non-object top level": {"type": "string"},
		"properties not map":   {"type": "object", "properties": []any{"a"}},
		"unknown type":         {"type": "object", "properties": map[string]any{"a": map[string]any{"type": "banana"}}},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := CompileSchema(params)
			assert.ErrorIs(t, err, core.ErrInvalidSchema)
		})
	}
}

func TestCompileSchema_NilIsEmptyObject(t *testing.T) {
	s, err := CompileSchema(nil)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(map[string]any{"anything": 1}))
}

func TestSchema_Validate(t *testing.T) {
	s, err := CompileSchema(styleSchema())
	require.NoError(t, err)

	assert.NoError(t, s.Validate(map[string]any{"action": "list"}))
	assert.NoError(t, s.Validate(map[string]any{"action": "select", "options": map[string]any{"font_size": 10}}))

	tests := []struct {
		name  string
		args  map[string]any
		param string
	}{
		{"missing required", map[string]any{}, "action"},
		{"wrong type", map[string]any{"action": 3.0}, "action"},
		{"enum violation", map[string]any{"action": "delete"}, "action"},
		{"nested minimum", map[string]any{"action": "list", "options": map[string]any{"font_size": 2.0}}, "options.font_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrParameterValidation)

			var pErr *ParameterError
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tt.param, pErr.Parameter)
			assert.Contains(t, err.Error(), `"enum"`, "the expected schema is embedded")
		})
	}
}
