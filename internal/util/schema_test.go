package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID string `json:"id"`
}

type args struct {
	base
	Query   string            `json:"query" description:"Search text"`
	Limit   *int              `json:"limit"`
	Tags    []string          `json:"tags,omitempty"`
	Filters map[string]string `json:"filters"`
	Score   float32
	Secret  string `json:"-"`
	hidden  string
}

func TestStructSchema(t *testing.T) {
	schema := StructSchema(&args{hidden: "x"})

	props := schema["properties"].(map[string]any)
	assert.Len(t, props, 6)
	assert.Contains(t, props, "id")
	assert.NotContains(t, props, "Secret")
	assert.NotContains(t, props, "hidden")
	assert.NotContains(t, props, "base")

	assert.Equal(t, map[string]any{"type": "string", "description": "Search text"}, props["query"])
	assert.Equal(t, "integer", props["limit"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])
	assert.Equal(t, "object", props["filters"].(map[string]any)["type"])
	assert.Equal(t, "number", props["Score"].(map[string]any)["type"])

	assert.Equal(t, []string{"id", "query", "filters", "Score"}, RequiredFields(schema))
}

func TestStructSchema_NotAStruct(t *testing.T) {
	for _, v := range []any{nil, 3, "text", map[string]any{}} {
		schema := StructSchema(v)
		assert.Equal(t, "object", schema["type"])
		assert.Empty(t, schema["properties"])
		assert.NotContains(t, schema, "required")
	}
}

func TestCheckArgs(t *testing.T) {
	schema := StructSchema(args{})

	ok := map[string]any{"id": "1", "query": "go", "filters": map[string]any{}, "Score": 1, "limit": 3.0, "extra": true}
	assert.NoError(t, CheckArgs(ok, schema))

	withNil := map[string]any{"id": "1", "query": nil, "filters": nil, "Score": nil}
	assert.NoError(t, CheckArgs(withNil, schema))

	err := CheckArgs(map[string]any{"id": "1"}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "query", vErr.Field)
	assert.EqualError(t, err, `argument "query": is required`)

	err = CheckArgs(map[string]any{"id": "1", "query": "go", "filters": map[string]any{}, "Score": 1, "limit": 2.5}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "limit", vErr.Field)
	assert.Equal(t, 2.5, vErr.Value)
	assert.Equal(t, "expected type integer, got float64", vErr.Message)
}
