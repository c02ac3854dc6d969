package core

// ToolSpec is the declaration of a tool offered to a model backend.
// Parameters follows the minimal JSON-schema object shape:
//
//	{"type": "object", "properties": {"p": {"type": "...", "description": "..."}}, "required": ["p"]}
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToDeclaration renders the spec in the function-calling declaration format
// understood by OpenAI-compatible backends.
func (s ToolSpec) ToDeclaration() map[string]any {
	params := s.Parameters
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"parameters":  params,
		},
	}
}

// RequiredParameters returns the names listed under "required" in declaration order.
func (s ToolSpec) RequiredParameters() []string {
	switch req := s.Parameters["required"].(type) {
	case []string:
		out := make([]string, len(req))
		copy(out, req)
		return out
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if name, ok := r.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// Properties returns the declared parameter property map (never nil).
func (s ToolSpec) Properties() map[string]any {
	if props, ok := s.Parameters["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}
