package builtin

import (
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/tool"
)

// SearchArgs are the knowledge_search parameters.
type SearchArgs struct {
	Query string `json:"query" description:"Keywords to look up"`
	Limit *int   `json:"limit" description:"Maximum number of snippets (default 3)"`
}

// NewKnowledgeSearch returns a tool searching store for snippets.
func NewKnowledgeSearch(store core.KnowledgeStore) *tool.FunctionTool {
	return tool.NewFunctionToolFromStruct(
		"knowledge_search",
		"Search the knowledge base for tips and reference snippets",
		SearchArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			limit := 3
			if l, ok := args["limit"].(float64); ok && l > 0 {
				limit = int(l)
			}

			results, err := store.Search(query, limit)
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return "no matching entries for " + query, nil
			}

			snippets := make([]map[string]any, 0, len(results))
			for _, r := range results {
				snippets = append(snippets, map[string]any{
					"content": r.Content,
					"score":   r.Score,
				})
			}
			return snippets, nil
		},
	)
}
