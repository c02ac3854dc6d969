package core

// KnowledgeStore stores short reference snippets (writing tips, domain
// guidance) that crews may retrieve to enrich a specialist's context.
type KnowledgeStore interface {
	Store(content string, metadata map[string]any) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Delete(id string) error
}

// SearchResult represents a retrieved snippet with a relevance score and arbitrary metadata.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}
