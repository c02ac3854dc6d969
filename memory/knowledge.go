package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/Chan-Developer/ReAct-agent/core"
)

// ErrNotFound is returned when a snippet id is unknown.
var ErrNotFound = errors.New("knowledge snippet not found")

// TagsKey is the metadata key holding a snippet's tags ([]string or []any).
const TagsKey = "tags"

// tagBonus is added per matching tag.
const tagBonus = 0.25

type snippet struct {
	id       string
	content  string
	tokens   map[string]struct{}
	tags     []string
	metadata map[string]any
	seq      int
}

// KnowledgeStore is a process-local keyword index over short snippets.
// A snippet scores by the share of query terms it contains plus a bonus per
// matching tag. It is safe for concurrent use.
type KnowledgeStore struct {
	mu       sync.RWMutex
	snippets map[string]*snippet
	next     int
}

var _ core.KnowledgeStore = (*KnowledgeStore)(nil)

// NewKnowledgeStore creates an empty store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{snippets: make(map[string]*snippet)}
}

// Store adds a snippet and returns its id.
func (k *KnowledgeStore) Store(content string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("knowledge snippet must not be empty")
	}

	md := make(map[string]any, len(metadata))
	for key, v := range metadata {
		md[key] = v
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	id := fmt.Sprintf("kn_%d", k.next)
	k.snippets[id] = &snippet{
		id:       id,
		content:  content,
		tokens:   tokenSet(content),
		tags:     tagsOf(md),
		metadata: md,
		seq:      k.next,
	}
	k.next++

	return id, nil
}

// Search returns up to limit snippets ordered by descending score, then by
// insertion order. Snippets without any match are left out; an empty query
// returns the first snippets with score zero.
func (k *KnowledgeStore) Search(query string, limit int) ([]core.SearchResult, error) {
	if limit <= 0 {
		return []core.SearchResult{}, nil
	}

	terms := tokenList(query)
	lowered := strings.ToLower(strings.TrimSpace(query))

	k.mu.RLock()
	defer k.mu.RUnlock()

	type scored struct {
		s     *snippet
		score float64
	}
	hits := make([]scored, 0, len(k.snippets))

	for _, s := range k.snippets {
		if len(terms) == 0 {
			hits = append(hits, scored{s: s})
			continue
		}

		score := 0.0
		matched := 0
		for _, term := range terms {
			if _, ok := s.tokens[term]; ok {
				matched++
			}
		}
		score = float64(matched) / float64(len(terms))

		// unsegmented scripts: fall back to a phrase match
		if matched == 0 && lowered != "" && strings.Contains(strings.ToLower(s.content), lowered) {
			score = 1
		}

		for _, tag := range s.tags {
			for _, term := range terms {
				if tag == term {
					score += tagBonus
				}
			}
		}

		if score > 0 {
			hits = append(hits, scored{s: s, score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].s.seq < hits[j].s.seq
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]core.SearchResult, len(hits))
	for i, h := range hits {
		md := make(map[string]any, len(h.s.metadata))
		for key, v := range h.s.metadata {
			md[key] = v
		}
		results[i] = core.SearchResult{ID: h.s.id, Content: h.s.content, Score: h.score, Metadata: md}
	}

	return results, nil
}

// Delete removes a snippet.
func (k *KnowledgeStore) Delete(id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.snippets[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(k.snippets, id)

	return nil
}

// Len returns the number of stored snippets.
func (k *KnowledgeStore) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.snippets)
}

func tokenList(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func tokenSet(text string) map[string]struct{} {
	terms := tokenList(text)
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

func tagsOf(md map[string]any) []string {
	var tags []string
	switch t := md[TagsKey].(type) {
	case []string:
		tags = t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				tags = append(tags, s)
			}
		}
	}

	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = strings.ToLower(tag)
	}
	return out
}
