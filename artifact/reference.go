package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/Chan-Developer/ReAct-agent/core"
)

// TokenPrefix marks an artifact reference in tool arguments.
const TokenPrefix = "@"

var tokenPattern = regexp.MustCompile(`^@([A-Za-z0-9_.\-]+)$`)

// IsToken reports whether s is exactly one `@key` reference token.
func IsToken(s string) bool { return tokenPattern.MatchString(s) }

// Token returns the reference token for key.
func Token(key string) string { return TokenPrefix + key }

// KeyOf extracts the key from a token. ok is false when s is not a token.
func KeyOf(s string) (key string, ok bool) {
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// References is a view over an ArtifactStore bound to one run scope. Payloads
// are stored as JSON so they can be resolved back into tool arguments.
type References struct {
	store core.ArtifactStore
	scope string

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewReferences binds store to scope. A nil store gets a fresh InMemoryStore.
func NewReferences(store core.ArtifactStore, scope string) *References {
	if store == nil {
		store = NewInMemoryStore()
	}
	return &References{store: store, scope: scope, keys: make(map[string]struct{})}
}

// Scope returns the run scope the references are bound to.
func (r *References) Scope() string { return r.scope }

// Store returns the backing store.
func (r *References) Store() core.ArtifactStore { return r.store }

// Put stores the JSON encoding of payload under key and returns its token.
// []byte and json.RawMessage payloads holding valid JSON are stored as-is.
func (r *References) Put(key string, payload any) (string, error) {
	if !IsToken(Token(key)) {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}

	data, err := encodePayload(payload)
	if err != nil {
		return "", fmt.Errorf("encode artifact %q: %w", key, err)
	}

	if err := r.store.Save(r.scope, key, data); err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}

	r.mu.Lock()
	r.keys[key] = struct{}{}
	r.mu.Unlock()

	return Token(key), nil
}

// PutRaw stores data under key without encoding. data must be valid JSON.
func (r *References) PutRaw(key string, data []byte) (string, error) {
	if !json.Valid(data) {
		return "", fmt.Errorf("artifact %q: payload is not valid JSON", key)
	}
	return r.Put(key, json.RawMessage(data))
}

// Get returns the raw JSON payload stored under key.
func (r *References) Get(key string) ([]byte, error) {
	data, err := r.store.Get(r.scope, key)
	if err != nil {
		if errors.Is(err, core.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrReferenceNotFound, Token(key))
		}
		return nil, err
	}
	return data, nil
}

// Decode unmarshals the payload stored under key into v.
func (r *References) Decode(key string, v any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Resolve decodes the payload a token points to.
func (r *References) Resolve(token string) (any, error) {
	key, ok := KeyOf(token)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a reference token", core.ErrReferenceNotFound, token)
	}

	data, err := r.Get(key)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode artifact %q: %w", key, err)
	}
	return v, nil
}

// ResolveArgs returns a copy of args where every string value (at any depth)
// that is exactly a reference token is replaced by its decoded payload. The
// first unknown token aborts resolution with ErrReferenceNotFound.
func (r *References) ResolveArgs(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		rv, err := r.resolveValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func (r *References) resolveValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		if IsToken(t) {
			return r.Resolve(t)
		}
		return t, nil
	case map[string]any:
		return r.ResolveArgs(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			rv, err := r.resolveValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

// Keys returns the sorted keys written through this view.
func (r *References) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.keys))
	for k := range r.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export copies every artifact of this run into dst under scope. It is the
// explicit persistence hook; nothing is persisted implicitly.
func (r *References) Export(dst core.ArtifactStore, scope string) error {
	keys, err := r.store.List(r.scope)
	if err != nil {
		return err
	}
	for _, k := range keys {
		data, err := r.store.Get(r.scope, k)
		if err != nil {
			return fmt.Errorf("export %q: %w", k, err)
		}
		if err := dst.Save(scope, k, data); err != nil {
			return fmt.Errorf("export %q: %w", k, err)
		}
	}
	return nil
}

func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case json.RawMessage:
		if json.Valid(p) {
			return p, nil
		}
	case []byte:
		if json.Valid(p) {
			return p, nil
		}
		return json.Marshal(string(p))
	}
	return json.Marshal(payload)
}
