package tool

import (
	"fmt"
	"strings"

	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// Registry maps tool names to implementations.
//
// It is built once at startup and then only read. Reads are safe from many
// goroutines; writes are not synchronized, so finish registering before the
// registry is shared.
type Registry struct {
	entries map[string]*entry
	order   []string
	logger  logging.Logger
}

type entry struct {
	tool   Tool
	schema *Schema
}

// NewRegistry creates an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		entries: make(map[string]*entry),
		logger:  opts.Logger,
	}
}

type registerOptions struct {
	overwrite bool
}

// RegisterOption tunes a single Register call.
type RegisterOption func(o *registerOptions)

// WithOverwrite replaces an existing tool of the same name instead of failing.
// The replaced tool keeps its position in Specs.
func WithOverwrite() RegisterOption {
	return func(o *registerOptions) { o.overwrite = true }
}

// Register adds t. It fails with core.ErrNameConflict for a taken name
// (unless WithOverwrite is given) and with core.ErrInvalidSchema when the
// parameter schema does not compile.
func (r *Registry) Register(t Tool, opts ...RegisterOption) error {
	ro := registerOptions{}
	for _, fn := range opts {
		fn(&ro)
	}

	name := t.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: tool name must not be empty", core.ErrInvalidSchema)
	}

	_, exists := r.entries[name]
	if exists && !ro.overwrite {
		return fmt.Errorf("%w: %q is already registered", core.ErrNameConflict, name)
	}

	schema, err := CompileSchema(t.Parameters())
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	r.entries[name] = &entry{tool: t, schema: schema}
	if !exists {
		r.order = append(r.order, name)
	}

	r.logger.Debug("tool.registry.registered", "tool", name, "overwrite", exists)

	return nil
}

// MustRegister is Register that panics on error. Use it for static wiring.
func (r *Registry) MustRegister(t Tool, opts ...RegisterOption) {
	if err := r.Register(t, opts...); err != nil {
		panic(err)
	}
}

// Resolve returns the tool registered under name, or core.ErrToolNotFound
// listing the available names.
func (r *Registry) Resolve(name string) (Tool, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", core.ErrToolNotFound, name, strings.Join(r.order, ", "))
	}
	return e.tool, nil
}

// Schema returns the compiled parameter schema of a registered tool.
func (r *Registry) Schema(name string) (*Schema, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.schema, true
}

// Specs returns every declaration in registration order.
func (r *Registry) Specs() []core.ToolSpec {
	specs := make([]core.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, Spec(r.entries[name].tool))
	}
	return specs
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Unregister removes name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }
