package tool

import (
	"sync"

	"github.com/hupe1980/goswarm/core"
)

// Definition is the schema-bearing description of a registered tool exposed
// to the model gateway.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Registry maps tool names to callables and their declared parameter schemas.
// The registry exclusively owns the callables; tools hold no back-references.
// It is read-mostly and safe for concurrent Resolve calls from parallel tool
// executions.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string // registration order, for Names
}

// NewRegistry constructs an empty tool registry. Pass the registry by explicit
// reference into the orchestration layer rather than keeping process-wide
// state; this keeps multiple independent concurrent runs isolated.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. It fails with *DuplicateToolError if the name is
// already present.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// RegisterFunc is a convenience wrapping Register(NewFunctionTool(...)).
func (r *Registry) RegisterFunc(name, description string, parameters map[string]any, fn Func) error {
	return r.Register(NewFunctionTool(name, description, parameters, fn))
}

// Resolve returns the callable registered under name. It fails with
// *UnknownToolError if absent.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return t, nil
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]string, len(r.order))
	copy(cp, r.order)
	return cp
}

// SchemasFor returns the definitions of the tools the given agent declares,
// preserving the agent's declared order. The order is advisory ordering
// hinted to the model, not an execution order. Declared names that are not
// registered are skipped; the miss surfaces at call time as an unknown-tool
// result.
func (r *Registry) SchemasFor(agent *core.Agent) []Definition {
	if agent == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := agent.Tools()
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}
