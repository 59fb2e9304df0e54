// Package toolbox merges local and dynamically discovered tools into the
// single registry the agent consults.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fwojciec/recall"
)

// Compile-time interface check.
var _ recall.ToolExecutor = (*Registry)(nil)

// Registry holds every tool available to the agent. Names are unique across
// local and dynamic tools. Once frozen, the registry rejects registration.
type Registry struct {
	mu      sync.RWMutex
	local   []recall.Tool
	dynamic []recall.Tool
	byName  map[string]recall.Tool
	frozen  bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string]recall.Tool)}
}

// RegisterLocal adds in-process tools. The batch is rejected as a whole when
// any name is empty or collides with an existing tool.
func (r *Registry) RegisterLocal(tools ...recall.Tool) error {
	return r.register(&r.local, tools)
}

// RegisterDynamic adds tools discovered from external providers under the
// same rules as RegisterLocal.
func (r *Registry) RegisterDynamic(tools ...recall.Tool) error {
	return r.register(&r.dynamic, tools)
}

func (r *Registry) register(dst *[]recall.Tool, tools []recall.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return recall.ErrRegistryFrozen
	}
	batch := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return recall.ErrEmptyToolName
		}
		_, inBatch := batch[name]
		_, exists := r.byName[name]
		if inBatch || exists {
			return fmt.Errorf("%q: %w", name, recall.ErrDuplicateToolName)
		}
		batch[name] = struct{}{}
	}
	for _, t := range tools {
		r.byName[t.Name()] = t
	}
	*dst = append(*dst, tools...)
	return nil
}

// Freeze stops further registration. It is called once the agent has been
// built around the registry.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// All returns local tools in registration order followed by dynamic tools in
// registration order.
func (r *Registry) All() []recall.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]recall.Tool, 0, len(r.local)+len(r.dynamic))
	out = append(out, r.local...)
	return append(out, r.dynamic...)
}

// Definitions returns the tool schemas advertised to the model, in All order.
func (r *Registry) Definitions() []recall.ToolDef {
	tools := r.All()
	defs := make([]recall.ToolDef, len(tools))
	for i, t := range tools {
		defs[i] = recall.DefOf(t)
	}
	return defs
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (recall.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Execute dispatches a tool call by name. Unknown tool names return an IsError
// result so the model can self-correct.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*recall.ToolResult, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return recall.ErrorResult(fmt.Sprintf("%v: %s", recall.ErrToolNotFound, name)), nil
	}
	return t.Invoke(ctx, args)
}
