package transform

import (
	"context"
	"sort"
	"sync"

	"github.com/savorlab/foodstate"
)

// Registry is the lookup capability the composition engine depends on.
//
// Lookup returns the definition for a transform id, or an error wrapping
// foodstate.ErrTransformNotFound when the id is unknown. Implementations
// backed by I/O map infrastructure failures to the same not-found condition,
// keeping the engine's error surface small; they must also tolerate
// cancellation via ctx.
type Registry interface {
	Lookup(ctx context.Context, id string) (Definition, error)
}

// StaticRegistry is an in-memory Registry populated by Register calls.
// It is safe for concurrent use; lookups take a read lock only.
type StaticRegistry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{defs: make(map[string]Definition)}
}

// Register adds a definition to the registry. The definition is validated
// and duplicate ids are rejected.
func (r *StaticRegistry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return foodstate.NewValidationError("StaticRegistry.Register", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.defs[def.ID]; dup {
		return foodstate.NewValidationError("StaticRegistry.Register", foodstate.ErrInvalidParams).
			WithContext(map[string]any{"transform": def.ID, "reason": "duplicate id"})
	}
	r.defs[def.ID] = def
	return nil
}

// MustRegister is like Register but panics on error.
// Intended for statically known definitions in setup code.
func (r *StaticRegistry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Replace inserts or overwrites a definition without the duplicate check.
// Used by catalog synchronization, where a remote update legitimately
// replaces an existing definition.
func (r *StaticRegistry) Replace(def Definition) error {
	if err := def.Validate(); err != nil {
		return foodstate.NewValidationError("StaticRegistry.Replace", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.ID] = def
	return nil
}

// Unregister removes a definition. Removing an unknown id is a no-op.
func (r *StaticRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, id)
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(_ context.Context, id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	if !ok {
		return Definition{}, foodstate.NewNotFoundError("StaticRegistry.Lookup", foodstate.ErrTransformNotFound).
			WithContext(map[string]any{"transform": id})
	}
	return def, nil
}

// IDs returns the registered transform ids in sorted order.
func (r *StaticRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered definitions.
func (r *StaticRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
